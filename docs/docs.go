// Package docs holds the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.healthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/api/participants": {
            "get": {
                "produces": ["application/json"],
                "tags": ["participants"],
                "summary": "List participants",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Participant"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["participants"],
                "summary": "Create participant",
                "parameters": [
                    {"description": "Participant", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ParticipantFields"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Participant"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/api/participants/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["participants"],
                "summary": "Get participant",
                "parameters": [
                    {"type": "string", "description": "Participant ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Participant"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["participants"],
                "summary": "Update participant",
                "parameters": [
                    {"type": "string", "description": "Participant ID", "name": "id", "in": "path", "required": true},
                    {"description": "Participant", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ParticipantFields"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Participant"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "delete": {
                "tags": ["participants"],
                "summary": "Delete participant",
                "parameters": [
                    {"type": "string", "description": "Participant ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/api/photos": {
            "get": {
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "List photos",
                "parameters": [
                    {"type": "integer", "description": "Workshop day", "name": "day", "in": "query"},
                    {"type": "string", "description": "Module id", "name": "moduleId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Photo"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "Upload photo",
                "parameters": [
                    {"type": "file", "description": "Image file", "name": "photo", "in": "formData", "required": true},
                    {"type": "integer", "description": "Workshop day (1-2)", "name": "day", "in": "formData", "required": true},
                    {"type": "integer", "description": "Phase index (0-based)", "name": "phaseIndex", "in": "formData", "required": true},
                    {"type": "string", "description": "Module id", "name": "moduleId", "in": "formData"},
                    {"type": "string", "description": "Caption", "name": "caption", "in": "formData"},
                    {"type": "string", "description": "Notes", "name": "notes", "in": "formData"},
                    {"type": "string", "description": "Comma separated participant ids", "name": "participantIds", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Photo"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/api/photos/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["photos"],
                "summary": "Get photo",
                "parameters": [
                    {"type": "string", "description": "Photo ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Photo"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "delete": {
                "tags": ["photos"],
                "summary": "Delete photo",
                "parameters": [
                    {"type": "string", "description": "Photo ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "handler.healthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "number"}
            }
        },
        "model.Participant": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "dietary": {"type": "string"},
                "cultural": {"type": "string"},
                "notes": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.ParticipantFields": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "dietary": {"type": "string"},
                "cultural": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "model.Photo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "filename": {"type": "string"},
                "originalName": {"type": "string"},
                "storagePath": {"type": "string"},
                "mimeType": {"type": "string"},
                "size": {"type": "integer"},
                "day": {"type": "integer"},
                "phaseIndex": {"type": "integer"},
                "moduleId": {"type": "string"},
                "participantIds": {"type": "array", "items": {"$ref": "#/definitions/model.Participant"}},
                "caption": {"type": "string"},
                "notes": {"type": "string"},
                "url": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Food Memories API",
	Description:      "Participants and photos of the Food Memories workshop.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
