package handler

import (
	"io"
	"log/slog"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"foodmemories/internal/model"
	"foodmemories/internal/service"
)

const photoNotFound = "Photo not found"

// PhotoFileField is the documented multipart field for the image. Any field name is accepted.
const PhotoFileField = "photo"

// ListPhotos returns photos, newest first, optionally filtered by day and moduleId.
//
//	@Summary	List photos
//	@Tags		photos
//	@Produce	json
//	@Param		day			query		int		false	"Workshop day"
//	@Param		moduleId	query		string	false	"Module id"
//	@Success	200			{array}		model.Photo
//	@Failure	400			{object}	errorPayload
//	@Router		/api/photos [get]
func ListPhotos(svc service.PhotoService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var filter model.PhotoFilter
		if raw := c.Query("day"); raw != "" {
			day, err := strconv.Atoi(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_DAY", "Invalid day value")
			}
			filter.Day = &day
		}
		filter.ModuleID = c.Query("moduleId")

		items, err := svc.List(c.UserContext(), filter)
		if err != nil {
			return writeServiceError(c, log, err, photoNotFound)
		}
		return c.JSON(items)
	}
}

// GetPhoto returns one photo with participants expanded.
//
//	@Summary	Get photo
//	@Tags		photos
//	@Produce	json
//	@Param		id	path		string	true	"Photo ID"
//	@Success	200	{object}	model.Photo
//	@Failure	404	{object}	errorPayload
//	@Router		/api/photos/{id} [get]
func GetPhoto(svc service.PhotoService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, log, err, photoNotFound)
		}
		return c.JSON(p)
	}
}

// UploadPhoto stores one image with its workshop location and participants.
//
//	@Summary	Upload photo
//	@Tags		photos
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		photo			formData	file	true	"Image file"
//	@Param		day				formData	int		true	"Workshop day (1-2)"
//	@Param		phaseIndex		formData	int		true	"Phase index (0-based)"
//	@Param		moduleId		formData	string	false	"Module id"
//	@Param		caption			formData	string	false	"Caption"
//	@Param		notes			formData	string	false	"Notes"
//	@Param		participantIds	formData	string	false	"Comma separated participant ids"
//	@Success	201				{object}	model.Photo
//	@Failure	400				{object}	errorPayload
//	@Failure	413				{object}	errorPayload
//	@Router		/api/photos [post]
func UploadPhoto(svc service.PhotoService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.UploadRequest
		// A body that is not multipart leaves every field empty; the service reports what is missing.
		if form, err := c.MultipartForm(); err == nil {
			req = uploadRequestFromForm(form)
		}

		p, err := svc.Upload(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, log, err, photoNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// DeletePhoto removes the record and then the file.
//
//	@Summary	Delete photo
//	@Tags		photos
//	@Param		id	path	string	true	"Photo ID"
//	@Success	204
//	@Failure	404	{object}	errorPayload
//	@Router		/api/photos/{id} [delete]
func DeletePhoto(svc service.PhotoService, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return writeServiceError(c, log, err, photoNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func uploadRequestFromForm(form *multipart.Form) service.UploadRequest {
	first := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	req := service.UploadRequest{
		Day:        first("day"),
		PhaseIndex: first("phaseIndex"),
		ModuleID:   first("moduleId"),
		Caption:    first("caption"),
		Notes:      first("notes"),
	}
	req.ParticipantIDs = append(req.ParticipantIDs, form.Value["participantIds"]...)
	req.ParticipantIDs = append(req.ParticipantIDs, form.Value["participantIds[]"]...)

	// "photo" first, then any other file fields in a stable order.
	fields := make([]string, 0, len(form.File))
	for name := range form.File {
		fields = append(fields, name)
	}
	sort.Slice(fields, func(i, j int) bool {
		if (fields[i] == PhotoFileField) != (fields[j] == PhotoFileField) {
			return fields[i] == PhotoFileField
		}
		return strings.Compare(fields[i], fields[j]) < 0
	})
	for _, name := range fields {
		for _, fh := range form.File[name] {
			req.Files = append(req.Files, uploadFile(fh))
		}
	}
	return req
}

func uploadFile(fh *multipart.FileHeader) service.UploadFile {
	return service.UploadFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
