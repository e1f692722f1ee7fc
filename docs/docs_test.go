package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerDocIsValidJSON(t *testing.T) {
	SwaggerInfo.Host = "localhost:4000"
	SwaggerInfo.Schemes = []string{"http"}

	var doc struct {
		Host  string                    `json:"host"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	assert.Equal(t, "localhost:4000", doc.Host)
	assert.Contains(t, doc.Paths, "/api/photos")
	assert.Contains(t, doc.Paths["/api/participants/{id}"], "put")
}
