package api

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIllustration(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/illustrations", map[string]any{
		"prompt": "a brave little lion on a hill",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var env testEnvelope[IllustrationResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "image/png", env.Data.MIMEType)

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("a brave little lion on a hill"))
	assert.Equal(t, want, env.Data.ImageURL)
}

func TestGenerateIllustrationEmptyPrompt(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/illustrations", map[string]any{
		"prompt": "",
	})
	assert.GreaterOrEqual(t, resp.Code, 400)
}
