package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCRUD(t *testing.T) {
	engine := newTestEngine(t, "")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/settings", gin.H{"key": "ollama_url", "value": "http://localhost:11434"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "http://localhost:11434", decode(t, w)["value"])

	w = doJSON(t, engine, http.MethodGet, "/api/v1/settings/ollama_url", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ollama_url", decode(t, w)["key"])

	// Preference rows stay out of the generic listing.
	w = doJSON(t, engine, http.MethodPut, "/api/v1/preferences/language", gin.H{"value": "fr"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, engine, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var settings []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	require.Len(t, settings, 1)
	assert.Equal(t, "ollama_url", settings[0]["key"])
	assert.NotEmpty(t, settings[0]["updated_at"])

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/settings/ollama_url", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, engine, http.MethodDelete, "/api/v1/settings/ollama_url", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, engine, http.MethodGet, "/api/v1/settings/ollama_url", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsRejectPreferenceKeys(t *testing.T) {
	engine := newTestEngine(t, "")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/settings", gin.H{"key": "pref_language", "value": "xx"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, w))

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/settings/pref_language", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/settings", gin.H{"value": "no key"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))
}
