package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"bot_admin_backend/internal/database"
	"bot_admin_backend/internal/repositories"
	"bot_admin_backend/internal/router"
	"bot_admin_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(t *testing.T, passwordHash string) *gin.Engine {
	t.Helper()
	db, dialect, err := database.Open("sqlite", filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.ApplySchema(db, dialect))

	repo := repositories.NewConfigRepository(db, dialect)
	engine := gin.New()
	router.Setup(engine, router.Dependencies{
		Preferences: services.NewUserPreferencesService(repo, db, services.PreferencesOptions{
			Zones: services.StaticZoneSource("Europe/Berlin"),
		}),
		Settings: services.NewSettingsService(repo, db),
		Auth: services.NewAuthService(services.AuthConfig{
			AdminUsername:     "admin",
			AdminPasswordHash: passwordHash,
			JWTSecret:         testSecret,
			JWTExpiration:     time.Hour,
		}),
		JWTSecret: []byte(testSecret),
	})
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	apiErr, ok := body["error"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	code, _ := apiErr["code"].(string)
	return code
}

func TestGetPreferencesReturnsDefaults(t *testing.T) {
	engine := newTestEngine(t, "")

	w := doJSON(t, engine, http.MethodGet, "/api/v1/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Len(t, body, 19)
	assert.Equal(t, "UTC", body["timezone"])
	assert.Equal(t, float64(50), body["messages_per_page"])
	assert.Equal(t, true, body["show_message_previews"])
}

func TestSetAndGetPreference(t *testing.T) {
	engine := newTestEngine(t, "")

	w := doJSON(t, engine, http.MethodPut, "/api/v1/preferences/messages_per_page", gin.H{"value": 100})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(100), decode(t, w)["value"])

	w = doJSON(t, engine, http.MethodGet, "/api/v1/preferences/messages_per_page", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, gin.H{"key": "messages_per_page", "value": float64(100)}, gin.H(decode(t, w)))
}

func TestSetPreferenceValidationErrors(t *testing.T) {
	engine := newTestEngine(t, "")

	w := doJSON(t, engine, http.MethodPut, "/api/v1/preferences/time_format", gin.H{"value": "6h"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))

	w = doJSON(t, engine, http.MethodPut, "/api/v1/preferences/favorite_color", gin.H{"value": "blue"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))

	w = doJSON(t, engine, http.MethodGet, "/api/v1/preferences/favorite_color", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/preferences/time_format", nil)
	assert.Equal(t, "24h", decode(t, w)["value"])
}

func TestBatchUpdateResetAndImport(t *testing.T) {
	engine := newTestEngine(t, "")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/preferences", gin.H{
		"language":             "ja",
		"time_format":          "12h",
		"compact_message_view": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ja", decode(t, w)["language"])

	w = doJSON(t, engine, http.MethodPost, "/api/v1/preferences", gin.H{"language": "de", "time_format": "6h"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/preferences/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := decode(t, w)
	assert.Equal(t, "ja", exported["language"])

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "en", decode(t, w)["language"])

	w = doJSON(t, engine, http.MethodPost, "/api/v1/preferences/import", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/api/v1/preferences", nil)
	assert.Equal(t, exported, decode(t, w))
}

func TestMetadataTimezonesAndFormatting(t *testing.T) {
	engine := newTestEngine(t, "")

	w := doJSON(t, engine, http.MethodGet, "/api/v1/preferences/metadata", nil)
	require.Equal(t, http.StatusOK, w.Code)
	metadata := decode(t, w)
	assert.Len(t, metadata, 19)
	tf := metadata["time_format"].(map[string]interface{})
	assert.Equal(t, []interface{}{"24h", "12h"}, tf["options"])
	assert.Equal(t, "Display", tf["category"])

	w = doJSON(t, engine, http.MethodGet, "/api/v1/preferences/timezones", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var zones []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &zones))
	assert.Equal(t, "UTC", zones[0])
	assert.Contains(t, zones, "Europe/Berlin")

	ms := time.Date(2024, 12, 25, 14, 30, 0, 0, time.UTC).UnixMilli()
	w = doJSON(t, engine, http.MethodGet, "/api/v1/preferences/format?ts="+strconv.FormatInt(ms, 10)+"&tz=Europe/Berlin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-12-25 15:30", decode(t, w)["formatted"])

	w = doJSON(t, engine, http.MethodGet, "/api/v1/preferences/format?ts=0", nil)
	assert.Equal(t, "Unknown time", decode(t, w)["formatted"])

	w = doJSON(t, engine, http.MethodGet, "/api/v1/preferences/format?ts=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/preferences/today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	today := decode(t, w)
	assert.Equal(t, "UTC", today["timezone"])
	assert.Equal(t, today["iso_date"], today["formatted_date"])
}

func TestAuthRequiredWhenPasswordConfigured(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	engine := newTestEngine(t, string(hash))

	w := doJSON(t, engine, http.MethodGet, "/api/v1/preferences", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", gin.H{"username": "admin", "password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["access_token"].(string)
	require.NotEmpty(t, token)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/preferences", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["username"])
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	engine := newTestEngine(t, "")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", gin.H{"username": "admin", "password": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
