package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := []byte("s3cret")
	token, expiresAt, err := GenerateAccessToken(secret, time.Hour, "admin", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin", claims.Subject)

	_, err = ValidateToken([]byte("other"), token)
	assert.Error(t, err)

	_, _, err = GenerateAccessToken(nil, time.Hour, "admin", "admin")
	assert.Error(t, err)
}

func TestGinLoggerSetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(&buf, "info", "json")
	t.Cleanup(func() { InitLoggerWithWriter(&bytes.Buffer{}, "info", "json") })

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(GinLogger())
	engine.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("requestID")) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var last map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &last))
	assert.Equal(t, "abc-123", last["request_id"])
	assert.Equal(t, float64(http.StatusOK), last["status_code"])
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(&buf, "warn", "json")
	t.Cleanup(func() { InitLoggerWithWriter(&bytes.Buffer{}, "info", "json") })

	LogInfo("hidden")
	LogWarn("shown", map[string]interface{}{"key": "timezone"})
	LogError(errors.New("boom"), "failed")
	LogError(nil, "ignored")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"key":"timezone"`)
	assert.Contains(t, out, "boom")
	assert.NotContains(t, out, "ignored")
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondValidationFailed(c, "Invalid preference value.", "time_format")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())
	assert.JSONEq(t, `{"error":{"code":"VALIDATION_FAILED","message":"Invalid preference value.","details":"time_format"}}`, w.Body.String())
}
