package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, "GET", "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "ok", checks["database"])
}
