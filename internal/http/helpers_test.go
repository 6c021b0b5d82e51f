package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kone/bibliotheque/internal/auth"
	"github.com/kone/bibliotheque/internal/config"
	"github.com/kone/bibliotheque/internal/database"
	"github.com/kone/bibliotheque/internal/database/books"
	"github.com/kone/bibliotheque/internal/database/feedback"
	"github.com/kone/bibliotheque/internal/database/loans"
	"github.com/kone/bibliotheque/internal/database/reservations"
	"github.com/kone/bibliotheque/internal/database/users"
)

type testEnv struct {
	router *gin.Engine
	db     *database.Database
	auth   *auth.Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), strings.ReplaceAll(t.Name(), "/", "_")+".db")
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Auth{BcryptCost: 4, TokenExpiry: time.Hour}
	tokens := auth.NewTokenManager("test-secret", cfg.TokenExpiry)
	authService := auth.NewService(db.DB, tokens, cfg)

	loanRepo := loans.NewRepository(db.DB)
	router := NewRouter(RouterConfig{
		Database:    db,
		Version:     "test",
		AuthService: authService,
		Catalog:     books.NewRepository(db.DB),
		Circulation: loanRepo,
		Reservation: reservations.NewRepository(db.DB),
		Feedback:    feedback.NewRepository(db.DB),
		Directory:   users.NewRepository(db.DB),
		Overdue:     loanRepo,
	})

	return &testEnv{router: router, db: db, auth: authService}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	_, err := e.auth.CreateAdmin("Admin", "Root", "admin@example.com", "admin123")
	require.NoError(t, err)
	token, _, err := e.auth.Authenticate("admin@example.com", "admin123")
	require.NoError(t, err)
	return token
}

func (e *testEnv) studentToken(t *testing.T, email string) string {
	t.Helper()
	_, err := e.auth.Register("Kone", "Awa", email, "secret123")
	require.NoError(t, err)
	token, _, err := e.auth.Authenticate(email, "secret123")
	require.NoError(t, err)
	return token
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(method, path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
