package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationController_CreateReservation(t *testing.T) {
	t.Run("visitor places a hold", func(t *testing.T) {
		env := setupTestEnv(t)
		admin := env.adminToken(t)
		bookID := createBookHTTP(t, env, admin, "1984", "978-1")

		w := env.request(t, "POST", fmt.Sprintf("/api/livres/%d/reservation", bookID), "", map[string]any{
			"nom": "Traore", "email": "traore@example.com", "telephone": "0601020304",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Réservation enregistrée avec succès", body["message"])

		w = env.request(t, "GET", fmt.Sprintf("/api/livres/%d", bookID), "", nil)
		book := decodeBody(t, w)["data"].(map[string]any)
		assert.Equal(t, false, book["disponible"])
	})

	t.Run("requires nom and email", func(t *testing.T) {
		env := setupTestEnv(t)
		admin := env.adminToken(t)
		bookID := createBookHTTP(t, env, admin, "1984", "978-1")

		w := env.request(t, "POST", fmt.Sprintf("/api/livres/%d/reservation", bookID), "", map[string]any{
			"nom": "  ",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate hold conflicts", func(t *testing.T) {
		env := setupTestEnv(t)
		admin := env.adminToken(t)
		bookID := createBookHTTP(t, env, admin, "1984", "978-1")

		payload := map[string]any{"nom": "Traore", "email": "traore@example.com"}
		w := env.request(t, "POST", fmt.Sprintf("/api/livres/%d/reservation", bookID), "", payload)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.request(t, "POST", fmt.Sprintf("/api/livres/%d/reservation", bookID), "", payload)
		assert.Equal(t, http.StatusConflict, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Réservation déjà effectuée pour ce livre par cet utilisateur.", body["message"])
	})

	t.Run("borrowed book cannot be reserved", func(t *testing.T) {
		env := setupTestEnv(t)
		admin := env.adminToken(t)
		bookID := createBookHTTP(t, env, admin, "1984", "978-1")
		student := env.studentToken(t, "awa@example.com")
		borrowHTTP(t, env, student, 2, bookID)

		w := env.request(t, "POST", fmt.Sprintf("/api/livres/%d/reservation", bookID), "", map[string]any{
			"nom": "Traore", "email": "traore@example.com",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Livre non disponible", body["message"])
	})

	t.Run("unknown book", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.request(t, "POST", "/api/livres/999/reservation", "", map[string]any{
			"nom": "Traore", "email": "traore@example.com",
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReservationController_ListAndCancel(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.adminToken(t)
	bookID := createBookHTTP(t, env, admin, "1984", "978-1")

	w := env.request(t, "POST", fmt.Sprintf("/api/livres/%d/reservation", bookID), "", map[string]any{
		"nom": "Traore", "email": "traore@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("list requires admin", func(t *testing.T) {
		w := env.request(t, "GET", "/api/reservations", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin lists holds", func(t *testing.T) {
		w := env.request(t, "GET", "/api/reservations", admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		require.Equal(t, float64(1), body["count"])
		hold := body["data"].([]any)[0].(map[string]any)
		assert.Equal(t, "1984", hold["titre"])
		assert.Equal(t, "traore@example.com", hold["email"])
	})

	t.Run("scoped by livre_id", func(t *testing.T) {
		w := env.request(t, "GET", fmt.Sprintf("/api/reservations?livre_id=%d", bookID), admin, nil)
		body := decodeBody(t, w)
		assert.Equal(t, float64(1), body["count"])

		w = env.request(t, "GET", "/api/reservations?livre_id=999", admin, nil)
		body = decodeBody(t, w)
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("cancel restores availability", func(t *testing.T) {
		w := env.request(t, "DELETE", "/api/reservations/1", admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Réservation annulée avec succès", body["message"])

		w = env.request(t, "GET", fmt.Sprintf("/api/livres/%d", bookID), "", nil)
		book := decodeBody(t, w)["data"].(map[string]any)
		assert.Equal(t, true, book["disponible"])
	})

	t.Run("cancel unknown hold", func(t *testing.T) {
		w := env.request(t, "DELETE", "/api/reservations/999", admin, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
