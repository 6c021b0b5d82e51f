package http

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kone/bibliotheque/internal/entities"
)

func borrowHTTP(t *testing.T, env *testEnv, token string, userID, bookID uint) uint {
	t.Helper()
	w := env.request(t, "POST", "/api/emprunts", token, map[string]any{
		"id_users": userID, "id_livre": bookID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	return uint(data["id_emprunt"].(float64))
}

func TestCirculationController_CreateLoan(t *testing.T) {
	t.Run("borrows an available book", func(t *testing.T) {
		env := setupTestEnv(t)
		admin := env.adminToken(t)
		bookID := createBookHTTP(t, env, admin, "1984", "978-1")
		student := env.studentToken(t, "awa@example.com")

		w := env.request(t, "POST", "/api/emprunts", student, map[string]any{
			"id_users": 2, "id_livre": bookID,
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Emprunt créé avec succès", body["message"])
		data := body["data"].(map[string]any)
		assert.Equal(t, "en_cours", data["statut"])
		assert.Equal(t, "1984", data["livre"].(map[string]any)["titre"])

		// The book is no longer available in the catalog
		w = env.request(t, "GET", fmt.Sprintf("/api/livres/%d", bookID), "", nil)
		catalogBody := decodeBody(t, w)
		book := catalogBody["data"].(map[string]any)
		assert.Equal(t, false, book["disponible"])
	})

	t.Run("requires authentication", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.request(t, "POST", "/api/emprunts", "", map[string]any{
			"id_users": 1, "id_livre": 1,
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("double borrow conflicts", func(t *testing.T) {
		env := setupTestEnv(t)
		admin := env.adminToken(t)
		bookID := createBookHTTP(t, env, admin, "1984", "978-1")
		student := env.studentToken(t, "awa@example.com")
		borrowHTTP(t, env, student, 2, bookID)

		w := env.request(t, "POST", "/api/emprunts", student, map[string]any{
			"id_users": 2, "id_livre": bookID,
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Cet utilisateur a déjà emprunté ce livre", body["message"])
	})

	t.Run("reserved book cannot be borrowed", func(t *testing.T) {
		env := setupTestEnv(t)
		admin := env.adminToken(t)
		bookID := createBookHTTP(t, env, admin, "1984", "978-1")
		student := env.studentToken(t, "awa@example.com")

		w := env.request(t, "POST", fmt.Sprintf("/api/livres/%d/reservation", bookID), "", map[string]any{
			"nom": "Traore", "email": "traore@example.com",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.request(t, "POST", "/api/emprunts", student, map[string]any{
			"id_users": 2, "id_livre": bookID,
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Ce livre n'est pas disponible pour l'emprunt", body["message"])
	})

	t.Run("rejects invalid ids", func(t *testing.T) {
		env := setupTestEnv(t)
		student := env.studentToken(t, "awa@example.com")

		w := env.request(t, "POST", "/api/emprunts", student, map[string]any{
			"id_users": 0, "id_livre": -1,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCirculationController_ReturnLoan(t *testing.T) {
	t.Run("borrow, return, borrow again", func(t *testing.T) {
		env := setupTestEnv(t)
		admin := env.adminToken(t)
		bookID := createBookHTTP(t, env, admin, "1984", "978-1")
		student := env.studentToken(t, "awa@example.com")
		loanID := borrowHTTP(t, env, student, 2, bookID)

		w := env.request(t, "PUT", fmt.Sprintf("/api/emprunts/%d/retour", loanID), "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Retour effectué avec succès", body["message"])
		data := body["data"].(map[string]any)
		assert.Equal(t, "retourne", data["statut"])
		assert.NotNil(t, data["date_retour_effective"])

		// Available again, so a new loan opens
		borrowHTTP(t, env, student, 2, bookID)
	})

	t.Run("second return conflicts", func(t *testing.T) {
		env := setupTestEnv(t)
		admin := env.adminToken(t)
		bookID := createBookHTTP(t, env, admin, "1984", "978-1")
		student := env.studentToken(t, "awa@example.com")
		loanID := borrowHTTP(t, env, student, 2, bookID)

		w := env.request(t, "PUT", fmt.Sprintf("/api/emprunts/%d/retour", loanID), "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.request(t, "PUT", fmt.Sprintf("/api/emprunts/%d/retour", loanID), "", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Cet emprunt a déjà été retourné", body["message"])
	})

	t.Run("accepts explicit return date", func(t *testing.T) {
		env := setupTestEnv(t)
		admin := env.adminToken(t)
		bookID := createBookHTTP(t, env, admin, "1984", "978-1")
		student := env.studentToken(t, "awa@example.com")
		loanID := borrowHTTP(t, env, student, 2, bookID)

		w := env.request(t, "PUT", fmt.Sprintf("/api/emprunts/%d/retour", loanID), "", map[string]any{
			"date_retour_effective": "2026-08-20",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown loan", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.request(t, "PUT", "/api/emprunts/999/retour", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCirculationController_ListLoans(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.adminToken(t)
	openBook := createBookHTTP(t, env, admin, "Open", "978-1")
	lateBook := createBookHTTP(t, env, admin, "Late", "978-2")
	student := env.studentToken(t, "awa@example.com")

	borrowHTTP(t, env, student, 2, openBook)
	lateLoan := borrowHTTP(t, env, student, 2, lateBook)

	require.NoError(t, env.db.DB.Model(&entities.Loan{}).
		Where("id_emprunt = ?", lateLoan).
		Update("date_retour_prevue", time.Now().AddDate(0, 0, -2)).Error)

	t.Run("all", func(t *testing.T) {
		w := env.request(t, "GET", "/api/emprunts", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(2), body["count"])
	})

	t.Run("overdue filter", func(t *testing.T) {
		w := env.request(t, "GET", "/api/emprunts?statut=en_retard", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		require.Equal(t, float64(1), body["count"])
		loan := body["data"].([]any)[0].(map[string]any)
		assert.Equal(t, "en_retard", loan["statut"])
		assert.Equal(t, "Late", loan["livre"].(map[string]any)["titre"])
	})

	t.Run("user filter", func(t *testing.T) {
		w := env.request(t, "GET", "/api/emprunts?id_users=2", "", nil)
		body := decodeBody(t, w)
		assert.Equal(t, float64(2), body["count"])

		w = env.request(t, "GET", "/api/emprunts?id_users=999", "", nil)
		body = decodeBody(t, w)
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("bad user filter", func(t *testing.T) {
		w := env.request(t, "GET", "/api/emprunts?id_users=abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCirculationController_DeleteLoan(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.adminToken(t)
	bookID := createBookHTTP(t, env, admin, "1984", "978-1")
	student := env.studentToken(t, "awa@example.com")
	loanID := borrowHTTP(t, env, student, 2, bookID)

	t.Run("requires admin", func(t *testing.T) {
		w := env.request(t, "DELETE", fmt.Sprintf("/api/emprunts/%d", loanID), student, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin deletes and the book is released", func(t *testing.T) {
		w := env.request(t, "DELETE", fmt.Sprintf("/api/emprunts/%d", loanID), admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.request(t, "GET", fmt.Sprintf("/api/livres/%d", bookID), "", nil)
		body := decodeBody(t, w)
		book := body["data"].(map[string]any)
		assert.Equal(t, true, book["disponible"])
	})
}
