package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kone/bibliotheque/internal/database/loans"
	"github.com/kone/bibliotheque/internal/tasks"
)

type stubOverdueStore struct {
	overdue []loans.OverdueLoan
	err     error
}

func (s *stubOverdueStore) ListOverdue() ([]loans.OverdueLoan, error) {
	return s.overdue, s.err
}

type stubReminderQueue struct {
	enqueued []tasks.OverdueReminderTask
	err      error
}

func (s *stubReminderQueue) EnqueueOverdueReminder(task tasks.OverdueReminderTask) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, task)
	return nil
}

func notificationsRouter(store OverdueStore, queue ReminderQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	controller := NewNotificationController(store, queue)
	router.GET("/api/notifications/retards", controller.ListOverdue)
	router.POST("/api/notifications/retards/send", controller.SendReminder)
	return router
}

func TestNotificationController_ListOverdue(t *testing.T) {
	store := &stubOverdueStore{overdue: []loans.OverdueLoan{{
		LoanID: 1,
		Email:  "awa@example.com",
		Nom:    "Kone",
		Prenom: "Awa",
		Titre:  "1984",
	}}}
	router := notificationsRouter(store, &stubReminderQueue{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/notifications/retards", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])
	loan := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "awa@example.com", loan["email"])
	assert.Equal(t, "1984", loan["titre"])
}

func TestNotificationController_SendReminder(t *testing.T) {
	t.Run("queues a reminder", func(t *testing.T) {
		queue := &stubReminderQueue{}
		router := notificationsRouter(&stubOverdueStore{}, queue)

		w := httptest.NewRecorder()
		req := newJSONRequest(t, "POST", "/api/notifications/retards/send", map[string]any{
			"id_emprunt":         7,
			"email":              "awa@example.com",
			"nom":                "Kone",
			"prenom":             "Awa",
			"titre":              "1984",
			"date_retour_prevue": "2026-08-15",
		})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, queue.enqueued, 1)
		task := queue.enqueued[0]
		assert.Equal(t, uint(7), task.LoanID)
		assert.Equal(t, "awa@example.com", task.Email)
		assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), task.DateRetourPrevue)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		queue := &stubReminderQueue{}
		router := notificationsRouter(&stubOverdueStore{}, queue)

		w := httptest.NewRecorder()
		req := newJSONRequest(t, "POST", "/api/notifications/retards/send", map[string]any{
			"email": "awa@example.com",
		})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Données manquantes pour l'envoi de l'email.", body["message"])
		assert.Empty(t, queue.enqueued)
	})

	t.Run("rejects bad date", func(t *testing.T) {
		router := notificationsRouter(&stubOverdueStore{}, &stubReminderQueue{})

		w := httptest.NewRecorder()
		req := newJSONRequest(t, "POST", "/api/notifications/retards/send", map[string]any{
			"email":              "awa@example.com",
			"titre":              "1984",
			"date_retour_prevue": "pas-une-date",
		})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no queue configured", func(t *testing.T) {
		router := notificationsRouter(&stubOverdueStore{}, nil)

		w := httptest.NewRecorder()
		req := newJSONRequest(t, "POST", "/api/notifications/retards/send", map[string]any{
			"email":              "awa@example.com",
			"titre":              "1984",
			"date_retour_prevue": "2026-08-15",
		})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
