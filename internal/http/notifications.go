package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kone/bibliotheque/internal/database/loans"
	"github.com/kone/bibliotheque/internal/tasks"
)

// OverdueStore lists open loans past their due date.
type OverdueStore interface {
	ListOverdue() ([]loans.OverdueLoan, error)
}

// ReminderQueue enqueues reminder emails for asynchronous delivery.
type ReminderQueue interface {
	EnqueueOverdueReminder(task tasks.OverdueReminderTask) error
}

type NotificationController struct {
	store OverdueStore
	queue ReminderQueue
}

func NewNotificationController(store OverdueStore, queue ReminderQueue) *NotificationController {
	return &NotificationController{store: store, queue: queue}
}

// ListOverdue returns the overdue loans with borrower contact details,
// oldest due date first. Administrators only.
// GET /api/notifications/retards
func (nc *NotificationController) ListOverdue(c *gin.Context) {
	overdue, err := nc.store.ListOverdue()
	if err != nil {
		respondAppError(c, err, "list overdue loans")
		return
	}

	respondList(c, "Emprunts en retard récupérés avec succès", overdue, len(overdue))
}

type sendReminderRequest struct {
	IDEmprunt        uint   `json:"id_emprunt"`
	Email            string `json:"email"`
	Nom              string `json:"nom"`
	Prenom           string `json:"prenom"`
	Titre            string `json:"titre"`
	DateRetourPrevue string `json:"date_retour_prevue"`
}

// SendReminder queues a reminder email for one overdue loan. Delivery
// happens asynchronously with retries.
// POST /api/notifications/retards/send
func (nc *NotificationController) SendReminder(c *gin.Context) {
	if nc.queue == nil {
		respondMessage(c, http.StatusServiceUnavailable, "L'envoi d'emails n'est pas configuré")
		return
	}

	var req sendReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Données manquantes pour l'envoi de l'email.")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Titre) == "" || req.DateRetourPrevue == "" {
		respondBadRequest(c, "Données manquantes pour l'envoi de l'email.")
		return
	}

	due, ok := parseDate(req.DateRetourPrevue)
	if !ok {
		respondBadRequest(c, "Date de retour prévue invalide")
		return
	}

	task := tasks.OverdueReminderTask{
		LoanID:           req.IDEmprunt,
		Email:            strings.TrimSpace(req.Email),
		Nom:              req.Nom,
		Prenom:           req.Prenom,
		Titre:            req.Titre,
		DateRetourPrevue: due,
	}
	if err := nc.queue.EnqueueOverdueReminder(task); err != nil {
		respondAppError(c, err, "enqueue reminder")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":   true,
		"message":   "Email de rappel programmé avec succès",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
