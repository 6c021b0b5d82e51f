package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/kone/bibliotheque/internal/notifier"
)

// OverdueReminderTask emails one borrower about one overdue loan. The
// reminder payload is captured at enqueue time so the email matches
// what the administrator saw, even if the loan is returned before the
// worker picks it up.
type OverdueReminderTask struct {
	LoanID           uint      `json:"id_emprunt"`
	Email            string    `json:"email"`
	Nom              string    `json:"nom"`
	Prenom           string    `json:"prenom"`
	Titre            string    `json:"titre"`
	DateRetourPrevue time.Time `json:"date_retour_prevue"`
}

func (t OverdueReminderTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "send_overdue_reminder",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReminderSender is the part of the mailer the reminder worker needs.
type ReminderSender interface {
	SendOverdueReminder(r notifier.Reminder) error
}

// OverdueReminderProcessor delivers one reminder email.
func OverdueReminderProcessor(sender ReminderSender) backlite.QueueProcessor[OverdueReminderTask] {
	return func(ctx context.Context, task OverdueReminderTask) error {
		if sender == nil {
			return fmt.Errorf("mailer not configured")
		}

		err := sender.SendOverdueReminder(notifier.Reminder{
			Email:            task.Email,
			Nom:              task.Nom,
			Prenom:           task.Prenom,
			Titre:            task.Titre,
			DateRetourPrevue: task.DateRetourPrevue,
		})
		if err != nil {
			return fmt.Errorf("reminder for loan %d: %w", task.LoanID, err)
		}

		log.Printf("[TASK] Sent overdue reminder for loan %d to %s", task.LoanID, task.Email)
		return nil
	}
}

// NewOverdueReminderQueue creates the backlite queue for reminder emails.
func NewOverdueReminderQueue(sender ReminderSender) backlite.Queue {
	return backlite.NewQueue(OverdueReminderProcessor(sender))
}

// EnqueueOverdueReminder stores one reminder task for the workers.
func (c *Client) EnqueueOverdueReminder(task OverdueReminderTask) error {
	_, err := c.Add(task).Save()
	return err
}
