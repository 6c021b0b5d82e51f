package notifier

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/kone/bibliotheque/internal/config"
)

// Reminder carries everything needed to compose one overdue email.
type Reminder struct {
	Email            string
	Nom              string
	Prenom           string
	Titre            string
	DateRetourPrevue time.Time
}

// Mailer sends overdue reminders over SMTP.
type Mailer struct {
	config config.SMTP
}

func NewMailer(cfg config.SMTP) *Mailer {
	return &Mailer{config: cfg}
}

// Configured reports whether an SMTP host is set. Reminder sends are
// rejected up front when it is not, instead of failing mid-dial.
func (m *Mailer) Configured() bool {
	return m.config.Host != ""
}

// SendOverdueReminder emails one borrower about one overdue book.
func (m *Mailer) SendOverdueReminder(r Reminder) error {
	if !m.Configured() {
		return fmt.Errorf("smtp host not configured")
	}

	subject := "Retard de retour de livre"
	body := fmt.Sprintf(
		"Bonjour %s %s,\n\nVous avez un retard pour le retour du livre \"%s\" (date prévue: %s). Merci de le rapporter rapidement.\n\nCeci est un rappel automatique.\n\nBibliothèque",
		r.Prenom, r.Nom, r.Titre, r.DateRetourPrevue.Format("02/01/2006"),
	)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", r.Email)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	if err := smtp.SendMail(addr, auth, m.config.From, []string{r.Email}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send reminder to %s: %w", r.Email, err)
	}
	return nil
}
