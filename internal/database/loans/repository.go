// Package loans provides database operations for the loan lifecycle.
//
// A loan moves en_cours -> retourne. en_retard is never persisted: it is
// computed at read time for open loans past their due date. Every
// check-then-act sequence runs inside a single transaction so the book
// availability flag cannot drift from the loan table.
package loans

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/kone/bibliotheque/internal/apperrors"
	"github.com/kone/bibliotheque/internal/database"
	"github.com/kone/bibliotheque/internal/entities"
)

// DefaultLoanDays is the loan duration applied when the caller does not
// provide one.
const DefaultLoanDays = 14

type UserSummary struct {
	ID     uint   `json:"id"`
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
	Email  string `json:"email"`
}

type BookSummary struct {
	ID     uint   `json:"id"`
	Titre  string `json:"titre"`
	Auteur string `json:"auteur"`
	ISBN   string `json:"isbn"`
}

// LoanView joins a loan with user and book projections. Statut carries
// the read-time classification (en_retard for overdue open loans).
type LoanView struct {
	ID                  uint                `json:"id_emprunt"`
	Utilisateur         UserSummary         `json:"utilisateur"`
	Livre               BookSummary         `json:"livre"`
	DateEmprunt         time.Time           `json:"date_emprunt"`
	DateRetourPrevue    time.Time           `json:"date_retour_prevue"`
	DateRetourEffective *time.Time          `json:"date_retour_effective"`
	Statut              entities.LoanStatus `json:"statut"`
	JoursRestants       *int                `json:"jours_restants"`
}

// Filter narrows ListLoans. Statut accepts the stored states plus the
// computed en_retard; UserID 0 means all users.
type Filter struct {
	Statut string
	UserID uint
}

// Repository handles all loan database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateLoan opens a loan for an available book. The whole sequence
// (existence checks, availability check, insert, flag flip) is one
// transaction.
func (r *Repository) CreateLoan(userID, bookID uint, dureeJours int) (*LoanView, error) {
	if dureeJours <= 0 {
		dureeJours = DefaultLoanDays
	}

	var view *LoanView
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(fmt.Sprintf("Aucun utilisateur trouvé avec l'ID %d", userID))
			}
			return err
		}

		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(fmt.Sprintf("Aucun livre trouvé avec l'ID %d", bookID))
			}
			return err
		}

		var existing int64
		err := tx.Model(&entities.Loan{}).
			Where("id_users = ? AND id_livre = ? AND statut = ?", userID, bookID, entities.LoanStatusEnCours).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.Conflict("Cet utilisateur a déjà emprunté ce livre")
		}

		available, err := database.BookAvailable(tx, &book)
		if err != nil {
			return err
		}
		if !available {
			return apperrors.Conflict("Ce livre n'est pas disponible pour l'emprunt")
		}

		now := time.Now()
		loan := &entities.Loan{
			UserID:           userID,
			BookID:           bookID,
			DateEmprunt:      now,
			DateRetourPrevue: now.AddDate(0, 0, dureeJours),
			Statut:           entities.LoanStatusEnCours,
		}
		if err := tx.Create(loan).Error; err != nil {
			return err
		}

		if err := tx.Model(&entities.Book{}).Where("id = ?", bookID).
			Update("disponible", false).Error; err != nil {
			return err
		}

		loan.User = user
		loan.Book = book
		v := toView(loan, now)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ReturnLoan closes an open loan and restores the book's availability.
// Availability is restored unconditionally on every successful return;
// late vs on-time is a read-time label, never a stored divergence.
func (r *Repository) ReturnLoan(loanID uint, dateRetourEffective time.Time) (*LoanView, error) {
	var view *LoanView
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var loan entities.Loan
		err := tx.Preload("User").Preload("Book").First(&loan, loanID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(fmt.Sprintf("Aucun emprunt trouvé avec l'ID %d", loanID))
			}
			return err
		}

		if loan.Statut != entities.LoanStatusEnCours {
			return apperrors.Conflict("Cet emprunt a déjà été retourné")
		}

		err = tx.Model(&entities.Loan{}).Where("id_emprunt = ?", loanID).Updates(map[string]any{
			"date_retour_effective": dateRetourEffective,
			"statut":                entities.LoanStatusRetourne,
		}).Error
		if err != nil {
			return err
		}

		if err := database.RecomputeAvailability(tx, loan.BookID); err != nil {
			return err
		}

		loan.Statut = entities.LoanStatusRetourne
		loan.DateRetourEffective = &dateRetourEffective
		v := toView(&loan, time.Now())
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListLoans returns loans joined with user and book projections, newest
// first. The en_retard filter selects open loans past their due date.
func (r *Repository) ListLoans(filter Filter) ([]LoanView, error) {
	now := time.Now()

	query := r.db.Preload("User").Preload("Book").Order("date_emprunt DESC")
	if filter.UserID > 0 {
		query = query.Where("id_users = ?", filter.UserID)
	}
	switch filter.Statut {
	case "":
	case string(entities.LoanStatusEnRetard):
		query = query.Where("statut = ? AND date_retour_prevue < ?", entities.LoanStatusEnCours, now)
	default:
		query = query.Where("statut = ?", filter.Statut)
	}

	var records []entities.Loan
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	views := make([]LoanView, 0, len(records))
	for i := range records {
		views = append(views, toView(&records[i], now))
	}
	return views, nil
}

// GetLoan returns a single loan with its projections.
func (r *Repository) GetLoan(id uint) (*LoanView, error) {
	var loan entities.Loan
	err := r.db.Preload("User").Preload("Book").First(&loan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("Aucun emprunt trouvé avec l'ID %d", id))
		}
		return nil, err
	}
	view := toView(&loan, time.Now())
	return &view, nil
}

// DeleteLoan removes a loan. Deleting an open loan releases its hold on
// the book.
func (r *Repository) DeleteLoan(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var loan entities.Loan
		err := tx.First(&loan, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(fmt.Sprintf("Aucun emprunt trouvé avec l'ID %d", id))
			}
			return err
		}

		if err := tx.Delete(&entities.Loan{}, id).Error; err != nil {
			return err
		}

		if loan.Statut == entities.LoanStatusEnCours {
			return database.RecomputeAvailability(tx, loan.BookID)
		}
		return nil
	})
}

// OverdueLoan is the notification projection for an open loan past due.
type OverdueLoan struct {
	LoanID           uint      `json:"id_emprunt"`
	UserID           uint      `json:"id_users"`
	Nom              string    `json:"nom"`
	Prenom           string    `json:"prenom"`
	Email            string    `json:"email"`
	Titre            string    `json:"titre"`
	DateEmprunt      time.Time `json:"date_emprunt"`
	DateRetourPrevue time.Time `json:"date_retour_prevue"`
}

// ListOverdue returns the open loans past their due date, oldest due
// date first, joined with borrower and book for reminder delivery.
func (r *Repository) ListOverdue() ([]OverdueLoan, error) {
	var loans []entities.Loan
	err := r.db.Preload("User").Preload("Book").
		Where("statut = ? AND date_retour_prevue < ?", entities.LoanStatusEnCours, time.Now()).
		Order("date_retour_prevue ASC").
		Find(&loans).Error
	if err != nil {
		return nil, err
	}

	overdue := make([]OverdueLoan, 0, len(loans))
	for _, loan := range loans {
		overdue = append(overdue, OverdueLoan{
			LoanID:           loan.ID,
			UserID:           loan.UserID,
			Nom:              loan.User.Nom,
			Prenom:           loan.User.Prenom,
			Email:            loan.User.Email,
			Titre:            loan.Book.Titre,
			DateEmprunt:      loan.DateEmprunt,
			DateRetourPrevue: loan.DateRetourPrevue,
		})
	}
	return overdue, nil
}

func toView(loan *entities.Loan, now time.Time) LoanView {
	statut := loan.Statut
	var joursRestants *int
	if loan.Statut == entities.LoanStatusEnCours {
		if loan.DateRetourPrevue.Before(now) {
			statut = entities.LoanStatusEnRetard
		}
		days := int(math.Ceil(loan.DateRetourPrevue.Sub(now).Hours() / 24))
		joursRestants = &days
	}

	return LoanView{
		ID: loan.ID,
		Utilisateur: UserSummary{
			ID:     loan.User.ID,
			Nom:    loan.User.Nom,
			Prenom: loan.User.Prenom,
			Email:  loan.User.Email,
		},
		Livre: BookSummary{
			ID:     loan.Book.ID,
			Titre:  loan.Book.Titre,
			Auteur: loan.Book.Auteur,
			ISBN:   loan.Book.ISBN,
		},
		DateEmprunt:         loan.DateEmprunt,
		DateRetourPrevue:    loan.DateRetourPrevue,
		DateRetourEffective: loan.DateRetourEffective,
		Statut:              statut,
		JoursRestants:       joursRestants,
	}
}
