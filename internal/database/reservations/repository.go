// Package reservations provides database operations for book holds.
//
// A reservation blocks borrowing exactly like an open loan, but carries
// no due date. Holds never expire on their own; an administrator cancels
// them explicitly.
package reservations

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kone/bibliotheque/internal/apperrors"
	"github.com/kone/bibliotheque/internal/database"
	"github.com/kone/bibliotheque/internal/entities"
)

// ReservationView joins a reservation with a book projection.
type ReservationView struct {
	ID              uint      `json:"id"`
	BookID          uint      `json:"livre_id"`
	Titre           string    `json:"titre"`
	Nom             string    `json:"nom"`
	Email           string    `json:"email"`
	Telephone       string    `json:"telephone"`
	DateReservation time.Time `json:"date_reservation"`
}

// Repository handles all reservation database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reservations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateReservation places a hold on an available book. One hold per
// (book, email); insert and flag flip run in one transaction.
func (r *Repository) CreateReservation(bookID uint, nom, email, telephone string) (*entities.Reservation, error) {
	reservation := &entities.Reservation{
		BookID:          bookID,
		Nom:             nom,
		Email:           email,
		Telephone:       telephone,
		DateReservation: time.Now(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Livre non trouvé")
			}
			return err
		}

		var existing int64
		err := tx.Model(&entities.Reservation{}).
			Where("livre_id = ? AND email = ?", bookID, email).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.Conflict("Réservation déjà effectuée pour ce livre par cet utilisateur.")
		}

		available, err := database.BookAvailable(tx, &book)
		if err != nil {
			return err
		}
		if !available {
			return apperrors.Conflict("Livre non disponible")
		}

		if err := tx.Create(reservation).Error; err != nil {
			return err
		}

		return tx.Model(&entities.Book{}).Where("id = ?", bookID).
			Update("disponible", false).Error
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// ListReservations returns holds joined with their book title, newest
// first. bookID 0 means all books.
func (r *Repository) ListReservations(bookID uint) ([]ReservationView, error) {
	query := r.db.Preload("Book").Order("date_reservation DESC")
	if bookID > 0 {
		query = query.Where("livre_id = ?", bookID)
	}

	var records []entities.Reservation
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	views := make([]ReservationView, 0, len(records))
	for _, resa := range records {
		views = append(views, ReservationView{
			ID:              resa.ID,
			BookID:          resa.BookID,
			Titre:           resa.Book.Titre,
			Nom:             resa.Nom,
			Email:           resa.Email,
			Telephone:       resa.Telephone,
			DateReservation: resa.DateReservation,
		})
	}
	return views, nil
}

// CancelReservation removes a hold and recomputes the book's
// availability in the same transaction.
func (r *Repository) CancelReservation(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var reservation entities.Reservation
		err := tx.First(&reservation, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(fmt.Sprintf("Aucune réservation trouvée avec l'ID %d", id))
			}
			return err
		}

		if err := tx.Delete(&entities.Reservation{}, id).Error; err != nil {
			return err
		}

		return database.RecomputeAvailability(tx, reservation.BookID)
	})
}
