// Package feedback provides database operations for ratings and
// comments, both scoped to a book.
package feedback

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kone/bibliotheque/internal/apperrors"
	"github.com/kone/bibliotheque/internal/entities"
)

// RateAction reports whether a rating was inserted or overwrote a prior
// one from the same name.
type RateAction string

const (
	RateActionCreated RateAction = "created"
	RateActionUpdated RateAction = "updated"
)

// Repository handles all rating and comment database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new feedback repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Rate upserts a 1-5 star rating keyed by (book, rater name).
func (r *Repository) Rate(bookID uint, note int, utilisateurNom string) (*entities.Rating, RateAction, error) {
	var rating *entities.Rating
	action := RateActionCreated

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireBook(tx, bookID); err != nil {
			return err
		}

		var existing entities.Rating
		err := tx.Where("livre_id = ? AND utilisateur_nom = ?", bookID, utilisateurNom).
			First(&existing).Error
		if err == nil {
			action = RateActionUpdated
			existing.Note = note
			existing.DateNotation = time.Now()
			rating = &existing
			return tx.Save(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		rating = &entities.Rating{
			BookID:         bookID,
			Note:           note,
			UtilisateurNom: utilisateurNom,
			DateNotation:   time.Now(),
		}
		return tx.Create(rating).Error
	})
	if err != nil {
		return nil, "", err
	}
	return rating, action, nil
}

// ListRatings returns a book's ratings, newest first. An empty list is
// valid; only an absent book is an error.
func (r *Repository) ListRatings(bookID uint) ([]entities.Rating, error) {
	if err := requireBook(r.db, bookID); err != nil {
		return nil, err
	}

	var ratings []entities.Rating
	err := r.db.Where("livre_id = ?", bookID).
		Order("date_notation DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	if ratings == nil {
		ratings = []entities.Rating{}
	}
	return ratings, nil
}

// AddComment appends a comment to a book. Comments are never edited or
// deleted.
func (r *Repository) AddComment(bookID uint, contenu, auteur string) (*entities.Comment, error) {
	comment := &entities.Comment{
		BookID:       bookID,
		Contenu:      contenu,
		Auteur:       auteur,
		DateCreation: time.Now(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireBook(tx, bookID); err != nil {
			return err
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a book's comments, newest first.
func (r *Repository) ListComments(bookID uint) ([]entities.Comment, error) {
	if err := requireBook(r.db, bookID); err != nil {
		return nil, err
	}

	var comments []entities.Comment
	err := r.db.Where("livre_id = ?", bookID).
		Order("date_creation DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []entities.Comment{}
	}
	return comments, nil
}

func requireBook(tx *gorm.DB, bookID uint) error {
	var book entities.Book
	err := tx.Select("id").First(&book, bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(fmt.Sprintf("Aucun livre trouvé avec l'ID %d", bookID))
	}
	return err
}
