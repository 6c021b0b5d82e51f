// Package books provides database operations for the catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	views, err := repo.ListBooks()
package books

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kone/bibliotheque/internal/apperrors"
	"github.com/kone/bibliotheque/internal/entities"
)

// BookView is a catalog projection: a book joined with its aggregate
// rating. Zero ratings yields NoteMoyenne 0.
type BookView struct {
	ID          uint    `gorm:"column:id" json:"id"`
	Titre       string  `gorm:"column:titre" json:"titre"`
	ISBN        string  `gorm:"column:isbn" json:"isbn"`
	Auteur      string  `gorm:"column:auteur" json:"auteur"`
	Genre       string  `gorm:"column:genre" json:"genre"`
	Disponible  bool    `gorm:"column:disponible" json:"disponible"`
	NoteMoyenne float64 `gorm:"column:note_moyenne" json:"note_moyenne"`
	NombreNotes int64   `gorm:"column:nombre_notes" json:"nombre_notes"`
}

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const bookViewColumns = "livres.id, livres.titre, livres.isbn, livres.auteur, livres.genre, livres.disponible, " +
	"ROUND(COALESCE(AVG(notations.note), 0), 2) AS note_moyenne, COUNT(notations.id) AS nombre_notes"

// ListBooks returns every book with its average rating, ordered by title.
func (r *Repository) ListBooks() ([]BookView, error) {
	var views []BookView
	err := r.db.Model(&entities.Book{}).
		Select(bookViewColumns).
		Joins("LEFT JOIN notations ON notations.livre_id = livres.id").
		Group("livres.id").
		Order("livres.titre ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []BookView{}
	}
	return views, nil
}

// GetBook returns a single book with its average rating.
func (r *Repository) GetBook(id uint) (*BookView, error) {
	var view BookView
	result := r.db.Model(&entities.Book{}).
		Select(bookViewColumns).
		Joins("LEFT JOIN notations ON notations.livre_id = livres.id").
		Where("livres.id = ?", id).
		Group("livres.id").
		Scan(&view)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("Aucun livre trouvé avec l'ID %d", id))
	}
	return &view, nil
}

// CreateBook inserts a new book. The ISBN must be unique.
func (r *Repository) CreateBook(titre, isbn, auteur, genre string, disponible bool) (*entities.Book, error) {
	book := &entities.Book{
		Titre:      titre,
		ISBN:       isbn,
		Auteur:     auteur,
		Genre:      genre,
		Disponible: disponible,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.Book
		err := tx.Where("isbn = ?", isbn).First(&existing).Error
		if err == nil {
			return apperrors.ConflictCode("Un livre avec cet ISBN existe déjà", "DUPLICATE_ISBN")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(book).Error
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook rewrites a book's editable fields.
func (r *Repository) UpdateBook(id uint, titre, auteur, genre string, disponible bool) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(map[string]any{
		"titre":      titre,
		"auteur":     auteur,
		"genre":      genre,
		"disponible": disponible,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Livre non trouvé")
	}
	return nil
}

// DeleteBook removes a book. A book with an open loan cannot be deleted.
func (r *Repository) DeleteBook(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var openLoans int64
		err := tx.Model(&entities.Loan{}).
			Where("id_livre = ? AND statut = ?", id, entities.LoanStatusEnCours).
			Count(&openLoans).Error
		if err != nil {
			return err
		}
		if openLoans > 0 {
			return apperrors.Conflict("Ce livre a un emprunt en cours et ne peut pas être supprimé")
		}

		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("Livre non trouvé")
		}

		// Dependent rows would otherwise dangle against a missing book.
		if err := tx.Where("livre_id = ?", id).Delete(&entities.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("livre_id = ?", id).Delete(&entities.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("livre_id = ?", id).Delete(&entities.Reservation{}).Error
	})
}
