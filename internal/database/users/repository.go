// Package users provides database operations for user administration.
//
// Registration and authentication live in internal/auth; this package
// covers the administrative listing and profile edits.
package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kone/bibliotheque/internal/apperrors"
	"github.com/kone/bibliotheque/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListUsers returns every user ordered by name. Password hashes are
// excluded from the User JSON encoding.
func (r *Repository) ListUsers() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("nom ASC, prenom ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []entities.User{}
	}
	return users, nil
}

// GetUser retrieves a user by ID.
func (r *Repository) GetUser(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("Aucun utilisateur trouvé avec l'ID %d", id))
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser rewrites a user's profile fields.
func (r *Repository) UpdateUser(id uint, nom, prenom, email string) error {
	result := r.db.Model(&entities.User{}).Where("id_users = ?", id).Updates(map[string]any{
		"nom":    nom,
		"prenom": prenom,
		"email":  email,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Utilisateur non trouvé")
	}
	return nil
}

// DeleteUser removes a user by ID.
func (r *Repository) DeleteUser(id uint) error {
	result := r.db.Delete(&entities.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Utilisateur non trouvé ou déjà supprimé")
	}
	return nil
}
