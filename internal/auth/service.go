package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kone/bibliotheque/internal/apperrors"
	"github.com/kone/bibliotheque/internal/config"
	"github.com/kone/bibliotheque/internal/entities"
)

// Service owns credentials: registration, password verification and
// bearer-token issuance.
type Service struct {
	db     *gorm.DB
	tokens *TokenManager
	config config.Auth
}

// NewService creates a new credential service.
func NewService(db *gorm.DB, tokens *TokenManager, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		tokens: tokens,
		config: cfg,
	}
}

// Register creates a user account. Only the salted hash of the password
// is stored. New accounts always get the student role; administrators
// are promoted out of band (create-admin command).
func (s *Service) Register(nom, prenom, email, password string) (*entities.User, error) {
	if nom == "" || prenom == "" || email == "" || password == "" {
		return nil, apperrors.Validation("Tous les champs sont requis (nom, prenom, email, password)")
	}

	var existing entities.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("Cet email est déjà enregistré")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, apperrors.Validation("Le mot de passe est trop long")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Nom:          nom,
		Prenom:       prenom,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         entities.UserRoleEtudiant,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// CreateAdmin registers an account with the administrator role.
func (s *Service) CreateAdmin(nom, prenom, email, password string) (*entities.User, error) {
	user, err := s.Register(nom, prenom, email, password)
	if err != nil {
		return nil, err
	}
	err = s.db.Model(user).Update("role", entities.UserRoleAdmin).Error
	if err != nil {
		return nil, err
	}
	user.Role = entities.UserRoleAdmin
	return user, nil
}

// Authenticate verifies credentials and issues a signed bearer token.
func (s *Service) Authenticate(email, password string) (string, *entities.User, error) {
	if email == "" || password == "" {
		return "", nil, apperrors.Validation("Email et mot de passe requis")
	}

	var user entities.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.Unauthorized("Email incorrect")
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return "", nil, apperrors.Unauthorized("Mot de passe incorrect")
		}
		return "", nil, err
	}

	token, err := s.tokens.Generate(&user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, &user, nil
}

// Verify validates a bearer token and returns its claims.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, apperrors.Forbidden("Token invalide ou expiré")
	}
	return claims, nil
}
