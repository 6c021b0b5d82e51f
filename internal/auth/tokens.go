package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kone/bibliotheque/internal/entities"
)

// Claims is the bearer-token payload: the user identity the frontend
// needs plus the fields role checks rely on.
type Claims struct {
	UserID uint              `json:"id_users"`
	Email  string            `json:"email"`
	Nom    string            `json:"nom"`
	Prenom string            `json:"prenom"`
	Role   entities.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256-signed bearer tokens.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager creates a token manager. expiry 0 falls back to 24
// hours, the session length the frontend assumes.
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Generate signs a token embedding the user's identity and role.
func (m *TokenManager) Generate(user *entities.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Nom:    user.Nom,
		Prenom: user.Prenom,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses and verifies a token string, returning its claims.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, jwt.ErrTokenExpired
	}

	return claims, nil
}
