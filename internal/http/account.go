package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kone/bibliotheque/internal/auth"
	"github.com/kone/bibliotheque/internal/entities"
)

// AccountService defines the authentication operations the account
// endpoints rely on.
type AccountService interface {
	Register(nom, prenom, email, password string) (*entities.User, error)
	Authenticate(email, password string) (string, *entities.User, error)
}

var _ AccountService = (*auth.Service)(nil)

type AccountController struct {
	service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{service: service}
}

type signupRequest struct {
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new reader account.
// POST /signup
func (ac *AccountController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Tous les champs sont requis (nom, prenom, email, password)")
		return
	}

	user, err := ac.service.Register(req.Nom, req.Prenom, req.Email, req.Password)
	if err != nil {
		respondAppError(c, err, "signup")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Utilisateur créé avec succès",
		"userId":  user.ID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and issues a bearer token. The response
// mirrors the shape the frontend stores in local storage.
// POST /userlogin
func (ac *AccountController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Email et mot de passe requis")
		return
	}

	token, user, err := ac.service.Authenticate(req.Email, req.Password)
	if err != nil {
		respondAppError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Connexion réussie",
		"id_users": user.ID,
		"email":    user.Email,
		"nom":      user.Nom,
		"prenom":   user.Prenom,
		"role":     user.Role,
		"token":    token,
	})
}
