package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kone/bibliotheque/internal/entities"
)

// DirectoryStore defines database operations for user administration.
type DirectoryStore interface {
	ListUsers() ([]entities.User, error)
	GetUser(id uint) (*entities.User, error)
	UpdateUser(id uint, nom, prenom, email string) error
	DeleteUser(id uint) error
}

type DirectoryController struct {
	store DirectoryStore
}

func NewDirectoryController(store DirectoryStore) *DirectoryController {
	return &DirectoryController{store: store}
}

// ListUsers returns every registered account. Administrators only.
// GET /api/utilisateurs
func (dc *DirectoryController) ListUsers(c *gin.Context) {
	users, err := dc.store.ListUsers()
	if err != nil {
		respondAppError(c, err, "list users")
		return
	}

	respondList(c, "Utilisateurs récupérés avec succès", users, len(users))
}

// GetUser returns a single account. Administrators only.
// GET /api/utilisateurs/:id
func (dc *DirectoryController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "de l'utilisateur")
	if !ok {
		return
	}

	user, err := dc.store.GetUser(id)
	if err != nil {
		respondAppError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "Utilisateur récupéré avec succès",
		Data:    user,
	})
}

type updateUserRequest struct {
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
	Email  string `json:"email"`
}

// UpdateUser edits a user's identity fields. Administrators only.
// PUT /api/utilisateurs/:id
func (dc *DirectoryController) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "de l'utilisateur")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Tous les champs sont requis (nom, prenom, email)")
		return
	}
	if strings.TrimSpace(req.Nom) == "" || strings.TrimSpace(req.Prenom) == "" || strings.TrimSpace(req.Email) == "" {
		respondBadRequest(c, "Tous les champs sont requis (nom, prenom, email)")
		return
	}

	if err := dc.store.UpdateUser(id, strings.TrimSpace(req.Nom), strings.TrimSpace(req.Prenom), strings.TrimSpace(req.Email)); err != nil {
		respondAppError(c, err, "update user")
		return
	}

	respondMessage(c, http.StatusOK, "Utilisateur modifié avec succès")
}

// DeleteUser removes an account. Administrators only.
// DELETE /api/utilisateurs/:id
func (dc *DirectoryController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "de l'utilisateur")
	if !ok {
		return
	}

	if err := dc.store.DeleteUser(id); err != nil {
		respondAppError(c, err, "delete user")
		return
	}

	respondMessage(c, http.StatusOK, "Utilisateur supprimé avec succès")
}
