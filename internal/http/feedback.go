package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kone/bibliotheque/internal/database/feedback"
	"github.com/kone/bibliotheque/internal/entities"
)

// FeedbackStore defines database operations for ratings and comments.
type FeedbackStore interface {
	Rate(bookID uint, note int, utilisateurNom string) (*entities.Rating, feedback.RateAction, error)
	ListRatings(bookID uint) ([]entities.Rating, error)
	AddComment(bookID uint, contenu, auteur string) (*entities.Comment, error)
	ListComments(bookID uint) ([]entities.Comment, error)
}

type FeedbackController struct {
	store FeedbackStore
}

func NewFeedbackController(store FeedbackStore) *FeedbackController {
	return &FeedbackController{store: store}
}

type rateRequest struct {
	Note           *int   `json:"note"`
	UtilisateurNom string `json:"utilisateur_nom"`
}

// Rate records a 1-5 star rating. A second rating by the same user on
// the same book replaces the first.
// POST /api/livres/:id/notations
func (fc *FeedbackController) Rate(c *gin.Context) {
	bookID, ok := parseIDParam(c, "du livre")
	if !ok {
		return
	}

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Note == nil {
		respondBadRequest(c, "La note et le nom de l'utilisateur sont requis")
		return
	}
	if strings.TrimSpace(req.UtilisateurNom) == "" {
		respondBadRequest(c, "La note et le nom de l'utilisateur sont requis")
		return
	}
	if *req.Note < 1 || *req.Note > 5 {
		respondBadRequest(c, "La note doit être comprise entre 1 et 5")
		return
	}

	rating, action, err := fc.store.Rate(bookID, *req.Note, strings.TrimSpace(req.UtilisateurNom))
	if err != nil {
		respondAppError(c, err, "rate book")
		return
	}

	status := http.StatusCreated
	message := "Notation enregistrée avec succès"
	if action == feedback.RateActionUpdated {
		status = http.StatusOK
		message = "Notation mise à jour avec succès"
	}

	c.JSON(status, MessageResponse{
		Success: true,
		Message: message,
		Data:    rating,
	})
}

// ListRatings returns all ratings for a book, most recent first.
// GET /api/livres/:id/notations
func (fc *FeedbackController) ListRatings(c *gin.Context) {
	bookID, ok := parseIDParam(c, "du livre")
	if !ok {
		return
	}

	views, err := fc.store.ListRatings(bookID)
	if err != nil {
		respondAppError(c, err, "list ratings")
		return
	}

	respondList(c, "Notations récupérées avec succès", views, len(views))
}

type addCommentRequest struct {
	Contenu string `json:"contenu"`
	Auteur  string `json:"auteur"`
}

// AddComment attaches a free-text comment to a book.
// POST /api/livres/:id/commentaires
func (fc *FeedbackController) AddComment(c *gin.Context) {
	bookID, ok := parseIDParam(c, "du livre")
	if !ok {
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Le contenu et l'auteur sont requis")
		return
	}
	if strings.TrimSpace(req.Contenu) == "" || strings.TrimSpace(req.Auteur) == "" {
		respondBadRequest(c, "Le contenu et l'auteur sont requis")
		return
	}

	comment, err := fc.store.AddComment(bookID, strings.TrimSpace(req.Contenu), strings.TrimSpace(req.Auteur))
	if err != nil {
		respondAppError(c, err, "add comment")
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{
		Success: true,
		Message: "Commentaire ajouté avec succès",
		Data:    comment,
	})
}

// ListComments returns all comments for a book, most recent first.
// GET /api/livres/:id/commentaires
func (fc *FeedbackController) ListComments(c *gin.Context) {
	bookID, ok := parseIDParam(c, "du livre")
	if !ok {
		return
	}

	views, err := fc.store.ListComments(bookID)
	if err != nil {
		respondAppError(c, err, "list comments")
		return
	}

	respondList(c, "Commentaires récupérés avec succès", views, len(views))
}
