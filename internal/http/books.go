package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kone/bibliotheque/internal/database/books"
	"github.com/kone/bibliotheque/internal/entities"
)

// CatalogStore defines database operations for catalog management.
type CatalogStore interface {
	ListBooks() ([]books.BookView, error)
	GetBook(id uint) (*books.BookView, error)
	CreateBook(titre, isbn, auteur, genre string, disponible bool) (*entities.Book, error)
	UpdateBook(id uint, titre, auteur, genre string, disponible bool) error
	DeleteBook(id uint) error
}

type CatalogController struct {
	store CatalogStore
}

func NewCatalogController(store CatalogStore) *CatalogController {
	return &CatalogController{store: store}
}

// ListBooks returns every book with its aggregate rating.
// GET /api/livres
func (cc *CatalogController) ListBooks(c *gin.Context) {
	views, err := cc.store.ListBooks()
	if err != nil {
		respondAppError(c, err, "list books")
		return
	}
	respondList(c, "Livres récupérés avec succès", views, len(views))
}

// GetBook returns one book with its aggregate rating.
// GET /api/livres/:id
func (cc *CatalogController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "du livre")
	if !ok {
		return
	}

	view, err := cc.store.GetBook(id)
	if err != nil {
		respondAppError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "Livre récupéré avec succès",
		Data:    view,
	})
}

type createBookRequest struct {
	Titre      string `json:"titre"`
	ISBN       string `json:"isbn"`
	Auteur     string `json:"auteur"`
	Genre      string `json:"genre"`
	Disponible *bool  `json:"disponible"`
}

// CreateBook adds a book to the catalog. Administrators only.
// POST /api/livres
func (cc *CatalogController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Tous les champs sont requis (titre, isbn, auteur, genre)")
		return
	}

	titre := strings.TrimSpace(req.Titre)
	isbn := strings.TrimSpace(req.ISBN)
	auteur := strings.TrimSpace(req.Auteur)
	genre := strings.TrimSpace(req.Genre)
	if titre == "" || isbn == "" || auteur == "" || genre == "" {
		respondBadRequest(c, "Tous les champs sont requis (titre, isbn, auteur, genre)")
		return
	}

	disponible := true
	if req.Disponible != nil {
		disponible = *req.Disponible
	}

	book, err := cc.store.CreateBook(titre, isbn, auteur, genre, disponible)
	if err != nil {
		respondAppError(c, err, "create book")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Livre ajouté avec succès",
		"livreId": book.ID,
	})
}

type updateBookRequest struct {
	Titre      string `json:"titre"`
	Auteur     string `json:"auteur"`
	Genre      string `json:"genre"`
	Disponible *bool  `json:"disponible"`
}

// UpdateBook edits a book. Administrators only.
// PUT /api/livres/:id
func (cc *CatalogController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "du livre")
	if !ok {
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Tous les champs sont requis")
		return
	}
	if req.Titre == "" || req.Auteur == "" || req.Genre == "" || req.Disponible == nil {
		respondBadRequest(c, "Tous les champs sont requis")
		return
	}

	if err := cc.store.UpdateBook(id, req.Titre, req.Auteur, req.Genre, *req.Disponible); err != nil {
		respondAppError(c, err, "update book")
		return
	}

	respondMessage(c, http.StatusOK, "Livre modifié avec succès")
}

// DeleteBook removes a book. Administrators only; refused while the
// book has an open loan.
// DELETE /api/livres/:id
func (cc *CatalogController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "du livre")
	if !ok {
		return
	}

	if err := cc.store.DeleteBook(id); err != nil {
		respondAppError(c, err, "delete book")
		return
	}

	respondMessage(c, http.StatusOK, "Livre supprimé avec succès")
}
