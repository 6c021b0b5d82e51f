package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kone/bibliotheque/internal/database/reservations"
	"github.com/kone/bibliotheque/internal/entities"
)

// ReservationStore defines database operations for reservations.
type ReservationStore interface {
	CreateReservation(bookID uint, nom, email, telephone string) (*entities.Reservation, error)
	ListReservations(bookID uint) ([]reservations.ReservationView, error)
	CancelReservation(id uint) error
}

type ReservationController struct {
	store ReservationStore
}

func NewReservationController(store ReservationStore) *ReservationController {
	return &ReservationController{store: store}
}

type createReservationRequest struct {
	Nom       string `json:"nom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}

// CreateReservation places a hold on a book for a visitor. Open to
// unauthenticated callers so the public catalog can use it.
// POST /api/livres/:id/reservation
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	bookID, ok := parseIDParam(c, "du livre")
	if !ok {
		return
	}

	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Nom et email sont requis")
		return
	}
	if strings.TrimSpace(req.Nom) == "" || strings.TrimSpace(req.Email) == "" {
		respondBadRequest(c, "Nom et email sont requis")
		return
	}

	view, err := rc.store.CreateReservation(bookID, strings.TrimSpace(req.Nom), strings.TrimSpace(req.Email), strings.TrimSpace(req.Telephone))
	if err != nil {
		respondAppError(c, err, "create reservation")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "Réservation enregistrée avec succès",
		Data:    view,
	})
}

// ListReservations returns reservations, optionally scoped to one book
// via ?livre_id=. Administrators only.
// GET /api/reservations
func (rc *ReservationController) ListReservations(c *gin.Context) {
	var bookID uint
	if idStr := c.Query("livre_id"); idStr != "" {
		id, valid := parseQueryUint(idStr)
		if !valid {
			respondBadRequest(c, "L'ID du livre doit être un nombre positif")
			return
		}
		bookID = id
	}

	views, err := rc.store.ListReservations(bookID)
	if err != nil {
		respondAppError(c, err, "list reservations")
		return
	}

	respondList(c, "Réservations récupérées avec succès", views, len(views))
}

// CancelReservation removes a hold and recomputes the book's
// availability. Administrators only.
// DELETE /api/reservations/:id
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, ok := parseIDParam(c, "de la réservation")
	if !ok {
		return
	}

	if err := rc.store.CancelReservation(id); err != nil {
		respondAppError(c, err, "cancel reservation")
		return
	}

	respondMessage(c, http.StatusOK, "Réservation annulée avec succès")
}
