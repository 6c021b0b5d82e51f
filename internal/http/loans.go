package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kone/bibliotheque/internal/database/loans"
)

// CirculationStore defines database operations for the loan lifecycle.
type CirculationStore interface {
	CreateLoan(userID, bookID uint, dureeJours int) (*loans.LoanView, error)
	ReturnLoan(loanID uint, dateRetourEffective time.Time) (*loans.LoanView, error)
	ListLoans(filter loans.Filter) ([]loans.LoanView, error)
	GetLoan(id uint) (*loans.LoanView, error)
	DeleteLoan(id uint) error
}

type CirculationController struct {
	store CirculationStore
}

func NewCirculationController(store CirculationStore) *CirculationController {
	return &CirculationController{store: store}
}

type createLoanRequest struct {
	IDUsers    int `json:"id_users"`
	IDLivre    int `json:"id_livre"`
	DureeJours int `json:"duree_jours"`
}

// CreateLoan opens a loan. Requires a valid bearer token.
// POST /api/emprunts
func (cc *CirculationController) CreateLoan(c *gin.Context) {
	var req createLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "L'ID utilisateur et l'ID livre sont requis")
		return
	}
	if req.IDUsers <= 0 || req.IDLivre <= 0 {
		respondBadRequest(c, "Les IDs doivent être des nombres positifs")
		return
	}

	view, err := cc.store.CreateLoan(uint(req.IDUsers), uint(req.IDLivre), req.DureeJours)
	if err != nil {
		respondAppError(c, err, "create loan")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Emprunt créé avec succès",
		"data":      view,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type returnLoanRequest struct {
	DateRetourEffective string `json:"date_retour_effective"`
}

// ReturnLoan closes an open loan. The return date defaults to now; the
// frontend may send an explicit date.
// PUT /api/emprunts/:id/retour
func (cc *CirculationController) ReturnLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "de l'emprunt")
	if !ok {
		return
	}

	returnedAt := time.Now()
	var req returnLoanRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.DateRetourEffective != "" {
		parsed, valid := parseDate(req.DateRetourEffective)
		if !valid {
			respondBadRequest(c, "Date de retour invalide")
			return
		}
		returnedAt = parsed
	}

	view, err := cc.store.ReturnLoan(id, returnedAt)
	if err != nil {
		respondAppError(c, err, "return loan")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Retour effectué avec succès",
		"data":      view,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ListLoans returns loans, filterable by statut and id_users.
// GET /api/emprunts?statut=&id_users=
func (cc *CirculationController) ListLoans(c *gin.Context) {
	filter := loans.Filter{Statut: c.Query("statut")}

	if idStr := c.Query("id_users"); idStr != "" {
		id, _ := parseQueryUint(idStr)
		if id == 0 {
			respondBadRequest(c, "L'ID utilisateur doit être un nombre positif")
			return
		}
		filter.UserID = id
	}

	views, err := cc.store.ListLoans(filter)
	if err != nil {
		respondAppError(c, err, "list loans")
		return
	}

	respondList(c, "Emprunts récupérés avec succès", views, len(views))
}

// GetLoan returns a single loan.
// GET /api/emprunts/:id
func (cc *CirculationController) GetLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "de l'emprunt")
	if !ok {
		return
	}

	view, err := cc.store.GetLoan(id)
	if err != nil {
		respondAppError(c, err, "get loan")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "Emprunt récupéré avec succès",
		Data:    view,
	})
}

// DeleteLoan removes a loan. Administrators only.
// DELETE /api/emprunts/:id
func (cc *CirculationController) DeleteLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "de l'emprunt")
	if !ok {
		return
	}

	if err := cc.store.DeleteLoan(id); err != nil {
		respondAppError(c, err, "delete loan")
		return
	}

	respondMessage(c, http.StatusOK, "Emprunt supprimé avec succès")
}
