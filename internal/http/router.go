package http

import (
	"github.com/gin-gonic/gin"

	"github.com/kone/bibliotheque/internal/auth"
	"github.com/kone/bibliotheque/internal/database"
)

// RouterConfig carries every dependency the router wires into
// controllers. Optional fields (ReminderQueue) may be nil.
type RouterConfig struct {
	Database *database.Database
	Version  string

	AuthService *auth.Service
	Catalog     CatalogStore
	Circulation CirculationStore
	Reservation ReservationStore
	Feedback    FeedbackStore
	Directory   DirectoryStore
	Overdue     OverdueStore
	Reminders   ReminderQueue
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	guard := auth.NewMiddleware(cfg.AuthService)
	bearer := guard.RequireAuth()
	admin := guard.RequireAdmin()

	health := NewHealthController(cfg.Database, cfg.Version)
	account := NewAccountController(cfg.AuthService)
	catalog := NewCatalogController(cfg.Catalog)
	circulation := NewCirculationController(cfg.Circulation)
	reservation := NewReservationController(cfg.Reservation)
	feedback := NewFeedbackController(cfg.Feedback)
	directory := NewDirectoryController(cfg.Directory)
	notifications := NewNotificationController(cfg.Overdue, cfg.Reminders)

	router.GET("/health", health.Status)

	// Accounts
	router.POST("/signup", account.Signup)
	router.POST("/userlogin", account.Login)

	// Catalog. Reads are public; mutations are for administrators.
	router.GET("/api/livres", catalog.ListBooks)
	router.GET("/api/livres/:id", catalog.GetBook)
	router.POST("/api/livres", bearer, admin, catalog.CreateBook)
	router.PUT("/api/livres/:id", bearer, admin, catalog.UpdateBook)
	router.DELETE("/api/livres/:id", bearer, admin, catalog.DeleteBook)

	// Reservations. Placing one is open to visitors browsing the
	// catalog; managing them is an administrator concern.
	router.POST("/api/livres/:id/reservation", reservation.CreateReservation)
	router.GET("/api/reservations", bearer, admin, reservation.ListReservations)
	router.DELETE("/api/reservations/:id", bearer, admin, reservation.CancelReservation)

	// Loans
	router.POST("/api/emprunts", bearer, circulation.CreateLoan)
	router.GET("/api/emprunts", circulation.ListLoans)
	router.GET("/api/emprunts/:id", circulation.GetLoan)
	router.PUT("/api/emprunts/:id/retour", circulation.ReturnLoan)
	router.DELETE("/api/emprunts/:id", bearer, admin, circulation.DeleteLoan)

	// Ratings and comments
	router.POST("/api/livres/:id/notations", feedback.Rate)
	router.GET("/api/livres/:id/notations", feedback.ListRatings)
	router.POST("/api/livres/:id/commentaires", feedback.AddComment)
	router.GET("/api/livres/:id/commentaires", feedback.ListComments)

	// User administration
	router.GET("/api/utilisateurs", bearer, admin, directory.ListUsers)
	router.GET("/api/utilisateurs/:id", bearer, admin, directory.GetUser)
	router.PUT("/api/utilisateurs/:id", bearer, admin, directory.UpdateUser)
	router.DELETE("/api/utilisateurs/:id", bearer, admin, directory.DeleteUser)

	// Overdue notifications
	router.GET("/api/notifications/retards", bearer, admin, notifications.ListOverdue)
	router.POST("/api/notifications/retards/send", bearer, admin, notifications.SendReminder)

	return router
}
