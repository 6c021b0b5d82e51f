package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kone/bibliotheque/internal/auth"
	"github.com/kone/bibliotheque/internal/config"
	"github.com/kone/bibliotheque/internal/database"
	"github.com/kone/bibliotheque/internal/database/books"
	"github.com/kone/bibliotheque/internal/database/feedback"
	"github.com/kone/bibliotheque/internal/database/loans"
	"github.com/kone/bibliotheque/internal/database/reservations"
	"github.com/kone/bibliotheque/internal/database/users"
	http_controllers "github.com/kone/bibliotheque/internal/http"
	"github.com/kone/bibliotheque/internal/notifier"
	"github.com/kone/bibliotheque/internal/scheduler"
	"github.com/kone/bibliotheque/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before refusing new connections
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bibliothèque v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Token signing secret. Generated secrets invalidate outstanding
	// tokens on restart, so warn loudly.
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret, err = auth.GenerateSigningSecret()
		if err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Printf("WARNING: Generated JWT secret (set 'JWT_SECRET' to persist sessions across restarts)")
	}

	tokens := auth.NewTokenManager(secret, cfg.Auth.TokenExpiry)
	authService := auth.NewService(db.DB, tokens, cfg.Auth)

	bookRepo := books.NewRepository(db.DB)
	loanRepo := loans.NewRepository(db.DB)
	reservationRepo := reservations.NewRepository(db.DB)
	feedbackRepo := feedback.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)

	mailer := notifier.NewMailer(cfg.SMTP)
	if !mailer.Configured() {
		log.Printf("WARNING: SMTP is not configured. Overdue reminder emails will fail until 'SMTP_HOST' is set.")
	}

	// Task queue for reminder emails
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewOverdueReminderQueue(mailer),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Scheduled overdue scan feeding the reminder queue
	var overdueScan *scheduler.OverdueScanScheduler
	if taskClient != nil {
		overdueScan = scheduler.NewOverdueScanScheduler(loanRepo, taskClient, cfg.Notify)
		if err := overdueScan.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start overdue scan scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:    db,
		Version:     version,
		AuthService: authService,
		Catalog:     bookRepo,
		Circulation: loanRepo,
		Reservation: reservationRepo,
		Feedback:    feedbackRepo,
		Directory:   userRepo,
		Overdue:     loanRepo,
	}
	if taskClient != nil {
		routerCfg.Reminders = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if overdueScan != nil {
			overdueScan.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
