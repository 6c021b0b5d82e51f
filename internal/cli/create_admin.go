package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/kone/bibliotheque/internal/auth"
	"github.com/kone/bibliotheque/internal/config"
	"github.com/kone/bibliotheque/internal/database"
)

// CreateAdminCommand provisions an administrator account from the
// command line, since the signup endpoint only creates readers.
type CreateAdminCommand struct {
	Nom          string
	Prenom       string
	Email        string
	Password     string
	DatabasePath string
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Nom, "nom", "", "Administrator last name (required)")
	fs.StringVar(&cmd.Prenom, "prenom", "", "Administrator first name (required)")
	fs.StringVar(&cmd.Email, "email", "", "Administrator email (required)")
	fs.StringVar(&cmd.Password, "password", "", "Administrator password (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -nom Kone -prenom Awa -email admin@bibliotheque.fr -password secret\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Nom == "" || cmd.Prenom == "" || cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("nom, prenom, email and password are required")
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	tokens := auth.NewTokenManager("create-admin", cfg.Auth.TokenExpiry)
	service := auth.NewService(db.DB, tokens, cfg.Auth)

	user, err := service.CreateAdmin(cmd.Nom, cmd.Prenom, cmd.Email, cmd.Password)
	if err != nil {
		return err
	}

	fmt.Printf("Administrator account created: %s %s <%s> (id %d)\n", user.Prenom, user.Nom, user.Email, user.ID)
	return nil
}
