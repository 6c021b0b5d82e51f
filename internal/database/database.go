package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kone/bibliotheque/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Loan{},
		&entities.Reservation{},
		&entities.Rating{},
		&entities.Comment{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// BookAvailable reports whether a book can be borrowed or reserved right
// now. Availability is derived from open loans and active reservations
// rather than read off the stored flag, so it cannot drift under partial
// failure. The stored flag still participates: an administrator may pull
// a book from circulation by editing it to disponible=false.
func BookAvailable(tx *gorm.DB, book *entities.Book) (bool, error) {
	if !book.Disponible {
		return false, nil
	}

	var openLoans int64
	err := tx.Model(&entities.Loan{}).
		Where("id_livre = ? AND statut = ?", book.ID, entities.LoanStatusEnCours).
		Count(&openLoans).Error
	if err != nil {
		return false, err
	}
	if openLoans > 0 {
		return false, nil
	}

	var reservations int64
	err = tx.Model(&entities.Reservation{}).
		Where("livre_id = ?", book.ID).
		Count(&reservations).Error
	if err != nil {
		return false, err
	}

	return reservations == 0, nil
}

// RecomputeAvailability rewrites the stored flag from the derived state.
// Called after every mutation that releases a hold or a loan.
func RecomputeAvailability(tx *gorm.DB, bookID uint) error {
	var openLoans int64
	err := tx.Model(&entities.Loan{}).
		Where("id_livre = ? AND statut = ?", bookID, entities.LoanStatusEnCours).
		Count(&openLoans).Error
	if err != nil {
		return err
	}

	var reservations int64
	err = tx.Model(&entities.Reservation{}).
		Where("livre_id = ?", bookID).
		Count(&reservations).Error
	if err != nil {
		return err
	}

	available := openLoans == 0 && reservations == 0
	return tx.Model(&entities.Book{}).Where("id = ?", bookID).
		Update("disponible", available).Error
}
