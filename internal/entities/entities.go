package entities

import (
	"time"
)

// UserRole discriminates students from administrators, using the same
// numeric encoding the frontend expects (0 = student, 1 = admin).
type UserRole int

const (
	UserRoleEtudiant UserRole = 0
	UserRoleAdmin    UserRole = 1
)

// LoanStatus is the persisted loan state. LoanStatusEnRetard is never
// stored: it is a read-time classification of an open loan past its due
// date.
type LoanStatus string

const (
	LoanStatusEnCours  LoanStatus = "en_cours"
	LoanStatusRetourne LoanStatus = "retourne"
	LoanStatusEnRetard LoanStatus = "en_retard"
)

type User struct {
	ID           uint      `gorm:"primaryKey;column:id_users" json:"id_users"`
	Nom          string    `gorm:"size:100" json:"nom"`
	Prenom       string    `gorm:"size:100" json:"prenom"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"column:password;size:100" json:"-"`
	Role         UserRole  `gorm:"default:0" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Book struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Titre      string    `gorm:"index;size:512" json:"titre"`
	ISBN       string    `gorm:"uniqueIndex;size:20" json:"isbn"`
	Auteur     string    `gorm:"index;size:256" json:"auteur"`
	Genre      string    `gorm:"size:100" json:"genre"`
	Disponible bool      `gorm:"default:true" json:"disponible"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Loan struct {
	ID                  uint       `gorm:"primaryKey;column:id_emprunt" json:"id_emprunt"`
	UserID              uint       `gorm:"column:id_users;index" json:"id_users"`
	BookID              uint       `gorm:"column:id_livre;index" json:"id_livre"`
	DateEmprunt         time.Time  `json:"date_emprunt"`
	DateRetourPrevue    time.Time  `json:"date_retour_prevue"`
	DateRetourEffective *time.Time `json:"date_retour_effective,omitempty"`
	Statut              LoanStatus `gorm:"size:20;default:'en_cours'" json:"statut"`
	User                User       `gorm:"foreignKey:UserID" json:"-"`
	Book                Book       `gorm:"foreignKey:BookID" json:"-"`
}

// Reservation is a hold placed on a book by a visitor. It carries no due
// date; it blocks borrowing until cancelled.
type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BookID          uint      `gorm:"column:livre_id;index;uniqueIndex:idx_reservation_book_email" json:"livre_id"`
	Nom             string    `gorm:"size:255" json:"nom"`
	Email           string    `gorm:"size:255;uniqueIndex:idx_reservation_book_email" json:"email"`
	Telephone       string    `gorm:"size:50" json:"telephone"`
	DateReservation time.Time `json:"date_reservation"`
	Book            Book      `gorm:"foreignKey:BookID" json:"-"`
}

// Rating holds a single 1-5 star rating. One rating per (book, rater
// name); a second submission overwrites the first.
type Rating struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BookID         uint      `gorm:"column:livre_id;index;uniqueIndex:idx_notation_book_user" json:"livre_id"`
	Note           int       `json:"note"`
	UtilisateurNom string    `gorm:"column:utilisateur_nom;size:255;uniqueIndex:idx_notation_book_user" json:"utilisateur_nom"`
	DateNotation   time.Time `json:"date_notation"`
	Book           Book      `gorm:"foreignKey:BookID" json:"-"`
}

type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BookID       uint      `gorm:"column:livre_id;index" json:"livre_id"`
	Contenu      string    `gorm:"type:text" json:"contenu"`
	Auteur       string    `gorm:"size:255" json:"auteur"`
	DateCreation time.Time `json:"date_creation"`
	Book         Book      `gorm:"foreignKey:BookID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "livres"
}

func (Loan) TableName() string {
	return "emprunts"
}

func (Reservation) TableName() string {
	return "reservations"
}

func (Rating) TableName() string {
	return "notations"
}

func (Comment) TableName() string {
	return "commentaires"
}
