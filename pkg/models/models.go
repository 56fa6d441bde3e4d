package models

import (
	"fmt"
	"time"
)

type Author struct {
	ID        uint   `gorm:"primaryKey"`
	FirstName string `gorm:"size:80;not null;index:idx_author_name"`
	LastName  string `gorm:"size:80;not null;index:idx_author_name"`
	Books     []Book `gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Author) FullName() string {
	return fmt.Sprintf("%s %s", a.FirstName, a.LastName)
}

type Book struct {
	ID           uint   `gorm:"primaryKey"`
	SerialNumber string `gorm:"size:6;uniqueIndex;not null"`
	Title        string `gorm:"size:100;not null"`
	AuthorID     uint   `gorm:"not null"`
	Deleted      bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Author     Author      `gorm:"foreignKey:AuthorID"`
	Borrowings []Borrowing `gorm:"foreignKey:BookID"`
}

type LibraryUser struct {
	ID          uint   `gorm:"primaryKey"`
	LibraryCard string `gorm:"size:6;uniqueIndex;not null"`
	FirstName   string `gorm:"size:80;not null"`
	LastName    string `gorm:"size:80;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Borrowings []Borrowing `gorm:"foreignKey:LibraryUserID"`
}

// Borrowing with a null ReturnDate is an open loan. The partial unique
// index keeps the store from ever holding two open loans for one book.
type Borrowing struct {
	ID            uint   `gorm:"primaryKey"`
	BorrowingUid  string `gorm:"type:uuid;uniqueIndex;not null"`
	BookID        uint   `gorm:"not null;uniqueIndex:uniq_open_loan_per_book,where:return_date IS NULL"`
	LibraryUserID uint   `gorm:"not null"`
	BorrowDate    time.Time
	ReturnDate    *time.Time
	CreatedAt     time.Time

	Book        Book        `gorm:"foreignKey:BookID"`
	LibraryUser LibraryUser `gorm:"foreignKey:LibraryUserID"`
}

func (b *Borrowing) IsOpen() bool {
	return b.ReturnDate == nil
}

// IsAvailable derives availability from the loaded borrowings: a book is
// available iff none of them is still open.
func (b *Book) IsAvailable() bool {
	for i := range b.Borrowings {
		if b.Borrowings[i].IsOpen() {
			return false
		}
	}
	return true
}

// OpenBorrowings returns every loaded borrowing that has not been returned.
// Under correct operation there is at most one.
func (b *Book) OpenBorrowings() []*Borrowing {
	var open []*Borrowing
	for i := range b.Borrowings {
		if b.Borrowings[i].IsOpen() {
			open = append(open, &b.Borrowings[i])
		}
	}
	return open
}

// ActiveBorrowing returns the open borrowing with the lowest ID, or nil when
// the book is available. Picking the lowest ID keeps the choice deterministic
// even if the single-open-loan invariant was violated.
func (b *Book) ActiveBorrowing() *Borrowing {
	var active *Borrowing
	for _, borrowing := range b.OpenBorrowings() {
		if active == nil || borrowing.ID < active.ID {
			active = borrowing
		}
	}
	return active
}

type BookRepresentation struct {
	SerialNumber string     `json:"serial_number"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	Available    bool       `json:"available"`
	BorrowedBy   string     `json:"borrowed_by,omitempty"`
	BorrowDate   *time.Time `json:"borrow_date,omitempty"`
}

type UserRepresentation struct {
	LibraryCard string `json:"library_card"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

// Representation expects Author and the open Borrowings (with their users)
// to be preloaded.
func (b *Book) Representation() BookRepresentation {
	rep := BookRepresentation{
		SerialNumber: b.SerialNumber,
		Title:        b.Title,
		Author:       b.Author.FullName(),
		Available:    b.IsAvailable(),
	}
	if active := b.ActiveBorrowing(); active != nil {
		rep.BorrowedBy = active.LibraryUser.FullName()
		borrowDate := active.BorrowDate
		rep.BorrowDate = &borrowDate
	}
	return rep
}

func (u *LibraryUser) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

func (u *LibraryUser) Representation() UserRepresentation {
	return UserRepresentation{
		LibraryCard: u.LibraryCard,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
	}
}
