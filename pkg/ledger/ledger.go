package ledger

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"libraryapi/pkg/models"
)

// OpenLoan creates a borrowing for the book inside tx. The availability
// check runs in the same transaction as the insert, and the partial unique
// index on open loans turns any remaining race into a duplicate-key error,
// so two concurrent borrow requests can never both commit.
func OpenLoan(tx *gorm.DB, book *models.Book, user *models.LibraryUser, at time.Time) (*models.Borrowing, error) {
	if book.Deleted {
		return nil, models.NewBookDeletedError(book.SerialNumber)
	}

	var openLoans int64
	if err := tx.Model(&models.Borrowing{}).
		Where("book_id = ? AND return_date IS NULL", book.ID).
		Count(&openLoans).Error; err != nil {
		return nil, errors.Wrap(err, "count open loans")
	}
	if openLoans > 0 {
		return nil, models.NewAlreadyBorrowedError(book.SerialNumber)
	}

	borrowing := models.Borrowing{
		BorrowingUid:  uuid.New().String(),
		BookID:        book.ID,
		LibraryUserID: user.ID,
		BorrowDate:    at,
	}
	if err := tx.Create(&borrowing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewAlreadyBorrowedError(book.SerialNumber)
		}
		return nil, errors.Wrap(err, "create borrowing")
	}
	return &borrowing, nil
}

// CloseLoan stamps the return date on every open loan for the book. More
// than one open loan is an integrity anomaly; it is logged and all of them
// are closed anyway.
func CloseLoan(tx *gorm.DB, book *models.Book, at time.Time) error {
	var open []models.Borrowing
	if err := tx.Where("book_id = ? AND return_date IS NULL", book.ID).
		Order("id").Find(&open).Error; err != nil {
		return errors.Wrap(err, "load open loans")
	}
	if len(open) == 0 {
		return models.NewNotBorrowedError(book.SerialNumber)
	}
	if len(open) > 1 {
		log.Printf("WARNING: book %s has %d open loans, closing all of them", book.SerialNumber, len(open))
	}

	if err := tx.Model(&models.Borrowing{}).
		Where("book_id = ? AND return_date IS NULL", book.ID).
		Update("return_date", at).Error; err != nil {
		return errors.Wrap(err, "close open loans")
	}
	return nil
}
