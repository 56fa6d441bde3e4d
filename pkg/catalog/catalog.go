package catalog

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"libraryapi/pkg/ledger"
	"libraryapi/pkg/models"
	"libraryapi/pkg/validator"
)

// Service orchestrates catalog operations against the store. It holds no
// state of its own between calls; every mutating operation runs in a single
// transaction.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListBooks returns representations of all non-deleted books.
func (s *Service) ListBooks() ([]models.BookRepresentation, error) {
	var books []models.Book
	err := s.db.Where("deleted = ?", false).
		Preload("Author").
		Preload("Borrowings", "return_date IS NULL").
		Preload("Borrowings.LibraryUser").
		Order("id").
		Find(&books).Error
	if err != nil {
		return nil, errors.Wrap(err, "list books")
	}

	representations := make([]models.BookRepresentation, len(books))
	for i := range books {
		representations[i] = books[i].Representation()
	}
	return representations, nil
}

// GetBook returns the representation of a single non-deleted book.
func (s *Service) GetBook(serialNumber string) (*models.BookRepresentation, error) {
	if err := validator.FixedDigits("serial_number", serialNumber, validator.SerialNumberDigits); err != nil {
		return nil, err
	}

	var book models.Book
	err := s.db.Where("serial_number = ?", serialNumber).
		Preload("Author").
		Preload("Borrowings", "return_date IS NULL").
		Preload("Borrowings.LibraryUser").
		First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewBookNotFoundError(serialNumber)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get book")
	}
	if book.Deleted {
		return nil, models.NewBookDeletedError(serialNumber)
	}

	rep := book.Representation()
	return &rep, nil
}

// AddBook creates a book, reusing the author when an exact (first, last)
// name match already exists. A serial number collision is reported as a
// duplicate, relying on the store's unique index rather than a
// read-then-write check.
func (s *Service) AddBook(serialNumber, title, authorFirst, authorLast string) (*models.BookRepresentation, error) {
	if err := validator.FixedDigits("serial_number", serialNumber, validator.SerialNumberDigits); err != nil {
		return nil, err
	}
	title, err := validator.StripParam("title", title)
	if err != nil {
		return nil, err
	}
	authorFirst, err = validator.StripParam("author_firstname", authorFirst)
	if err != nil {
		return nil, err
	}
	authorLast, err = validator.StripParam("author_lastname", authorLast)
	if err != nil {
		return nil, err
	}

	var book models.Book
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var author models.Author
		if err := tx.Where(models.Author{FirstName: authorFirst, LastName: authorLast}).
			FirstOrCreate(&author).Error; err != nil {
			return errors.Wrap(err, "find or create author")
		}

		book = models.Book{
			SerialNumber: serialNumber,
			Title:        title,
			AuthorID:     author.ID,
			Author:       author,
		}
		if err := tx.Create(&book).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewDuplicateSerialError(serialNumber)
			}
			return errors.Wrap(err, "create book")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rep := book.Representation()
	return &rep, nil
}

// DeleteBook marks a book as deleted. The transition is one-way: an already
// deleted book reports not found, same as a missing one.
func (s *Service) DeleteBook(serialNumber string) error {
	if err := validator.FixedDigits("serial_number", serialNumber, validator.SerialNumberDigits); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var book models.Book
		err := tx.Where("serial_number = ? AND deleted = ?", serialNumber, false).First(&book).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewBookNotFoundError(serialNumber)
		}
		if err != nil {
			return errors.Wrap(err, "find book")
		}

		book.Deleted = true
		if err := tx.Save(&book).Error; err != nil {
			return errors.Wrap(err, "mark book deleted")
		}
		return nil
	})
}

// BorrowBook opens a loan for the user identified by libraryCard.
func (s *Service) BorrowBook(serialNumber, libraryCard string) (*models.Borrowing, error) {
	if err := validator.FixedDigits("serial_number", serialNumber, validator.SerialNumberDigits); err != nil {
		return nil, err
	}
	if err := validator.FixedDigits("library_card", libraryCard, validator.SerialNumberDigits); err != nil {
		return nil, err
	}

	var borrowing *models.Borrowing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		book, err := findBook(tx, serialNumber)
		if err != nil {
			return err
		}

		var user models.LibraryUser
		err = tx.Where("library_card = ?", libraryCard).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewUserNotFoundError(libraryCard)
		}
		if err != nil {
			return errors.Wrap(err, "find user")
		}

		borrowing, err = ledger.OpenLoan(tx, book, &user, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return borrowing, nil
}

// ReturnBook closes the open loan(s) for the book.
func (s *Service) ReturnBook(serialNumber string) error {
	if err := validator.FixedDigits("serial_number", serialNumber, validator.SerialNumberDigits); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		book, err := findBook(tx, serialNumber)
		if err != nil {
			return err
		}
		return ledger.CloseLoan(tx, book, time.Now())
	})
}

// AddUser registers a library user. Card collisions are reported as
// duplicates via the store's unique index.
func (s *Service) AddUser(libraryCard, firstName, lastName string) (*models.UserRepresentation, error) {
	if err := validator.FixedDigits("library_card", libraryCard, validator.SerialNumberDigits); err != nil {
		return nil, err
	}
	firstName, err := validator.StripParam("firstname", firstName)
	if err != nil {
		return nil, err
	}
	lastName, err = validator.StripParam("lastname", lastName)
	if err != nil {
		return nil, err
	}

	user := models.LibraryUser{
		LibraryCard: libraryCard,
		FirstName:   firstName,
		LastName:    lastName,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewDuplicateLibraryCardError(libraryCard)
		}
		return nil, errors.Wrap(err, "create user")
	}

	rep := user.Representation()
	return &rep, nil
}

// ListUsers returns representations of all registered users.
func (s *Service) ListUsers() ([]models.UserRepresentation, error) {
	var users []models.LibraryUser
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}

	representations := make([]models.UserRepresentation, len(users))
	for i := range users {
		representations[i] = users[i].Representation()
	}
	return representations, nil
}

func findBook(tx *gorm.DB, serialNumber string) (*models.Book, error) {
	var book models.Book
	err := tx.Where("serial_number = ?", serialNumber).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewBookNotFoundError(serialNumber)
	}
	if err != nil {
		return nil, errors.Wrap(err, "find book")
	}
	if book.Deleted {
		return nil, models.NewBookDeletedError(serialNumber)
	}
	return &book, nil
}
