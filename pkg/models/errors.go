package models

import "fmt"

// DomainError is a request-scoped failure. Codes are transport-agnostic;
// the HTTP layer maps them to status codes.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	ErrCodeInvalidIdentifier    = "INVALID_IDENTIFIER"
	ErrCodeInvalidArgument      = "INVALID_ARGUMENT"
	ErrCodeBookNotFound         = "BOOK_NOT_FOUND"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeBookDeleted          = "BOOK_DELETED"
	ErrCodeAlreadyBorrowed      = "ALREADY_BORROWED"
	ErrCodeNotBorrowed          = "NOT_BORROWED"
	ErrCodeDuplicateSerial      = "DUPLICATE_SERIAL_NUMBER"
	ErrCodeDuplicateLibraryCard = "DUPLICATE_LIBRARY_CARD"
)

func NewInvalidIdentifierError(name string, expectedDigits int) error {
	return &DomainError{
		Code:    ErrCodeInvalidIdentifier,
		Message: fmt.Sprintf("%s must be %d digits long", name, expectedDigits),
	}
}

func NewInvalidArgumentError(name string) error {
	return &DomainError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("param %s must not be empty or whitespace only", name),
	}
}

func NewBookNotFoundError(serialNumber string) error {
	return &DomainError{
		Code:    ErrCodeBookNotFound,
		Message: fmt.Sprintf("book %s not found", serialNumber),
	}
}

func NewUserNotFoundError(libraryCard string) error {
	return &DomainError{
		Code:    ErrCodeUserNotFound,
		Message: fmt.Sprintf("user %s not found", libraryCard),
	}
}

func NewBookDeletedError(serialNumber string) error {
	return &DomainError{
		Code:    ErrCodeBookDeleted,
		Message: fmt.Sprintf("book %s was removed", serialNumber),
	}
}

func NewAlreadyBorrowedError(serialNumber string) error {
	return &DomainError{
		Code:    ErrCodeAlreadyBorrowed,
		Message: fmt.Sprintf("book %s is already borrowed", serialNumber),
	}
}

func NewNotBorrowedError(serialNumber string) error {
	return &DomainError{
		Code:    ErrCodeNotBorrowed,
		Message: fmt.Sprintf("book %s is not currently borrowed", serialNumber),
	}
}

func NewDuplicateSerialError(serialNumber string) error {
	return &DomainError{
		Code:    ErrCodeDuplicateSerial,
		Message: fmt.Sprintf("book with serial number %s already exists", serialNumber),
	}
}

func NewDuplicateLibraryCardError(libraryCard string) error {
	return &DomainError{
		Code:    ErrCodeDuplicateLibraryCard,
		Message: fmt.Sprintf("user with library card %s already exists", libraryCard),
	}
}
