package postgres

import (
	"errors"

	"gorm.io/gorm"
)

// Standardized database errors. These abstract the underlying GORM error
// values so callers don't need a gorm import to branch on failures.
var (
	// ErrRecordNotFound is returned when a query doesn't find any matching records
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert or update violates a unique constraint
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrInvalidData is returned when the data being saved doesn't meet validation rules
	ErrInvalidData = errors.New("invalid data")
)

// TranslateError converts GORM-specific errors into the standardized errors
// above. Unknown errors are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrInvalidData):
		return ErrInvalidData
	}

	return err
}
