package repository

import (
	"errors"

	"github.com/amirasaad/fintechflow/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors.
// This keeps infrastructure concerns (database errors) within the infrastructure layer.
// Traverses the error chain to find GORM errors and maps them to appropriate domain errors.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}

	currentErr := err
	for currentErr != nil {
		switch {
		case errors.Is(currentErr, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadyExists
		case errors.Is(currentErr, gorm.ErrRecordNotFound):
			return domain.ErrNotFound
		case errors.Is(currentErr, gorm.ErrCheckConstraintViolated):
			return domain.ErrFailedPrecondition
		}
		currentErr = errors.Unwrap(currentErr)
	}

	return err
}

// WrapError wraps a GORM operation and automatically maps errors.
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}

// notFoundAs returns specific when err is a missing-record error, otherwise
// the mapped error.
func notFoundAs(err, specific error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return specific
	}
	return MapGormErrorToDomain(err)
}

// duplicateAs returns specific when err is a unique violation.
func duplicateAs(err, specific error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return specific
	}
	return MapGormErrorToDomain(err)
}
