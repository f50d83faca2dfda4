package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("date range unavailable for this property")
	ErrStorage    = errors.New("storage unavailable")
)

// storageErr classifies an error coming back from the repo. Missing rows
// become ErrNotFound, everything else is a transient storage failure.
func storageErr(what string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	default:
		return fmt.Errorf("%w: %s: %w", ErrStorage, what, err)
	}
}

// domainErr lets service sentinels raised inside a transaction pass through
// unchanged and classifies the rest.
func domainErr(what string, err error) error {
	for _, sentinel := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrConflict, ErrStorage} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return storageErr(what, err)
}
