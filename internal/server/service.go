package server

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/talent-manager/internal/db"
)

var requestValidator = validator.New()

// validateRequest runs the struct's validate tags and reports the first failure as ErrValidation.
func validateRequest(req any) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// conflictFromStore turns the db layer's constraint errors into API conflicts.
func conflictFromStore(err error, message string) error {
	if errors.Is(err, db.ErrDuplicate) || errors.Is(err, db.ErrInUse) {
		return &ErrConflict{Message: message}
	}
	return err
}

func wrapStore(op string, err error) error {
	return fmt.Errorf("failed to %s: %w", op, err)
}
