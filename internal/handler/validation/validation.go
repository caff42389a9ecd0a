// Package validation registers the custom binding tags used by request DTOs.
package validation

import (
	"sync"

	"smartpark/internal/domain/booking"
	"smartpark/internal/pkg/errs"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	once        sync.Once
	registerErr error
)

// Register adds the plate and phone tags to gin's validator. Safe to call more than once.
func Register() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errs.New("gin binding engine is not go-playground/validator")
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("plate", validatePlate); err != nil {
		return errs.Wrap(err, "failed to register plate validator")
	}
	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		return errs.Wrap(err, "failed to register phone validator")
	}
	return nil
}

func validatePlate(fl validator.FieldLevel) bool {
	return booking.IsValidPlate(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return booking.IsValidPhone(fl.Field().String())
}
