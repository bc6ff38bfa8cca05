package server

import (
	"fmt"
	"strings"
	"sync"

	"remote-viewing/internal/viewing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxNameLength  = 100
	maxGuessLength = 2000
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("name", func(fl validator.FieldLevel) bool {
			return validateName(fl.Field().String()) == nil
		})
		_ = engine.RegisterValidation("guess", func(fl validator.FieldLevel) bool {
			return validateGuess(fl.Field().String()) == nil
		})
		_ = engine.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
			value := fl.Field().Int()
			return value >= viewing.MinRating && value <= viewing.MaxRating
		})
	})
}

// validateName only bounds the length. Blank names are rejected by the manager
// so the message matches the one shown for a missing field.
func validateName(name string) error {
	if len(strings.TrimSpace(name)) > maxNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxNameLength)
	}
	return nil
}

func validateGuess(text string) error {
	if len(strings.TrimSpace(text)) > maxGuessLength {
		return fmt.Errorf("guess must be %d characters or fewer", maxGuessLength)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}
