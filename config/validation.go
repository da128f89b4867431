package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig validates the server, logging and simulate sections.
func ValidateConfig(cfg *Config) error {
	validate := validator.New()

	var messages []string
	for _, section := range []any{cfg.Server, cfg.Logging, cfg.Simulate} {
		err := validate.Struct(section)
		if err == nil {
			continue
		}
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		for _, e := range validationErrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Namespace(),
				e.Tag(),
				e.Value(),
			))
		}
	}

	if len(messages) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalid, strings.Join(messages, "\n  "))
	}
	return nil
}
