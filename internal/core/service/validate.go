package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/circuitcraft/academy-admin/internal/core/domain"
)

// validate is shared by all services; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = validator.New()

// fieldMessages maps "Field.tag" (or "*.tag" for any field) to the text the
// admin shell shows for that failure.
type fieldMessages map[string]string

// validateInput checks in against its struct tags before any store access.
// Missing fields are reported ahead of malformed ones, matching the order the
// forms check them in.
func validateInput(in any, msgs fieldMessages, fallback string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.NewValidationError(fallback)
	}

	for _, fe := range ve {
		if fe.Tag() == "required" {
			return domain.NewValidationError(msgs.lookup(fe))
		}
	}
	return domain.NewValidationError(msgs.lookup(ve[0]))
}

func (m fieldMessages) lookup(fe validator.FieldError) string {
	if msg, ok := m[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := m["*."+fe.Tag()]; ok {
		return msg
	}
	return fe.Error()
}
