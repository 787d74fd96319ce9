package validator

import (
	"log"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules installs the domain validation tags. Registration
// failures abort startup.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-departement", validateDepartement)
}

// validateDepartement accepts metropolitan codes (01..95, including the
// Corsican 2A/2B) and the three-digit overseas codes. Empty values pass,
// 'required' handles those.
func validateDepartement(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if len(value) < 2 || len(value) > 3 {
		return false
	}
	if value == "2A" || value == "2B" {
		return true
	}
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
