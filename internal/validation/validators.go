package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// DateKeyLayout is the calendar-day key format. Dates are treated as opaque
// keys; no timezone conversion is applied to them.
const DateKeyLayout = "2006-01-02"

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("datekey", validateDateKey); err != nil {
		panic(fmt.Sprintf("failed to register datekey validator: %v", err))
	}
}

// validateDateKey validates that a string field is a well-formed date key.
func validateDateKey(fl validator.FieldLevel) bool {
	return ValidateDateKey(fl.Field().String()) == nil
}

// ValidateDateKey checks that value is a well-formed YYYY-MM-DD day key.
func ValidateDateKey(value string) error {
	if value == "" {
		return fmt.Errorf("date key is required")
	}
	if _, err := time.Parse(DateKeyLayout, value); err != nil {
		return fmt.Errorf("invalid date key %q (must be YYYY-MM-DD)", value)
	}
	return nil
}

// DateRange expands an inclusive [from, to] day-key range into the ordered
// sequence of day keys it covers. Both bounds must be well-formed and from
// must not be after to.
func DateRange(from, to string) ([]string, error) {
	if err := ValidateDateKey(from); err != nil {
		return nil, err
	}
	if err := ValidateDateKey(to); err != nil {
		return nil, err
	}

	start, _ := time.Parse(DateKeyLayout, from)
	end, _ := time.Parse(DateKeyLayout, to)
	if start.After(end) {
		return nil, fmt.Errorf("invalid date range: %s is after %s", from, to)
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateKeyLayout))
	}
	return days, nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
