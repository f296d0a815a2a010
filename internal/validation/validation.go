// Package validation checks user-supplied profile and login fields.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"niyamtrack/internal/progress"
)

// ValidationError provides field-specific error information
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var dateKeyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidatePhone checks that a phone number has enough digits to identify
// an account. Formatting characters are allowed; only digits count.
func ValidatePhone(phone string) error {
	digits := progress.NormalizePhone(phone)
	if digits == "" {
		return ValidationError{Field: "phoneNumber", Message: "phone number is required"}
	}
	if len(digits) < 7 || len(digits) > 15 {
		return ValidationError{Field: "phoneNumber", Message: "phone number must have 7 to 15 digits"}
	}
	return nil
}

// ValidateDOB checks that a date of birth is in YYYY-MM-DD storage form
func ValidateDOB(dob string) error {
	trimmed := strings.TrimSpace(dob)
	if trimmed == "" {
		return ValidationError{Field: "dob", Message: "date of birth is required"}
	}
	if !dateKeyRegex.MatchString(trimmed) {
		return ValidationError{Field: "dob", Message: "date of birth must be YYYY-MM-DD"}
	}
	if _, err := progress.ParseDateKey(trimmed); err != nil {
		return ValidationError{Field: "dob", Message: "date of birth is not a valid date"}
	}
	return nil
}

// ValidateDateKey checks a progress date key
func ValidateDateKey(dateKey string) error {
	if !dateKeyRegex.MatchString(dateKey) {
		return ValidationError{Field: "dateKey", Message: "date must be YYYY-MM-DD"}
	}
	if _, err := progress.ParseDateKey(dateKey); err != nil {
		return ValidationError{Field: "dateKey", Message: "date is not a valid date"}
	}
	return nil
}

// ValidateRequired checks that a named field is non-blank
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

// ValidateProfile checks every field a registration must carry
func ValidateProfile(firstName, middleName, lastName, dob, hotiNo, phone, address string) error {
	for _, check := range []struct{ field, value string }{
		{"firstName", firstName},
		{"middleName", middleName},
		{"lastName", lastName},
		{"hotiNo", hotiNo},
		{"address", address},
	} {
		if err := ValidateRequired(check.field, check.value); err != nil {
			return err
		}
	}
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	return ValidateDOB(dob)
}
