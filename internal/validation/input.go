package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength        = 2
	MaxNameLength        = 100
	MaxServiceTypeLength = 100
	MaxDescriptionLength = 5000
	MaxReasonLength      = 500
	MaxNoteLength        = 2000
	MaxLocationLength    = 200
	MinAmount            = 0.0
	MaxAmount            = 1000000.0
)

// ValidateLength checks a string's rune length against bounds.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateEmail checks basic email format.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("invalid email format")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("email local part must be between 1 and 64 characters")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("email domain must be between 1 and 255 characters")
	}

	localRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !localRegex.MatchString(localPart) {
		return fmt.Errorf("email local part contains invalid characters")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("email domain has an invalid format")
	}

	return nil
}

// ValidateNonEmpty checks that a string is not blank.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateAmount checks a monetary amount.
func ValidateAmount(fieldName string, amount float64) error {
	if amount < MinAmount {
		return fmt.Errorf("%s cannot be negative", fieldName)
	}
	if amount > MaxAmount {
		return fmt.Errorf("%s exceeds the maximum allowed value", fieldName)
	}
	return nil
}

var momoRegex = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// ValidateMomoNumber checks a mobile money account number.
func ValidateMomoNumber(number string) error {
	if !momoRegex.MatchString(number) {
		return fmt.Errorf("mobile money number must be 9 to 15 digits")
	}
	return nil
}
