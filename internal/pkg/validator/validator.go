package validator

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by every record.
const DateLayout = "2006-01-02"

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

// Add records a failure for field.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns v as an error, or nil when nothing failed.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap keys messages by field. The first message for a field wins.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v))
	for _, err := range v {
		if _, seen := result[err.Field]; !seen {
			result[err.Field] = err.Message
		}
	}
	return result
}

func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

var digitsRegex = regexp.MustCompile(`^[0-9]+$`)

// IsValidDate parses a YYYY-MM-DD date.
func IsValidDate(s string) (time.Time, bool) {
	date, err := time.Parse(DateLayout, s)
	return date, err == nil
}

// DateRange validates a start/end pair and reports failures against
// startField and endField. The end may equal the start.
func DateRange(errs *ValidationErrors, startField, start, endField, end string) (time.Time, time.Time, bool) {
	from, fromOK := IsValidDate(start)
	if !fromOK {
		errs.Add(startField, startField+" must be in YYYY-MM-DD format")
	}
	to, toOK := IsValidDate(end)
	if !toOK {
		errs.Add(endField, endField+" must be in YYYY-MM-DD format")
	}
	if !fromOK || !toOK {
		return from, to, false
	}
	if to.Before(from) {
		errs.Add(endField, endField+" must not be before "+startField)
		return from, to, false
	}
	return from, to, true
}

// IsValidPhoneNumber accepts an optional leading + and 7 to 15 digits.
// Spaces, dashes, dots and parentheses are ignored.
func IsValidPhoneNumber(phone string) bool {
	phone = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "").Replace(phone)
	phone = strings.TrimPrefix(phone, "+")

	if len(phone) < 7 || len(phone) > 15 {
		return false
	}
	return digitsRegex.MatchString(phone)
}

func OneOf[T comparable](value T, allowed ...T) bool {
	return slices.Contains(allowed, value)
}

func InRange[T int | float64](value, min, max T) bool {
	return value >= min && value <= max
}
