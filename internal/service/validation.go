package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/apperr"
)

// fieldErrors accumulates per-field failures so a request reports all of
// them at once.
type fieldErrors []apperr.FieldError

func (f *fieldErrors) add(field, message string, value any) {
	*f = append(*f, apperr.FieldError{Field: field, Message: message, Value: value})
}

func (f *fieldErrors) minLen(field, value string, n int) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		f.add(field, "Invalid value", value)
	}
}

func (f *fieldErrors) email(field, value string) bool {
	if !validEmail(value) {
		f.add(field, "Please enter a valid email", value)
		return false
	}
	return true
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperr.Validation(f)
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
