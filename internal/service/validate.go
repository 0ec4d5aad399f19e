package service

import (
	"strings"
	"unicode/utf8"

	"bulletin_board/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateUsername(username string) *model.FieldError {
	switch {
	case strings.TrimSpace(username) == "":
		return &model.FieldError{Field: "username", Message: "username is required"}
	case utf8.RuneCountInString(username) > model.MaxUsernameLength:
		return &model.FieldError{Field: "username", Message: "username must be at most 64 characters"}
	}
	return nil
}

func validateEmail(email string) *model.FieldError {
	switch {
	case utf8.RuneCountInString(email) > model.MaxEmailLength:
		return &model.FieldError{Field: "email", Message: "email must be at most 120 characters"}
	case validate.Var(email, "email") != nil:
		return &model.FieldError{Field: "email", Message: "email is not a valid address"}
	}
	return nil
}

// normalizeEmail turns a blank optional email into nil
func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
