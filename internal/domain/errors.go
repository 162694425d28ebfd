package domain

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. title too short, banned word in a comment).
// Handlers should map this to HTTP 422 and re-render the submitted form.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the acting user lacks the capability a
// workflow step requires. The request is terminal; nothing was changed.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthenticated is returned when an operation needs a signed-in user.
var ErrUnauthenticated = errors.New("authentication required")

// ErrInvalidTransition is returned when a review action targets a post that
// is not in the state the action starts from.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConflict is returned by repos when a unique constraint is violated.
var ErrConflict = errors.New("conflict")

// ValidationCode identifies which rule a field failed.
type ValidationCode string

const (
	CodeRequired         ValidationCode = "required"
	CodeTooLong          ValidationCode = "too_long"
	CodeInvalid          ValidationCode = "invalid"
	CodeTitleTooShort    ValidationCode = "title_too_short"
	CodeBannedWord       ValidationCode = "banned_word"
	CodeBodyRepeatsTitle ValidationCode = "body_repeats_title"
	CodeMismatch         ValidationCode = "mismatch"
	CodeTaken            ValidationCode = "taken"

	CodePasswordTooShort  ValidationCode = "password_too_short"
	CodePasswordTooLong   ValidationCode = "password_too_long"
	CodePasswordNumeric   ValidationCode = "password_entirely_numeric"
	CodePasswordSimilar   ValidationCode = "password_too_similar"
	CodePasswordIncorrect ValidationCode = "password_incorrect"
	CodeBadCredentials    ValidationCode = "invalid_login"
)

// FieldError is a single user-correctable problem with one form field.
// Field is empty for errors that apply to the form as a whole.
type FieldError struct {
	Field   string
	Code    ValidationCode
	Message string
}

// ValidationErrors collects every field failure found in one submission.
// It unwraps to ErrValidation so callers can keep using errors.Is.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		if fe.Field == "" {
			msgs[i] = fe.Message
			continue
		}
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error { return ErrValidation }

// Has reports whether any error was recorded for field with the given code.
func (v ValidationErrors) Has(field string, code ValidationCode) bool {
	for _, fe := range v {
		if fe.Field == field && fe.Code == code {
			return true
		}
	}
	return false
}

// ByField groups messages by field name for template rendering.
// Form-wide messages are stored under the "__all__" key.
func (v ValidationErrors) ByField() map[string][]string {
	out := make(map[string][]string, len(v))
	for _, fe := range v {
		key := fe.Field
		if key == "" {
			key = "__all__"
		}
		out[key] = append(out[key], fe.Message)
	}
	return out
}

// AsValidationErrors extracts field errors from err. It returns nil when err
// does not carry any.
func AsValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// ForbiddenError carries the message shown to a user who attempted a step
// they lack the capability for. It unwraps to ErrForbidden.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return ErrForbidden.Error() + ": " + e.Message }

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// Forbidden builds a ForbiddenError with a user-facing message.
func Forbidden(message string) error {
	return &ForbiddenError{Message: message}
}

// UserMessage returns the user-facing text of a forbidden or invalid
// transition error, or fallback when err carries none.
func UserMessage(err error, fallback string) string {
	var fe *ForbiddenError
	if errors.As(err, &fe) {
		return fe.Message
	}
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Message
	}
	return fallback
}
