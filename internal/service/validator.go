package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
)

// DefaultBannedWords is used when configuration supplies none.
var DefaultBannedWords = []string{"spam", "clickbait", "scam"}

// Form messages shown next to the offending field.
const (
	msgRequired         = "This field is required."
	msgTitleTooShort    = "Title must be at least 8 characters."
	msgTitleBanned      = "Title contains disallowed words."
	msgBodyRepeatsTitle = "Body should not start by repeating the title verbatim."
	msgCommentBanned    = "Comment contains disallowed words."
	msgPasswordMismatch = "The two password fields didn't match."
	msgPasswordShort    = "This password is too short. It must contain at least 8 characters."
	msgPasswordLong     = "This password is too long."
	msgPasswordNumeric  = "This password is entirely numeric."
	msgPasswordSimilar  = "The password is too similar to the username."
	msgUsernameInvalid  = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgEmailInvalid     = "Enter a valid email address."
)

const (
	minPasswordLen   = 8
	// bcrypt ignores everything past the 72nd byte.
	maxPasswordBytes = 72
)

var usernamePattern = regexp.MustCompile(`^[\pL\pN@.+_-]+$`)

// Validator normalizes and checks form input before anything is stored.
// It performs no I/O; uniqueness checks that need the database live in the
// services that own those records.
type Validator struct {
	banned  []string
	structs *validator.Validate
}

// NewValidator builds a Validator that rejects titles and comments containing
// any of banned (matched case-insensitively as substrings). Blank entries are
// ignored.
func NewValidator(banned []string) *Validator {
	words := make([]string, 0, len(banned))
	for _, w := range banned {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{banned: words, structs: v}
}

// Post validates a create or edit submission and returns it normalized:
// title and body trimmed, an empty status replaced by draft and TagsCSV
// parsed into Tags.
func (v *Validator) Post(in domain.PostInput) (domain.PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.Tags = ParseTagNames(in.TagsCSV)

	errs := v.structErrors(in)

	titleOK := !errs.Has("title", domain.CodeTooLong)
	switch {
	case !titleOK:
	case utf8.RuneCountInString(in.Title) < domain.MinTitleLen:
		errs = append(errs, domain.FieldError{Field: "title", Code: domain.CodeTitleTooShort, Message: msgTitleTooShort})
		titleOK = false
	case v.containsBanned(in.Title):
		errs = append(errs, domain.FieldError{Field: "title", Code: domain.CodeBannedWord, Message: msgTitleBanned})
		titleOK = false
	}

	if titleOK && in.Body != "" && strings.HasPrefix(strings.ToLower(in.Body), strings.ToLower(in.Title)) {
		errs = append(errs, domain.FieldError{Field: "body", Code: domain.CodeBodyRepeatsTitle, Message: msgBodyRepeatsTitle})
	}

	for _, name := range in.Tags {
		if n := utf8.RuneCountInString(name); n > domain.MaxTagNameLen {
			errs = append(errs, domain.FieldError{
				Field:   "tags_csv",
				Code:    domain.CodeTooLong,
				Message: fmt.Sprintf("Tag %q is too long (%d characters, at most %d).", name, n, domain.MaxTagNameLen),
			})
		}
	}

	if len(errs) > 0 {
		return in, errs
	}
	if in.Status == "" {
		in.Status = string(domain.StatusDraft)
	}
	return in, nil
}

// Comment validates a new comment body and returns it trimmed.
func (v *Validator) Comment(in domain.CommentInput) (domain.CommentInput, error) {
	in.Body = strings.TrimSpace(in.Body)

	errs := v.structErrors(in)
	if len(errs) == 0 && v.containsBanned(in.Body) {
		errs = append(errs, domain.FieldError{Field: "body", Code: domain.CodeBannedWord, Message: msgCommentBanned})
	}
	if len(errs) > 0 {
		return in, errs
	}
	return in, nil
}

// Registration validates a sign-up form. The username is trimmed and
// lower-cased in the returned value.
func (v *Validator) Registration(in domain.Registration) (domain.Registration, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.TrimSpace(in.Email)

	errs := v.structErrors(in)
	if in.Username != "" && !errs.Has("username", domain.CodeTooLong) && !usernamePattern.MatchString(in.Username) {
		errs = append(errs, domain.FieldError{Field: "username", Code: domain.CodeInvalid, Message: msgUsernameInvalid})
	}
	errs = append(errs, passwordErrors("password2", in.Username, in.Password1, in.Password2)...)

	if len(errs) > 0 {
		return in, errs
	}
	return in, nil
}

// PasswordChange checks the new password pair against the same rules as
// registration. Verifying the old password is the caller's job.
func (v *Validator) PasswordChange(username string, in domain.PasswordChange) error {
	errs := v.structErrors(in)
	errs = append(errs, passwordErrors("new_password2", username, in.NewPassword1, in.NewPassword2)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParseTagNames splits comma-separated tag text into names: each token is
// trimmed, empty tokens are dropped and repeats keep their first position.
func ParseTagNames(csv string) []string {
	names := []string{}
	seen := make(map[string]struct{})
	for _, tok := range strings.Split(csv, ",") {
		name := strings.TrimSpace(tok)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func (v *Validator) containsBanned(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range v.banned {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// structErrors runs the struct tag rules and converts failures to field errors.
func (v *Validator) structErrors(s any) domain.ValidationErrors {
	errs := domain.ValidationErrors{}
	err := v.structs.Struct(s)
	if err == nil {
		return errs
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return append(errs, domain.FieldError{Code: domain.CodeInvalid, Message: err.Error()})
	}
	for _, fe := range ves {
		errs = append(errs, fieldError(fe))
	}
	return errs
}

func fieldError(fe validator.FieldError) domain.FieldError {
	out := domain.FieldError{Field: fe.Field()}
	switch fe.Tag() {
	case "required":
		out.Code, out.Message = domain.CodeRequired, msgRequired
	case "max":
		n := 0
		if s, ok := fe.Value().(string); ok {
			n = utf8.RuneCountInString(s)
		}
		out.Code = domain.CodeTooLong
		out.Message = fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), n)
	case "oneof":
		out.Code = domain.CodeInvalid
		out.Message = fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	case "email":
		out.Code, out.Message = domain.CodeInvalid, msgEmailInvalid
	default:
		out.Code, out.Message = domain.CodeInvalid, "Enter a valid value."
	}
	return out
}

// passwordErrors applies the password policy to a new password pair and
// reports problems on field.
func passwordErrors(field, username, p1, p2 string) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if p1 == "" || p2 == "" {
		return errs
	}
	if p1 != p2 {
		return append(errs, domain.FieldError{Field: field, Code: domain.CodeMismatch, Message: msgPasswordMismatch})
	}
	if utf8.RuneCountInString(p1) < minPasswordLen {
		errs = append(errs, domain.FieldError{Field: field, Code: domain.CodePasswordTooShort, Message: msgPasswordShort})
	}
	if len(p1) > maxPasswordBytes {
		errs = append(errs, domain.FieldError{Field: field, Code: domain.CodePasswordTooLong, Message: msgPasswordLong})
	}
	if isAllDigits(p1) {
		errs = append(errs, domain.FieldError{Field: field, Code: domain.CodePasswordNumeric, Message: msgPasswordNumeric})
	}
	if username != "" && strings.EqualFold(p1, username) {
		errs = append(errs, domain.FieldError{Field: field, Code: domain.CodePasswordSimilar, Message: msgPasswordSimilar})
	}
	return errs
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
