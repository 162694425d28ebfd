package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
)

// parseForm reads a form body. On failure it answers 413 for bodies over
// the size limit and 400 otherwise, and returns false.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, msgBadRequest, http.StatusBadRequest)
		return false
	}
	return true
}

func postInput(f url.Values) domain.PostInput {
	return domain.PostInput{
		Title:   f.Get("title"),
		Body:    f.Get("body"),
		Status:  f.Get("status"),
		TagsCSV: f.Get("tags_csv"),
	}
}

func commentInput(f url.Values) domain.CommentInput {
	return domain.CommentInput{Body: f.Get("body")}
}

func registration(f url.Values) domain.Registration {
	return domain.Registration{
		Username:  f.Get("username"),
		Email:     f.Get("email"),
		Password1: f.Get("password1"),
		Password2: f.Get("password2"),
	}
}

func passwordChange(f url.Values) domain.PasswordChange {
	return domain.PasswordChange{
		OldPassword:  f.Get("old_password"),
		NewPassword1: f.Get("new_password1"),
		NewPassword2: f.Get("new_password2"),
	}
}

// withoutSecrets drops password fields so they are never echoed back into
// a re-rendered form.
func withoutSecrets(f url.Values) url.Values {
	out := url.Values{}
	for k, v := range f {
		switch k {
		case "password", "password1", "password2", "old_password", "new_password1", "new_password2":
			continue
		}
		out[k] = v
	}
	return out
}
