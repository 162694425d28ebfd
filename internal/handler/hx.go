package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/view"
)

// search handles GET /hx/search/?q= and returns the matching table rows.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.fragment(w, r, http.StatusOK, view.FragmentPostRows, view.Data{Posts: posts})
}

// tagOptions handles GET /hx/tags/?q= and returns datalist options for tags
// starting with q.
func (s *Server) tagOptions(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.fragment(w, r, http.StatusOK, view.FragmentTagOptions, view.Data{Tags: tags})
}

// inlineForm handles GET /hx/posts/{id}/inline/ and swaps a table row for
// its edit form.
func (s *Server) inlineForm(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := postIDParam(w, r)
	if !ok {
		return
	}
	post, err := s.posts.GetForEditByID(r.Context(), user, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.fragment(w, r, http.StatusOK, view.FragmentInlineForm, view.Data{Post: post, Form: view.PostForm(post)})
}

// inlineUpdate handles POST /hx/posts/{id}/inline/. A saved edit returns the
// refreshed row; a rejected one returns the form again with its messages.
// Both are 200 so htmx performs the swap.
func (s *Server) inlineUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := postIDParam(w, r)
	if !ok {
		return
	}
	post, err := s.posts.GetForEditByID(r.Context(), user, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !parseForm(w, r) {
		return
	}

	updated, err := s.posts.UpdateByID(r.Context(), user, id, postInput(r.PostForm))
	switch {
	case err == nil:
		s.fragment(w, r, http.StatusOK, view.FragmentPostRow, view.Data{Post: updated})
	case isFormError(err):
		s.fragment(w, r, http.StatusOK, view.FragmentInlineForm, view.Data{Post: post, Form: view.NewForm(r.PostForm, err)})
	case errors.Is(err, domain.ErrForbidden):
		form := view.NewForm(r.PostForm, nil)
		form.Errors = map[string][]string{"__all__": {domain.UserMessage(err, msgNotAllowed)}}
		s.fragment(w, r, http.StatusOK, view.FragmentInlineForm, view.Data{Post: post, Form: form})
	default:
		s.fail(w, r, err)
	}
}

// postIDParam binds the {id} path segment. Anything but a UUID is a 404.
func postIDParam(w http.ResponseWriter, r *http.Request) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		http.Error(w, msgNotFound, http.StatusNotFound)
		return id, false
	}
	return id, true
}
