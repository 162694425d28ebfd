package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/session"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/view"
)

// Flash texts for post actions.
const (
	msgDraftCreated  = "Draft created!"
	msgPostUpdated   = "Post updated."
	msgPostDeleted   = "Post deleted."
	msgCommentAdded  = "Comment added!"
	msgCreateInvalid = "There were errors creating the post. Please review the form."
	msgUpdateInvalid = "There were errors updating the post. Please review the form."
	msgUnknownAction = "Unknown review action."
	msgPublishedFmt  = "Published '%s'."
	msgSentBackFmt   = "Sent '%s' back to draft."
)

// listPosts handles GET /. The optional ?page= selects a page of ten posts,
// newest first. A malformed or out-of-range page is a 404.
func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	var page *int
	err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page)
	if err != nil || (page != nil && *page < 1) {
		http.Error(w, msgNotFound, http.StatusNotFound)
		return
	}

	result, err := s.posts.List(r.Context(), domain.NewPaginationParams(page, nil))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, view.PagePostList, view.Data{Posts: result.Items, Pager: &result})
}

// newPost handles GET /posts/new/.
func (s *Server) newPost(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	form := view.Form{Values: url.Values{"status": {string(domain.StatusDraft)}}}
	s.page(w, r, http.StatusOK, view.PagePostForm, view.Data{Title: "New post", Form: form})
}

// createPost handles POST /posts/new/.
func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok || !parseForm(w, r) {
		return
	}

	post, err := s.posts.Create(r.Context(), user, postInput(r.PostForm))
	switch {
	case err == nil:
		s.flash(w, r, session.LevelSuccess, msgDraftCreated)
		s.redirect(w, r, post.URL())
	case isFormError(err):
		s.page(w, r, http.StatusUnprocessableEntity, view.PagePostForm, view.Data{
			Title:   "New post",
			Form:    view.NewForm(r.PostForm, err),
			Flashes: errorFlash(msgCreateInvalid),
		})
	case errors.Is(err, domain.ErrForbidden):
		s.page(w, r, http.StatusForbidden, view.PagePostForm, view.Data{
			Title:   "New post",
			Form:    view.NewForm(r.PostForm, nil),
			Flashes: errorFlash(domain.UserMessage(err, msgNotAllowed)),
		})
	default:
		s.fail(w, r, err)
	}
}

// postDetail handles GET /posts/{slug}/.
func (s *Server) postDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, view.PagePostDetail, view.Data{
		Title:    detail.Post.Title,
		Post:     detail.Post,
		Comments: detail.Comments,
	})
}

// addComment handles POST /posts/{slug}/. Anonymous visitors are sent to
// the login page.
func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok || !parseForm(w, r) {
		return
	}
	postSlug := chi.URLParam(r, "slug")

	_, err := s.posts.AddComment(r.Context(), user, postSlug, commentInput(r.PostForm))
	switch {
	case err == nil:
		s.flash(w, r, session.LevelSuccess, msgCommentAdded)
		s.redirect(w, r, domain.Post{Slug: postSlug}.URL())
	case isFormError(err):
		detail, derr := s.posts.GetBySlug(r.Context(), postSlug)
		if derr != nil {
			s.fail(w, r, derr)
			return
		}
		s.page(w, r, http.StatusUnprocessableEntity, view.PagePostDetail, view.Data{
			Title:    detail.Post.Title,
			Post:     detail.Post,
			Comments: detail.Comments,
			Form:     view.NewForm(r.PostForm, err),
		})
	default:
		s.fail(w, r, err)
	}
}

// editPost handles GET /posts/{slug}/edit/.
func (s *Server) editPost(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	post, err := s.posts.GetForEdit(r.Context(), user, chi.URLParam(r, "slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, view.PagePostForm, view.Data{
		Title: "Edit post", Post: post, Editing: true, Form: view.PostForm(post),
	})
}

// updatePost handles POST /posts/{slug}/edit/. Lacking the right to edit is
// a 403; asking to publish without the capability bounces back to the post
// with an error message.
func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	postSlug := chi.URLParam(r, "slug")
	post, err := s.posts.GetForEdit(r.Context(), user, postSlug)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !parseForm(w, r) {
		return
	}

	updated, err := s.posts.Update(r.Context(), user, postSlug, postInput(r.PostForm))
	switch {
	case err == nil:
		s.flash(w, r, session.LevelSuccess, msgPostUpdated)
		s.redirect(w, r, updated.URL())
	case isFormError(err):
		s.page(w, r, http.StatusUnprocessableEntity, view.PagePostForm, view.Data{
			Title:   "Edit post",
			Post:    post,
			Editing: true,
			Form:    view.NewForm(r.PostForm, err),
			Flashes: errorFlash(msgUpdateInvalid),
		})
	case errors.Is(err, domain.ErrForbidden):
		s.flash(w, r, session.LevelError, domain.UserMessage(err, msgNotAllowed))
		s.redirect(w, r, post.URL())
	default:
		s.fail(w, r, err)
	}
}

// confirmDelete handles GET /posts/{slug}/delete/.
func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	post, err := s.posts.GetForDelete(r.Context(), user, chi.URLParam(r, "slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, view.PagePostDelete, view.Data{Title: "Delete post", Post: post})
}

// deletePost handles POST /posts/{slug}/delete/.
func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if err := s.posts.Delete(r.Context(), user, chi.URLParam(r, "slug")); err != nil {
		s.fail(w, r, err)
		return
	}
	s.flash(w, r, session.LevelInfo, msgPostDeleted)
	s.redirect(w, r, "/")
}

// reviewQueue handles GET /posts/review/.
func (s *Server) reviewQueue(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	posts, err := s.posts.ReviewQueue(r.Context(), user)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.page(w, r, http.StatusOK, view.PageReviewList, view.Data{Title: "Review queue", Posts: posts})
}

// reviewAction handles POST /posts/review/ with form fields post_id and
// action (publish or send_back). Outcomes are reported as flash messages on
// the queue page; only lacking access to the queue itself is a 403.
func (s *Server) reviewAction(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if err := domain.Authorize(user, domain.ActionViewQueue); err != nil {
		s.fail(w, r, err)
		return
	}
	if !parseForm(w, r) {
		return
	}
	postID, err := uuid.Parse(r.PostForm.Get("post_id"))
	if err != nil {
		http.Error(w, msgNotFound, http.StatusNotFound)
		return
	}

	action := r.PostForm.Get("action")
	post, err := s.posts.Review(r.Context(), user, postID, action)
	switch {
	case err == nil && post.Status == domain.StatusPublished:
		s.flash(w, r, session.LevelSuccess, fmt.Sprintf(msgPublishedFmt, post.Title))
	case err == nil:
		s.flash(w, r, session.LevelInfo, fmt.Sprintf(msgSentBackFmt, post.Title))
	case errors.Is(err, domain.ErrNotFound):
		s.fail(w, r, err)
		return
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrInvalidTransition):
		s.flash(w, r, session.LevelError, domain.UserMessage(err, msgNotAllowed))
	case errors.Is(err, domain.ErrValidation):
		s.flash(w, r, session.LevelError, msgUnknownAction)
	default:
		s.fail(w, r, err)
		return
	}
	s.redirect(w, r, "/posts/review/")
}
