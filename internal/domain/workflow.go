package domain

import "fmt"

// Action is a workflow step a user asks to perform on a post.
type Action string

const (
	ActionCreate    Action = "create"
	ActionEdit      Action = "edit"
	ActionPublish   Action = "publish"
	ActionSendBack  Action = "send_back"
	ActionDelete    Action = "delete"
	ActionComment   Action = "comment"
	ActionViewQueue Action = "view_review_queue"
)

// ParseReviewAction accepts the two actions offered by the review queue.
func ParseReviewAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := reviewTransitions[a]; !ok {
		return "", fmt.Errorf("%w: unknown review action %q", ErrValidation, s)
	}
	return a, nil
}

// Transition is one row of the review table: the action moves a post from
// From to To and needs Requires.
type Transition struct {
	From     Status
	To       Status
	Requires Capability
	Denied   string
}

// reviewTransitions are the steps offered from the review queue.
var reviewTransitions = map[Action]Transition{
	ActionPublish: {
		From:     StatusReview,
		To:       StatusPublished,
		Requires: CapPublish,
		Denied:   "You do not have permission to publish posts.",
	},
	ActionSendBack: {
		From:     StatusReview,
		To:       StatusDraft,
		Requires: CapReview,
		Denied:   "You do not have permission to review posts.",
	},
}

// statusGate guards entry into a status through a form (create, edit or
// inline edit). Statuses not listed here only need the right to edit.
type statusGate struct {
	Requires Capability
	Denied   string
}

var statusGates = map[Status]statusGate{
	StatusPublished: {Requires: CapPublish, Denied: "You do not have permission to publish."},
}

// actionGates are capability checks that do not involve a status change.
var actionGates = map[Action]statusGate{
	ActionDelete:    {Requires: CapDelete, Denied: "You do not have permission to delete posts."},
	ActionViewQueue: {Requires: CapReview, Denied: "Not allowed."},
}

// TransitionError reports a review action applied to a post in the wrong
// state. It unwraps to ErrInvalidTransition.
type TransitionError struct {
	Message string
}

func (e *TransitionError) Error() string { return ErrInvalidTransition.Error() + ": " + e.Message }

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// CanEdit reports whether u may change the content of p: its author or a
// holder of CapEditAny.
func CanEdit(u *User, p Post) bool {
	if u == nil {
		return false
	}
	return u.ID == p.AuthorID || u.Can(CapEditAny)
}

// Authorize checks the capability gate of an action that has no status
// change attached (delete, viewing the review queue).
func Authorize(u *User, a Action) error {
	if u == nil {
		return ErrUnauthenticated
	}
	g, ok := actionGates[a]
	if ok && !u.Can(g.Requires) {
		return Forbidden(g.Denied)
	}
	return nil
}

// AuthorizeCreate checks that u may create a post that starts in status.
func AuthorizeCreate(u *User, status Status) error {
	if u == nil {
		return ErrUnauthenticated
	}
	return authorizeStatusEntry(u, StatusDraft, status)
}

// AuthorizeEdit checks that u may edit p and, when to differs from the
// post's current status, move it there.
func AuthorizeEdit(u *User, p Post, to Status) error {
	if u == nil {
		return ErrUnauthenticated
	}
	if !CanEdit(u, p) {
		return Forbidden("Not allowed.")
	}
	return authorizeStatusEntry(u, p.Status, to)
}

// AuthorizeComment checks that u may comment. Any signed-in user may.
func AuthorizeComment(u *User) error {
	if u == nil {
		return ErrUnauthenticated
	}
	return nil
}

// PlanReview resolves a review queue action against p and returns the
// status p moves to.
func PlanReview(u *User, p Post, a Action) (Status, error) {
	if err := Authorize(u, ActionViewQueue); err != nil {
		return p.Status, err
	}
	t, ok := reviewTransitions[a]
	if !ok {
		return p.Status, fmt.Errorf("%w: unknown review action %q", ErrValidation, a)
	}
	if !u.Can(t.Requires) {
		return p.Status, Forbidden(t.Denied)
	}
	if p.Status != t.From {
		return p.Status, &TransitionError{
			Message: fmt.Sprintf("'%s' is %s, not awaiting review.", p.Title, p.Status.Label()),
		}
	}
	return t.To, nil
}

func authorizeStatusEntry(u *User, from, to Status) error {
	if from == to {
		return nil
	}
	g, ok := statusGates[to]
	if ok && !u.Can(g.Requires) {
		return Forbidden(g.Denied)
	}
	return nil
}
