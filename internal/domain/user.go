package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Capability is a named authorization grant checked before a state-changing
// operation.
type Capability string

const (
	// CapPublish allows moving a post to published from any entry point.
	CapPublish Capability = "can_publish"
	// CapReview allows viewing the review queue and sending posts back.
	CapReview Capability = "can_review"
	// CapEditAny allows editing posts the user did not write.
	CapEditAny Capability = "change_post"
	// CapDelete allows deleting posts.
	CapDelete Capability = "delete_post"
)

// Capabilities lists every known capability.
var Capabilities = []Capability{CapPublish, CapReview, CapEditAny, CapDelete}

// ParseCapability validates a capability name given on the command line.
func ParseCapability(s string) (Capability, error) {
	c := Capability(s)
	if !slices.Contains(Capabilities, c) {
		return "", fmt.Errorf("%w: unknown capability %q", ErrValidation, s)
	}
	return c, nil
}

// User is an account that can sign in. PasswordHash is a bcrypt hash and is
// never rendered.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	IsSuperuser  bool
	IsStaff      bool
	Capabilities []Capability
	CreatedAt    time.Time
}

// Can reports whether the user holds capability c. Superusers hold every
// capability. A nil user holds none.
func (u *User) Can(c Capability) bool {
	if u == nil {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	return slices.Contains(u.Capabilities, c)
}

// Registration is the sign-up form payload.
type Registration struct {
	Username  string `form:"username" validate:"required,max=150"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required"`
}

// PasswordChange is the payload of the change-password form.
type PasswordChange struct {
	OldPassword  string `form:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" validate:"required"`
	NewPassword2 string `form:"new_password2" validate:"required"`
}
