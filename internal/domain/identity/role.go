package identity

import "github.com/google/uuid"

// Role is one of the two operator roles
type Role string

const (
	RoleBoss    Role = "Boss"
	RoleManager Role = "Manager"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleBoss || r == RoleManager
}

func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated caller of an operation. It is passed explicitly
// into every application service call.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

// IsBoss reports whether the actor holds the Boss role
func (a Actor) IsBoss() bool {
	return a.Role == RoleBoss
}

// IsZero reports whether the actor is unset
func (a Actor) IsZero() bool {
	return a.UserID == uuid.Nil
}
