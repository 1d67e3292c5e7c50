package models

// Role is the stored authorization role of a user. A missing role reads as
// RoleNone.
type Role string

const (
	RoleNone  Role = "None"
	RoleAdmin Role = "Admin"
)

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Principal is the identity proven by a verified bearer token for the
// current request. It is never persisted.
type Principal struct {
	Email   string
	Subject string
}
