// Package models holds the domain types the console exchanges with the
// SKUD API and keeps in its stores.
package models

// Role is the access level of a console user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSecurity Role = "security"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSecurity
}

// ParseRole maps a role name to a Role. Unknown names yield "".
func ParseRole(s string) Role {
	r := Role(s)
	if r.Valid() {
		return r
	}
	return ""
}

// User is a console account. Password is write-only: it is sent on create
// and update and never kept in the canonical list.
type User struct {
	Login    string `json:"login"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
}

// WithoutPassword returns a copy of u with the password cleared.
func (u User) WithoutPassword() User {
	u.Password = ""
	return u
}
