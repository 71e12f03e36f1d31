package entity

import "time"

// Role enumerates user authorization levels.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStandard
}

// User is the aggregate root for the credential store.
// Passwords are stored as bcrypt hashes in PasswordHash.
// Users are never hard-deleted.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CompanyID    string // optional tenant reference; empty when unassigned
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection returned to callers. It never carries the
// password hash.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CompanyID string    `json:"company_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns the safe projection of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CompanyID: u.CompanyID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
