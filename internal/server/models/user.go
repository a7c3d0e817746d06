package models

import "time"

// User is the persisted account record. PasswordHash and RefreshToken never
// leave the server; use Snapshot for anything client-facing.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Profile      Profile
	CompanyID    *int64
	// RefreshToken is nil when the user has no live session, otherwise it
	// holds the most recently issued refresh token.
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds optional personal details collected at registration.
type Profile struct {
	Age     int    `json:"age,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Address string `json:"address,omitempty"`
}

// UserSnapshot is the client-safe view of a user. It is embedded in tokens
// and returned by every auth endpoint.
type UserSnapshot struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

// Snapshot returns the client-safe view of u.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// HasSession reports whether a refresh token is currently stored.
func (u *User) HasSession() bool {
	return u.RefreshToken != nil
}

// WithoutRole drops the role, matching what the account endpoint exposes.
func (s UserSnapshot) WithoutRole() UserSnapshot {
	s.Role = ""
	return s
}

// UserDetails is the full client-facing representation used by user CRUD.
type UserDetails struct {
	UserSnapshot
	Profile
	CompanyID *int64    `json:"companyId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Details returns the CRUD view of u.
func (u *User) Details() UserDetails {
	return UserDetails{
		UserSnapshot: u.Snapshot(),
		Profile:      u.Profile,
		CompanyID:    u.CompanyID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// UserFilter narrows a user listing. Empty fields match every user; set
// fields match case-insensitive substrings.
type UserFilter struct {
	Email string
	Name  string
}
