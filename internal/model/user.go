package model

import "time"

// Timestamps is embedded by every persisted record.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	// PasswordHash is nil for accounts whose credentials live in the
	// external identity provider.
	PasswordHash *string `json:"-"`
	// ExternalSubject is the provider-assigned identifier (an opaque
	// string, typically a UUID) for externally managed accounts.
	ExternalSubject *string `json:"-"`
	IsActive        bool    `json:"is_active"`
	IsAdmin         bool    `json:"is_admin"`
	Timestamps
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest carries a partial update: nil fields are left
// untouched. is_active and is_admin are honored for admin callers only.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	IsActive *bool   `json:"is_active"`
	IsAdmin  *bool   `json:"is_admin"`
}
