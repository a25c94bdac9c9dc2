package dto

import (
	"time"

	"github.com/spec-kit/fms-support/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse is the public account projection.
type AccountResponse struct {
	ID       string            `json:"id"`
	FullName string            `json:"full_name"`
	Email    string            `json:"email"`
	Role     domain.Role       `json:"role"`
	Status   domain.UserStatus `json:"status"`
}

// CreateAccountRequest payload for admin-created accounts.
type CreateAccountRequest struct {
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// SetRoleRequest payload.
type SetRoleRequest struct {
	Role domain.Role `json:"role"`
}

// SetStatusRequest payload.
type SetStatusRequest struct {
	Status domain.UserStatus `json:"status"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
