package models

import (
	"time"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/authz"
)

type User struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never serialized
	Role         authz.Role `json:"role"`
	IsVerified   bool       `json:"is_verified"`

	// email verification code (set at registration, cleared on confirm)
	VerificationCode      *string    `json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`

	// password reset token (single use)
	ResetToken     *string    `json:"-"`
	ResetExpiresAt *time.Time `json:"-"`

	// doctors may link a Telegram chat to get pinged on new questions
	TelegramChatID int64 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Identity is the request-scoped login record carried in the encrypted
// "user" cookie. The cookie is the single source of truth for "am I
// logged in"; nothing about it is persisted server-side.
type Identity struct {
	ID   int        `json:"id"`
	Role authz.Role `json:"role"`
	Name string     `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
