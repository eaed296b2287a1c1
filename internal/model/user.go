// Package model defines data structures for the chat broker.
package model

import (
	"time"
)

// User is an account record. PasswordHash never leaves the process: it is
// excluded from JSON serialization and only compared via bcrypt.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	Premium      bool      `json:"premium"`
	UsageCount   int       `json:"usage_count"`
	LastReset    time.Time `json:"last_reset"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the request body for POST /api/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the request body for POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned from register and login.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
