package models

import "time"

// Client statuses. Only active clients may log in.
const (
	ClientStatusActive  = "Active"
	ClientStatusBlocked = "Blocked"
)

// Client is a public portal account (identified by phone or email).
type Client struct {
	ClientID     string `json:"client_id"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Location     string `json:"location,omitempty"`
	Status       string `json:"status"`

	// Non-owning back-reference to the one session currently honored for
	// this client. Used for equality checks only; the session store owns
	// the session lifecycle.
	ActiveSessionID string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type ClientSignupRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	Location string `json:"location"`
}

type ClientLoginRequest struct {
	// Identifier is a phone number or an email address.
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}
