package models

import "time"

// Identity classes a session can belong to. Single-session enforcement is
// a per-class policy (clients enforced, admins not).
const (
	UserTypeAdmin  = "admin"
	UserTypeClient = "client"
)

// Session is a server-side session record. The ID is opaque and generated
// fresh at every login; it is never carried over from a pre-login session.
type Session struct {
	ID       string `json:"-"` // opaque, unguessable
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`

	// BootGeneration is the process-start identifier the session was
	// issued under. A mismatch with the running process means the server
	// restarted since login and the session must be destroyed.
	BootGeneration string `json:"-"`

	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
