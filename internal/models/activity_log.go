package models

import "time"

// Activity actions recorded for clients. Mirrors the portal audit trail.
const (
	ActionCreate         = "CREATE"
	ActionLogin          = "LOGIN"
	ActionLogout         = "LOGOUT"
	ActionForgotPassword = "FORGOT_PASSWORD"
	ActionPasswordReset  = "PASSWORD_RESET"
	ActionSessionEvicted = "SESSION_EVICTED"
)

// ActivityLog is a best-effort audit record. Details must never contain
// credentials, codes, or tokens.
type ActivityLog struct {
	ID        int64             `json:"id"`
	ClientID  string            `json:"client_id"`
	Action    string            `json:"action"`
	Details   map[string]string `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
