package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAdminLoggedIn       EventType = "admin_logged_in"
	EventAdminLoginFailed    EventType = "admin_login_failed"
	EventAdminLoggedOut      EventType = "admin_logged_out"
	EventAdminPasswordChange EventType = "admin_password_changed"
	EventAdminProfileUpdated EventType = "admin_profile_updated"
	EventAdminRoleAssigned   EventType = "admin_role_assigned"
)

// Event represents an auth-domain event emitted by services. AdminID is zero
// for events without a resolved admin (e.g. failed logins by unknown email).
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AdminID   int64       `json:"admin_id,omitempty"`
	Email     string      `json:"email,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LoginFailedPayload carries the low-information failure reason kept for
// audit purposes only; it is never surfaced to clients.
type LoginFailedPayload struct {
	Reason string `json:"reason"`
}

// RoleAssignedPayload records a graph role assignment or removal.
type RoleAssignedPayload struct {
	RoleID *int64 `json:"role_id"`
}

// ProfileUpdatedPayload lists which profile fields changed.
type ProfileUpdatedPayload struct {
	Fields []string `json:"fields"`
}
