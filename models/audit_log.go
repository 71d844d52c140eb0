package models

import "time"

// Common audit actions recorded by the admin dashboard.
const (
	ActionLogin        = "LOGIN"
	ActionLoginAttempt = "LOGIN_ATTEMPT"
	ActionLogout       = "LOGOUT"
)

type AuditLog struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ipAddress,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func AuditLogFromRecord(rec map[string]string) *AuditLog {
	if len(rec) == 0 {
		return nil
	}
	return &AuditLog{
		ID:        rec["id"],
		Action:    rec["action"],
		Actor:     rec["actor"],
		Details:   rec["details"],
		IPAddress: rec["ipAddress"],
		Timestamp: recordTime(rec, "timestamp"),
	}
}
