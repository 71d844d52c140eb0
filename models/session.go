package models

import "time"

type Session struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staffId"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func SessionFromRecord(rec map[string]string) *Session {
	if len(rec) == 0 {
		return nil
	}
	return &Session{
		ID:        rec["id"],
		StaffID:   rec["staffId"],
		Email:     rec["email"],
		Token:     rec["token"],
		ExpiresAt: recordTime(rec, "expiresAt"),
		IPAddress: rec["ipAddress"],
		UserAgent: rec["userAgent"],
		CreatedAt: recordTime(rec, "createdAt"),
	}
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
