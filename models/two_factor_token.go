package models

import (
	"strconv"
	"time"
)

// TwoFactorToken is a one-time login code emailed to a staff member.
// Expiry is an application-checked timestamp (stored as unix seconds),
// not a key-level TTL.
type TwoFactorToken struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	Expires   time.Time `json:"expires"`
	CreatedAt time.Time `json:"createdAt"`
}

func TwoFactorTokenFromRecord(rec map[string]string) *TwoFactorToken {
	if len(rec) == 0 {
		return nil
	}
	var expires time.Time
	if secs, err := strconv.ParseInt(rec["expires"], 10, 64); err == nil {
		expires = time.Unix(secs, 0)
	}
	return &TwoFactorToken{
		ID:        rec["id"],
		Email:     rec["email"],
		Token:     rec["token"],
		Expires:   expires,
		CreatedAt: recordTime(rec, "createdAt"),
	}
}

func (t *TwoFactorToken) Expired(now time.Time) bool {
	return now.After(t.Expires)
}
