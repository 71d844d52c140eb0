package models

import "time"

type Staff struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Password            string    `json:"-"`
	IsTwoFactorEnabled  bool      `json:"isTwoFactorEnabled"`
	PasswordLastChanged time.Time `json:"passwordLastChanged"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func StaffFromRecord(rec map[string]string) *Staff {
	if len(rec) == 0 {
		return nil
	}
	return &Staff{
		ID:                  rec["id"],
		Name:                rec["name"],
		Email:               rec["email"],
		Password:            rec["password"],
		IsTwoFactorEnabled:  recordBool(rec, "isTwoFactorEnabled"),
		PasswordLastChanged: recordTime(rec, "passwordLastChanged"),
		CreatedAt:           recordTime(rec, "createdAt"),
		UpdatedAt:           recordTime(rec, "updatedAt"),
	}
}

// PasswordExpired reports whether the password is older than maxAge.
// A zero maxAge disables expiry.
func (s *Staff) PasswordExpired(maxAge time.Duration) bool {
	if maxAge == 0 || s.PasswordLastChanged.IsZero() {
		return false
	}
	return time.Since(s.PasswordLastChanged) > maxAge
}
