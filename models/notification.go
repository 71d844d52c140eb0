package models

import "time"

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	ReadAt    time.Time `json:"readAt,omitzero"`
}

func NotificationFromRecord(rec map[string]string) *Notification {
	if len(rec) == 0 {
		return nil
	}
	return &Notification{
		ID:        rec["id"],
		Title:     rec["title"],
		Message:   rec["message"],
		Type:      rec["type"],
		Read:      recordBool(rec, "read"),
		CreatedAt: recordTime(rec, "createdAt"),
		ReadAt:    recordTime(rec, "readAt"),
	}
}
