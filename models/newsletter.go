package models

import "time"

// Newsletter status values. The progression draft -> scheduled -> sent is a
// convention; the repository does not forbid moving backward.
const (
	NewsletterStatusDraft     = "draft"
	NewsletterStatusScheduled = "scheduled"
	NewsletterStatusSent      = "sent"
)

type Newsletter struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Subject      string    `json:"subject"`
	Content      string    `json:"content"`
	Status       string    `json:"status"`
	Tags         string    `json:"tags"`
	SentAt       time.Time `json:"sentAt,omitzero"`
	ScheduledFor time.Time `json:"scheduledFor,omitzero"`
	OpenCount    int       `json:"openCount"`
	ClickCount   int       `json:"clickCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewsletterFromRecord(rec map[string]string) *Newsletter {
	if len(rec) == 0 {
		return nil
	}
	return &Newsletter{
		ID:           rec["id"],
		Title:        rec["title"],
		Subject:      rec["subject"],
		Content:      rec["content"],
		Status:       rec["status"],
		Tags:         rec["tags"],
		SentAt:       recordTime(rec, "sentAt"),
		ScheduledFor: recordTime(rec, "scheduledFor"),
		OpenCount:    recordInt(rec, "openCount"),
		ClickCount:   recordInt(rec, "clickCount"),
		CreatedAt:    recordTime(rec, "createdAt"),
		UpdatedAt:    recordTime(rec, "updatedAt"),
	}
}
