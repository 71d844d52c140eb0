package models

import "time"

const (
	SubscriberStatusActive       = "active"
	SubscriberStatusUnsubscribed = "unsubscribed"
)

type Subscriber struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UnsubscribedAt time.Time `json:"unsubscribedAt,omitzero"`
}

func SubscriberFromRecord(rec map[string]string) *Subscriber {
	if len(rec) == 0 {
		return nil
	}
	return &Subscriber{
		ID:             rec["id"],
		Email:          rec["email"],
		Name:           rec["name"],
		Status:         rec["status"],
		CreatedAt:      recordTime(rec, "createdAt"),
		UnsubscribedAt: recordTime(rec, "unsubscribedAt"),
	}
}
