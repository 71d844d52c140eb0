package models

import (
	"strconv"
	"time"
)

// Record field parsing helpers. Everything at the storage layer is a string,
// regardless of logical type; these convert at the model boundary.

func recordTime(rec map[string]string, field string) time.Time {
	t, err := time.Parse(time.RFC3339, rec[field])
	if err != nil {
		return time.Time{}
	}
	return t
}

func recordBool(rec map[string]string, field string) bool {
	return rec[field] == "true"
}

func recordInt(rec map[string]string, field string) int {
	n, _ := strconv.Atoi(rec[field])
	return n
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
