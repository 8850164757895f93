// Package activity keeps a bounded per-account log of catalog and planting changes.
package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Action is what happened to the subject.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Display returns the past-tense label shown to users.
func (a Action) Display() string {
	switch a {
	case ActionCreate:
		return "Created"
	case ActionUpdate:
		return "Updated"
	case ActionDelete:
		return "Deleted"
	default:
		return string(a)
	}
}

func (a Action) Valid() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

// Subject is anything whose changes are logged.
type Subject interface {
	// ActivityModel returns the Go type name of the subject, e.g. "PlantedProduct".
	ActivityModel() string
	ActivityID() string
	String() string
}

// ModelTag title-cases a type name the way the log has always stored it: only the first
// letter is upper case, with PlantedProduct kept in its two-word form.
func ModelTag(typeName string) string {
	lower := strings.ToLower(typeName)
	if lower == "" {
		return ""
	}
	tag := strings.ToUpper(lower[:1]) + lower[1:]
	if tag == "Plantedproduct" {
		return "PlantedProduct"
	}
	return tag
}

// Entry is one logged change.
type Entry struct {
	ID         int64
	AccountID  uuid.UUID
	Action     Action
	ModelName  string
	ObjectID   string
	ObjectName string
	Timestamp  time.Time
}

func (e Entry) ActionDisplay() string {
	return e.Action.Display()
}

// TimeAgo renders the age of the entry relative to now. Whole days win; otherwise hours
// are shown past one hour, minutes past one minute, and anything younger is "Just now".
func (e Entry) TimeAgo(now time.Time) string {
	diff := now.Sub(e.Timestamp)
	if diff < 0 {
		diff = 0
	}
	days := int(diff / (24 * time.Hour))
	if days > 0 {
		return plural(days, "day")
	}
	seconds := int((diff % (24 * time.Hour)) / time.Second)
	if seconds > 3600 {
		return plural(seconds/3600, "hour")
	}
	if seconds > 60 {
		return plural(seconds/60, "minute")
	}
	return "Just now"
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

// EntryResponse is the JSON shape of an entry.
type EntryResponse struct {
	ID            int64     `json:"id"`
	Action        Action    `json:"action"`
	ActionDisplay string    `json:"action_display"`
	ModelName     string    `json:"model_name"`
	ObjectName    string    `json:"object_name"`
	Timestamp     time.Time `json:"timestamp"`
	TimeAgo       string    `json:"time_ago"`
}

func ToResponse(e Entry, now time.Time) EntryResponse {
	return EntryResponse{
		ID:            e.ID,
		Action:        e.Action,
		ActionDisplay: e.ActionDisplay(),
		ModelName:     e.ModelName,
		ObjectName:    e.ObjectName,
		Timestamp:     e.Timestamp,
		TimeAgo:       e.TimeAgo(now),
	}
}
