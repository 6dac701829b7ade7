package tasks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Task statuses.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Task priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Statuses lists every status in workflow order.
var Statuses = []string{StatusTodo, StatusInProgress, StatusReview, StatusDone}

// Priorities lists every priority from lowest to highest.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Task is a unit of work owned by one user.
type Task struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id" example:"683cdb8aa96ad71e8e075bd1"`
	UserID      bson.ObjectID `bson:"user_id" json:"user" example:"683cdb8aa96ad71e8e075bd0"`
	Title       string        `bson:"title" json:"title" example:"Ship the release"`
	Description string        `bson:"description" json:"description" example:"Tag, build, announce"`
	Status      string        `bson:"status" json:"status" example:"todo"`
	Priority    string        `bson:"priority" json:"priority" example:"medium"`
	DueDate     *time.Time    `bson:"due_date,omitempty" json:"dueDate,omitempty" example:"2025-07-01T00:00:00Z"`
	CreatedAt   time.Time     `bson:"created_at" json:"createdAt" example:"2025-06-01T23:00:26.005Z"`
	UpdatedAt   time.Time     `bson:"updated_at" json:"updatedAt" example:"2025-06-01T23:00:26.005Z"`
}

// UpdateTask holds the fields to change. ClearDueDate removes the due date
// and wins over DueDate.
type UpdateTask struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	ClearDueDate bool
}

// ListFilter narrows List; empty fields match everything.
type ListFilter struct {
	Status   string
	Priority string
}

// Stats summarizes a user's tasks.
type Stats struct {
	Total      int64            `json:"total" example:"12"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPriority map[string]int64 `json:"byPriority"`
	Overdue    int64            `json:"overdue" example:"2"`
}

// DueDate is a JSON date that accepts RFC 3339 timestamps and plain
// YYYY-MM-DD dates. Set records whether the field was present at all, so
// an explicit null can clear a stored date.
type DueDate struct {
	Set  bool
	Time *time.Time
}

const dateOnly = "2006-01-02"

// UnmarshalJSON implements json.Unmarshaler.
func (d *DueDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	if bytes.Equal(b, []byte("null")) {
		d.Time = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("dueDate: %w", err)
	}
	if s == "" {
		d.Time = nil
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, dateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			d.Time = &t
			return nil
		}
	}
	return fmt.Errorf("dueDate: %q is not an RFC 3339 timestamp or YYYY-MM-DD date", s)
}

// MarshalJSON implements json.Marshaler.
func (d DueDate) MarshalJSON() ([]byte, error) {
	if d.Time == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.UTC().Format(time.RFC3339))
}
