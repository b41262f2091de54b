// internal/models/entry.go
package models

// TimestampFormat is the updated_at layout: UTC, second precision, Z suffix.
const TimestampFormat = "2006-01-02T15:04:05Z"

// Entry is one daily log record, keyed by calendar date. MealsText and
// Estimates are always non-nil in a normalized entry; the optional string
// fields are omitted from JSON when empty.
type Entry struct {
	Date      string            `json:"date"`
	DayType   string            `json:"day_type,omitempty"`
	Source    string            `json:"source,omitempty"` // "manual", "ai_estimate"
	Notes     string            `json:"notes,omitempty"`
	MealsText map[string]string `json:"meals_text"`
	Estimates map[string]any    `json:"estimates"`
	UpdatedAt string            `json:"updated_at"`
}

// Clone returns a deep copy of the entry. The estimate values themselves are
// scalars (numbers, bools, strings) so a shallow copy of each map suffices.
func (e *Entry) Clone() *Entry {
	out := *e
	out.MealsText = make(map[string]string, len(e.MealsText))
	for k, v := range e.MealsText {
		out.MealsText[k] = v
	}
	out.Estimates = make(map[string]any, len(e.Estimates))
	for k, v := range e.Estimates {
		out.Estimates[k] = v
	}
	return &out
}

// Policy governs how an upsert reconciles with an existing entry for the
// same date.
type Policy string

const (
	PolicyReject    Policy = "reject"
	PolicyOverwrite Policy = "overwrite"
	PolicyMerge     Policy = "merge"
)

type UpsertStatus string

const (
	StatusCreated     UpsertStatus = "created"
	StatusOverwritten UpsertStatus = "overwritten"
	StatusMerged      UpsertStatus = "merged"
	StatusRejected    UpsertStatus = "rejected"
)

// UpsertResult reports what an upsert did, with a user-facing message.
type UpsertResult struct {
	Status  UpsertStatus `json:"status"`
	Date    string       `json:"date"`
	Message string       `json:"message"`
}
