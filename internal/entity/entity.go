package entity

import "time"

// Document is a raw stored document as it comes out of (or goes into) the
// document store: string keys, JSON-compatible values. Date fields may be
// carried in any of the shapes accepted by NormalizeDate.
type Document = map[string]any

// Lifecycle status values shared by notes and calendar events.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusComplete   = "Complete"
)

// Todo importance levels.
const (
	ImportanceHigh   = "High"
	ImportanceMedium = "Medium"
	ImportanceLow    = "Low"
)

// CategoryLeetCode is the note category that triggers shadow-event
// maintenance in the linkage synchronizer.
const CategoryLeetCode = "LeetCode"

// CategoryGeneral is the default category for notes and todos.
const CategoryGeneral = "General"

// CategoryHoliday marks synthetic, never-persisted calendar entries
// materialized from the public-holiday feed.
const CategoryHoliday = "Holiday"

// ImageSize records the rendered dimensions of an embedded image, keyed by
// its URL in Note.ImageSizes.
type ImageSize struct {
	Width  int
	Height int
}

// Note is a markdown note in a user's notes collection.
type Note struct {
	ID           string
	Title        string
	Content      string
	Category     string
	Status       string
	LeetcodeLink string
	ImageSizes   map[string]ImageSize
	Locked       bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	CompletedAt  *time.Time
}

// Task is a checklist item embedded in a Todo. Tasks are not a top-level
// collection; their lifecycle is bound to the owning todo document.
type Task struct {
	ID         string
	Title      string
	Importance string
	Completed  bool
}

// Todo is an entry in a user's todos collection. LinkedNoteID is an
// optional foreign key to a note, used for navigation only; nothing
// cascades through it.
type Todo struct {
	ID           string
	Title        string
	Description  string
	Category     string
	Importance   string
	LinkedNoteID string
	Completed    bool
	CreatedAt    time.Time
	DueDate      *time.Time
	Tasks        []Task
}

// Event is a calendar entry. End is nil for open-ended events. Holiday
// events are synthetic: they carry no ID and are never written back.
type Event struct {
	ID        string
	Title     string
	Start     time.Time
	End       *time.Time
	Priority  string
	Status    string
	Category  string
	AllDay    bool
	CreatedAt time.Time
}
