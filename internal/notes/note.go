// Package notes defines the note model and the per-user encrypted note
// store.
package notes

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timeLayout is the absolute display format for note timestamps.
const timeLayout = "02.01.2006 15:04"

// Note is one free-form text record. ID is immutable once assigned;
// ModifiedAt never precedes CreatedAt.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Collection is the full in-memory note set for one user, keyed by note ID.
type Collection map[string]*Note

// New creates an empty note with a fresh ID. A blank title becomes
// "Untitled Note".
func New(title string) *Note {
	if strings.TrimSpace(title) == "" {
		title = "Untitled Note"
	}
	now := time.Now().UTC()
	return &Note{
		ID:         uuid.NewString(),
		Title:      title,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// Touch bumps the modification timestamp. Call after every title or
// content edit.
func (n *Note) Touch() {
	n.ModifiedAt = time.Now().UTC()
}

// FormatCreated returns the creation time in local time for display.
func (n *Note) FormatCreated() string {
	return n.CreatedAt.Local().Format(timeLayout)
}

// FormatModified returns the modification time in local time for display.
func (n *Note) FormatModified() string {
	return n.ModifiedAt.Local().Format(timeLayout)
}

// RelativeTime renders the modification time as a human phrase ("just now",
// "2 hours ago"); old notes fall back to the absolute format.
func (n *Note) RelativeTime() string {
	d := time.Since(n.ModifiedAt)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	case d < 28*24*time.Hour:
		return plural(int(d.Hours()/(24*7)), "week")
	default:
		return n.FormatModified()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
