package notes

import (
	"fmt"
	"os"
	"strings"
)

// Export writes the note as a human-readable text file: a metadata header,
// a separator line, then the raw content. This path is deliberately
// unencrypted; it exists for explicit user-driven export and sits outside
// the security boundary.
func Export(n *Note, path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", n.Title)
	fmt.Fprintf(&b, "Created: %s\n", n.FormatCreated())
	fmt.Fprintf(&b, "Modified: %s\n", n.FormatModified())
	fmt.Fprintf(&b, "ID: %s\n", n.ID)
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	b.WriteString(n.Content)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("export note: %w", err)
	}
	return nil
}

// ExportFileName derives a safe default file name from the note title:
// characters outside letters, digits, space, hyphen, and underscore become
// underscores. An empty result falls back to "Untitled_Note.txt".
func ExportFileName(title string) string {
	mapped := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return c
		case c == ' ' || c == '-' || c == '_':
			return c
		}
		return '_'
	}, title)

	mapped = strings.TrimSpace(mapped)
	if mapped == "" {
		return "Untitled_Note.txt"
	}
	return mapped + ".txt"
}
