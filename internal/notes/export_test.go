package notes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	n := New("My Note")
	n.Content = "line one\nline two"

	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, Export(n, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Title: My Note")
	assert.Contains(t, text, "ID: "+n.ID)
	assert.Contains(t, text, strings.Repeat("=", 50))
	assert.True(t, strings.HasSuffix(text, "line one\nline two"))
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Shopping list", "Shopping list.txt"},
		{"a/b\\c:d", "a_b_c_d.txt"},
		{"  ", "Untitled_Note.txt"},
		{"", "Untitled_Note.txt"},
		{"notes-2024_final", "notes-2024_final.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExportFileName(tt.title), tt.title)
	}
}
