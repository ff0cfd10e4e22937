package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/djherbis/times"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProjectPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-Users-test-project-name", "Users/test/project/name"},
		{"-home-user-code", "home/user/code"},
		{"relative-path", "relative/path"},
		{"", ""},
		{"-", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := DecodeProjectPath(tt.input)
			if result != tt.expected {
				t.Errorf("DecodeProjectPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestEncodeProjectPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/Users/test/project.name", "-Users-test-project-name"},
		{"/home/user/.config", "-home-user--config"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := EncodeProjectPath(tt.input)
			if result != tt.expected {
				t.Errorf("EncodeProjectPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestListProjectDirs(t *testing.T) {
	t.Run("missing projects directory is empty, not an error", func(t *testing.T) {
		dirs, err := ListProjectDirs(filepath.Join(t.TempDir(), "does-not-exist"))
		require.NoError(t, err)
		assert.Empty(t, dirs)
	})

	t.Run("non-directory entries are ignored", func(t *testing.T) {
		root := t.TempDir()
		projectsDir := filepath.Join(root, "projects")
		require.NoError(t, os.MkdirAll(filepath.Join(projectsDir, "-Users-test-project-name"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(projectsDir, "stray.txt"), []byte("x"), 0o644))

		dirs, err := ListProjectDirs(root)
		require.NoError(t, err)
		require.Len(t, dirs, 1)
		assert.Equal(t, "-Users-test-project-name", dirs[0].Name)
		assert.Equal(t, "Users/test/project/name", dirs[0].ProjectPath)
	})
}

func TestListSessionFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-a.jsonl"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-b.jsonl"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	files, err := ListSessionFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "session-a", files[0].SessionID)
	assert.Equal(t, "session-b", files[1].SessionID)
}

func TestMayContain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	modTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, modTime, modTime))

	t.Run("no bounds always reads", func(t *testing.T) {
		assert.True(t, MayContain(path, "", ""))
	})

	t.Run("stat failure fails open", func(t *testing.T) {
		assert.True(t, MayContain(filepath.Join(dir, "missing.jsonl"), "2025-01-01T00:00:00.000Z", ""))
	})

	t.Run("file older than window is pruned", func(t *testing.T) {
		assert.False(t, MayContain(path, "2025-06-30T00:00:00.000Z", ""))
	})

	t.Run("file inside window is read", func(t *testing.T) {
		assert.True(t, MayContain(path, "2025-05-01T00:00:00.000Z", "2025-06-30T23:59:59.999Z"))
	})

	t.Run("file newer than window prunes only with a birth time", func(t *testing.T) {
		ts, err := times.Stat(path)
		require.NoError(t, err)

		pruned := !MayContain(path, "", "2020-01-01T23:59:59.999Z")
		if ts.HasBirthTime() {
			// oldest = min(birth, mod) = 2025-06-01, after the window end
			assert.True(t, pruned)
		} else {
			// without a birth time the end side must fail open
			assert.False(t, pruned)
		}
	})
}
