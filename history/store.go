// Package history implements a query engine over the Claude Code
// conversation-log corpus in ~/.claude/projects/: one encoded directory per
// project, one append-only JSONL file per session. The corpus is treated as
// externally-owned, read-only input; every call re-scans the filesystem and
// no state is kept between calls.
package history

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/djherbis/times"
	"github.com/flanksource/commons/logger"
)

// ClaudeHome returns the Claude Code home directory, honoring CLAUDE_HOME.
func ClaudeHome() string {
	if dir := os.Getenv("CLAUDE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude")
}

// DecodeProjectPath converts an encoded project directory name back into a
// filesystem path: every dash becomes a separator and one leading separator
// is stripped. Directory names are never interpreted any other way.
func DecodeProjectPath(dir string) string {
	decoded := strings.ReplaceAll(dir, "-", "/")
	return strings.TrimPrefix(decoded, "/")
}

// EncodeProjectPath is the forward direction Claude Code itself uses for
// directory names: "/" and "." both become "-". Lossy, so decoding is only
// ever done with DecodeProjectPath.
func EncodeProjectPath(path string) string {
	encoded := strings.ReplaceAll(path, "/", "-")
	return strings.ReplaceAll(encoded, ".", "-")
}

// ProjectDir is one encoded project directory under <root>/projects.
type ProjectDir struct {
	Name        string // encoded directory name
	Path        string // absolute path on disk
	ProjectPath string // decoded project path
}

// SessionFile is one session log inside a project directory. The file's base
// name is the canonical session ID.
type SessionFile struct {
	SessionID string
	Path      string
}

// ListProjectDirs enumerates project directories under claudeDir/projects.
// A missing projects directory is not an error — a fresh installation has no
// history yet — and non-directory entries are ignored.
func ListProjectDirs(claudeDir string) ([]ProjectDir, error) {
	projectsDir := filepath.Join(claudeDir, "projects")
	if _, err := os.Stat(projectsDir); os.IsNotExist(err) {
		logger.Debugf("Projects directory does not exist: %s", projectsDir)
		return nil, nil
	}

	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil, err
	}

	var dirs []ProjectDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirs = append(dirs, ProjectDir{
			Name:        entry.Name(),
			Path:        filepath.Join(projectsDir, entry.Name()),
			ProjectPath: DecodeProjectPath(entry.Name()),
		})
	}

	logger.Debugf("Found %d project directories in %s", len(dirs), projectsDir)
	return dirs, nil
}

// ListSessionFiles returns the session JSONL files in one project directory.
func ListSessionFiles(projectDir string) ([]SessionFile, error) {
	matches, err := filepath.Glob(filepath.Join(projectDir, "*.jsonl"))
	if err != nil {
		return nil, err
	}

	files := make([]SessionFile, 0, len(matches))
	for _, match := range matches {
		files = append(files, SessionFile{
			SessionID: strings.TrimSuffix(filepath.Base(match), ".jsonl"),
			Path:      match,
		})
	}
	return files, nil
}

// MayContain reports whether a session file could hold records inside the
// [start, end] window, using filesystem metadata only. It is a conservative
// over-approximation: false positives cost one wasted read, a false negative
// would lose data, so every uncertain case answers true. Metadata-read
// failures fail open for the same reason.
func MayContain(path string, start, end string) bool {
	if start == "" && end == "" {
		return true
	}

	ts, err := times.Stat(path)
	if err != nil {
		logger.Warnf("Failed to stat %s, reading it anyway: %v", path, err)
		return true
	}

	newest := ts.ModTime().UTC()

	// The oldest possible record time is bounded below by the file's birth
	// time. Without a birth time (not all filesystems report one) the end
	// side cannot be pruned soundly, since content may predate the mtime.
	if end != "" && ts.HasBirthTime() {
		oldest := newest
		if birth := ts.BirthTime().UTC(); birth.Before(oldest) {
			oldest = birth
		}
		if oldest.Format(isoMillis) > end {
			return false
		}
	}

	if start != "" && newest.Format(isoMillis) < start {
		return false
	}

	return true
}
