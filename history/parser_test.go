package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestParseSessionFile(t *testing.T) {
	path := writeLines(t,
		`{"type":"user","sessionId":"s1","uuid":"u1","timestamp":"2025-06-30T10:00:00.000Z","message":{"role":"user","content":"hello"}}`,
		`{not valid json`,
		``,
		`{"type":"assistant","sessionId":"s1","uuid":"u2","timestamp":"2025-06-30T10:00:05.000Z","message":{"role":"assistant","content":[{"type":"text","text":"hi"}],"model":"claude-sonnet-4"},"requestId":"req_1"}`,
	)

	entries, stats, err := ParseSessionFile(path, "-Users-test-project-name", "", "")
	require.NoError(t, err)

	require.Len(t, entries, 2, "a corrupt line must not abort the file")
	assert.Equal(t, 4, stats.Lines)
	assert.Equal(t, 2, stats.Parsed)
	assert.Equal(t, 1, stats.Malformed)
	assert.Equal(t, 1, stats.Blank)
	assert.Equal(t, 0, stats.OutOfRange)

	assert.Equal(t, "hello", entries[0].Content)
	assert.Equal(t, "Users/test/project/name", entries[0].ProjectPath)
	assert.Equal(t, "u1", entries[0].UUID)
	assert.Nil(t, entries[0].Metadata)

	assert.Equal(t, "hi", entries[1].Content)
	require.NotNil(t, entries[1].Metadata)
	assert.Equal(t, "claude-sonnet-4", entries[1].Metadata.Model)
	assert.Equal(t, "req_1", entries[1].Metadata.RequestID)
}

func TestParseSessionFileWindow(t *testing.T) {
	path := writeLines(t,
		`{"type":"user","sessionId":"s1","uuid":"u1","timestamp":"2025-06-29T10:00:00.000Z","message":{"content":"yesterday"}}`,
		`{"type":"user","sessionId":"s1","uuid":"u2","timestamp":"2025-06-30T10:00:00.000Z","message":{"content":"today"}}`,
		`{"type":"user","sessionId":"s1","uuid":"u3","timestamp":"2025-07-01T10:00:00.000Z","message":{"content":"tomorrow"}}`,
	)

	entries, stats, err := ParseSessionFile(path, "-p",
		"2025-06-30T00:00:00.000Z", "2025-06-30T23:59:59.999Z")
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "today", entries[0].Content)
	assert.Equal(t, 2, stats.OutOfRange)
}

func TestParseSessionFileMissing(t *testing.T) {
	_, _, err := ParseSessionFile(filepath.Join(t.TempDir(), "missing.jsonl"), "-p", "", "")
	require.Error(t, err)
}

func TestScanSessionFileEarlyStop(t *testing.T) {
	path := writeLines(t,
		`{"type":"user","sessionId":"s1","uuid":"u1","timestamp":"2025-06-30T10:00:00.000Z"}`,
		`{"type":"user","sessionId":"s1","uuid":"u2","timestamp":"2025-06-30T10:00:01.000Z"}`,
		`{"type":"user","sessionId":"s1","uuid":"u3","timestamp":"2025-06-30T10:00:02.000Z"}`,
	)

	var seen int
	_, err := scanSessionFile(path, "", "", func(RawMessage) bool {
		seen++
		return seen < 2
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seen)
}

func TestFlattenContent(t *testing.T) {
	tests := []struct {
		name     string
		body     *MessageBody
		expected string
	}{
		{
			name:     "nil body",
			body:     nil,
			expected: "",
		},
		{
			name:     "plain string survives exactly",
			body:     &MessageBody{Content: json.RawMessage(`"Fix the bug in auth"`)},
			expected: "Fix the bug in auth",
		},
		{
			name:     "text blocks joined by a single space",
			body:     &MessageBody{Content: json.RawMessage(`[{"type":"text","text":"Hello"},{"type":"text","text":"World"}]`)},
			expected: "Hello World",
		},
		{
			name:     "plain strings inside an array",
			body:     &MessageBody{Content: json.RawMessage(`["one","two"]`)},
			expected: "one two",
		},
		{
			name:     "non-text block is serialized verbatim",
			body:     &MessageBody{Content: json.RawMessage(`[{"type":"tool_use","name":"Bash"}]`)},
			expected: `{"type":"tool_use","name":"Bash"}`,
		},
		{
			name:     "mixed text and non-text",
			body:     &MessageBody{Content: json.RawMessage(`[{"type":"text","text":"run"},{"type":"tool_use","name":"Bash"}]`)},
			expected: `run {"type":"tool_use","name":"Bash"}`,
		},
		{
			name:     "unrecognized content shape",
			body:     &MessageBody{Content: json.RawMessage(`42`)},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, flattenContent(tt.body))
		})
	}
}

func TestConvertRawMessageDecorations(t *testing.T) {
	entry := convertRawMessage(RawMessage{
		Type:      "user",
		SessionID: "s1",
		UUID:      "u1",
		Timestamp: "2025-06-30T10:00:00.000Z",
	}, "-Users-test-project-name")

	assert.NotEmpty(t, entry.FormattedTime)
	assert.NotEmpty(t, entry.TimeAgo)
	assert.Len(t, entry.LocalDate, len("2006-01-02"))
}
