package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
)

// Session lines are usually small but tool results can be huge.
const maxLineSize = 10 * 1024 * 1024

// ParseStats accounts for every line of one file scan, so callers and tests
// can reason about skips without scraping log output.
type ParseStats struct {
	Lines      int // physical lines seen
	Parsed     int // lines converted to entries
	Blank      int // empty or whitespace-only lines
	Malformed  int // lines that failed to parse as JSON
	OutOfRange int // valid records rejected by the [start, end] window
}

// ParseSessionFile streams one session JSONL file line by line and returns
// the normalized entries whose timestamps fall inside the optional
// [start, end] window. The file is re-opened fresh on every call and is never
// loaded into memory whole. One corrupt line is skipped, never fatal.
func ParseSessionFile(path, projectDir string, start, end string) ([]ConversationEntry, ParseStats, error) {
	var entries []ConversationEntry
	stats, err := scanSessionFile(path, start, end, func(msg RawMessage) bool {
		entries = append(entries, convertRawMessage(msg, projectDir))
		return true
	})
	return entries, stats, err
}

// scanSessionFile drives the line loop, handing every in-range record to fn.
// Returning false from fn stops the scan early. The window filter runs on the
// raw timestamp string before conversion so out-of-range lines never pay for
// content flattening.
func scanSessionFile(path, start, end string, fn func(RawMessage) bool) (ParseStats, error) {
	var stats ParseStats

	file, err := os.Open(path)
	if err != nil {
		return stats, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		stats.Lines++

		if len(line) == 0 {
			stats.Blank++
			continue
		}

		var msg RawMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			logger.Debugf("Error parsing line %d in %s: %v", stats.Lines, path, err)
			stats.Malformed++
			continue
		}

		if (start != "" && msg.Timestamp < start) || (end != "" && msg.Timestamp > end) {
			stats.OutOfRange++
			continue
		}

		stats.Parsed++
		if !fn(msg) {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// convertRawMessage derives the normalized entry for one raw record.
func convertRawMessage(msg RawMessage, projectDir string) ConversationEntry {
	entry := ConversationEntry{
		SessionID:   msg.SessionID,
		Timestamp:   msg.Timestamp,
		Type:        msg.Type,
		Content:     flattenContent(msg.Message),
		ProjectPath: DecodeProjectPath(projectDir),
		UUID:        msg.UUID,
	}

	if t, err := time.Parse(time.RFC3339, msg.Timestamp); err == nil {
		local := t.In(time.Local)
		entry.FormattedTime = local.Format("2006-01-02 15:04:05")
		entry.LocalDate = local.Format("2006-01-02")
		entry.TimeAgo = timeAgo(t)
	}

	if msg.Message != nil && (msg.Message.Usage != nil || msg.Message.Model != "" || msg.RequestID != "") {
		entry.Metadata = &EntryMetadata{
			Usage:     msg.Message.Usage,
			Model:     msg.Message.Model,
			RequestID: msg.RequestID,
		}
	}

	return entry
}

// flattenContent reduces the message content to one displayable string.
// String content passes through untouched. Array content joins its blocks
// with a single space: plain strings and text blocks contribute their text,
// anything else is serialized verbatim as a fallback.
func flattenContent(body *MessageBody) string {
	if body == nil || len(body.Content) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(body.Content, &plain); err == nil {
		return plain
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body.Content, &items); err != nil {
		return ""
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			parts = append(parts, str)
			continue
		}

		var block struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(item, &block); err == nil && block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
			continue
		}

		var compacted bytes.Buffer
		if err := json.Compact(&compacted, item); err == nil {
			parts = append(parts, compacted.String())
		} else {
			parts = append(parts, string(item))
		}
	}
	return strings.Join(parts, " ")
}

// timeAgo buckets an instant into a short relative description.
func timeAgo(t time.Time) string {
	d := time.Since(t)
	mins := int(d.Minutes())
	hours := int(d.Hours())
	days := int(d.Hours() / 24)

	switch {
	case mins < 1:
		return "just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	case days < 30:
		return fmt.Sprintf("%dw ago", days/7)
	case days < 365:
		return fmt.Sprintf("%dmo ago", days/30)
	default:
		return fmt.Sprintf("%dy ago", days/365)
	}
}
