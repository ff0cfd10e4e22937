package history

import (
	"fmt"
	"time"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
)

// Pretty formats one conversation entry for terminal display: timestamp and
// type on the first line, flattened content below.
func (e ConversationEntry) Pretty() api.Text {
	text := clicky.Text("").
		Append(shortTime(e.Timestamp)+"  ", "text-gray-500").
		Append(e.Type, typeStyle(e.Type))

	if e.TimeAgo != "" {
		text = text.Append("  "+e.TimeAgo, "text-gray-400 text-xs")
	}

	text = text.NewLine().Append(truncate(e.Content, 200), "wrap-space")

	return text
}

// Pretty formats a project summary as a single line.
func (p ProjectInfo) Pretty() api.Text {
	return clicky.Text("").
		Append(p.ProjectPath, "text-blue-300").
		Append(fmt.Sprintf("  %d sessions, %d messages", p.SessionCount, p.MessageCount), "text-gray-500").
		Append("  "+shortTime(p.LastActivityTime), "text-gray-400 text-xs")
}

// Pretty formats a session summary as a single line.
func (s SessionInfo) Pretty() api.Text {
	return clicky.Text("").
		Append(s.SessionID+"  ", "text-blue-300").
		Append(s.ProjectPath, "text-gray-500").
		NewLine().
		Append(fmt.Sprintf("%s → %s  %d messages (%d user, %d assistant)",
			shortTime(s.StartTime), shortTime(s.EndTime),
			s.MessageCount, s.UserMessageCount, s.AssistantMessageCount), "text-gray-400 text-xs")
}

func typeStyle(messageType string) string {
	switch messageType {
	case "user":
		return "text-green-300"
	case "assistant":
		return "text-blue-300"
	default:
		return "text-gray-400"
	}
}

// shortTime renders a stored timestamp compactly: time of day when recent,
// date otherwise.
func shortTime(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	if time.Since(t).Hours() < 24 {
		return t.Local().Format("15:04:05")
	}
	return t.Local().Format("2006-01-02")
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
