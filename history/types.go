package history

import "encoding/json"

// RawMessage is one line of a session JSONL file as Claude Code writes it.
// Files are append-only and never mutated by this package.
type RawMessage struct {
	ParentUUID  *string      `json:"parentUuid"`
	IsSidechain bool         `json:"isSidechain,omitempty"`
	UserType    string       `json:"userType,omitempty"`
	CWD         string       `json:"cwd,omitempty"`
	SessionID   string       `json:"sessionId"`
	Version     string       `json:"version,omitempty"`
	Type        string       `json:"type"`
	Message     *MessageBody `json:"message,omitempty"`
	UUID        string       `json:"uuid"`
	Timestamp   string       `json:"timestamp"`
	RequestID   string       `json:"requestId,omitempty"`
}

// MessageBody carries the inner message payload. Content is kept raw because
// it is either a plain string or an array of content blocks.
type MessageBody struct {
	Role    string          `json:"role,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
	Model   string          `json:"model,omitempty"`
	Usage   map[string]any  `json:"usage,omitempty"`
}

// ConversationEntry is the normalized, displayable form of one raw message.
type ConversationEntry struct {
	SessionID     string         `json:"sessionId"`
	Timestamp     string         `json:"timestamp"`
	Type          string         `json:"type"`
	Content       string         `json:"content"`
	ProjectPath   string         `json:"projectPath"`
	UUID          string         `json:"uuid"`
	FormattedTime string         `json:"formattedTime,omitempty"`
	TimeAgo       string         `json:"timeAgo,omitempty"`
	LocalDate     string         `json:"localDate,omitempty"`
	Metadata      *EntryMetadata `json:"metadata,omitempty"`
}

type EntryMetadata struct {
	Usage     map[string]any `json:"usage,omitempty"`
	Model     string         `json:"model,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

// ProjectInfo aggregates one project directory.
type ProjectInfo struct {
	ProjectPath      string `json:"projectPath"`
	SessionCount     int    `json:"sessionCount"`
	MessageCount     int    `json:"messageCount"`
	LastActivityTime string `json:"lastActivityTime"`
}

// SessionInfo summarizes one session file. Start and end times come from the
// record timestamps, not from file metadata.
type SessionInfo struct {
	SessionID             string `json:"sessionId"`
	ProjectPath           string `json:"projectPath"`
	StartTime             string `json:"startTime"`
	EndTime               string `json:"endTime"`
	MessageCount          int    `json:"messageCount"`
	UserMessageCount      int    `json:"userMessageCount"`
	AssistantMessageCount int    `json:"assistantMessageCount"`
}

type Pagination struct {
	TotalCount int  `json:"total_count"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"has_more"`
}

// ConversationPage is one page of filtered, newest-first conversation history.
type ConversationPage struct {
	Entries    []ConversationEntry `json:"entries"`
	Pagination Pagination          `json:"pagination"`
}

// HistoryOptions filters and paginates GetConversationHistory.
type HistoryOptions struct {
	SessionID    string   `json:"sessionId,omitempty" flag:"session" help:"Restrict to a single session ID"`
	StartDate    string   `json:"startDate,omitempty" flag:"since" help:"Start date (YYYY-MM-DD or full ISO timestamp)"`
	EndDate      string   `json:"endDate,omitempty" flag:"until" help:"End date (YYYY-MM-DD or full ISO timestamp)"`
	Limit        int      `json:"limit,omitempty" flag:"limit" help:"Maximum number of entries to return" default:"20"`
	Offset       int      `json:"offset,omitempty" flag:"offset" help:"Number of entries to skip for pagination" default:"0"`
	MessageTypes []string `json:"messageTypes,omitempty" flag:"type" help:"Message types to include: user, assistant, system, result (default: user)"`
	Timezone     string   `json:"timezone,omitempty" flag:"timezone" help:"IANA timezone for date filtering (default: system timezone)"`
}

func (HistoryOptions) GetName() string { return "history" }

// SessionOptions filters ListSessions.
type SessionOptions struct {
	ProjectPath string `json:"projectPath,omitempty" flag:"project" help:"Restrict to a single decoded project path"`
	StartDate   string `json:"startDate,omitempty" flag:"since" help:"Start date (YYYY-MM-DD or full ISO timestamp)"`
	EndDate     string `json:"endDate,omitempty" flag:"until" help:"End date (YYYY-MM-DD or full ISO timestamp)"`
	Timezone    string `json:"timezone,omitempty" flag:"timezone" help:"IANA timezone for date filtering (default: system timezone)"`
}

func (SessionOptions) GetName() string { return "sessions" }

// SearchOptions filters SearchConversations. The query itself is a separate
// required argument.
type SearchOptions struct {
	Limit       int    `json:"limit,omitempty" flag:"limit" help:"Maximum number of results to return" default:"30"`
	ProjectPath string `json:"projectPath,omitempty" flag:"project" help:"Restrict to a single decoded project path"`
	StartDate   string `json:"startDate,omitempty" flag:"since" help:"Start date (YYYY-MM-DD or full ISO timestamp)"`
	EndDate     string `json:"endDate,omitempty" flag:"until" help:"End date (YYYY-MM-DD or full ISO timestamp)"`
	Timezone    string `json:"timezone,omitempty" flag:"timezone" help:"IANA timezone for date filtering (default: system timezone)"`
}

// ProjectListOptions exists so the projects subcommand can be wired like the
// others; ListProjects takes no filters.
type ProjectListOptions struct{}

func (ProjectListOptions) GetName() string { return "projects" }
