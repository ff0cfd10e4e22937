package history

import (
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHistoryLimit = 20
	DefaultSearchLimit  = 30
)

// Service answers queries over the conversation-log corpus. It holds no state
// beyond the store location: every call independently re-scans the
// filesystem, so results always reflect the store as it is now.
type Service struct {
	claudeDir string
}

type Option func(*Service)

// WithClaudeDir overrides the store root (default: CLAUDE_HOME or ~/.claude).
func WithClaudeDir(dir string) Option {
	return func(s *Service) { s.claudeDir = dir }
}

func NewService(opts ...Option) *Service {
	s := &Service{claudeDir: ClaudeHome()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetConversationHistory returns one page of conversation entries, filtered
// by session, date window and message type, sorted newest first. Message
// types default to user only to keep the data volume down.
func (s *Service) GetConversationHistory(opts HistoryOptions) (*ConversationPage, error) {
	start, end := normalizeRange(opts.StartDate, opts.EndDate, opts.Timezone)

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	offset := max(opts.Offset, 0)

	allowedTypes := opts.MessageTypes
	if len(allowedTypes) == 0 {
		allowedTypes = []string{"user"}
	}

	entries := s.loadEntries(start, end)

	if opts.SessionID != "" {
		entries = lo.Filter(entries, func(e ConversationEntry, _ int) bool {
			return e.SessionID == opts.SessionID
		})
	}

	entries = lo.Filter(entries, func(e ConversationEntry, _ int) bool {
		return lo.Contains(allowedTypes, e.Type)
	})

	// The line-level window in the parser is only a pre-filter; re-applying
	// the exact bounds here guarantees precision regardless of how files
	// were scanned.
	entries = filterByRange(entries, start, end)

	sortNewestFirst(entries)

	total := len(entries)
	page := entries[min(offset, total):min(offset+limit, total)]

	return &ConversationPage{
		Entries: page,
		Pagination: Pagination{
			TotalCount: total,
			Limit:      limit,
			Offset:     offset,
			HasMore:    offset+limit < total,
		},
	}, nil
}

// SearchConversations finds entries whose content contains query,
// case-insensitively, newest first, at most opts.Limit results.
func (s *Service) SearchConversations(query string, opts SearchOptions) ([]ConversationEntry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, oops.Errorf("search query is required")
	}

	start, end := normalizeRange(opts.StartDate, opts.EndDate, opts.Timezone)

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	queryLower := strings.ToLower(query)

	matched := lo.Filter(s.loadEntries(start, end), func(e ConversationEntry, _ int) bool {
		return strings.Contains(strings.ToLower(e.Content), queryLower)
	})

	if opts.ProjectPath != "" {
		matched = lo.Filter(matched, func(e ConversationEntry, _ int) bool {
			return e.ProjectPath == opts.ProjectPath
		})
	}

	matched = filterByRange(matched, start, end)
	sortNewestFirst(matched)

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// ListProjects aggregates every project directory in one walk: distinct
// session IDs, total parsed messages, and the newest file modification time.
func (s *Service) ListProjects() ([]ProjectInfo, error) {
	dirs, err := ListProjectDirs(s.claudeDir)
	if err != nil {
		return nil, err
	}

	type projectAgg struct {
		sessionIDs   map[string]struct{}
		messageCount int
		lastActivity string
	}
	byPath := map[string]*projectAgg{}

	for _, dir := range dirs {
		files, err := ListSessionFiles(dir.Path)
		if err != nil {
			logger.Warnf("Error listing session files in %s: %v", dir.Path, err)
			continue
		}

		agg := byPath[dir.ProjectPath]
		if agg == nil {
			agg = &projectAgg{
				sessionIDs:   map[string]struct{}{},
				lastActivity: "1970-01-01T00:00:00.000Z",
			}
			byPath[dir.ProjectPath] = agg
		}

		for _, file := range files {
			agg.sessionIDs[file.SessionID] = struct{}{}

			info, err := os.Stat(file.Path)
			if err != nil {
				logger.Warnf("Failed to stat %s: %v", file.Path, err)
				continue
			}
			if mod := info.ModTime().UTC().Format(isoMillis); mod > agg.lastActivity {
				agg.lastActivity = mod
			}

			entries, _, err := ParseSessionFile(file.Path, dir.Name, "", "")
			if err != nil {
				logger.Warnf("Error reading session file %s: %v", file.Path, err)
				continue
			}
			agg.messageCount += len(entries)
		}
	}

	projects := make([]ProjectInfo, 0, len(byPath))
	for path, agg := range byPath {
		projects = append(projects, ProjectInfo{
			ProjectPath:      path,
			SessionCount:     len(agg.sessionIDs),
			MessageCount:     agg.messageCount,
			LastActivityTime: agg.lastActivity,
		})
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].LastActivityTime > projects[j].LastActivityTime
	})
	return projects, nil
}

// ListSessions summarizes every session file, newest start time first.
// Each file is read in full — start and end times come from the min and max
// record timestamps, never from file metadata or line order — and sessions
// whose [start, end] interval overlaps the requested window at all are
// admitted, boundaries inclusive. Sessions with zero parsed entries are
// excluded.
func (s *Service) ListSessions(opts SessionOptions) ([]SessionInfo, error) {
	start, end := normalizeRange(opts.StartDate, opts.EndDate, opts.Timezone)

	dirs, err := ListProjectDirs(s.claudeDir)
	if err != nil {
		return nil, err
	}

	var sessions []SessionInfo
	for _, dir := range dirs {
		if opts.ProjectPath != "" && dir.ProjectPath != opts.ProjectPath {
			continue
		}

		files, err := ListSessionFiles(dir.Path)
		if err != nil {
			logger.Warnf("Error listing session files in %s: %v", dir.Path, err)
			continue
		}

		for _, file := range files {
			entries, _, err := ParseSessionFile(file.Path, dir.Name, "", "")
			if err != nil {
				logger.Warnf("Error reading session file %s: %v", file.Path, err)
				continue
			}
			if len(entries) == 0 {
				continue
			}

			startTime, endTime := entries[0].Timestamp, entries[0].Timestamp
			for _, e := range entries[1:] {
				if e.Timestamp < startTime {
					startTime = e.Timestamp
				}
				if e.Timestamp > endTime {
					endTime = e.Timestamp
				}
			}

			if start != "" && endTime < start {
				continue
			}
			if end != "" && startTime > end {
				continue
			}

			sessions = append(sessions, SessionInfo{
				SessionID:   file.SessionID,
				ProjectPath: dir.ProjectPath,
				StartTime:   startTime,
				EndTime:     endTime,
				MessageCount: len(entries),
				UserMessageCount: lo.CountBy(entries, func(e ConversationEntry) bool {
					return e.Type == "user"
				}),
				AssistantMessageCount: lo.CountBy(entries, func(e ConversationEntry) bool {
					return e.Type == "assistant"
				}),
			})
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime > sessions[j].StartTime
	})
	return sessions, nil
}

// loadEntries scans every session file that survives metadata pruning and
// concatenates the parsed entries. Files are independent, so they are parsed
// in parallel; ordering does not matter because callers sort the merged
// result. Per-file failures are logged and skipped — one unreadable file
// never aborts the whole query.
func (s *Service) loadEntries(start, end string) []ConversationEntry {
	dirs, err := ListProjectDirs(s.claudeDir)
	if err != nil {
		logger.Warnf("Error loading history: %v", err)
		return nil
	}

	type candidate struct {
		file    SessionFile
		dirName string
	}
	var candidates []candidate

	for _, dir := range dirs {
		files, err := ListSessionFiles(dir.Path)
		if err != nil {
			logger.Warnf("Error listing session files in %s: %v", dir.Path, err)
			continue
		}
		for _, file := range files {
			if !MayContain(file.Path, start, end) {
				logger.Debugf("Pruned %s by file times", file.Path)
				continue
			}
			candidates = append(candidates, candidate{file: file, dirName: dir.Name})
		}
	}

	results := make([][]ConversationEntry, len(candidates))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range candidates {
		g.Go(func() error {
			entries, stats, err := ParseSessionFile(c.file.Path, c.dirName, start, end)
			if err != nil {
				logger.Warnf("Error reading session file %s: %v", c.file.Path, err)
				return nil
			}
			if stats.Malformed > 0 {
				logger.Debugf("Skipped %d malformed lines in %s", stats.Malformed, c.file.Path)
			}
			results[i] = entries
			return nil
		})
	}
	_ = g.Wait()

	return lo.Flatten(results)
}

func filterByRange(entries []ConversationEntry, start, end string) []ConversationEntry {
	if start == "" && end == "" {
		return entries
	}
	return lo.Filter(entries, func(e ConversationEntry, _ int) bool {
		return (start == "" || e.Timestamp >= start) && (end == "" || e.Timestamp <= end)
	})
}

func sortNewestFirst(entries []ConversationEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
}
