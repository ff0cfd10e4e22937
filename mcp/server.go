// Package mcp exposes the history query engine over the Model Context
// Protocol on stdio. Each operation becomes a named, schema-described tool;
// errors raised by the engine come back as isError text responses so a
// misbehaving query never kills the server.
package mcp

import (
	"context"
	"encoding/json"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flanksource/claude-history/history"
)

const ServerName = "claude-code-history-mcp"

type Server struct {
	service *history.Service
	mcp     *server.MCPServer
}

// NewServer builds the MCP server and registers the four history tools.
func NewServer(service *history.Service, version string) *Server {
	s := &Server{
		service: service,
		mcp: server.NewMCPServer(ServerName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// ServeStdio blocks serving MCP requests on stdin/stdout until the client
// disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcpgo.NewTool("list_projects",
		mcpgo.WithDescription("List all projects with Claude Code conversation history (start here to explore available data)"),
	), s.handleListProjects)

	s.mcp.AddTool(mcpgo.NewTool("list_sessions",
		mcpgo.WithDescription("List conversation sessions for a project or date range (use after list_projects to find specific sessions)"),
		mcpgo.WithString("projectPath", mcpgo.Description("Filter by specific project path (optional)")),
		mcpgo.WithString("startDate", mcpgo.Description("Start date in YYYY-MM-DD or ISO format (optional)")),
		mcpgo.WithString("endDate", mcpgo.Description("End date in YYYY-MM-DD or ISO format (optional)")),
		mcpgo.WithString("timezone", mcpgo.Description("Timezone for date filtering (e.g. \"Asia/Tokyo\", \"UTC\"). Defaults to system timezone.")),
	), s.handleListSessions)

	s.mcp.AddTool(mcpgo.NewTool("get_conversation_history",
		mcpgo.WithDescription("Get paginated conversation history (use after exploring with list_projects/list_sessions for targeted data)"),
		mcpgo.WithString("sessionId", mcpgo.Description("Specific session ID to get history for (optional)")),
		mcpgo.WithString("startDate", mcpgo.Description("Start date in YYYY-MM-DD or ISO format (optional)")),
		mcpgo.WithString("endDate", mcpgo.Description("End date in YYYY-MM-DD or ISO format (optional)")),
		mcpgo.WithNumber("limit",
			mcpgo.Description("Maximum number of conversations to return (default: 20)"),
			mcpgo.DefaultNumber(history.DefaultHistoryLimit)),
		mcpgo.WithNumber("offset",
			mcpgo.Description("Number of conversations to skip for pagination (default: 0)"),
			mcpgo.DefaultNumber(0)),
		mcpgo.WithArray("messageTypes",
			mcpgo.Description("Filter by specific message types. Defaults to [\"user\"] to reduce data volume. Use [\"user\", \"assistant\"] to include Claude responses."),
			mcpgo.Items(map[string]any{
				"type": "string",
				"enum": []string{"user", "assistant", "system", "result"},
			})),
		mcpgo.WithString("timezone", mcpgo.Description("Timezone for date filtering (e.g. \"Asia/Tokyo\", \"UTC\"). Defaults to system timezone.")),
	), s.handleGetConversationHistory)

	s.mcp.AddTool(mcpgo.NewTool("search_conversations",
		mcpgo.WithDescription("Search through conversation history by content (useful for finding specific topics across all conversations)"),
		mcpgo.WithString("query", mcpgo.Required(),
			mcpgo.Description("Search query to find in conversation content")),
		mcpgo.WithNumber("limit",
			mcpgo.Description("Maximum number of results to return (default: 30)"),
			mcpgo.DefaultNumber(history.DefaultSearchLimit)),
		mcpgo.WithString("projectPath", mcpgo.Description("Filter by specific project path (optional)")),
		mcpgo.WithString("startDate", mcpgo.Description("Start date in YYYY-MM-DD or ISO format (optional)")),
		mcpgo.WithString("endDate", mcpgo.Description("End date in YYYY-MM-DD or ISO format (optional)")),
		mcpgo.WithString("timezone", mcpgo.Description("Timezone for date filtering (e.g. \"Asia/Tokyo\", \"UTC\"). Defaults to system timezone.")),
	), s.handleSearchConversations)
}

func (s *Server) handleListProjects(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	projects, err := s.service.ListProjects()
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	return jsonResult(projects)
}

func (s *Server) handleListSessions(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	sessions, err := s.service.ListSessions(history.SessionOptions{
		ProjectPath: req.GetString("projectPath", ""),
		StartDate:   req.GetString("startDate", ""),
		EndDate:     req.GetString("endDate", ""),
		Timezone:    req.GetString("timezone", ""),
	})
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sessions)
}

func (s *Server) handleGetConversationHistory(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	page, err := s.service.GetConversationHistory(history.HistoryOptions{
		SessionID:    req.GetString("sessionId", ""),
		StartDate:    req.GetString("startDate", ""),
		EndDate:      req.GetString("endDate", ""),
		Limit:        req.GetInt("limit", history.DefaultHistoryLimit),
		Offset:       req.GetInt("offset", 0),
		MessageTypes: req.GetStringSlice("messageTypes", nil),
		Timezone:     req.GetString("timezone", ""),
	})
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	return jsonResult(page)
}

func (s *Server) handleSearchConversations(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcpgo.NewToolResultError("Search query is required"), nil
	}

	results, err := s.service.SearchConversations(query, history.SearchOptions{
		Limit:       req.GetInt("limit", history.DefaultSearchLimit),
		ProjectPath: req.GetString("projectPath", ""),
		StartDate:   req.GetString("startDate", ""),
		EndDate:     req.GetString("endDate", ""),
		Timezone:    req.GetString("timezone", ""),
	})
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

// jsonResult marshals data as the single text content block of a tool result,
// matching how MCP clients expect structured payloads.
func jsonResult(data any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	return mcpgo.NewToolResultText(string(b)), nil
}
