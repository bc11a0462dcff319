package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/kettleby/autoctx/internal/indexer"
	"github.com/kettleby/autoctx/pkg/types"
)

// MCP error codes.
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32002 // Another indexing pass is already running
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
)

// MCPError is a protocol error with a JSON-RPC code.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

// handleIndexProject runs one reindex pass and reports its summary.
func (s *Server) handleIndexProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	var summary *types.Summary
	var err error
	if getBoolDefault(args, "force", false) {
		summary, err = s.indexer.Rebuild(ctx)
	} else {
		summary, err = s.indexer.Reindex(ctx)
	}
	if errors.Is(err, indexer.ErrReindexInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":     true,
		"total":       summary.Total(),
		"added":       summary.Added,
		"updated":     summary.Updated,
		"removed":     summary.Removed,
		"unchanged":   summary.Unchanged,
		"failed":      summary.Failed,
		"duration_ms": summary.Duration.Milliseconds(),
	}
	if len(summary.Errors) > 0 {
		errs := summary.Errors
		if len(errs) > 5 {
			response["error_count"] = len(errs)
			errs = errs[:5]
		}
		response["errors"] = errs
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchCode runs a similarity search over the current snapshot.
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 0)
	if limit < 0 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	results, err := s.searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := s.loader.Tracker().SetQuery(query); err != nil && s.logger != nil {
		s.logger.Warn("failed to record query", zap.Error(err))
	}

	items := make([]map[string]interface{}, len(results))
	for i, res := range results {
		items[i] = map[string]interface{}{
			"path":           res.Chunk.Path,
			"start_line":     res.Chunk.StartLine,
			"end_line":       res.Chunk.EndLine,
			"line_count":     res.Chunk.LineCount(),
			"token_estimate": res.Chunk.TokenEstimate(),
			"score":          res.Score,
			"content":        res.Chunk.Content,
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"total":   len(items),
		"results": items,
	})), nil
}

// handleLoadContext assembles a context block for the given task.
func (s *Server) handleLoadContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	task := getStringDefault(args, "task", "")
	budget := getIntDefault(args, "token_budget", 0)
	if budget < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "token_budget must be positive", map[string]interface{}{
			"param": "token_budget",
			"value": budget,
		})
	}

	block, err := s.loader.AutoContext(ctx, task, budget)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "context loading failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(block), nil
}

// handleGetStatus reports index statistics for the bound project.
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot := s.indexer.Snapshot()

	response := map[string]interface{}{
		"root":      s.indexer.Root(),
		"indexed":   snapshot.Len() > 0,
		"chunks":    snapshot.Len(),
		"files":     len(snapshot.Paths()),
		"dimension": snapshot.Dimension,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// formatJSON formats a map as indented JSON.
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value.
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value.
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value.
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
