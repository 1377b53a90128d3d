package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/semdex/semdex/internal/store"
	"github.com/semdex/semdex/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeSourceNotFound  = -32001 // Source path does not exist
	ErrorCodeBuildInProgress = -32002 // Another build is already running
	ErrorCodeNotIndexed      = -32003 // No index has been built yet
	ErrorCodeEmptyQuery      = -32004 // Query parameter is empty
	ErrorCodeModelMismatch   = -32005 // Index was built with a different model
)

// handleBuildIndex validates the requested path and runs a build over it.
func (s *Server) handleBuildIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		code := ErrorCodeInvalidParams
		if errors.Is(err, ErrPathNotFound) {
			code = ErrorCodeSourceNotFound
		}
		return nil, newMCPError(code, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	forceRebuild, _ := args["force_rebuild"].(bool)
	extensions := getStringSlice(args, "extensions")

	start := time.Now()
	idx, fileCount, err := s.BuildIndex(ctx, path, forceRebuild, extensions)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrBuildInProgress):
			return nil, newMCPError(ErrorCodeBuildInProgress, "another build is already running", nil)
		case errors.Is(err, types.ErrBuildCancelled):
			return nil, newMCPError(ErrorCodeInternalError, "build was cancelled", map[string]interface{}{
				"error": err.Error(),
			})
		default:
			return nil, newMCPError(ErrorCodeInternalError, "build failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	response := map[string]interface{}{
		"built":       true,
		"files":       fileCount,
		"snippets":    idx.Len(),
		"model":       idx.Model,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if degraded := idx.DegradedCount(); degraded > 0 {
		response["degraded_snippets"] = degraded
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchCode embeds the query and returns the top ranked snippets.
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

	topK := getIntDefault(args, "top_k", s.cfg.Search.DefaultTopK)
	if topK < 1 || topK > s.cfg.Search.MaxTopK {
		return nil, newMCPError(ErrorCodeInvalidParams,
			fmt.Sprintf("top_k must be between 1 and %d", s.cfg.Search.MaxTopK), map[string]interface{}{
				"param": "top_k",
				"value": topK,
			})
	}

	idx, err := s.getIndex(ctx)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrIndexNotFound):
			return nil, newMCPError(ErrorCodeNotIndexed, "no index found, use build_index first", nil)
		default:
			return nil, newMCPError(ErrorCodeInternalError, "failed to load index", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	results, err := s.searcher.Search(ctx, query, topK, idx)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrModelMismatch):
			return nil, newMCPError(ErrorCodeModelMismatch, "index was built with a different model", map[string]interface{}{
				"error": err.Error(),
			})
		case errors.Is(err, types.ErrEmptyQuery):
			return nil, newMCPError(ErrorCodeEmptyQuery, "query cannot be empty", nil)
		default:
			return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	formatted := make([]map[string]interface{}, len(results))
	for i, r := range results {
		formatted[i] = map[string]interface{}{
			"rank":       i + 1,
			"similarity": r.Similarity,
			"file":       r.Snippet.File,
			"name":       r.Snippet.Name,
			"code":       r.Snippet.Code,
		}
	}

	response := map[string]interface{}{
		"query":          query,
		"model":          idx.Model,
		"total_snippets": idx.Len(),
		"results":        formatted,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexStatus reports whether an index exists and what it holds.
func (s *Server) handleIndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := s.getIndex(ctx)
	if errors.Is(err, types.ErrIndexNotFound) {
		response := map[string]interface{}{
			"indexed": false,
			"message": "No index found. Use build_index to create one.",
			"storage": storageInfo(s.cfg.Index.Backend, s.cfg.Index.Path),
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if errors.Is(err, types.ErrCorruptIndex) {
		response := map[string]interface{}{
			"indexed": false,
			"corrupt": true,
			"error":   err.Error(),
			"storage": storageInfo(s.cfg.Index.Backend, s.cfg.Index.Path),
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load index", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed": true,
		"index": map[string]interface{}{
			"model":             idx.Model,
			"snippets":          idx.Len(),
			"dimension":         idx.Dimension(),
			"degraded_snippets": idx.DegradedCount(),
		},
		"embedding": map[string]interface{}{
			"provider": s.client.ProviderName(),
			"model":    s.client.Model(),
		},
		"storage": storageInfo(s.cfg.Index.Backend, s.cfg.Index.Path),
		"watch": map[string]interface{}{
			"enabled":     s.cfg.Watch.Enabled,
			"directories": s.cfg.Watch.Directories,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

func storageInfo(backend, path string) map[string]interface{} {
	return map[string]interface{}{
		"backend":    backend,
		"path":       path,
		"build_mode": store.BuildMode,
	}
}

// MCPError carries a JSON-RPC error code, message, and optional data
// payload. Handlers return it as a plain error; the framework encodes it.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

// Reasons a build_index path is rejected, surfaced in error data.
var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)

// validatePath checks that a path names an existing, readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ErrPathNotFound
	case err != nil:
		return ErrPathNotReadable
	case !info.IsDir():
		return ErrNotDirectory
	}

	dir, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = dir.Close()

	return nil
}

// formatJSON renders a response map as the indented JSON text payload.
func formatJSON(data map[string]interface{}) string {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(out)
}

// getIntDefault reads an integer argument, tolerating the float64 that JSON
// decoding produces for every number.
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
