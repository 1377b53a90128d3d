package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// buildIndexTool returns the tool definition for build_index
func buildIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "build_index",
		Description: "Build the semantic code index for a source directory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the source directory to index",
				},
				"force_rebuild": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, rebuild even when a persisted index already exists",
					"default":     false,
				},
				"extensions": map[string]interface{}{
					"type":        "array",
					"description": "File extensions to include (defaults to the configured list)",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchCodeTool returns the tool definition for search_code. The top_k
// bounds advertised here are the same ones the handler enforces.
func searchCodeTool(defaultTopK, maxTopK int) mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Search the indexed code with natural language or keyword queries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "What to look for, in plain language or keywords",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return",
					"default":     defaultTopK,
					"minimum":     1,
					"maximum":     maxTopK,
				},
			},
			Required: []string{"query"},
		},
	}
}

// indexStatusTool returns the tool definition for index_status
func indexStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_status",
		Description: "Report whether an index exists along with its statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
