// Package mcp implements the Model Context Protocol (MCP) server for semdex.
//
// The MCP server exposes three tools to AI coding assistants:
//   - build_index: Index a source directory for semantic search
//   - search_code: Search indexed code with natural language queries
//   - index_status: Check whether an index exists and report its statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output,
// making it simple to integrate with any MCP-compatible client.
//
// # Basic Usage
//
// The MCP server is typically started via the semdex binary:
//
//	semdex
//
// It then listens on stdin for MCP protocol messages and writes responses
// to stdout.
//
// # Tool: build_index
//
// Build the index for a source directory:
//
//	Request:
//	{
//	  "name": "build_index",
//	  "arguments": {
//	    "path": "/path/to/sources",
//	    "force_rebuild": false,
//	    "extensions": [".c", ".h", ".py"]
//	  }
//	}
//
//	Response:
//	{
//	  "built": true,
//	  "files": 42,
//	  "snippets": 367,
//	  "model": "text-embedding-3-small",
//	  "duration_ms": 8214
//	}
//
// When a persisted index already exists and force_rebuild is false, the
// existing index is loaded instead of rebuilt. Snippets whose embeddings
// could not be generated are reported under degraded_snippets.
//
// # Tool: search_code
//
// Search the indexed code by meaning:
//
//	Request:
//	{
//	  "name": "search_code",
//	  "arguments": {
//	    "query": "parse configuration file",
//	    "top_k": 5
//	  }
//	}
//
//	Response:
//	{
//	  "query": "parse configuration file",
//	  "model": "text-embedding-3-small",
//	  "total_snippets": 367,
//	  "results": [
//	    {
//	      "rank": 1,
//	      "similarity": 0.83,
//	      "file": "src/config.c",
//	      "name": "load_config",
//	      "code": "int load_config(const char *path) { ... }"
//	    }
//	  ]
//	}
//
// # Tool: index_status
//
// Check the index:
//
//	Request:
//	{
//	  "name": "index_status",
//	  "arguments": {}
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "index": {
//	    "model": "text-embedding-3-small",
//	    "snippets": 367,
//	    "dimension": 1536,
//	    "degraded_snippets": 0
//	  },
//	  "storage": {
//	    "backend": "file",
//	    "path": "/home/user/.semdex/code_embeddings.json",
//	    "build_mode": "purego"
//	  }
//	}
//
// # MCP Client Configuration
//
// Configure in an MCP client's settings:
//
//	{
//	  "mcpServers": {
//	    "semdex": {
//	      "command": "/usr/local/bin/semdex",
//	      "env": {
//	        "OPENAI_API_KEY": "your-api-key"
//	      }
//	    }
//	  }
//	}
//
// # Error Handling
//
// The MCP server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "invalid path",
//	    "data": {
//	      "param": "path",
//	      "reason": "path does not exist"
//	    }
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (embedding provider, storage, etc.)
//   - -32001: Source path not found
//   - -32002: Build already in progress
//   - -32003: Not indexed yet
//   - -32004: Empty query
//   - -32005: Index built with a different model
//
// # Logging
//
// The MCP server logs to stderr (stdout is reserved for MCP protocol).
// Build progress is logged at debug level as the pipeline advances through
// discovery, extraction, and embedding.
package mcp
