// Package mcp implements the Model Context Protocol server for autoctx.
//
// The server is bound to a single project root and exposes four tools
// to AI coding assistants over JSON-RPC 2.0 on stdio:
//
//   - index_project: build or incrementally update the semantic index
//   - search_code: similarity search with a natural language query
//   - load_context: assemble a startup context block for a task
//   - get_status: report index statistics
//
// Because the binding is per-project, tools take no path argument; a
// client working across projects runs one server per root.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "Invalid params",
//	    "data": {"param": "query", "reason": "missing or empty"}
//	  }
//	}
//
// Error codes:
//   - -32602: invalid params (missing/invalid arguments)
//   - -32603: internal error (embedding provider, filesystem)
//   - -32002: indexing already in progress
//   - -32004: empty query
//
// Per-file indexing failures are not errors: index_project reports them
// inside its result so a partial pass still succeeds.
//
// # Logging
//
// stdout carries protocol traffic only; all logging goes to stderr.
package mcp
