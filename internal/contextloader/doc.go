// Package contextloader assembles a startup context block for coding
// agents from three sources in priority order: recently accessed files,
// semantic search matches for the current task, and frequently accessed
// files. File usage is tracked in a JSON cache under the project state
// directory.
package contextloader
