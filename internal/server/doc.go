// Package server holds the shared dependency context for the MCP server.
// Tool packages receive a ServerContext and reach the store, sessions and
// scheduler through it rather than through globals.
package server
