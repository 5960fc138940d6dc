// Package schedule_tools provides MCP tools for the meeting scheduler.
//
// This package implements MCP (Model Context Protocol) tools that wrap the
// scheduler's core operations, so AI assistants can manage meetings the same
// way the CLI does.
//
// # Available Tools
//
// Read-only:
//   - list_meetings: List meetings with optional query/platform filtering
//   - agenda: List meetings grouped by day in chronological order
//   - get_meeting: Get a single meeting by ID
//   - check_conflicts: Advisory conflict check for a candidate start time
//   - auth_status: Show provider session states
//
// Write (skipped in read-only mode):
//   - schedule_meeting: Create a meeting with link generation
//   - update_meeting: Replace an existing meeting's record
//   - delete_meeting: Delete a meeting by ID
//   - send_invites: Email one invite per participant
package schedule_tools
