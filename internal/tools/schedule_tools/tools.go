package schedule_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/example/meeting-scheduler/internal/instrumentation"
	"github.com/example/meeting-scheduler/internal/meeting"
	"github.com/example/meeting-scheduler/internal/server"
	"github.com/example/meeting-scheduler/internal/views"
)

// meetingPayload is the wire shape tools return for a meeting.
type meetingPayload struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	Duration     string   `json:"duration"`
	Platform     string   `json:"platform"`
	Participants []string `json:"participants"`
	Location     string   `json:"location"`
	Description  string   `json:"description,omitempty"`
	MeetingLink  string   `json:"meetingLink"`
	Recurring    bool     `json:"recurring"`
	Status       string   `json:"status"`
	Timezone     string   `json:"timezone"`
}

func toPayload(m meeting.Meeting) meetingPayload {
	return meetingPayload{
		ID:           m.ID,
		Title:        m.Title,
		Date:         m.Date.Format(time.RFC3339),
		Time:         m.DisplayTime(),
		Duration:     m.Duration,
		Platform:     string(m.Platform),
		Participants: m.Participants,
		Location:     m.Location,
		Description:  m.Description,
		MeetingLink:  m.MeetingLink,
		Recurring:    m.Recurring,
		Status:       m.Status,
		Timezone:     m.Timezone,
	}
}

func toPayloads(meetings []meeting.Meeting) []meetingPayload {
	out := make([]meetingPayload, len(meetings))
	for i, m := range meetings {
		out[i] = toPayload(m)
	}
	return out
}

// dateLayouts are the accepted input formats for meeting dates, tried in
// order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02 3:04 PM",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (use RFC3339 or \"2006-01-02 15:04\")", s)
}

func getString(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func getBool(args map[string]interface{}, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// getID extracts the meeting ID, which clients may send as a number or a
// string.
func getID(args map[string]interface{}) (int64, error) {
	switch v := args["id"].(type) {
	case float64:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid meeting id %q", v)
		}
		return id, nil
	}
	return 0, fmt.Errorf("id is required")
}

// instrumented wraps a tool handler with invocation metrics. A signed-in
// identity contributes the account label, which the recorder only emits when
// detailed labels are enabled.
func instrumented(sc *server.ServerContext, name string, handler mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := handler(ctx, request)
		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}
		if account := sc.Sessions().Identity().Email; account != "" {
			sc.Metrics().RecordToolInvocationWithAccount(ctx, name, status, account, time.Since(start))
		} else {
			sc.Metrics().RecordToolInvocation(ctx, name, status, time.Since(start))
		}
		return result, err
	}
}

func addTool(s *mcpserver.MCPServer, sc *server.ServerContext, tool mcp.Tool, handler mcpserver.ToolHandlerFunc) {
	s.AddTool(tool, instrumented(sc, tool.Name, handler))
}

// RegisterScheduleTools registers all meeting-related tools with the MCP
// server. Write operations are skipped in read-only mode.
func RegisterScheduleTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerReadTools(s, sc)
	if !readOnly {
		registerWriteTools(s, sc)
	}
	return nil
}

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listTool := mcp.NewTool("list_meetings",
		mcp.WithDescription("List scheduled meetings, optionally filtered by a search query and platform"),
		mcp.WithString("query",
			mcp.Description("Case-insensitive substring matched against title and description"),
		),
		mcp.WithString("platform",
			mcp.Description("Platform filter: zoom, teams, meet or all (default: all)"),
		),
	)

	addTool(s, sc, listTool, func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		filtered := views.Filter(sc.Store().All(), getString(args, "query"), getString(args, "platform"))
		result, _ := json.MarshalIndent(toPayloads(filtered), "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	})

	agendaTool := mcp.NewTool("agenda",
		mcp.WithDescription("List meetings grouped by day in chronological order"),
		mcp.WithString("query",
			mcp.Description("Case-insensitive substring matched against title and description"),
		),
		mcp.WithString("platform",
			mcp.Description("Platform filter: zoom, teams, meet or all (default: all)"),
		),
	)

	addTool(s, sc, agendaTool, func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		filtered := views.Filter(sc.Store().All(), getString(args, "query"), getString(args, "platform"))

		type dayPayload struct {
			Day      string           `json:"day"`
			Meetings []meetingPayload `json:"meetings"`
		}
		var days []dayPayload
		for _, g := range views.Agenda(filtered) {
			days = append(days, dayPayload{
				Day:      g.Day.Format("2006-01-02"),
				Meetings: toPayloads(g.Meetings),
			})
		}

		result, _ := json.MarshalIndent(days, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	})

	getTool := mcp.NewTool("get_meeting",
		mcp.WithDescription("Get a single meeting by its ID"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The meeting ID"),
		),
	)

	addTool(s, sc, getTool, func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		id, err := getID(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		m, ok := sc.Store().Get(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no meeting with id %d", id)), nil
		}

		result, _ := json.MarshalIndent(toPayload(m), "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	})

	conflictsTool := mcp.NewTool("check_conflicts",
		mcp.WithDescription("Check which existing meetings conflict with a candidate start time (same day, starts less than 60 minutes apart)"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Candidate start, RFC3339 or \"2006-01-02 15:04\""),
		),
		mcp.WithString("id",
			mcp.Description("Meeting ID to exclude, when checking an edit of an existing meeting"),
		),
		mcp.WithString("duration",
			mcp.Description("Candidate duration display string, used by the strict overlap check (default \"30 min\")"),
		),
		mcp.WithBoolean("strict",
			mcp.Description("Use true interval overlap instead of the 60-minute start proximity heuristic"),
		),
	)

	addTool(s, sc, conflictsTool, func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		date, err := parseDate(getString(args, "date"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		candidate := meeting.Meeting{Date: date, Duration: getString(args, "duration")}
		if _, ok := args["id"]; ok {
			id, err := getID(args)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			candidate.ID = id
		}

		var conflicts []meeting.Meeting
		if getBool(args, "strict") {
			conflicts = sc.Scheduler().CheckConflictsStrict(candidate)
		} else {
			conflicts = sc.Scheduler().CheckConflicts(candidate)
		}
		result, _ := json.MarshalIndent(toPayloads(conflicts), "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	})

	statusTool := mcp.NewTool("auth_status",
		mcp.WithDescription("Show the Google identity and Zoom conferencing session states"),
	)

	addTool(s, sc, statusTool, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		identity := sc.Sessions().Identity()
		conferencing := sc.Sessions().Conferencing()

		payload := map[string]any{
			"identity": map[string]any{
				"state": string(identity.State),
				"email": identity.Email,
			},
			"conferencing": map[string]any{
				"state": string(conferencing.State),
			},
		}
		result, _ := json.MarshalIndent(payload, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	})
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	scheduleTool := mcp.NewTool("schedule_meeting",
		mcp.WithDescription("Schedule a new meeting. Conflicts with existing meetings are reported but never block the save."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Meeting title"),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Start, RFC3339 or \"2006-01-02 15:04\""),
		),
		mcp.WithString("platform",
			mcp.Required(),
			mcp.Description("Conferencing platform: zoom, teams or meet"),
		),
		mcp.WithString("duration",
			mcp.Description("Duration display string, e.g. \"30 min\" or \"1 hour\" (default: \"30 min\")"),
		),
		mcp.WithString("participants",
			mcp.Description("Comma-separated participant email addresses"),
		),
		mcp.WithString("location",
			mcp.Description("Location (default: \"Virtual\")"),
		),
		mcp.WithString("description",
			mcp.Description("Free-text description"),
		),
		mcp.WithBoolean("recurring",
			mcp.Description("Mark the meeting as recurring (display only)"),
		),
	)

	addTool(s, sc, scheduleTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		date, err := parseDate(getString(args, "date"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		platform, err := meeting.ParsePlatform(getString(args, "platform"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		draft := meeting.Meeting{
			Title:        getString(args, "title"),
			Date:         date,
			Duration:     getString(args, "duration"),
			Platform:     platform,
			Participants: meeting.NormalizeParticipants(getString(args, "participants")),
			Location:     getString(args, "location"),
			Description:  getString(args, "description"),
			Recurring:    getBool(args, "recurring"),
		}

		res, err := sc.Scheduler().Schedule(ctx, draft)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to schedule meeting: %v", err)), nil
		}

		payload := map[string]any{
			"meeting":   toPayload(res.Meeting),
			"conflicts": toPayloads(res.Conflicts),
		}
		if res.UsedPlaceholder {
			payload["warning"] = "provider meeting creation failed, a placeholder link was used"
		}
		result, _ := json.MarshalIndent(payload, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	})

	updateTool := mcp.NewTool("update_meeting",
		mcp.WithDescription("Update an existing meeting. Omitted fields keep their current values; the full record is replaced."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The meeting ID"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("date",
			mcp.Description("New start, RFC3339 or \"2006-01-02 15:04\""),
		),
		mcp.WithString("platform",
			mcp.Description("New platform: zoom, teams or meet"),
		),
		mcp.WithString("duration",
			mcp.Description("New duration display string"),
		),
		mcp.WithString("participants",
			mcp.Description("Comma-separated participant email addresses, replacing the current list"),
		),
		mcp.WithString("location",
			mcp.Description("New location"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
	)

	addTool(s, sc, updateTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		id, err := getID(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		m, ok := sc.Store().Get(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no meeting with id %d", id)), nil
		}

		if v := getString(args, "title"); v != "" {
			m.Title = v
		}
		if v := getString(args, "date"); v != "" {
			date, err := parseDate(v)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			m.Date = date
		}
		if v := getString(args, "platform"); v != "" {
			platform, err := meeting.ParsePlatform(v)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			m.Platform = platform
		}
		if v := getString(args, "duration"); v != "" {
			m.Duration = v
		}
		if v := getString(args, "participants"); v != "" {
			m.Participants = meeting.NormalizeParticipants(v)
		}
		if v := getString(args, "location"); v != "" {
			m.Location = v
		}
		if v := getString(args, "description"); v != "" {
			m.Description = v
		}

		res, err := sc.Scheduler().Update(ctx, m)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update meeting: %v", err)), nil
		}

		payload := map[string]any{
			"meeting":   toPayload(res.Meeting),
			"conflicts": toPayloads(res.Conflicts),
		}
		result, _ := json.MarshalIndent(payload, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	})

	deleteTool := mcp.NewTool("delete_meeting",
		mcp.WithDescription("Delete a meeting by its ID"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The meeting ID"),
		),
	)

	addTool(s, sc, deleteTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		id, err := getID(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if _, ok := sc.Store().Get(id); !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no meeting with id %d", id)), nil
		}
		if err := sc.Scheduler().Remove(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete meeting: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Meeting %d deleted", id)), nil
	})

	invitesTool := mcp.NewTool("send_invites",
		mcp.WithDescription("Send one email invite per participant of a meeting. Requires a signed-in Google identity session."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The meeting ID"),
		),
	)

	addTool(s, sc, invitesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		id, err := getID(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		m, ok := sc.Store().Get(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no meeting with id %d", id)), nil
		}

		results, sendErr := sc.Scheduler().SendInvites(ctx, m)
		type outcome struct {
			Participant string `json:"participant"`
			MessageID   string `json:"messageId,omitempty"`
			Error       string `json:"error,omitempty"`
		}
		outcomes := make([]outcome, len(results))
		for i, r := range results {
			outcomes[i] = outcome{Participant: r.Participant, MessageID: r.MessageID}
			if r.Err != nil {
				outcomes[i].Error = r.Err.Error()
			}
		}

		payload := map[string]any{"results": outcomes}
		if sendErr != nil {
			payload["error"] = sendErr.Error()
		}
		result, _ := json.MarshalIndent(payload, "", "  ")
		if len(results) == 0 && sendErr != nil {
			return mcp.NewToolResultError(sendErr.Error()), nil
		}
		return mcp.NewToolResultText(string(result)), nil
	})
}
