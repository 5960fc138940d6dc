package schedule_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/example/meeting-scheduler/internal/server"
	"github.com/example/meeting-scheduler/internal/zoom"
)

// RegisterAuthTools registers the session management tools. Both flows are
// paste-the-code: the tool hands out an authorization URL, the user visits
// it in a browser and pastes the code (or the full redirect URL) back.
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	googleAuthURLTool := mcp.NewTool("google_get_auth_url",
		mcp.WithDescription("Get the Google sign-in URL. Visit it in a browser, then pass the authorization code to google_save_auth_code."),
	)

	addTool(s, sc, googleAuthURLTool, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url := sc.Sessions().SignInURL("")
		if url == "" {
			return mcp.NewToolResultError("Google sign-in is not configured (set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET)"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Visit this URL to sign in with Google:\n\n%s\n\nThen pass the authorization code to google_save_auth_code.", url)), nil
	})

	googleSaveCodeTool := mcp.NewTool("google_save_auth_code",
		mcp.WithDescription("Complete the Google sign-in with the authorization code from the browser"),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code"),
		),
	)

	addTool(s, sc, googleSaveCodeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		code := getString(args, "authCode")
		if code == "" {
			return mcp.NewToolResultError("authCode is required"), nil
		}

		identity, err := sc.Sessions().SignIn(ctx, zoom.ExtractCode(code))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to sign in: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Signed in as %s. Invite sending is now available.", identity.Email)), nil
	})

	googleSignOutTool := mcp.NewTool("google_sign_out",
		mcp.WithDescription("Sign out of the Google identity session. Also disconnects the Zoom session."),
	)

	addTool(s, sc, googleSignOutTool, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := sc.Sessions().SignOut(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to sign out: %v", err)), nil
		}
		return mcp.NewToolResultText("Signed out"), nil
	})

	zoomAuthURLTool := mcp.NewTool("zoom_get_auth_url",
		mcp.WithDescription("Get the Zoom authorization URL. Requires a signed-in Google identity session."),
	)

	addTool(s, sc, zoomAuthURLTool, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := sc.Sessions().BeginAuthorization("")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Visit this URL to connect Zoom:\n\n%s\n\nThen pass the authorization code (or the full redirect URL) to zoom_save_auth_code.", url)), nil
	})

	zoomSaveCodeTool := mcp.NewTool("zoom_save_auth_code",
		mcp.WithDescription("Complete the Zoom connection with the authorization code from the browser"),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code or the full redirect URL"),
		),
	)

	addTool(s, sc, zoomSaveCodeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		code := getString(args, "authCode")
		if code == "" {
			return mcp.NewToolResultError("authCode is required"), nil
		}

		if err := sc.Sessions().CompleteAuthorization(ctx, zoom.ExtractCode(code)); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to connect Zoom: %v", err)), nil
		}
		return mcp.NewToolResultText("Zoom connected. New zoom meetings will get provider-backed join links."), nil
	})

	zoomDisconnectTool := mcp.NewTool("zoom_disconnect",
		mcp.WithDescription("Disconnect the Zoom conferencing session. The Google identity session is unaffected."),
	)

	addTool(s, sc, zoomDisconnectTool, func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := sc.Sessions().DisconnectConferencing(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to disconnect Zoom: %v", err)), nil
		}
		return mcp.NewToolResultText("Zoom disconnected"), nil
	})

	return nil
}
