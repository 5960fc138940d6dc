package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/meeting-scheduler/internal/google"
	"github.com/example/meeting-scheduler/internal/session"
	"github.com/example/meeting-scheduler/internal/zoom"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Google and Zoom sessions",
	}

	cmd.AddCommand(newAuthGoogleCmd())
	cmd.AddCommand(newAuthZoomCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthSignOutCmd())
	cmd.AddCommand(newAuthDisconnectCmd())

	return cmd
}

// promptCode prints the authorization URL and reads the pasted code.
func promptCode(url string) (string, error) {
	fmt.Printf("Visit this URL in your browser:\n\n  %s\n\nPaste the authorization code (or the full redirect URL): ", url)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}
	code := zoom.ExtractCode(strings.TrimSpace(line))
	if code == "" {
		return "", fmt.Errorf("no authorization code given")
	}
	return code, nil
}

func newAuthGoogleCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "google",
		Short: "Sign in with Google to enable invite sending",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if code == "" {
				url := a.sessions.SignInURL(google.GenerateState())
				if url == "" {
					return fmt.Errorf("google sign-in is not configured (set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET)")
				}
				code, err = promptCode(url)
				if err != nil {
					return err
				}
			} else if code = zoom.ExtractCode(code); code == "" {
				return fmt.Errorf("no authorization code in --code")
			}

			identity, err := a.sessions.SignIn(cmd.Context(), code)
			if err != nil {
				return err
			}
			fmt.Printf("Signed in as %s\n", identity.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code or full redirect URL, skipping the prompt")

	return cmd
}

func newAuthZoomCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "zoom",
		Short: "Connect the Zoom session for provider-backed join links",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if code == "" {
				url, err := a.sessions.BeginAuthorization(google.GenerateState())
				if err != nil {
					return err
				}
				code, err = promptCode(url)
				if err != nil {
					return err
				}
			} else {
				if _, err := a.sessions.BeginAuthorization(google.GenerateState()); err != nil {
					return err
				}
				if code = zoom.ExtractCode(code); code == "" {
					return fmt.Errorf("no authorization code in --code")
				}
			}

			if err := a.sessions.CompleteAuthorization(cmd.Context(), code); err != nil {
				return err
			}
			fmt.Println("Zoom connected")
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code or full redirect URL, skipping the prompt")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show both session states",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			identity := a.sessions.Identity()
			if identity.State == session.SignedIn {
				fmt.Printf("Google:  signed in as %s\n", identity.Email)
			} else {
				fmt.Println("Google:  signed out")
			}

			conferencing := a.sessions.Conferencing()
			fmt.Printf("Zoom:    %s\n", conferencing.State)
			return nil
		},
	}
}

func newAuthSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out of Google (also disconnects Zoom)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.sessions.SignOut(); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

func newAuthDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the Zoom session only",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.sessions.DisconnectConferencing(); err != nil {
				return err
			}
			fmt.Println("Zoom disconnected")
			return nil
		},
	}
}
