package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/carverlab/facet/pkg/model"
	"github.com/carverlab/facet/pkg/ports"
	"github.com/carverlab/facet/pkg/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent modeling sessions",
	Long:  `List, inspect, and remove modeling sessions from the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		sessions, err := store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}

		if len(sessions) == 0 {
			fmt.Println("No active sessions found.")
			return
		}

		fmt.Println("Active Sessions:")
		for _, s := range sessions {
			fmt.Println("- " + s)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID := args[0]
		store := getStore(cmd)

		state, err := store.Load(cmd.Context(), sessionID)
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", sessionID, err)
			os.Exit(1)
		}

		// Rendered summary on a terminal, raw JSON when piped.
		if term.IsTerminal(int(os.Stdout.Fd())) {
			out, err := renderStateSummary(state)
			if err == nil {
				fmt.Print(out)
				return
			}
		}

		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling state: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		hasError := false

		for _, sessionID := range args {
			if err := store.Delete(cmd.Context(), sessionID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", sessionID, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", sessionID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

// renderStateSummary formats a session as markdown and renders it for the
// terminal.
func renderStateSummary(state *session.State) (string, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "# Session %s\n\n", state.ID)
	fmt.Fprintf(&md, "- Shapes: %d (last handle: shape:%d)\n", len(state.Shapes), state.Counter)
	fmt.Fprintf(&md, "- Selections: %d\n", len(state.Current.Selections))
	if !state.UpdatedAt.IsZero() {
		fmt.Fprintf(&md, "- Updated: %s\n", state.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if len(state.Current.Outputs) > 0 {
		md.WriteString("\n## Outputs\n\n| Key | ID | Handle |\n|---|---|---|\n")
		for key, out := range state.Current.Outputs {
			fmt.Fprintf(&md, "| %s | %s | %s |\n", key, out.ID, out.Meta.String(model.KeyHandle))
		}
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md.String())
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

func getStore(cmd *cobra.Command) ports.SessionStore {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	store, _, err := newStore(cfg)
	if err != nil {
		fmt.Printf("Error building session store: %v\n", err)
		os.Exit(1)
	}
	return store
}
