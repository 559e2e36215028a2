package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/merchant-support/internal"
	"github.com/iksnae/merchant-support/internal/api"
	"github.com/iksnae/merchant-support/internal/ui"
)

var (
	limit       int
	since       string
	showSources bool
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the messages of a conversation",
	Long:  `Display every message of a past conversation, with sources, confidence and tool results.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		var sinceTime time.Time
		if since != "" {
			parsed, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return fmt.Errorf("invalid --since timestamp format (expected RFC3339): %w", err)
			}
			sinceTime = parsed
		}

		transcript, err := loadTranscript(cmd.Context(), sessionID)
		if err != nil {
			return err
		}

		messages := filterMessages(transcript.Messages, sinceTime, limit)
		out := cmd.OutOrStdout()
		displayTranscriptHeader(out, transcript, len(messages))

		if len(messages) == 0 {
			_, _ = fmt.Fprintln(out, sessionMetaStyle.Render("No messages to show"))
			return nil
		}

		view := newMessageView(out)
		st := ui.ThreadState{
			SourcesExpanded: func(string) bool { return showSources },
		}
		_, _ = fmt.Fprint(out, view.RenderThread(messages, st).Text)
		return nil
	},
}

// loadTranscript fetches a conversation behind a spinner
func loadTranscript(ctx context.Context, sessionID string) (*internal.Transcript, error) {
	client := newClient()
	return internal.WithProgress(ctx, "Loading conversation "+sessionID,
		func(ctx context.Context) (*internal.Transcript, error) {
			return fetchTranscript(ctx, client, sessionID)
		})
}

// fetchTranscript loads a conversation and normalizes its messages
func fetchTranscript(ctx context.Context, client *api.Client, sessionID string) (*internal.Transcript, error) {
	history, err := client.SessionHistory(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", sessionID, err)
	}

	transcript := &internal.Transcript{
		Session:  internal.Session{ID: sessionID},
		Messages: make([]internal.Message, 0, len(history)),
	}
	for _, msg := range history {
		transcript.Messages = append(transcript.Messages, internal.NormalizeMessage(msg))
	}
	if len(transcript.Messages) > 0 {
		transcript.Session.CreatedAt = transcript.Messages[0].Timestamp
	}
	return transcript, nil
}

// filterMessages keeps messages at or after since (when set), then applies limit
func filterMessages(messages []internal.Message, since time.Time, limit int) []internal.Message {
	filtered := messages
	if !since.IsZero() {
		filtered = make([]internal.Message, 0, len(messages))
		for _, msg := range messages {
			if !msg.Timestamp.Before(since) {
				filtered = append(filtered, msg)
			}
		}
	}
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered
}

func displayTranscriptHeader(out io.Writer, transcript *internal.Transcript, shown int) {
	_, _ = fmt.Fprintln(out, sessionHeaderStyle.Render("💬 Conversation "+transcript.Session.ID))

	meta := fmt.Sprintf("Messages: %d", len(transcript.Messages))
	if shown != len(transcript.Messages) {
		meta += fmt.Sprintf(" (showing %d)", shown)
	}
	if !transcript.Session.CreatedAt.IsZero() {
		meta += " · Started: " + transcript.Session.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	_, _ = fmt.Fprintln(out, sessionMetaStyle.Render(meta))
}

// newMessageView picks a plain style when out is not a terminal
func newMessageView(out io.Writer) *ui.MessageView {
	theme := cfg.Theme
	if !internal.IsTerminal(out) {
		theme = "notty"
	}
	return ui.NewMessageView(theme, cfg.WordWrap)
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many messages (0 = all)")
	showCmd.Flags().StringVar(&since, "since", "", "Only show messages at or after this RFC3339 time")
	showCmd.Flags().BoolVar(&showSources, "sources", false, "List every source instead of the count")
}
