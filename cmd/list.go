package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"

	"github.com/iksnae/merchant-support/internal"
)

var (
	listLimit int
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	previewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversations",
	Long:  `List your recent conversations with the assistant, most recent first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		conversations, err := internal.WithProgress(cmd.Context(), "Loading conversations",
			func(ctx context.Context) ([]internal.ConversationSummary, error) {
				return client.Conversations(ctx)
			})
		if err != nil {
			return fmt.Errorf("failed to load conversations: %w", err)
		}

		if listLimit > 0 && len(conversations) > listLimit {
			conversations = conversations[:listLimit]
		}
		displayConversations(cmd.OutOrStdout(), conversations, time.Now())
		return nil
	},
}

func displayConversations(out io.Writer, conversations []internal.ConversationSummary, now time.Time) {
	if len(conversations) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No conversations found"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d conversation(s)", len(conversations))))
	_, _ = fmt.Fprintln(out)

	// Use tabwriter for aligned columns with better spacing
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Updated")+"\t"+titleStyle.Render("Last message")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 110))

	for _, c := range conversations {
		title := c.Title
		if title == "" {
			title = "Untitled"
		}
		title = truncate.StringWithTail(title, 40, "...")

		updated := dateStyle.Render("—")
		if !c.UpdatedAt.IsZero() {
			updated = dateStyle.Render(internal.FormatUpdated(c.UpdatedAt, now))
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(c.SessionID),
			title,
			countStyle.Render(strconv.Itoa(c.MessageCount)),
			updated,
			previewStyle.Render(internal.Preview(c)),
		)
	}

	_ = w.Flush()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the ID (e.g., ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(conversations[0].SessionID)+
		idStyle.Render(") with `merchant-support show <id>` or `chat --session <id>`"))
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show at most this many conversations (0 = all)")
}
