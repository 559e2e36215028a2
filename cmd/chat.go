package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/iksnae/merchant-support/internal"
	"github.com/iksnae/merchant-support/internal/ui"
)

var (
	chatPlain   bool
	chatSession string
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant",
	Long: `Start a conversation with the merchant support assistant.

The full-screen chat is used on terminals; --plain (or piped input) switches
to a line-based chat. Type /help inside the chat for the list of commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client := newClient()

		controller := internal.NewController(client,
			internal.WithShop(cfg.Shop),
			internal.WithFeedbackRecorder(internal.NewFeedbackRecorder(client)),
		)
		if chatSession != "" {
			err := internal.ShowProgress(ctx, "Loading conversation "+chatSession, func(ctx context.Context) error {
				return controller.SwitchSession(ctx, chatSession)
			})
			if err != nil {
				// The chat still opens on the session, with an empty thread.
				internal.LogWarn("Could not load conversation %s, starting with an empty thread: %v", chatSession, err)
			}
		}

		actions := &ui.Actions{
			Controller: controller,
			History:    internal.NewHistoryBrowser(client, controller),
			Copies:     internal.NewCopyTracker(),
			AuthURL:    client.AuthURL,
		}

		out := cmd.OutOrStdout()
		if chatPlain || !internal.IsTerminal(os.Stdin) || !internal.IsTerminal(out) {
			repl := ui.NewREPL(actions, newMessageView(out), cmd.InOrStdin(), out)
			repl.Wait = internal.ShowProgress
			return repl.Run(ctx)
		}

		restore, err := logToFile()
		if err != nil {
			internal.LogWarn("Could not open log file, logging is disabled in the chat: %v", err)
		}
		defer restore()

		return ui.NewChatProgram(ctx, actions, newMessageView(out)).Run()
	},
}

// logToFile moves log output into the state directory while the
// full-screen chat owns the terminal
func logToFile() (func(), error) {
	discard := func() { internal.SetLogOutput(os.Stderr) }
	internal.SetLogOutput(io.Discard)

	dir, err := internal.StateDir()
	if err != nil {
		return discard, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return discard, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	f, err := tea.LogToFile(filepath.Join(dir, "debug.log"), "merchant-support")
	if err != nil {
		return discard, err
	}
	internal.SetLogOutput(f)
	return func() {
		internal.SetLogOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "Use the line-based chat")
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "Continue an existing conversation")
}
