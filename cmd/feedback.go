package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iksnae/merchant-support/internal"
)

var (
	feedbackUp      bool
	feedbackDown    bool
	feedbackRating  int
	feedbackComment string
)

// feedbackCmd represents the feedback command
var feedbackCmd = &cobra.Command{
	Use:   "feedback <session-id> <message-id>",
	Short: "Rate an assistant reply",
	Long: `Send thumbs up or down for one assistant reply, optionally with a
1-5 rating and a comment. Message IDs are shown by 'show' and 'export'.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if feedbackUp == feedbackDown {
			return errors.New("choose exactly one of --up or --down")
		}
		var rating *int
		if cmd.Flags().Changed("rating") {
			if feedbackRating < 1 || feedbackRating > 5 {
				return fmt.Errorf("--rating must be between 1 and 5, got %d", feedbackRating)
			}
			rating = &feedbackRating
		}

		sessionID, messageID := args[0], args[1]
		client := newClient()

		// The conversation id is only known from the message itself.
		vote := internal.FeedbackVote{
			MessageID: messageID,
			SessionID: sessionID,
			Positive:  feedbackUp,
			Rating:    rating,
			Comment:   feedbackComment,
		}
		history, err := client.SessionHistory(cmd.Context(), sessionID)
		if err != nil {
			internal.LogWarn("Could not load conversation %s, sending feedback without conversation id: %v", sessionID, err)
		}
		for _, msg := range history {
			if msg.ID == messageID {
				vote.ConversationID = msg.ConversationID
				break
			}
		}

		recorder := internal.NewFeedbackRecorder(client)
		err = internal.ShowProgress(cmd.Context(), "Sending feedback", func(ctx context.Context) error {
			return recorder.Record(ctx, vote)
		})
		if err != nil {
			return err
		}
		internal.PrintSuccess("Thanks for the feedback!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
	feedbackCmd.Flags().BoolVar(&feedbackUp, "up", false, "The reply was helpful")
	feedbackCmd.Flags().BoolVar(&feedbackDown, "down", false, "The reply was not helpful")
	feedbackCmd.Flags().IntVar(&feedbackRating, "rating", 0, "Rating from 1 to 5")
	feedbackCmd.Flags().StringVar(&feedbackComment, "comment", "", "Optional comment")
}
