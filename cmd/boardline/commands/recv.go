package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardline/internal/domain"
)

// recv <seeker>: read a board slot and decrypt it.
func recvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recv <seeker>",
		Short: "Read and decrypt a message-board slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEngine(); err != nil {
				return err
			}
			seeker := domain.Seeker(args[0])
			data, found, err := appCtx.Board.FetchMessage(cmd.Context(), seeker)
			if err != nil {
				return err
			}
			if !found {
				fmt.Println("slot empty")
				return nil
			}
			msg, err := appCtx.Messages.ProcessBoardRead(cmd.Context(), domain.UserID(owner), seeker, data)
			if err != nil {
				return err
			}
			if msg == nil {
				fmt.Println("nothing new")
				return nil
			}
			fmt.Printf("[%s] %s\n", msg.ContactUserID, msg.Content)
			return nil
		},
	}
}
