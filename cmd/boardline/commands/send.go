package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardline/internal/domain"
)

// send <peer> <message>: encrypt and send a message to <peer>.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Encrypt and send a message to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEngine(); err != nil {
				return err
			}
			msg := &domain.Message{
				OwnerUserID:   domain.UserID(owner),
				ContactUserID: domain.UserID(args[0]),
				Content:       args[1],
				Type:          domain.MessageTypeText,
			}
			status, err := appCtx.Messages.SendMessage(cmd.Context(), msg)
			if err != nil {
				return err
			}
			fmt.Println(status)
			return nil
		},
	}
}
