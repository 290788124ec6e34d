package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardline/internal/domain"
)

// read <peer>: mark a discussion's received messages as read.
func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <peer>",
		Short: "Mark a discussion's received messages as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner required")
			}
			if err := appCtx.Messages.MarkRead(domain.UserID(owner), domain.UserID(args[0])); err != nil {
				return err
			}
			fmt.Println("marked read")
			return nil
		},
	}
}
