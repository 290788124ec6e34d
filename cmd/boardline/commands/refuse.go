package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardline/internal/domain"
)

// refuse <peer>: refuse a received discussion request.
func refuseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refuse <peer>",
		Short: "Refuse a received discussion request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEngine(); err != nil {
				return err
			}
			d, found, err := appCtx.Store.DiscussionByPeer(domain.UserID(owner), domain.UserID(args[0]))
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no discussion with %s", args[0])
			}
			if err := appCtx.Discussions.Refuse(cmd.Context(), d); err != nil {
				return err
			}
			fmt.Println("refused")
			return nil
		},
	}
}
