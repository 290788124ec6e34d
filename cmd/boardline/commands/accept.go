package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardline/internal/domain"
)

// accept <peer>: accept a received discussion request.
func acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <peer>",
		Short: "Accept a received discussion request",
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
			if err := appCtx.Discussions.Accept(cmd.Context(), d); err != nil {
				return err
			}
			fmt.Println("accepted")
			return nil
		},
	}
}
