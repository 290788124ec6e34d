package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardline/internal/domain"
)

// sweep runs one maintenance pass: fetch and process announcements, retry
// failed ones, flush waiting messages, and run the liveness sweep.
func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Fetch announcements, retry failures and run the liveness sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEngine(); err != nil {
				return err
			}
			ownerID := domain.UserID(owner)
			ctx := cmd.Context()

			if err := appCtx.Announce.FetchAndProcessAnnouncements(ctx, ownerID); err != nil {
				return err
			}

			failed, err := appCtx.Store.DiscussionsByStatus(ownerID, domain.DiscussionSendFailed)
			if err != nil {
				return err
			}
			appCtx.Announce.ResendAnnouncements(ctx, ownerID, failed)

			active, err := appCtx.Store.DiscussionsByStatus(ownerID, domain.DiscussionActive)
			if err != nil {
				return err
			}
			flushed := 0
			for _, d := range active {
				n, err := appCtx.Messages.ProcessWaitingMessages(ctx, ownerID, d.ContactUserID)
				if err != nil {
					return err
				}
				flushed += n
			}

			if err := appCtx.Refresh.Sweep(ctx, ownerID); err != nil {
				return err
			}
			fmt.Printf("sweep done, %d queued messages sent\n", flushed)
			return nil
		},
	}
}
