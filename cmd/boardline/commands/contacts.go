package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardline/internal/domain"
)

// contacts: list discussions with their contact names and states.
func contactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contacts",
		Short: "List discussions and their states",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner required")
			}
			ownerID := domain.UserID(owner)
			for _, status := range []domain.DiscussionStatus{
				domain.DiscussionActive,
				domain.DiscussionPending,
				domain.DiscussionSendFailed,
				domain.DiscussionClosed,
			} {
				discussions, err := appCtx.Store.DiscussionsByStatus(ownerID, status)
				if err != nil {
					return err
				}
				for _, d := range discussions {
					name := d.CustomName
					if name == "" {
						if c, found, err := appCtx.Store.ContactByUserID(ownerID, d.ContactUserID); err == nil && found {
							name = c.Name
						} else {
							name = d.ContactUserID.String()
						}
					}
					fmt.Printf("%-12s %-9s %s (%d unread)\n", status, d.Direction, name, d.UnreadCount)
				}
			}
			return nil
		},
	}
}
