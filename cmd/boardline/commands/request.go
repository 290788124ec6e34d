package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"boardline/internal/domain"
)

// request <peer> [message]: start a discussion with a peer.
func requestCmd() *cobra.Command {
	var peerName string
	cmd := &cobra.Command{
		Use:   "request <peer> [message]",
		Short: "Start a discussion with a peer",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEngine(); err != nil {
				return err
			}
			peer := domain.UserID(args[0])
			message := ""
			if len(args) == 2 {
				message = args[1]
			}

			keys, err := appCtx.Board.FetchPublicKey(cmd.Context(), peer)
			if err != nil {
				return err
			}
			if peerName == "" {
				peerName = peer.String()
			}
			contact := domain.Contact{
				UserID:     peer,
				Name:       peerName,
				PublicKeys: keys,
			}
			d, err := appCtx.Discussions.Initialize(cmd.Context(), domain.UserID(owner), contact, message)
			if err != nil {
				return err
			}
			fmt.Printf("discussion with %s: %s\n", peer, d.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&peerName, "peer-name", "", "name to store for the peer (default: their user id)")
	return cmd
}
