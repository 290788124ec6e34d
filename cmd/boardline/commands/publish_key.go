package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"boardline/internal/domain"
)

// publish-key <file>: publish serialized public keys under --owner.
func publishKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish-key <keys-file>",
		Short: "Publish your serialized public keys to the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return fmt.Errorf("--owner required")
			}
			keys, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := appCtx.Board.PostPublicKey(cmd.Context(), domain.UserID(owner), keys); err != nil {
				return err
			}
			fmt.Println("published")
			return nil
		},
	}
}
