package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// init: create the data directory, database and a fresh session state blob.
func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the local data directory and session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEngine(); err != nil {
				return err
			}
			fmt.Printf("initialized %s for %s\n", settings.Home, owner)
			return nil
		},
	}
}
