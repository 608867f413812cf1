package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired sessions once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, lg, err := setup()
		if err != nil {
			return err
		}

		a, err := wire(cmd.Context(), conf, lg, wireOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		removed, err := a.core.CleanupSessions(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
