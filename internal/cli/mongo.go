package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mongoCmd = &cobra.Command{
	Use:   "mongo",
	Short: "MongoDB leg store tasks",
}

var mongoInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the leg collection indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, closeFn, err := openLegIndexer(loadConfig())
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer closeFn()

		ctx, cancel := withTimeout(cmd)
		defer cancel()
		if err := idx.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "leg indexes ready")
		return nil
	},
}

func init() {
	mongoCmd.AddCommand(mongoInitCmd)
}
