package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"julianmorley.ca/con-plar/petmart/internal/jobs"
)

// NewPurgeCommand runs the stale persistent cart purge once instead of waiting
// for the daily schedule
func NewPurgeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "purge-carts",
		Short:         "Delete persistent carts past the retention window",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, err := connectMongo(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(context.Background()) }()

			scheduler, err := jobs.NewScheduler(store, cfg.Cart.PersistentRetention, logger)
			if err != nil {
				return err
			}
			removed, err := scheduler.PurgeStaleCarts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d persistent cart(s)\n", removed)
			return nil
		},
	}
}
