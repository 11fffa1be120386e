package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isdelr/ledger-be/internal/services"
)

func newReconcileCommand(opts *globalOptions) *cobra.Command {
	var codesOnly bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Backfill account codes and add missing default accounts for every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			tmpl, err := loadChart(cfg)
			if err != nil {
				return err
			}
			svc := services.NewMaintenanceService(db, tmpl, services.NewEventService(db))

			if codesOnly {
				updated, err := svc.BackfillCodes(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "backfilled %d account codes\n", updated)
				return nil
			}

			result, err := svc.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backfilled %d account codes, added %d accounts\n",
				result.CodesBackfilled, result.AccountsInserted)
			return nil
		},
	}

	cmd.Flags().BoolVar(&codesOnly, "codes-only", false, "only backfill missing account codes")

	return cmd
}
