package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [repo-id]",
		Short: "Scan repositories for endpoint usage",
		Long: `Scan the repositories whose next scan time has arrived, or one
repository explicitly. Each scan fully replaces the repository's usage
records; a failed scan backs its retry off exponentially.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, nil)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				repo, err := a.store.LoadRepository(args[0])
				if err != nil {
					return err
				}
				if err := a.scans.ScanRepository(ctx, repo); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d files, %d endpoint usages\n",
					repo.Name, repo.State.TotalFilesScanned, repo.State.TotalEndpointsFound)
				return nil
			}

			return a.scans.ScanDue(ctx)
		},
	}
}
