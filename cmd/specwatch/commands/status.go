package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specwatch/specwatch/internal/storage"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show watched specs and repositories at a glance",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
			if err != nil {
				return err
			}

			specs, err := store.ListWatchedSpecs()
			if err != nil {
				return err
			}
			repos, err := store.ListRepositories()
			if err != nil {
				return err
			}

			f, err := formatter()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Watched specs:")
			out, err := f.FormatWatchList(specs)
			if err != nil {
				return err
			}
			printBytes(cmd, out)

			fmt.Fprintln(cmd.OutOrStdout(), "\nRepositories:")
			out, err = f.FormatRepositoryList(repos)
			if err != nil {
				return err
			}
			printBytes(cmd, out)
			return nil
		},
	}
}
