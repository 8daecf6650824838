package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specwatch/specwatch/internal/storage"
)

func newHistoryCommand() *cobra.Command {
	var showSummary bool

	cmd := &cobra.Command{
		Use:   "history <spec-id>",
		Short: "Show a spec's version history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
			if err != nil {
				return err
			}
			versions, err := store.ListVersions(args[0])
			if err != nil {
				return err
			}

			f, err := formatter()
			if err != nil {
				return err
			}
			out, err := f.FormatVersionList(versions)
			if err != nil {
				return err
			}
			printBytes(cmd, out)

			if showSummary {
				for _, v := range versions {
					if v.Summary != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "\nVersion %d summary:\n%s\n", v.Version, v.Summary)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSummary, "summaries", false, "include generated change summaries")
	return cmd
}
