package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/specwatch/specwatch/internal/storage"
	"github.com/specwatch/specwatch/pkg/types"
)

func newRepoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage scanned client repositories",
	}
	cmd.AddCommand(newRepoAddCommand())
	cmd.AddCommand(newRepoListCommand())
	cmd.AddCommand(newRepoRemoveCommand())
	return cmd
}

func newRepoAddCommand() *cobra.Command {
	var tenantID string
	var intervalHours int

	cmd := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Register a repository for endpoint usage scanning",
		Long: `Register a repository for scanning. The URL may be a git remote or a
local directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
			if err != nil {
				return err
			}

			if intervalHours <= 0 {
				intervalHours = cfg.Scanning.IntervalHours
			}
			repo := &types.Repository{
				ID:       uuid.NewString(),
				TenantID: tenantID,
				Name:     args[0],
				URL:      args[1],
				State: types.ScanState{
					Status:            types.ScanStatusPending,
					ScanIntervalHours: intervalHours,
				},
			}
			if err := store.SaveRepository(repo); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", repo.Name, repo.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant the repository belongs to")
	cmd.Flags().IntVar(&intervalHours, "interval-hours", 0, "scan interval in hours (default from config)")
	return cmd
}

func newRepoListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered repositories and their scan state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
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
			out, err := f.FormatRepositoryList(repos)
			if err != nil {
				return err
			}
			printBytes(cmd, out)
			return nil
		},
	}
}

func newRepoRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <repo-id>",
		Short: "Remove a repository and its usage records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
			if err != nil {
				return err
			}
			if err := store.DeleteRepository(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}
