package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/specwatch/specwatch/internal/storage"
	"github.com/specwatch/specwatch/pkg/types"
)

func newSpecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Manage watched API specs",
	}
	cmd.AddCommand(newSpecAddCommand())
	cmd.AddCommand(newSpecListCommand())
	cmd.AddCommand(newSpecRemoveCommand())
	cmd.AddCommand(newSpecPauseCommand())
	cmd.AddCommand(newSpecResumeCommand())
	return cmd
}

func newSpecAddCommand() *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Start watching a spec URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
			if err != nil {
				return err
			}

			spec := &types.WatchedSpec{
				ID:             uuid.NewString(),
				TenantID:       tenantID,
				Name:           args[0],
				SpecURL:        args[1],
				PollingEnabled: true,
				State:          types.PollState{Status: types.PollStatusActive},
				CreatedAt:      time.Now().UTC(),
			}
			if err := store.SaveWatchedSpec(spec); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (%s)\n", spec.Name, spec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant the spec belongs to")
	return cmd
}

func newSpecListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List watched specs and their poll health",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
			if err != nil {
				return err
			}
			specs, err := store.ListWatchedSpecs()
			if err != nil {
				return err
			}

			f, err := formatter()
			if err != nil {
				return err
			}
			out, err := f.FormatWatchList(specs)
			if err != nil {
				return err
			}
			printBytes(cmd, out)
			return nil
		},
	}
}

func newSpecRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <spec-id>",
		Short: "Stop watching a spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
			if err != nil {
				return err
			}
			if err := store.DeleteWatchedSpec(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newSpecPauseCommand() *cobra.Command {
	return newSpecStatusCommand("pause", "Pause polling for a spec", types.PollStatusPaused)
}

func newSpecResumeCommand() *cobra.Command {
	return newSpecStatusCommand("resume", "Resume polling for a spec", types.PollStatusActive)
}

func newSpecStatusCommand(verb, short string, status types.PollStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <spec-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
			if err != nil {
				return err
			}
			spec, err := store.LoadWatchedSpec(args[0])
			if err != nil {
				return err
			}
			spec.State.Status = status
			if err := store.SaveWatchedSpec(spec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", spec.Name, status)
			return nil
		},
	}
}
