package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPollCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "poll [spec-id]",
		Short: "Poll watched specs once",
		Long: `Poll every eligible watched spec once, or just the one given. A poll
fetches the spec, detects content change by hash, stores a new version,
diffs it against its predecessor, and runs impact analysis and alerting
for breaking diffs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, nil)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				spec, err := a.store.LoadWatchedSpec(args[0])
				if err != nil {
					return err
				}
				result := a.poller.Poll(ctx, spec)
				if result.Err != nil {
					return result.Err
				}
				reportPoll(cmd, result.Changed, result.Version, result.Breaking, spec.Name)
				return nil
			}

			results, err := a.poller.PollAll(ctx)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: poll failed: %v\n", r.SpecID, r.Err)
					continue
				}
				reportPoll(cmd, r.Changed, r.Version, r.Breaking, r.SpecID)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d polls failed", failed, len(results))
			}
			return nil
		},
	}
}

func reportPoll(cmd *cobra.Command, changed bool, version int, breaking bool, name string) {
	switch {
	case !changed:
		fmt.Fprintf(cmd.OutOrStdout(), "%s: unchanged\n", name)
	case breaking:
		fmt.Fprintf(cmd.OutOrStdout(), "%s: version %d detected (BREAKING)\n", name, version)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%s: version %d detected\n", name, version)
	}
}
