package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specwatch/specwatch/internal/impact"
	"github.com/specwatch/specwatch/internal/logger"
	"github.com/specwatch/specwatch/internal/storage"
	"github.com/specwatch/specwatch/pkg/types"
)

func newImpactCommand() *cobra.Command {
	var version int
	var rerun bool

	cmd := &cobra.Command{
		Use:   "impact <spec-id>",
		Short: "Show which client code a spec version's breaking changes touch",
		Long: `Show the impact analysis for a spec version. By default the latest
stored result is printed; --rerun recomputes it against the current
usage corpus.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specID := args[0]
			store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
			if err != nil {
				return err
			}

			var result *types.ImpactResult
			if rerun {
				result, err = rerunImpact(store, specID, version)
			} else {
				result, err = storedImpact(store, specID, version)
			}
			if err != nil {
				return err
			}

			f, err := formatter()
			if err != nil {
				return err
			}
			out, err := f.FormatImpact(result)
			if err != nil {
				return err
			}
			printBytes(cmd, out)
			return nil
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "spec version (default: latest)")
	cmd.Flags().BoolVar(&rerun, "rerun", false, "recompute against the current usage corpus")
	return cmd
}

func storedImpact(store *storage.LocalStore, specID string, version int) (*types.ImpactResult, error) {
	results, err := store.ListImpacts(specID)
	if err != nil {
		return nil, err
	}
	if version > 0 {
		for i := len(results) - 1; i >= 0; i-- {
			if results[i].Version == version {
				return &results[i], nil
			}
		}
		return nil, fmt.Errorf("no impact result for spec %s version %d", specID, version)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no impact results for spec %s", specID)
	}
	return &results[len(results)-1], nil
}

func rerunImpact(store *storage.LocalStore, specID string, version int) (*types.ImpactResult, error) {
	var record *types.VersionRecord
	var err error
	if version > 0 {
		record, err = store.LoadVersion(specID, version)
	} else {
		record, err = store.LatestVersion(specID)
	}
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("no versions recorded for spec %s", specID)
	}
	if record.Diff == nil {
		return nil, fmt.Errorf("version %d has no diff to analyze", record.Version)
	}

	spec, err := store.LoadWatchedSpec(specID)
	if err != nil {
		return nil, err
	}

	analyzer := impact.NewAnalyzer(store, store, nil, logger.New(cfg.Logging.Level))
	return analyzer.Analyze(spec.TenantID, specID, record.Version, *record.Diff)
}
