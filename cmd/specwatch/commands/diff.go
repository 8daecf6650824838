package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/specwatch/specwatch/internal/differ"
	"github.com/specwatch/specwatch/internal/normalizer"
	"github.com/specwatch/specwatch/internal/storage"
	"github.com/specwatch/specwatch/pkg/types"
)

func newDiffCommand() *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "diff <spec-id> | <old-file> <new-file>",
		Short: "Diff two spec versions",
		Long: `Diff two versions of a spec. With a watched spec ID, compares stored
versions (--from/--to, defaulting to the latest against its
predecessor). With two file paths, parses and compares them directly.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var diff types.DiffResult
			var err error
			if len(args) == 2 {
				diff, err = diffFiles(args[0], args[1])
			} else {
				diff, err = diffStored(args[0], from, to)
			}
			if err != nil {
				return err
			}

			f, err := formatter()
			if err != nil {
				return err
			}
			out, err := f.FormatDiff(&diff)
			if err != nil {
				return err
			}
			printBytes(cmd, out)
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "older version number (default: latest - 1)")
	cmd.Flags().IntVar(&to, "to", 0, "newer version number (default: latest)")
	return cmd
}

func diffFiles(oldPath, newPath string) (types.DiffResult, error) {
	oldSpec, err := normalizeFile(oldPath)
	if err != nil {
		return types.DiffResult{}, err
	}
	newSpec, err := normalizeFile(newPath)
	if err != nil {
		return types.DiffResult{}, err
	}
	return differ.NewEngine().Diff(oldSpec, newSpec), nil
}

func normalizeFile(path string) (types.NormalizedSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.NormalizedSpec{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := normalizer.Parse(raw)
	if err != nil {
		return types.NormalizedSpec{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return normalizer.Normalize(doc), nil
}

func diffStored(specID string, from, to int) (types.DiffResult, error) {
	store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
	if err != nil {
		return types.DiffResult{}, err
	}

	if to == 0 {
		latest, err := store.LatestVersion(specID)
		if err != nil {
			return types.DiffResult{}, err
		}
		if latest == nil {
			return types.DiffResult{}, fmt.Errorf("no versions recorded for spec %s", specID)
		}
		to = latest.Version
	}
	if from == 0 {
		from = to - 1
	}
	if from < 1 {
		return types.DiffResult{}, fmt.Errorf("version %d has no predecessor to diff against", to)
	}

	oldRecord, err := store.LoadVersion(specID, from)
	if err != nil {
		return types.DiffResult{}, err
	}
	newRecord, err := store.LoadVersion(specID, to)
	if err != nil {
		return types.DiffResult{}, err
	}
	return differ.NewEngine().Diff(oldRecord.Spec, newRecord.Spec), nil
}
