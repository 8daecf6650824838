package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/specwatch/specwatch/pkg/types"
)

const timeFormat = "2006-01-02 15:04:05"

// TableFormatter renders aligned, optionally colored tables.
type TableFormatter struct {
	noColor bool
}

func (t *TableFormatter) colorize(text string, attrs ...color.Attribute) string {
	if t.noColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

func severityColor(s types.Severity) color.Attribute {
	switch s {
	case types.SeverityCritical:
		return color.FgRed
	case types.SeverityHigh:
		return color.FgYellow
	case types.SeverityMedium:
		return color.FgCyan
	default:
		return color.FgGreen
	}
}

// FormatDiff renders a change list with per-change breakage markers.
func (t *TableFormatter) FormatDiff(diff *types.DiffResult) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if len(diff.Changes) == 0 {
		fmt.Fprintln(w, "No changes detected.")
		w.Flush()
		return buf.Bytes(), nil
	}

	status := t.colorize("compatible", color.FgGreen)
	if diff.Breaking {
		status = t.colorize("BREAKING", color.FgRed, color.Bold)
	}
	fmt.Fprintf(w, "Changes:\t%d\t(%s)\n\n", len(diff.Changes), status)
	fmt.Fprintln(w, "TYPE\tPATH\tMETHOD\tFIELD\tBREAKING")

	for _, c := range diff.Changes {
		breaking := ""
		if c.Type.IsBreaking() {
			breaking = t.colorize("yes", color.FgRed)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Type, c.Path, c.Method, c.Field, breaking)
	}

	w.Flush()
	return buf.Bytes(), nil
}

// FormatImpact renders the aggregate counts and the affected usage list.
func (t *TableFormatter) FormatImpact(result *types.ImpactResult) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Impact Analysis\t%s\n", result.ID)
	fmt.Fprintf(w, "Spec:\t%s (version %d)\n", result.SpecID, result.Version)
	fmt.Fprintf(w, "Analyzed:\t%s\n", result.AnalyzedAt.Format(timeFormat))
	fmt.Fprintf(w, "Breaking changes:\t%d\n", result.TotalBreakingChanges)
	fmt.Fprintf(w, "Affected repositories:\t%d\n", result.TotalAffectedRepos)
	fmt.Fprintf(w, "Affected usages:\t%d\n", result.TotalUsagesAffected)
	fmt.Fprintf(w, "Severity:\t%s\n\n",
		t.colorize(result.Severity.String(), severityColor(result.Severity), color.Bold))

	if !result.HasImpact {
		fmt.Fprintln(w, "No client code is affected by these changes.")
		w.Flush()
		return buf.Bytes(), nil
	}

	fmt.Fprintln(w, "CHANGE\tPATH\tSEVERITY\tREPOSITORY\tLOCATION\tCONFIDENCE")
	for _, u := range result.Affected {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s:%d\t%.2f\n",
			u.BreakingChangeType,
			u.Path,
			t.colorize(u.Severity.String(), severityColor(u.Severity)),
			u.RepositoryName,
			u.FilePath, u.LineNumber,
			u.Confidence,
		)
	}

	w.Flush()
	return buf.Bytes(), nil
}

// FormatWatchList renders the watched specs with their poll health.
func (t *TableFormatter) FormatWatchList(specs []types.WatchedSpec) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if len(specs) == 0 {
		fmt.Fprintln(w, "No specs are being watched.")
		w.Flush()
		return buf.Bytes(), nil
	}

	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tVERSION\tFAILURES\tLAST SUCCESS")
	for _, s := range specs {
		status := string(s.State.Status)
		if s.State.Status == types.PollStatusFailed {
			status = t.colorize(status, color.FgRed, color.Bold)
		}
		lastSuccess := "-"
		if !s.State.LastSuccessAt.IsZero() {
			lastSuccess = s.State.LastSuccessAt.Format(timeFormat)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			s.ID, s.Name, status,
			s.State.LastVersionDetected,
			s.State.ConsecutiveFailures,
			lastSuccess,
		)
	}

	w.Flush()
	return buf.Bytes(), nil
}

// FormatRepositoryList renders the repositories with their scan schedule.
func (t *TableFormatter) FormatRepositoryList(repos []types.Repository) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if len(repos) == 0 {
		fmt.Fprintln(w, "No repositories are registered.")
		w.Flush()
		return buf.Bytes(), nil
	}

	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tENDPOINTS\tFAILURES\tNEXT SCAN")
	for _, r := range repos {
		status := string(r.State.Status)
		if r.State.Status == types.ScanStatusFailed {
			status = t.colorize(status, color.FgRed)
		}
		nextScan := "-"
		if !r.State.NextScanAt.IsZero() {
			nextScan = r.State.NextScanAt.Format(timeFormat)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Name, status,
			r.State.TotalEndpointsFound,
			r.State.ConsecutiveScanFailures,
			nextScan,
		)
	}

	w.Flush()
	return buf.Bytes(), nil
}

// FormatVersionList renders a spec's version history.
func (t *TableFormatter) FormatVersionList(versions []types.VersionRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if len(versions) == 0 {
		fmt.Fprintln(w, "No versions recorded.")
		w.Flush()
		return buf.Bytes(), nil
	}

	fmt.Fprintln(w, "VERSION\tCREATED\tCHANGES\tBREAKING\tHASH")
	for _, v := range versions {
		changes := 0
		breaking := ""
		if v.Diff != nil {
			changes = len(v.Diff.Changes)
			if v.Diff.Breaking {
				breaking = t.colorize("yes", color.FgRed)
			}
		}
		hash := v.SpecHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			v.Version, v.CreatedAt.Format(timeFormat), changes, breaking, hash)
	}

	w.Flush()
	return buf.Bytes(), nil
}
