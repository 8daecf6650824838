package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildTime    = "unknown"
)

// SetVersionInfo records build metadata injected by the linker.
func SetVersionInfo(version, commit, built string) {
	buildVersion = version
	buildCommit = commit
	buildTime = built
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd)
		},
	}
}

func printVersion(cmd *cobra.Command) {
	fmt.Fprintf(cmd.OutOrStdout(), "specwatch %s\n", buildVersion)
	fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", buildCommit)
	fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", buildTime)
	fmt.Fprintf(cmd.OutOrStdout(), "  go:      %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
