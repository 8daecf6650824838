package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specwatch/specwatch/pkg/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "specwatch",
	Short: "Watch API specs for breaking changes and find the code they break",
	Long: `specwatch polls remote API specifications, versions every content
change, diffs consecutive versions, and matches breaking changes against
endpoint usages scanned out of client repositories.

QUICK START:
  specwatch spec add billing https://api.example.com/openapi.json
  specwatch repo add frontend https://github.com/acme/frontend
  specwatch poll          # poll every watched spec once
  specwatch scan          # scan repositories that are due
  specwatch watch         # run the scheduler loop

Exit codes: 0 = success, 1 = error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			printVersion(cmd)
			return nil
		}
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.specwatch/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("version", false, "show version information")

	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.AddCommand(newSpecCommand())
	rootCmd.AddCommand(newRepoCommand())
	rootCmd.AddCommand(newPollCommand())
	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newDiffCommand())
	rootCmd.AddCommand(newImpactCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newVersionCommand())
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ExpandPaths(); err != nil {
		return err
	}
	return cfg.Validate()
}
