package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var verbose bool

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gst",
		Short: "Analyze the coding consequences of alternative splicing events",
		Long: `gst reconstructs the two transcript isoforms implied by each
differential-splicing event, predicts each isoform's open reading frame
and nonsense-mediated decay susceptibility, and quantifies how much the
protein product changes between the two isoforms.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newImpactCmd())
	cmd.AddCommand(newIsoformsCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// configDefaults lists every tunable key with its default. The config
// command validates set keys against this table.
var configDefaults = map[string]any{
	"significance":            0.05,
	"workers":                 0, // 0 = NumCPU
	"nmd.threshold":           50,
	"nmd.borderline":          5,
	"orf.mode":                "longest",
	"orf.topn":                3,
	"orf.uorfs":               false,
	"orf.select_longest":      0.0,
	"compare.subcost":         100,
	"compare.by":              "event",
	"compare.aggregate":       "max",
	"compare.direction":       true,
	"compare.gene_similarity": false,
}

// initConfig loads ~/.gst.yaml and sets defaults for every tunable
// threshold, so a bare invocation is always fully configured.
func initConfig() error {
	for key, value := range configDefaults {
		viper.SetDefault(key, value)
	}

	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".gst")
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			// A missing config file is fine; anything else is not.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				if !os.IsNotExist(err) {
					return fmt.Errorf("read config: %w", err)
				}
			}
		}
	}

	viper.SetEnvPrefix("GST")
	viper.AutomaticEnv()
	return nil
}

// newLogger builds the process logger.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
