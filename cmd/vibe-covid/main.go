// Package main provides the vibe-covid command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-covid/internal/protein"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageError marks errors caused by bad arguments or flags.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs wraps a cobra argument validator so its failures map to
// ExitUsage.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

var logger = zap.NewNop()

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile    string
		verbose    bool
		cpuProfile bool
		prof       interface{ Stop() }
	)

	root := &cobra.Command{
		Use:   "vibe-covid",
		Short: "Type SARS-CoV-2 samples against a catalog of named variants",
		Long: `vibe-covid turns variant calls into protein mutations and matches them
against catalogued variant signatures.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			l, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			logger = l
			zap.ReplaceGlobals(l)
			if cpuProfile {
				prof = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if prof != nil {
				prof.Stop()
			}
			logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.vibe-covid.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&cpuProfile, "cpuprofile", false, "Write a CPU profile to the current directory")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	root.AddCommand(newTypeCmd())
	root.AddCommand(newRunsCmd())
	root.AddCommand(newDownloadCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vibe-covid version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig reads ~/.vibe-covid.yaml (or cfgFile) and VIBE_COVID_*
// environment variables.
func initConfig(cfgFile string) error {
	viper.SetDefault("protein", "S")
	viper.SetDefault("tolerance", 0.0)
	viper.SetDefault("workers", 0)
	viper.SetDefault("min_qual", 0.0)
	viper.SetDefault("pass_only", false)
	viper.SetDefault("db", filepath.Join(dataDir(), "runs.duckdb"))
	viper.SetDefault("scoring.match", protein.DefaultScoring.MatchScore)
	viper.SetDefault("scoring.mismatch", protein.DefaultScoring.MismatchPenalty)
	viper.SetDefault("scoring.gap_open", protein.DefaultScoring.GapOpenPenalty)
	viper.SetDefault("scoring.gap_extend", protein.DefaultScoring.GapExtendPenalty)
	viper.SetDefault("catalog_columns.name", "Name")
	viper.SetDefault("catalog_columns.first_detected", "First Detected")
	viper.SetDefault("catalog_columns.mutations", "Spike Protein Substitutions")

	viper.SetEnvPrefix("VIBE_COVID")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".vibe-covid")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (cfgFile == "" && os.IsNotExist(err)) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// dataDir returns ~/.vibe-covid, or .vibe-covid when the home directory
// is unknown.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vibe-covid"
	}
	return filepath.Join(home, ".vibe-covid")
}
