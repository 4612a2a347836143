// Package main provides the fivex command-line tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/statgen/fivex/internal/config"
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

var cfgFile string

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fivex",
		Short: "Query eQTL and sQTL associations with fine-mapping annotation",
		Long: `fivex reads tabix-indexed eQTL Catalogue association and credible set
files, joins gene annotation and SuSiE fine-mapping results, and serves them
from the command line or over HTTP.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ~/.fivex.yaml)")
	flags.String("data-dir", "", "data root directory (FIVEX_DATA_DIR)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("num-parser", "standard", "numeric parser: standard or fast")
	viper.BindPFlag("data_dir", flags.Lookup("data-dir"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("num_parser", flags.Lookup("num-parser"))

	root.AddCommand(newQueryCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newBestCmd())
	root.AddCommand(newRSIDCmd())
	root.AddCommand(newGeneCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig reads ~/.fivex.yaml (or --config) and the FIVEX_ environment.
func initConfig() error {
	config.Defaults(viper.GetViper())
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".fivex")
		viper.SetConfigType("yaml")
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	}
	return nil
}

// loadConfig decodes the merged settings.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// newLogger builds a console logger on stderr at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// defaultCacheDir is where decoded annotation tables are cached.
func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "fivex")
	}
	return ""
}
