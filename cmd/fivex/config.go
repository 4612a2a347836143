package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/statgen/fivex/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage fivex configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.fivex.yaml.
Flags override FIVEX_* environment variables, which override the file.`,
		Example: `  fivex config                              # every setting and where it comes from
  fivex config set data_dir /data/fivex     # point at the data root
  fivex config set preferred_study GTEx     # try GTEx first for best hits
  fivex config get data_dir                 # get a value
  fivex config env                          # list environment variables`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "env",
		Short: "List the environment variables fivex reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.EnvUsage(cmd.OutOrStdout())
		},
	})

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := config.Lookup(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), viper.Get(k.Name))
			return nil
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	for _, k := range config.Keys {
		fmt.Fprintf(tw, "%s\t%v\t%s\n", k.Name, viper.Get(k.Name), config.Source(viper.GetViper(), flags, k))
	}
	if f := viper.ConfigFileUsed(); f != "" {
		fmt.Fprintf(tw, "# config file: %s\n", f)
	}
	return tw.Flush()
}

// parseValue converts a command line value to the type of the key's default.
func parseValue(k config.Key, value string) (any, error) {
	switch k.Default.(type) {
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer, got %q", k.Name, value)
		}
		return n, nil
	default:
		return value, nil
	}
}

// configPath is the file config set writes to.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".fivex.yaml"), nil
}

// runConfigSet validates one value and writes it to the config file,
// leaving the file's other keys as they were.
func runConfigSet(w io.Writer, key, value string) error {
	k, err := config.Lookup(key)
	if err != nil {
		return err
	}
	val, err := parseValue(k, value)
	if err != nil {
		return err
	}

	check := viper.New()
	config.Defaults(check)
	check.Set(k.Name, val)
	if _, err := config.Load(check); err != nil {
		return fmt.Errorf("invalid value for %s: %w", k.Name, err)
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("yaml")
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	file.Set(k.Name, val)
	if err := file.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(w, "Set %s = %v in %s\n", k.Name, val, path)
	return nil
}
