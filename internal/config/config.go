// Package config assembles fivex settings from the config file, command
// line flags and the deployment environment.
package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/statgen/fivex/internal/numparse"
)

// Config holds runtime settings. Keys are the viper/YAML names; the
// envconfig tags name the environment variables a deployment sets.
type Config struct {
	DataDir         string `mapstructure:"data_dir" envconfig:"FIVEX_DATA_DIR" desc:"data root directory"`
	Listen          string `mapstructure:"listen" envconfig:"FIVEX_LISTEN" desc:"HTTP listen address"`
	LogLevel        string `mapstructure:"log_level" envconfig:"FIVEX_LOG_LEVEL" desc:"debug, info, warn or error"`
	NumParser       string `mapstructure:"num_parser" envconfig:"FIVEX_NUM_PARSER" desc:"numeric parser: standard or fast"`
	Workers         int    `mapstructure:"workers" envconfig:"FIVEX_WORKERS" desc:"parallel record decoders"`
	PreferredStudy  string `mapstructure:"preferred_study" envconfig:"FIVEX_PREFERRED_STUDY" desc:"study tried first for best hits"`
	AnnotationCache string `mapstructure:"annotation_cache" envconfig:"FIVEX_ANNOTATION_CACHE" desc:"decoded annotation cache directory"`
}

// Key is one recognized setting.
type Key struct {
	Name    string
	Env     string
	Default any
}

// Flag is the command line flag bound to the key, if any.
func (k Key) Flag() string {
	return strings.ReplaceAll(k.Name, "_", "-")
}

// Keys lists every setting fivex reads, in display order.
var Keys = []Key{
	{Name: "data_dir", Env: "FIVEX_DATA_DIR", Default: ""},
	{Name: "listen", Env: "FIVEX_LISTEN", Default: ":5000"},
	{Name: "log_level", Env: "FIVEX_LOG_LEVEL", Default: "info"},
	{Name: "num_parser", Env: "FIVEX_NUM_PARSER", Default: "standard"},
	{Name: "workers", Env: "FIVEX_WORKERS", Default: 4},
	{Name: "preferred_study", Env: "FIVEX_PREFERRED_STUDY", Default: ""},
	{Name: "annotation_cache", Env: "FIVEX_ANNOTATION_CACHE", Default: ""},
}

// Lookup returns the key with the given name.
func Lookup(name string) (Key, error) {
	for _, k := range Keys {
		if k.Name == name {
			return k, nil
		}
	}
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	sort.Strings(names)
	return Key{}, fmt.Errorf("unknown config key %q (known: %s)", name, strings.Join(names, ", "))
}

// Defaults registers default values and environment binding on v.
func Defaults(v *viper.Viper) {
	for _, k := range Keys {
		v.SetDefault(k.Name, k.Default)
	}

	v.SetEnvPrefix("FIVEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load decodes the settings from v. Precedence is flag, environment,
// config file, default. The FIVEX_* environment is checked on its own so a
// malformed variable is reported by name.
func Load(v *viper.Viper) (*Config, error) {
	var env Config
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Source names where the effective value of k comes from: "flag", "env",
// "file" or "default". flags may be nil.
func Source(v *viper.Viper, flags *pflag.FlagSet, k Key) string {
	if flags != nil {
		if f := flags.Lookup(k.Flag()); f != nil && f.Changed {
			return "flag"
		}
	}
	if _, ok := os.LookupEnv(k.Env); ok {
		return "env"
	}
	if v.InConfig(k.Name) {
		return "file"
	}
	return "default"
}

// EnvUsage writes the environment variables fivex reads.
func EnvUsage(w io.Writer) error {
	return envconfig.Usagef("", &Config{}, w, envUsageFormat)
}

const envUsageFormat = `{{range .}}{{usage_key .}}	{{usage_type .}}	{{usage_description .}}
{{end}}`

// Validate checks values that do not depend on the command being run.
func (c *Config) Validate() error {
	if _, err := numparse.ByName(c.NumParser); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// RequireDataDir reports an error when no data root is configured.
func (c *Config) RequireDataDir() error {
	if c.DataDir == "" {
		return fmt.Errorf("no data directory: set data_dir in ~/.fivex.yaml, pass --data-dir or set FIVEX_DATA_DIR")
	}
	return nil
}

// Numbers returns the configured numeric parsing strategy.
func (c *Config) Numbers() numparse.Strategy {
	s, err := numparse.ByName(c.NumParser)
	if err != nil {
		return numparse.Standard
	}
	return s
}
