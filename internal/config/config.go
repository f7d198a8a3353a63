// Package config loads tf2git settings from config file, environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".tf2git"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix, e.g. TF2GIT_WORK_DIR.
const envPrefix = "TF2GIT"

// Config holds every setting a migration run needs. There is no other
// process-wide state; components receive what they need explicitly.
type Config struct {
	SourcePath string `mapstructure:"source_path"` // TFVC server path, e.g. $/Project
	WorkDir    string `mapstructure:"work_dir"`    // working tree, becomes the git repository
	TfExe      string `mapstructure:"tf_exe"`      // tf client binary
	Workspace  string `mapstructure:"workspace"`   // TFVC workspace name

	From int `mapstructure:"from"` // first changeset to replay, 0 = open
	To   int `mapstructure:"to"`   // last changeset to replay, 0 = open

	UserMapPath string `mapstructure:"user_map"`

	// CaseSensitiveHistory skips case reconciliation entirely. Set it
	// only when no case-only rename ever happened in the source.
	CaseSensitiveHistory bool `mapstructure:"case_sensitive_history"`

	DryRun  bool `mapstructure:"dry_run"`
	Verbose bool `mapstructure:"verbose"`
}

// flagBindings maps config keys to the command-line flags that override
// them.
var flagBindings = map[string]string{
	"source_path":            "source",
	"work_dir":               "workdir",
	"tf_exe":                 "tf",
	"workspace":              "workspace",
	"from":                   "from",
	"to":                     "to",
	"user_map":               "usermap",
	"case_sensitive_history": "case-sensitive-history",
	"dry_run":                "dry-run",
	"verbose":                "verbose",
}

// Load builds the effective configuration. If configPath is non-empty
// it is used as the explicit config file; otherwise the file is
// searched in CWD and $HOME. A missing config file is not an error.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for key, flag := range flagBindings {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// applyDefaults registers every key with viper. Keys without an entry
// here would be invisible to Unmarshal when set only through the
// environment.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("source_path", "")
	v.SetDefault("work_dir", "")
	v.SetDefault("tf_exe", "tf")
	v.SetDefault("workspace", "tf2git")
	v.SetDefault("from", 0)
	v.SetDefault("to", 0)
	v.SetDefault("user_map", "")
	v.SetDefault("case_sensitive_history", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("verbose", false)
}

// Validate rejects configurations the run cannot start from.
func (c *Config) Validate() error {
	if c.SourcePath == "" {
		return errors.New("source path is required (e.g. $/Project)")
	}
	if c.WorkDir == "" {
		return errors.New("working directory is required")
	}
	if c.From < 0 || c.To < 0 {
		return errors.New("changeset bounds must be positive")
	}
	if c.From > 0 && c.To > 0 && c.From > c.To {
		return fmt.Errorf("invalid range: from %d > to %d", c.From, c.To)
	}
	return nil
}
