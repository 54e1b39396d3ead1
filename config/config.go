// Package config holds the runtime settings of the solver. Settings come,
// in increasing order of precedence, from built-in defaults, an optional
// config.yaml, WORDLEBOT_* environment variables and command-line flags.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDataPath          = "data-path"
	ConfigGuessList         = "guess-list"
	ConfigAnswerList        = "answer-list"
	ConfigMaxTurns          = "max-turns"
	ConfigWeightedThreshold = "weighted-threshold"
	ConfigWeighting         = "weighting"
	ConfigThreads           = "threads"
	ConfigSkipZeroFrequency = "skip-zero-frequency"
	ConfigHistoryDB         = "history-db"
	ConfigDebug             = "debug"
	ConfigCPUProfile        = "cpu-profile"
	ConfigMemProfile        = "mem-profile"
	ConfigListenAddr        = "listen-addr"
	ConfigTopPercentile     = "top-percentile"
	ConfigEvalLog           = "eval-log"
)

// Path-valued keys are made absolute by AdjustRelativePaths.
var pathKeys = []string{ConfigDataPath, ConfigHistoryDB}

type Config struct {
	*viper.Viper
	args []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDataPath, "./data")
	v.SetDefault(ConfigGuessList, "wordlists/guesses.txt")
	v.SetDefault(ConfigAnswerList, "wordlists/answers.txt")
	v.SetDefault(ConfigMaxTurns, 6)
	// 0 turns weighted entropy off altogether.
	v.SetDefault(ConfigWeightedThreshold, 0)
	v.SetDefault(ConfigWeighting, "logz")
	v.SetDefault(ConfigThreads, 0)
	v.SetDefault(ConfigSkipZeroFrequency, true)
	v.SetDefault(ConfigHistoryDB, "./data/history.db")
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
	v.SetDefault(ConfigListenAddr, ":8088")
	v.SetDefault(ConfigTopPercentile, 100.0)
	v.SetDefault(ConfigEvalLog, "")
}

// DefaultConfig returns a configuration holding only the built-in defaults.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{Viper: v}
}

// Load reads the configuration file, the environment and the given
// command-line arguments. Positional arguments that are not flags are kept
// and can be retrieved with Args.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	setDefaults(c.Viper)

	fs := pflag.NewFlagSet("wordlebot", pflag.ContinueOnError)
	fs.String(ConfigDataPath, "./data", "directory holding wordlists and other data")
	fs.String(ConfigGuessList, "wordlists/guesses.txt", "wordlist of allowed guesses, relative to the data path")
	fs.String(ConfigAnswerList, "wordlists/answers.txt", "wordlist of possible answers, relative to the data path")
	fs.Int(ConfigMaxTurns, 6, "maximum number of guesses per game")
	fs.Int(ConfigWeightedThreshold, 0, "use frequency-weighted entropy when fewer than this many candidates remain")
	fs.String(ConfigWeighting, "logz", "word weighting formula: logz or raw")
	fs.Int(ConfigThreads, 0, "number of worker threads; 0 means one per CPU")
	fs.Bool(ConfigSkipZeroFrequency, true, "skip words with a non-positive frequency score")
	fs.String(ConfigHistoryDB, "./data/history.db", "sqlite file for completed game history")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "file to write a CPU profile to")
	fs.String(ConfigMemProfile, "", "file to write a memory profile to")
	fs.String(ConfigListenAddr, ":8088", "address for the HTTP service")
	fs.Float64(ConfigTopPercentile, 100.0, "percentile of the answer list (by frequency) used for strategy evaluation")
	fs.String(ConfigEvalLog, "", "CSV file for per-game strategy evaluation results")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.args = fs.Args()

	c.SetEnvPrefix("wordlebot")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	c.SetConfigName("config")
	c.SetConfigType("yaml")
	c.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		c.AddConfigPath(filepath.Join(home, ".wordlebot"))
	}
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		log.Debug().Msg("no config file found; using defaults, env and flags")
	}
	return nil
}

// Args returns the non-flag arguments given to Load.
func (c *Config) Args() []string {
	return c.args
}

// Write saves the current settings back to the config file, creating
// ./config.yaml if no config file was read.
func (c *Config) Write() error {
	if c.ConfigFileUsed() == "" {
		return c.WriteConfigAs("config.yaml")
	}
	return c.WriteConfig()
}

// Threads returns the configured thread count; 0 or less means "let the
// caller pick".
func (c *Config) Threads() int {
	return c.GetInt(ConfigThreads)
}

// WordlistPath resolves a wordlist setting (guess-list or answer-list)
// against the data path.
func (c *Config) WordlistPath(key string) string {
	p := c.GetString(key)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.GetString(ConfigDataPath), p)
}

// FindBasePath walks up from path looking for a directory that contains a
// data directory, and returns it. If none is found, path itself is returned.
func FindBasePath(path string) string {
	dir := path
	for {
		if st, err := os.Stat(filepath.Join(dir, "data")); err == nil && st.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return path
		}
		dir = parent
	}
}

// AdjustRelativePaths makes path settings absolute, relative to the base
// path found from execPath. Paths that already resolve from the working
// directory are left alone.
func (c *Config) AdjustRelativePaths(execPath string) {
	base := FindBasePath(execPath)
	for _, key := range pathKeys {
		p := c.GetString(key)
		if p == "" || filepath.IsAbs(p) {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			continue
		}
		abs := filepath.Join(base, p)
		log.Debug().Str("key", key).Str("path", abs).Msg("adjusted-relative-path")
		c.Set(key, abs)
	}
}

// SanitizedSettings returns all settings for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
