package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/domino14/wordlebot/config"
	"github.com/domino14/wordlebot/game"
	"github.com/domino14/wordlebot/wordlist"
)

// ShellOptions are the settings a game started from the shell picks up.
type ShellOptions struct {
	WeightedThreshold int
	Weighting         wordlist.Weighting
	Threads           int
	MaxTurns          int
	Verbose           bool
}

var optionKeys = []string{"weighted-threshold", "weighting", "threads", "max-turns", "verbose"}

func NewShellOptions() *ShellOptions {
	return &ShellOptions{
		Weighting: wordlist.WeightLogZ,
		MaxTurns:  game.DefaultMaxTurns,
	}
}

func (opts *ShellOptions) SetDefaults(cfg *config.Config) {
	opts.WeightedThreshold = cfg.GetInt(config.ConfigWeightedThreshold)
	if w, err := wordlist.ParseWeighting(cfg.GetString(config.ConfigWeighting)); err == nil {
		opts.Weighting = w
	}
	opts.Threads = cfg.Threads()
	if t := cfg.GetInt(config.ConfigMaxTurns); t > 0 {
		opts.MaxTurns = t
	}
	opts.Verbose = cfg.GetBool(config.ConfigDebug)
}

func (opts *ShellOptions) Show(key string) (bool, string) {
	switch key {
	case "weighted-threshold":
		if opts.WeightedThreshold <= 0 {
			return true, "0 (off)"
		}
		return true, strconv.Itoa(opts.WeightedThreshold)
	case "weighting":
		return true, opts.Weighting.String()
	case "threads":
		if opts.Threads <= 0 {
			return true, "0 (one per CPU)"
		}
		return true, strconv.Itoa(opts.Threads)
	case "max-turns":
		return true, strconv.Itoa(opts.MaxTurns)
	case "verbose":
		return true, fmt.Sprintf("%v", opts.Verbose)
	default:
		return false, "No such option: " + key
	}
}

// Set changes one option and returns its new displayed value.
func (opts *ShellOptions) Set(key, value string) (string, error) {
	switch key {
	case "weighted-threshold", "threads", "max-turns":
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", err
		}
		if n < 0 || (key == "max-turns" && n == 0) {
			return "", fmt.Errorf("%s must be positive", key)
		}
		switch key {
		case "weighted-threshold":
			opts.WeightedThreshold = n
		case "threads":
			opts.Threads = n
		default:
			opts.MaxTurns = n
		}
	case "weighting":
		w, err := wordlist.ParseWeighting(value)
		if err != nil {
			return "", err
		}
		opts.Weighting = w
	case "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", err
		}
		opts.Verbose = b
	default:
		return "", fmt.Errorf("no such option: %s", key)
	}
	_, val := opts.Show(key)
	return val, nil
}

func (opts *ShellOptions) ToDisplayText() string {
	out := strings.Builder{}
	out.WriteString("Settings:\n")
	for _, key := range optionKeys {
		_, val := opts.Show(key)
		out.WriteString("  " + key + ": ")
		out.WriteString(val + "\n")
	}
	return out.String()
}
