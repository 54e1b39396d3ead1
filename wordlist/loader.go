package wordlist

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/cache"
	"github.com/domino14/wordlebot/config"
)

const CacheKeyPrefix = "wordlist:"

// LoadOptions control how a wordlist file is read.
type LoadOptions struct {
	Weighting Weighting
	// SkipZeroFrequency drops words whose score column is zero or less.
	// Lines with no score column are always kept.
	SkipZeroFrequency bool
}

// ReadRecords parses a record stream: one word per line, whitespace
// separated columns, the word first and its raw frequency score last.
// Blank lines and lines starting with # are ignored, as are words that do
// not have the game's length or alphabet.
func ReadRecords(r io.Reader, opts LoadOptions) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	lineno := 0
	skipped := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		word := strings.ToLower(fields[0])
		if _, err := alphabet.ToWord(word); err != nil {
			skipped++
			continue
		}
		score := 0.0
		if len(fields) > 1 {
			var err error
			score, err = strconv.ParseFloat(fields[len(fields)-1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad score: %w", lineno, err)
			}
			if opts.SkipZeroFrequency && score <= 0 {
				skipped++
				continue
			}
		}
		records = append(records, Record{Word: word, Score: score})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Int("kept", len(records)).Msg("skipped-wordlist-lines")
	}
	return records, nil
}

// Read builds a Wordlist from a record stream.
func Read(name string, r io.Reader, opts LoadOptions) (*Wordlist, error) {
	records, err := ReadRecords(r, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return New(name, records, opts.Weighting)
}

// Load reads a wordlist file. Files ending in .gz are decompressed.
func Load(path string, opts LoadOptions) (*Wordlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	wl, err := Read(path, r, opts)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("words", wl.Len()).Str("weighting", opts.Weighting.String()).
		Msg("loaded-wordlist")
	return wl, nil
}

func cacheKey(path string, opts LoadOptions) string {
	return fmt.Sprintf("%s%s:%t:%s", CacheKeyPrefix, opts.Weighting, opts.SkipZeroFrequency, path)
}

// CacheLoadFunc is the function that loads a wordlist into the global cache.
func CacheLoadFunc(cfg *config.Config, key string) (any, error) {
	parts := strings.SplitN(strings.TrimPrefix(key, CacheKeyPrefix), ":", 3)
	if len(parts) != 3 {
		return nil, errors.New("badly formed wordlist cache key " + key)
	}
	weighting, err := ParseWeighting(parts[0])
	if err != nil {
		return nil, err
	}
	skip, err := strconv.ParseBool(parts[1])
	if err != nil {
		return nil, err
	}
	return Load(parts[2], LoadOptions{Weighting: weighting, SkipZeroFrequency: skip})
}

// OptionsFromConfig returns the load options set in the configuration.
func OptionsFromConfig(cfg *config.Config) (LoadOptions, error) {
	weighting, err := ParseWeighting(cfg.GetString(config.ConfigWeighting))
	if err != nil {
		return LoadOptions{}, err
	}
	return LoadOptions{
		Weighting:         weighting,
		SkipZeroFrequency: cfg.GetBool(config.ConfigSkipZeroFrequency),
	}, nil
}

// Get loads the wordlist named by a config key (config.ConfigGuessList or
// config.ConfigAnswerList), going through the global cache.
func Get(cfg *config.Config, key string) (*Wordlist, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	obj, err := cache.Load(cfg, cacheKey(cfg.WordlistPath(key), opts), CacheLoadFunc)
	if err != nil {
		return nil, err
	}
	wl, ok := obj.(*Wordlist)
	if !ok {
		return nil, errors.New("could not read wordlist from cache")
	}
	return wl, nil
}
