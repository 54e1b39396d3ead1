// Package testhelpers builds small in-memory wordlists and configurations
// shared by the package tests.
package testhelpers

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/domino14/wordlebot/config"
	"github.com/domino14/wordlebot/wordlist"
)

var DefaultConfig = config.DefaultConfig()

// AnswerRecords is a small answer list with made-up frequencies. It holds
// a family of words that differ in a single position, which makes the
// solver's choices easy to reason about.
var AnswerRecords = []wordlist.Record{
	{Word: "bored", Score: 5000},
	{Word: "bowed", Score: 900},
	{Word: "boned", Score: 800},
	{Word: "booed", Score: 60},
	{Word: "boyed", Score: 30},
	{Word: "boded", Score: 12},
	{Word: "cigar", Score: 4000},
	{Word: "rebut", Score: 700},
	{Word: "sissy", Score: 200},
	{Word: "humph", Score: 90},
	{Word: "awake", Score: 1500},
	{Word: "blush", Score: 1100},
	{Word: "focal", Score: 650},
	{Word: "evade", Score: 300},
	{Word: "naval", Score: 800},
	{Word: "serve", Score: 2500},
}

// GuessOnlyRecords are allowed guesses that are never answers.
var GuessOnlyRecords = []wordlist.Record{
	{Word: "soare", Score: 120},
	{Word: "wynds", Score: 3},
	{Word: "tares", Score: 40},
	{Word: "nymph", Score: 150},
	{Word: "crwth", Score: 1},
}

// GuessRecords is every allowed guess: the answers first, then the
// guess-only words.
func GuessRecords() []wordlist.Record {
	out := make([]wordlist.Record, 0, len(AnswerRecords)+len(GuessOnlyRecords))
	out = append(out, AnswerRecords...)
	return append(out, GuessOnlyRecords...)
}

// MakeWordlist builds a wordlist or fails the test.
func MakeWordlist(t testing.TB, name string, records []wordlist.Record, weighting wordlist.Weighting) *wordlist.Wordlist {
	t.Helper()
	wl, err := wordlist.New(name, records, weighting)
	if err != nil {
		t.Fatal(err)
	}
	return wl
}

// SmallLists returns the fixture guess and answer lists.
func SmallLists(t testing.TB) (guesses, answers *wordlist.Wordlist) {
	t.Helper()
	return MakeWordlist(t, "guesses", GuessRecords(), wordlist.WeightLogZ),
		MakeWordlist(t, "answers", AnswerRecords, wordlist.WeightLogZ)
}

// WriteRecords writes records in the on-disk wordlist format and returns
// the file path.
func WriteRecords(t testing.TB, dir, name string, records []wordlist.Record) string {
	t.Helper()
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(r.Word)
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(r.Score, 'f', -1, 64))
		sb.WriteByte('\n')
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ConfigWithSmallLists writes the fixture lists into a temporary data
// directory and returns a config pointing at them.
func ConfigWithSmallLists(t testing.TB) *config.Config {
	t.Helper()
	dir := t.TempDir()
	WriteRecords(t, dir, "guesses.txt", GuessRecords())
	WriteRecords(t, dir, "answers.txt", AnswerRecords)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigDataPath, dir)
	cfg.Set(config.ConfigGuessList, "guesses.txt")
	cfg.Set(config.ConfigAnswerList, "answers.txt")
	cfg.Set(config.ConfigHistoryDB, filepath.Join(dir, "history.db"))
	cfg.Set(config.ConfigThreads, 2)
	return cfg
}
