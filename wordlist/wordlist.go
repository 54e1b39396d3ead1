// Package wordlist holds the immutable, scored word collections the solver
// works over: the guess list (every word that may be typed) and the answer
// list (the words that may be the hidden target).
package wordlist

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cespare/xxhash"
	"gonum.org/v1/gonum/stat"

	"github.com/domino14/wordlebot/alphabet"
)

// MinStdDev is the floor on the standard deviation used for z-score
// normalization. A list where every word has the same frequency would
// otherwise divide by zero.
const MinStdDev = 1e-9

// ErrEmptyWordlist is returned when a source yields no usable words.
var ErrEmptyWordlist = errors.New("wordlist has no words")

// Weighting selects how raw frequency scores become entropy weights.
type Weighting int

const (
	// WeightLogZ is log2(1 + z - zmin), with z the z-score of the raw
	// frequency. The least frequent word gets weight 0.
	WeightLogZ Weighting = iota
	// WeightRaw is log2(1 + score), ignoring the rest of the list.
	WeightRaw
)

func (w Weighting) String() string {
	switch w {
	case WeightLogZ:
		return "logz"
	case WeightRaw:
		return "raw"
	}
	return "unknown"
}

// ParseWeighting parses a weighting name as found in the configuration.
func ParseWeighting(s string) (Weighting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "logz", "":
		return WeightLogZ, nil
	case "raw":
		return WeightRaw, nil
	}
	return WeightLogZ, fmt.Errorf("unknown weighting %q; valid choices are logz, raw", s)
}

// Record is a single (word, raw frequency) pair as delivered by a loader.
type Record struct {
	Word  string
	Score float64
}

// Wordlist is an ordered collection of unique words with their raw scores
// and derived weights. It is never modified after New returns, so it may be
// shared freely between goroutines.
type Wordlist struct {
	name        string
	weighting   Weighting
	words       []alphabet.Word
	scores      []float64
	weights     []float64
	index       map[alphabet.Word]int
	fingerprint uint64
}

// New builds a Wordlist from records. Records whose word is malformed are
// rejected; later duplicates of a word are ignored.
func New(name string, records []Record, weighting Weighting) (*Wordlist, error) {
	wl := &Wordlist{
		name:      name,
		weighting: weighting,
		words:     make([]alphabet.Word, 0, len(records)),
		scores:    make([]float64, 0, len(records)),
		index:     make(map[alphabet.Word]int, len(records)),
	}
	for _, r := range records {
		w, err := alphabet.ToWord(strings.ToLower(r.Word))
		if err != nil {
			return nil, err
		}
		if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) {
			return nil, fmt.Errorf("%w: score for %q is not finite", alphabet.ErrMalformedInput, r.Word)
		}
		if _, ok := wl.index[w]; ok {
			continue
		}
		wl.index[w] = len(wl.words)
		wl.words = append(wl.words, w)
		wl.scores = append(wl.scores, r.Score)
	}
	if len(wl.words) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyWordlist)
	}
	wl.weights = normalizeScores(wl.scores, weighting)
	wl.fingerprint = computeFingerprint(wl.words, wl.scores, weighting)
	return wl, nil
}

// normalizeScores maps raw frequencies to weights. The logz mapping
// compresses the heavy skew of raw corpus counts.
func normalizeScores(scores []float64, weighting Weighting) []float64 {
	weights := make([]float64, len(scores))
	if weighting == WeightRaw {
		for i, s := range scores {
			weights[i] = math.Log2(1 + math.Max(s, 0))
		}
		return weights
	}
	mean, stddev := stat.PopMeanStdDev(scores, nil)
	stddev = math.Max(stddev, MinStdDev)
	zmin := math.Inf(1)
	for i, s := range scores {
		weights[i] = (s - mean) / stddev
		zmin = math.Min(zmin, weights[i])
	}
	for i, z := range weights {
		weights[i] = math.Log2(1 + z - zmin)
	}
	return weights
}

func computeFingerprint(words []alphabet.Word, scores []float64, weighting Weighting) uint64 {
	d := xxhash.New()
	var buf [8]byte
	d.Write([]byte{byte(weighting)})
	for i, w := range words {
		for _, ml := range w {
			d.Write([]byte{byte(ml)})
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(scores[i]))
		d.Write(buf[:])
	}
	return d.Sum64()
}

func (wl *Wordlist) Name() string             { return wl.name }
func (wl *Wordlist) Len() int                 { return len(wl.words) }
func (wl *Wordlist) Word(i int) alphabet.Word { return wl.words[i] }
func (wl *Wordlist) Score(i int) float64      { return wl.scores[i] }
func (wl *Wordlist) Weight(i int) float64     { return wl.weights[i] }
func (wl *Wordlist) Weighting() Weighting     { return wl.weighting }

// Fingerprint identifies the contents of the list (words, scores and
// weighting). Two lists with the same fingerprint behave identically.
func (wl *Wordlist) Fingerprint() uint64 {
	return wl.fingerprint
}

// Index returns the position of w in the list.
func (wl *Wordlist) Index(w alphabet.Word) (int, bool) {
	i, ok := wl.index[w]
	return i, ok
}

func (wl *Wordlist) Contains(w alphabet.Word) bool {
	_, ok := wl.index[w]
	return ok
}

// Words returns a copy of the words in list order.
func (wl *Wordlist) Words() []alphabet.Word {
	return slices.Clone(wl.words)
}

// TopByScore returns the indices of the most frequent words, covering the
// given percentile (0-100] of the list, highest raw score first. Ties are
// broken by word so the result is deterministic. At least one index is
// returned.
func (wl *Wordlist) TopByScore(percentile float64) []int {
	idxs := make([]int, len(wl.words))
	for i := range idxs {
		idxs[i] = i
	}
	slices.SortStableFunc(idxs, func(a, b int) int {
		if wl.scores[a] != wl.scores[b] {
			if wl.scores[a] > wl.scores[b] {
				return -1
			}
			return 1
		}
		if wl.words[a].Less(wl.words[b]) {
			return -1
		}
		if wl.words[b].Less(wl.words[a]) {
			return 1
		}
		return 0
	})
	percentile = math.Min(math.Max(percentile, 0), 100)
	n := int(math.Ceil(percentile / 100 * float64(len(idxs))))
	n = max(n, 1)
	return idxs[:n]
}
