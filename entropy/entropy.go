// Package entropy measures how much information a guess is expected to
// reveal about a pool of candidate answers.
package entropy

import (
	"math"
	"slices"

	"github.com/domino14/wordlebot/alphabet"
	"github.com/domino14/wordlebot/outcome"
	"github.com/domino14/wordlebot/wordlist"
)

// Undefined is returned when a metric has no meaningful value, such as
// the entropy of an empty pool. It is NaN and must be tested with IsUndefined.
var Undefined = math.NaN()

func IsUndefined(h float64) bool { return math.IsNaN(h) }

// Scorer holds scratch space for entropy computations so that scanning a
// whole vocabulary does not allocate per guess. A Scorer is not safe for
// concurrent use; give each goroutine its own.
type Scorer struct {
	masses  [outcome.NumKeys]float64
	nonzero [outcome.NumKeys]float64
}

// GuessEntropy is the Shannon entropy, in bits, of the partition of pool
// induced by playing guess: every candidate lands in the bucket of the
// outcome it would produce if it were the answer. Bucket masses are
// candidate counts, or sums of candidate weights when weighted is set.
// The result is Undefined for an empty pool or a pool of zero total weight.
func (s *Scorer) GuessEntropy(guess alphabet.Word, pool *wordlist.Subset, weighted bool) float64 {
	if pool.Len() == 0 {
		return Undefined
	}
	s.masses = [outcome.NumKeys]float64{}
	for i := 0; i < pool.Len(); i++ {
		k := outcome.ScoreKey(guess, pool.Word(i))
		if weighted {
			s.masses[k] += pool.Weight(i)
		} else {
			s.masses[k]++
		}
	}
	n := 0
	for _, m := range s.masses {
		if m > 0 {
			s.nonzero[n] = m
			n++
		}
	}
	return fromMasses(s.nonzero[:n])
}

// fromMasses computes -sum p log2 p for the distribution proportional to
// masses. Masses are sorted first so that two partitions with the same
// multiset of bucket sizes give bit-identical results.
func fromMasses(masses []float64) float64 {
	slices.Sort(masses)
	total := 0.0
	for _, m := range masses {
		total += m
	}
	if !(total > 0) {
		return Undefined
	}
	h := 0.0
	for _, m := range masses {
		if m <= 0 {
			continue
		}
		p := m / total
		h -= p * math.Log2(p)
	}
	// -0 and tiny negative rounding residue both mean no information.
	if h < 0 {
		h = 0
	}
	return h
}

// GuessEntropy is a convenience wrapper that uses a fresh Scorer.
func GuessEntropy(guess alphabet.Word, pool *wordlist.Subset, weighted bool) float64 {
	var s Scorer
	return s.GuessEntropy(guess, pool, weighted)
}

// PoolEntropy is the entropy of the pool itself, treating each member as a
// possible answer: log2(N) when unweighted, or the entropy of the
// normalized weights when weighted. A pool of one has entropy 0.
func PoolEntropy(pool *wordlist.Subset, weighted bool) float64 {
	if pool.Len() == 0 {
		return Undefined
	}
	if !weighted {
		return math.Log2(float64(pool.Len()))
	}
	masses := make([]float64, pool.Len())
	for i := range masses {
		masses[i] = pool.Weight(i)
	}
	return fromMasses(masses)
}

// Bucket is one cell of a partition: every candidate that would produce
// Outcome if the guess were played.
type Bucket struct {
	Outcome outcome.Outcome
	Words   []alphabet.Word
	// Mass is the sum of the member weights.
	Mass float64
}

// Partition lists the non-empty buckets the guess splits pool into,
// largest first. Buckets of equal size are ordered by outcome key.
func Partition(guess alphabet.Word, pool *wordlist.Subset) []Bucket {
	byKey := map[uint8]*Bucket{}
	for i := 0; i < pool.Len(); i++ {
		o := outcome.Score(guess, pool.Word(i))
		b, ok := byKey[o.Key()]
		if !ok {
			b = &Bucket{Outcome: o}
			byKey[o.Key()] = b
		}
		b.Words = append(b.Words, pool.Word(i))
		b.Mass += pool.Weight(i)
	}
	buckets := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}
	slices.SortFunc(buckets, func(a, b Bucket) int {
		if len(a.Words) != len(b.Words) {
			return len(b.Words) - len(a.Words)
		}
		return int(a.Outcome.Key()) - int(b.Outcome.Key())
	})
	return buckets
}

// ExpectedRemaining is the expected number of candidates left after playing
// the guess, assuming every candidate is equally likely.
func ExpectedRemaining(buckets []Bucket) float64 {
	total, sq := 0, 0
	for _, b := range buckets {
		n := len(b.Words)
		total += n
		sq += n * n
	}
	if total == 0 {
		return Undefined
	}
	return float64(sq) / float64(total)
}
