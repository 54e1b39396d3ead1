package wordlist

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/domino14/wordlebot/alphabet"
)

// Subset is a view into a Wordlist: a sorted list of indices plus a bitset
// for constant-time membership tests. It never copies the words.
type Subset struct {
	parent  *Wordlist
	indices []int
	members *bitset.BitSet
}

// All returns a subset holding every word in the list.
func (wl *Wordlist) All() *Subset {
	indices := make([]int, len(wl.words))
	members := bitset.New(uint(len(wl.words)))
	for i := range indices {
		indices[i] = i
		members.Set(uint(i))
	}
	return &Subset{parent: wl, indices: indices, members: members}
}

// NewSubset makes a subset from ascending parent indices.
func (wl *Wordlist) NewSubset(indices []int) *Subset {
	members := bitset.New(uint(len(wl.words)))
	for _, i := range indices {
		members.Set(uint(i))
	}
	return &Subset{parent: wl, indices: indices, members: members}
}

// Filter returns the subset of words for which keep returns true.
func (s *Subset) Filter(keep func(alphabet.Word) bool) *Subset {
	indices := make([]int, 0, len(s.indices))
	for _, i := range s.indices {
		if keep(s.parent.words[i]) {
			indices = append(indices, i)
		}
	}
	return s.parent.NewSubset(indices)
}

func (s *Subset) Parent() *Wordlist { return s.parent }
func (s *Subset) Len() int          { return len(s.indices) }

// Index returns the parent index of the i-th member.
func (s *Subset) Index(i int) int { return s.indices[i] }

func (s *Subset) Word(i int) alphabet.Word { return s.parent.words[s.indices[i]] }
func (s *Subset) Score(i int) float64      { return s.parent.scores[s.indices[i]] }
func (s *Subset) Weight(i int) float64     { return s.parent.weights[s.indices[i]] }

// Contains reports whether w is a member of the subset.
func (s *Subset) Contains(w alphabet.Word) bool {
	i, ok := s.parent.index[w]
	return ok && s.members.Test(uint(i))
}

// ScoreOf returns the raw score of w if it is a member.
func (s *Subset) ScoreOf(w alphabet.Word) (float64, bool) {
	i, ok := s.parent.index[w]
	if !ok || !s.members.Test(uint(i)) {
		return 0, false
	}
	return s.parent.scores[i], true
}

// IsSubsetOf reports whether every member of s is also in o. Both must
// share a parent list.
func (s *Subset) IsSubsetOf(o *Subset) bool {
	return s.parent == o.parent && o.members.IsSuperSet(s.members)
}

// TotalWeight sums the weights of all members.
func (s *Subset) TotalWeight() float64 {
	total := 0.0
	for _, i := range s.indices {
		total += s.parent.weights[i]
	}
	return total
}

// Words lists the members in list order.
func (s *Subset) Words() []alphabet.Word {
	out := make([]alphabet.Word, len(s.indices))
	for j, i := range s.indices {
		out[j] = s.parent.words[i]
	}
	return out
}
