// Package scheduler picks the words shown in a learn session.
//
// Words are weighted by rank reversal: sorted by how often they were shown
// (least shown first, ties broken lexicographically), each word takes the
// count found at the mirrored position of the same counts sorted in
// descending order. The least shown word therefore carries the weight of
// the most shown one. Weights are normalized into probabilities.
package scheduler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/japaniel/kelime/pkg/dictionary"
)

var (
	// ErrSampleTooLarge is returned when more words are requested than the dictionary holds.
	ErrSampleTooLarge = errors.New("sample size exceeds dictionary size")
	// ErrInvalidSampleSize is returned for sample sizes below one.
	ErrInvalidSampleSize = errors.New("sample size must be positive")
)

// Weight is one row of the sampling frame.
type Weight struct {
	Word        string
	TimesShown  int
	Count       int // rank-reversed count
	Probability float64
}

// Frame computes the sampling frame over every valid record in d.
// Rows are ordered by ascending TimesShown, then by word.
func Frame(d *dictionary.Dictionary) []Weight {
	words := d.Words()
	frame := make([]Weight, 0, len(words))
	for _, w := range words {
		rec, _ := d.Get(w)
		frame = append(frame, Weight{Word: w, TimesShown: rec.TimesShown})
	}
	// words is already sorted, so a stable sort keeps the lexicographic tie-break.
	sort.SliceStable(frame, func(i, j int) bool {
		return frame[i].TimesShown < frame[j].TimesShown
	})

	total := 0
	n := len(frame)
	for i := range frame {
		frame[i].Count = frame[n-1-i].TimesShown
		total += frame[i].Count
	}
	for i := range frame {
		frame[i].Probability = float64(frame[i].Count) / float64(total)
	}
	return frame
}

// Sample draws n distinct words from d without replacement, following the
// probabilities of Frame. After each draw the remaining weights are renormalized.
func Sample(d *dictionary.Dictionary, n int, rng *rand.Rand) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleSize, n)
	}
	if n > d.Len() {
		return nil, fmt.Errorf("%w: requested %d, have %d", ErrSampleTooLarge, n, d.Len())
	}

	pool := Frame(d)
	picked := make([]string, 0, n)
	for len(picked) < n {
		total := 0.0
		for _, w := range pool {
			total += w.Probability
		}
		i := pick(pool, rng.Float64()*total)
		picked = append(picked, pool[i].Word)
		pool = append(pool[:i], pool[i+1:]...)
	}
	return picked, nil
}

// pick returns the index whose cumulative probability range contains target.
func pick(pool []Weight, target float64) int {
	acc := 0.0
	for i, w := range pool {
		acc += w.Probability
		if target < acc {
			return i
		}
	}
	// Rounding can leave target just past the last boundary.
	return len(pool) - 1
}
