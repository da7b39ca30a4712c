package pangolin

// permutation.go — feature-ordering generation.
//
// A run needs orderings of the full feature set. When the permutation
// universe is small enough it is enumerated exactly, every unique ordering
// once; otherwise orderings are drawn uniformly at random and exact
// duplicates are discarded, so a sampled run can come back with fewer
// orderings than requested.

import (
	"math/rand"
	"strings"
)

// MaxPermutations caps how many orderings one computation samples.
const MaxPermutations = 8192

// DefaultPermutations is the sample count used when none is configured.
const DefaultPermutations = 120

// maxEnumerate bounds exact enumeration at 8! orderings. Full enumeration
// of nine or more features falls back to sampling MaxPermutations.
const maxEnumerate = 40320

// Permutation is one ordering of the full feature set.
type Permutation []string

// generatePermutations produces the orderings for one run. want is the
// requested sample count, already defaulted and clamped by the caller; with
// all set it is ignored and the whole universe is enumerated when small
// enough.
func generatePermutations(feats []string, want int, all bool, rng *rand.Rand) []Permutation {
	if all {
		if _, ok := factorialWithin(len(feats), maxEnumerate); ok {
			return enumeratePermutations(feats)
		}
		want = MaxPermutations
	} else if _, ok := factorialWithin(len(feats), want); ok {
		return enumeratePermutations(feats)
	}
	return samplePermutations(feats, want, rng)
}

// samplePermutations draws want orderings with replacement and keeps the
// distinct ones in draw order.
func samplePermutations(feats []string, want int, rng *rand.Rand) []Permutation {
	p := len(feats)
	seen := make(map[string]struct{}, want)
	perms := make([]Permutation, 0, want)
	for k := 0; k < want; k++ {
		perm := make(Permutation, p)
		for i, idx := range rng.Perm(p) {
			perm[i] = feats[idx]
		}
		key := strings.Join(perm, keySep)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		perms = append(perms, perm)
	}
	return perms
}

// factorialWithin returns p! when it does not exceed limit.
func factorialWithin(p, limit int) (int, bool) {
	total := 1
	for i := 2; i <= p; i++ {
		total *= i
		if total > limit {
			return 0, false
		}
	}
	if total > limit {
		return 0, false
	}
	return total, true
}

// enumeratePermutations lists every ordering of feats using Heap's
// algorithm.
func enumeratePermutations(feats []string) []Permutation {
	p := len(feats)
	if p == 0 {
		return nil
	}
	work := append([]string(nil), feats...)
	var out []Permutation
	emit := func() {
		perm := make(Permutation, p)
		copy(perm, work)
		out = append(out, perm)
	}
	emit()
	c := make([]int, p)
	i := 0
	for i < p {
		if c[i] < i {
			if i%2 == 0 {
				work[0], work[i] = work[i], work[0]
			} else {
				work[c[i]], work[i] = work[i], work[c[i]]
			}
			emit()
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
	return out
}
