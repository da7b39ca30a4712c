package pangolin

// coalition.go — canonical feature coalitions.
//
// A coalition is an unordered set of feature names. Coalitions are stored
// sorted and de-duplicated so that structurally equal sets compare equal and
// produce identical map keys regardless of construction order.

import (
	"sort"
	"strings"
)

// keySep separates feature names inside a coalition key. Feature names must
// not contain it; task validation rejects names that do.
const keySep = "\x1f"

// Coalition is a set of feature names with a canonical representation.
// The zero value is the empty coalition.
type Coalition struct {
	feats []string
}

// NewCoalition builds a coalition from the given feature names. Input order
// and duplicates are irrelevant.
func NewCoalition(feats ...string) Coalition {
	if len(feats) == 0 {
		return Coalition{}
	}
	out := make([]string, len(feats))
	copy(out, feats)
	sort.Strings(out)
	w := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[i-1] {
			out[w] = out[i]
			w++
		}
	}
	return Coalition{feats: out[:w]}
}

// Size returns the number of features in the coalition.
func (c Coalition) Size() int { return len(c.feats) }

// Empty reports whether the coalition has no features.
func (c Coalition) Empty() bool { return len(c.feats) == 0 }

// Features returns the coalition's members in sorted order.
func (c Coalition) Features() []string {
	return append([]string(nil), c.feats...)
}

// Contains reports whether name is a member.
func (c Coalition) Contains(name string) bool {
	i := sort.SearchStrings(c.feats, name)
	return i < len(c.feats) && c.feats[i] == name
}

// Add returns a new coalition with name included. The receiver is unchanged.
func (c Coalition) Add(name string) Coalition {
	if c.Contains(name) {
		return Coalition{feats: c.feats}
	}
	out := make([]string, 0, len(c.feats)+1)
	out = append(out, c.feats...)
	out = append(out, name)
	sort.Strings(out)
	return Coalition{feats: out}
}

// Key returns a canonical string key: equal coalitions share a key and
// distinct coalitions never collide. The empty coalition's key is "".
func (c Coalition) Key() string {
	return strings.Join(c.feats, keySep)
}

// Equal reports whether two coalitions hold the same features.
func (c Coalition) Equal(d Coalition) bool {
	if len(c.feats) != len(d.feats) {
		return false
	}
	for i := range c.feats {
		if c.feats[i] != d.feats[i] {
			return false
		}
	}
	return true
}

// String renders the coalition for logs and error messages.
func (c Coalition) String() string {
	return "{" + strings.Join(c.feats, ",") + "}"
}
