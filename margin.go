package pangolin

// margin.go — marginal-contribution extraction.
//
// For feature f under ordering π, the features preceding f form one
// coalition and the same set plus f forms the other; the value-function
// difference between the two is f's marginal contribution under π. A size
// bound truncates the prefix while keeping after = before plus f.

import "sort"

// marginalRecord pairs the before and after coalitions for one feature
// under one sampled ordering.
type marginalRecord struct {
	feature string
	perm    int
	before  Coalition
	after   Coalition
}

// marginalPair builds the before and after coalitions for feature within
// perm. A bound of zero or less means unbounded; otherwise the prefix is
// truncated so the after coalition holds at most bound features, feature
// included.
func marginalPair(perm Permutation, feature string, bound int) (before, after Coalition) {
	pos := -1
	for i, f := range perm {
		if f == feature {
			pos = i
			break
		}
	}
	prefix := perm[:pos]
	if bound > 0 && pos+1 > bound {
		prefix = perm[:bound-1]
	}
	before = NewCoalition(prefix...)
	after = before.Add(feature)
	return before, after
}

// marginalRecords builds the record set for every explained feature under
// every ordering, feature-major with orderings in sample order.
func marginalRecords(perms []Permutation, features []string, bound int) []marginalRecord {
	records := make([]marginalRecord, 0, len(perms)*len(features))
	for _, f := range features {
		for k, perm := range perms {
			before, after := marginalPair(perm, f, bound)
			records = append(records, marginalRecord{feature: f, perm: k, before: before, after: after})
		}
	}
	return records
}

// coalitionWorklist collects the distinct coalitions across all records,
// key-sorted for a deterministic evaluation order.
func coalitionWorklist(records []marginalRecord) []Coalition {
	seen := make(map[string]Coalition, len(records))
	for _, r := range records {
		seen[r.before.Key()] = r.before
		seen[r.after.Key()] = r.after
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Coalition, len(keys))
	for i, k := range keys {
		out[i] = seen[k]
	}
	return out
}
