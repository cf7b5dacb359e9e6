package trigram

// Prune replaces every posting list longer than floor(percent*N) — where N
// is the number of documents inserted so far — with a tombstone, and
// returns the number of postings newly pruned. percent must be in (0.0,
// 1.0); the core does not validate this itself.
//
// allDocs is never a candidate: it is excluded explicitly, not merely by
// virtue of rarely exceeding the threshold. The comparison is strict (>), so
// a posting of exactly the threshold length survives; calling Prune twice
// with the same percent is a no-op the second time, since every surviving
// list is already at or under the threshold.
func (idx *Index) Prune(percent float64) int {
	threshold := int(percent * float64(len(idx.allDocs())))

	pruned := 0
	for t, p := range idx.postings {
		if t == allDocs || p.pruned {
			continue
		}
		if len(p.docs) > threshold {
			idx.postings[t] = posting{pruned: true}
			pruned++
		}
	}
	return pruned
}
