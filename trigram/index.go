package trigram

import "sort"

// Index maps trigrams to posting lists, plus the distinguished allDocs entry
// holding every DocID assigned so far, in ascending order.
//
// Index has no internal synchronization. Multiple readers may call Query,
// QueryTrigrams, and Filter concurrently provided no writer is active, since
// those are observably pure reads; NewWithDocuments, Add, Insert, their
// *Trigrams variants, and Prune mutate the index and require exclusive
// access. The core enforces none of this itself — see the server package
// for a concurrency-safe wrapper.
type Index struct {
	postings map[T]posting
}

// New returns an empty index.
func New() *Index {
	idx := &Index{postings: make(map[T]posting)}
	idx.postings[allDocs] = posting{docs: []DocID{}}
	return idx
}

// NewWithDocuments builds an index over docs, assigning docs[i] the
// identifier DocID(i).
func NewWithDocuments(docs [][]byte) *Index {
	idx := &Index{postings: make(map[T]posting, len(docs)*8)}
	all := make([]DocID, 0, len(docs))

	var scratch []T
	for i, d := range docs {
		id := DocID(i)
		scratch = idx.insertAllTrigramsInto(d, id, scratch[:0])
		all = append(all, id)
	}
	idx.postings[allDocs] = posting{docs: all}
	return idx
}

// insertAllTrigramsInto extracts the trigrams of d into scratch and indexes
// them under id, panicking if construction encounters an already-pruned
// posting — a state that should be unreachable while building a brand new
// index (see spec.md §7, §9). It returns the scratch buffer for reuse.
func (idx *Index) insertAllTrigramsInto(d []byte, id DocID, scratch []T) []T {
	scratch = ExtractAll(d, scratch)
	for _, t := range scratch {
		p, ok := idx.postings[t]
		if !ok {
			idx.postings[t] = newPostingList(id)
			continue
		}
		if p.pruned {
			panic("trigram: pruned posting found during index construction")
		}
		p.appendDedup(id)
		idx.postings[t] = p
	}
	return scratch
}

// insertAllTrigrams is insertAllTrigramsInto without scratch reuse.
func (idx *Index) insertAllTrigrams(d []byte, id DocID) {
	idx.insertAllTrigramsInto(d, id, nil)
}

// Add extracts the trigrams of s and inserts it under the next sequential
// DocID, returning that id.
func (idx *Index) Add(s []byte) DocID {
	id := idx.nextID()
	idx.Insert(s, id)
	return id
}

// AddTrigrams is Add for callers that have already extracted trigrams.
func (idx *Index) AddTrigrams(ts []T) DocID {
	id := idx.nextID()
	idx.InsertTrigrams(ts, id)
	return id
}

// Insert extracts the trigrams of s and inserts it under the caller-chosen
// id, which must be monotonically increasing across calls.
func (idx *Index) Insert(s []byte, id DocID) {
	idx.InsertTrigrams(ExtractAll(s, nil), id)
}

// InsertTrigrams inserts a pre-extracted (possibly duplicate-bearing)
// trigram sequence under id. A trigram whose posting has been pruned is
// skipped silently: a tombstoned posting must stay empty, even as new
// documents are added, which permanently degrades precision for that
// trigram (see Prune).
func (idx *Index) InsertTrigrams(ts []T, id DocID) {
	for _, t := range ts {
		p, ok := idx.postings[t]
		if !ok {
			idx.postings[t] = newPostingList(id)
			continue
		}
		if p.pruned {
			continue
		}
		p.appendDedup(id)
		idx.postings[t] = p
	}

	all := idx.postings[allDocs]
	if all.pruned {
		panic("trigram: allDocs posting was pruned")
	}
	all.docs = append(all.docs, id)
	idx.postings[allDocs] = all
}

func (idx *Index) nextID() DocID {
	return DocID(len(idx.allDocs()))
}

func (idx *Index) allDocs() []DocID {
	p, ok := idx.postings[allDocs]
	if !ok || p.pruned {
		panic("trigram: allDocs posting missing or pruned")
	}
	return p.docs
}

// AllDocs returns a copy of every DocID assigned so far, in ascending order.
func (idx *Index) AllDocs() []DocID {
	all := idx.allDocs()
	out := make([]DocID, len(all))
	copy(out, all)
	return out
}

// Query extracts the unique trigrams of s and returns QueryTrigrams(ts).
func (idx *Index) Query(s []byte) []DocID {
	return idx.QueryTrigrams(Extract(s))
}

// QueryTrigrams returns the candidate set for ts: a sorted, de-duplicated
// superset of the documents containing every trigram in ts as a byte window.
//
// An empty ts (the query was shorter than three bytes) returns a copy of
// every DocID: a short query is non-discriminating. If any t in ts is
// entirely absent from the index — not even as a tombstone — the query is
// unsatisfiable and the empty set is returned. Otherwise the trigrams are
// ordered by ascending posting-list length (rarest first, with pruned
// trigrams treated as carrying no information); if every trigram turns out
// to be pruned, no posting is discriminating and a copy of every DocID is
// returned. Otherwise the rarest surviving posting seeds the intersection,
// which Filter then narrows by the rest.
func (idx *Index) QueryTrigrams(ts []T) []DocID {
	if len(ts) == 0 {
		return idx.AllDocs()
	}

	type freq struct {
		t T
		n int
	}
	freqs := make([]freq, 0, len(ts))
	for _, t := range ts {
		p, ok := idx.postings[t]
		if !ok {
			return []DocID{}
		}
		n := 0
		if !p.pruned {
			n = len(p.docs)
		}
		freqs = append(freqs, freq{t, n})
	}

	sort.Slice(freqs, func(i, j int) bool { return freqs[i].n < freqs[j].n })

	nonzero := 0
	for nonzero < len(freqs) && freqs[nonzero].n == 0 {
		nonzero++
	}
	if nonzero == len(freqs) {
		return idx.AllDocs()
	}

	rest := make([]T, 0, len(freqs)-nonzero-1)
	for _, f := range freqs[nonzero+1:] {
		rest = append(rest, f.t)
	}

	first := idx.postings[freqs[nonzero].t]
	if first.pruned {
		// Cannot happen: a pruned posting has n == 0 and sorts before
		// every nonzero entry, so freqs[nonzero] would have been
		// skipped by the loop above.
		panic("trigram: rarest selected posting is pruned")
	}
	return idx.Filter(first.docs, rest)
}

// Filter returns the subset of the sorted slice docs present in every
// posting list for ts. Pruned trigrams contribute no constraint and are
// skipped. If any t in ts is wholly absent from the index, Filter returns
// the empty set. If ts is empty, Filter returns a copy of docs.
//
// docs is never mutated: the first posting is intersected into a freshly
// allocated buffer, since docs is typically a live posting list. Later
// postings are intersected into that buffer in place, which is safe once
// the buffer is no longer shared with the index.
func (idx *Index) Filter(docs []DocID, ts []T) []DocID {
	if len(ts) == 0 {
		out := make([]DocID, len(docs))
		copy(out, docs)
		return out
	}

	result := make([]DocID, len(docs))
	first := true

	for _, t := range ts {
		p, ok := idx.postings[t]
		if !ok {
			return []DocID{}
		}
		if p.pruned {
			continue
		}
		if first {
			n := intersectInto(result, docs, p.docs)
			result = result[:n]
			first = false
		} else {
			result = IntersectInPlace(result, p.docs)
		}
	}

	if first {
		// every ts entry was pruned; no constraint was ever applied
		out := make([]DocID, len(docs))
		copy(out, docs)
		return out
	}
	return result
}
