// Package trigram implements an in-memory trigram substring index over a
// corpus of short byte strings. Given a query, the index returns a sorted,
// de-duplicated set of document identifiers that may contain the query as a
// substring. The result is a conservative candidate set: callers that need
// exact matches must verify candidates themselves (brute-force or otherwise).
//
// The index is byte-exact: trigrams are raw three-byte windows, with no
// charset decoding, case folding, tokenization, or stemming. It does not
// score or rank results, persist itself to disk, or support concurrent
// mutation — see the package-level concurrency note on Index.
package trigram

// T is a trigram: three consecutive bytes of input packed as
// (b0<<16)|(b1<<8)|b2. The high 8 bits are always zero for a real trigram,
// which leaves room for the reserved allDocs sentinel below.
type T uint32

// allDocs is a key that cannot collide with any real trigram, since real
// trigrams fit in 24 bits. Its posting always holds every DocID ever
// inserted, in ascending order, and is never pruned.
const allDocs T = 0xFFFFFFFF

// DocID identifies a document by its insertion order, starting at 0.
// Identifiers are assigned sequentially and are never reused or renumbered.
type DocID int32

// Extract returns the unique trigrams of s, in first-occurrence order,
// duplicates suppressed. Used to form query keys. A query shorter than
// three bytes yields no trigrams — callers should treat that as a request
// for the whole corpus (see Index.QueryTrigrams).
func Extract(s []byte) []T {
	if len(s) < 3 {
		return nil
	}
	ts := make([]T, 0, len(s)-2)
	for i := 0; i <= len(s)-3; i++ {
		t := pack(s[i], s[i+1], s[i+2])
		if !contains(ts, t) {
			ts = append(ts, t)
		}
	}
	return ts
}

// ExtractAll appends one trigram per byte position of s to dst, in order,
// without suppressing duplicates; per-document de-duplication happens later,
// at the posting-list level, during insertion. If len(s) < 3 nothing is
// appended. ExtractAll is the workhorse for indexing; Extract is for queries.
func ExtractAll(s []byte, dst []T) []T {
	if len(s) < 3 {
		return dst
	}
	for i := 0; i <= len(s)-3; i++ {
		dst = append(dst, pack(s[i], s[i+1], s[i+2]))
	}
	return dst
}

func pack(b0, b1, b2 byte) T {
	return T(uint32(b0)<<16 | uint32(b1)<<8 | uint32(b2))
}

func contains(ts []T, t T) bool {
	for _, v := range ts {
		if v == t {
			return true
		}
	}
	return false
}
