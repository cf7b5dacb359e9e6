package trigram

// Intersect writes the intersection of the strictly-increasing sequences a
// and b into a freshly allocated, strictly-increasing result. Neither input
// is mutated — this is the non-destructive variant used whenever the first
// operand is a live posting list that must not be disturbed.
func Intersect(a, b []DocID) []DocID {
	out := make([]DocID, len(a))
	n := intersectInto(out, a, b)
	return out[:n]
}

// IntersectInPlace intersects a and b, writing the result back into a and
// returning the (possibly shorter) result slice. It is safe to alias the
// output onto a because at every step of the merge the write cursor never
// advances past either read cursor: a two-pointer merge only ever writes a
// value it has already consumed from a, at or behind the position it read
// it from.
func IntersectInPlace(a, b []DocID) []DocID {
	n := intersectInto(a, a, b)
	return a[:n]
}

// intersectInto runs the merge, writing up to len(a) values into out, and
// returns the number written. out may alias a.
func intersectInto(out, a, b []DocID) int {
	var i, j, k int
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out[k] = a[i]
			k++
			i++
			j++
		case a[i] < b[j]:
			for i < len(a) && a[i] < b[j] {
				i++
			}
		default:
			for j < len(b) && b[j] < a[i] {
				j++
			}
		}
	}
	return k
}
