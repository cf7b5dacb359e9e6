// Package metaindex is a secondary, ordered index over a scalar document
// field (for instance a path prefix or a source tag), separate from the
// trigram substring index. It exists to compose with trigram candidates —
// "substring X AND field Y = Z" — by ANDing a metaindex result into the
// trigram package's own Intersect, rather than by inventing a second
// intersection algorithm or, worse, a relevance score. It is a filter, not
// a ranker.
package metaindex

import (
	"fmt"
	"sync"

	"github.com/google/btree"

	"github.com/threatflux/trigramdex/trigram"
)

// Value is any of the scalar field types the index can order on.
type Value interface{}

type item struct {
	value Value
	id    trigram.DocID
}

// Less implements btree.Item, ordering first by value type (string, int,
// float64), then by value and then by DocID so that documents sharing a field
// value still form a strict order within the tree.
func (i item) Less(than btree.Item) bool {
	o := than.(item)
	rank := func(v Value) int {
		switch v.(type) {
		case string:
			return 0
		case int:
			return 1
		case float64:
			return 2
		}
		return 3
	}
	if ri, ro := rank(i.value), rank(o.value); ri != ro {
		return ri < ro
	}
	switch v := i.value.(type) {
	case string:
		ov, ok := o.value.(string)
		if !ok || v != ov {
			return ok && v < ov
		}
	case int:
		ov, ok := o.value.(int)
		if !ok || v != ov {
			return ok && v < ov
		}
	case float64:
		ov, ok := o.value.(float64)
		if !ok || v != ov {
			return ok && v < ov
		}
	default:
		return false
	}
	return i.id < o.id
}

// Index is an ordered index over one document field, backed by a B-tree.
type Index struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

// New returns an empty index backed by a B-tree of degree 32
// (matching the teacher's btree.New(32) convention).
func New() *Index {
	return &Index{tree: btree.New(32)}
}

// Set records that document id has the given field value. Like the trigram
// core, metaindex is append-only: it has no Remove, matching spec.md's
// Non-goals (no deletion, no update-in-place).
func (idx *Index) Set(id trigram.DocID, value Value) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tree.ReplaceOrInsert(item{value: value, id: id})
}

// Equal returns every DocID recorded with exactly the given value, in
// ascending DocID order — ready to be intersected with a trigram candidate
// set via trigram.Intersect. Ascending order falls out of the tree walk for
// free: item.Less breaks ties on ascending DocID, so all entries sharing a
// value are already visited in DocID order.
func (idx *Index) Equal(value Value) []trigram.DocID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []trigram.DocID
	pivot := item{value: value, id: -1}
	idx.tree.AscendGreaterOrEqual(pivot, func(i btree.Item) bool {
		it := i.(item)
		if !valuesEqual(it.value, value) {
			return false
		}
		out = append(out, it.id)
		return true
	})
	return out
}

// Len returns the number of (id, value) pairs recorded.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Len()
}

func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	default:
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
}

