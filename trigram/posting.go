package trigram

// posting is the per-trigram entry in an Index. A freshly-created,
// never-pruned trigram and a tombstoned one are deliberately distinct
// states: collapsing "empty list" and "pruned" into one representation
// would let a later insertion silently resurrect a pruned trigram.
type posting struct {
	docs   []DocID // nil when pruned
	pruned bool
}

func newPostingList(id DocID) posting {
	return posting{docs: []DocID{id}}
}

// appendDedup appends id to the posting's list unless id already equals the
// list's last element. This is a sufficient duplicate check only because
// DocIDs are always appended in ascending order; an API that admitted
// out-of-order insertion would need a real set check instead.
func (p *posting) appendDedup(id DocID) {
	if n := len(p.docs); n == 0 || p.docs[n-1] != id {
		p.docs = append(p.docs, id)
	}
}
