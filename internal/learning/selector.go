package learning

// selection is the selector's verdict: either the index and challenge kind
// of the next item, or complete when every item in the pool is mastered.
type selection struct {
	index    int
	kind     Kind
	complete bool
}

// kindFor computes the pending challenge kind from an item's two gates.
// Recognition always comes before production; a record with both gates set
// has nothing pending.
func kindFor(rec MasteryRecord) (Kind, bool) {
	if !rec.RecognitionPassed {
		return Recognition, true
	}
	if !rec.ProductionPassed {
		return Production, true
	}
	return "", false
}

// nextSelection picks the item to present next. The current item keeps the
// focus until both of its gates pass; after that the scan moves forward
// circularly through the pool, in stable insertion order, to the first
// non-mastered item. A full circle without a hit means the pool is complete.
//
// Gates are recomputed from the live records on every call; nothing about a
// previous visit to an item is cached.
func nextSelection(pool []Item, records map[uint]MasteryRecord, pointer int) selection {
	if pointer >= 0 && pointer < len(pool) {
		if kind, pending := kindFor(records[pool[pointer].ID]); pending {
			return selection{index: pointer, kind: kind}
		}
	}
	for off := 1; off <= len(pool); off++ {
		i := (pointer + off + len(pool)) % len(pool)
		if kind, pending := kindFor(records[pool[i].ID]); pending {
			return selection{index: i, kind: kind}
		}
	}
	return selection{complete: true}
}
