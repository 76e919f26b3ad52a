package learning

import "testing"

func TestSelectorStartsAtFirstItem(t *testing.T) {
	pool := testPool()
	sel := nextSelection(pool, map[uint]MasteryRecord{}, -1)
	if sel.complete || sel.index != 0 || sel.kind != Recognition {
		t.Fatalf("got %+v, want index 0 recognition", sel)
	}
}

func TestSelectorHoldsItemUntilMastered(t *testing.T) {
	pool := testPool()
	records := map[uint]MasteryRecord{
		1: {ItemID: 1, RecognitionPassed: true},
	}
	sel := nextSelection(pool, records, 0)
	if sel.index != 0 || sel.kind != Production {
		t.Fatalf("got %+v, want index 0 production", sel)
	}
}

func TestSelectorSkipsMasteredItems(t *testing.T) {
	pool := testPool()
	records := map[uint]MasteryRecord{
		1: {ItemID: 1, RecognitionPassed: true, ProductionPassed: true},
		2: {ItemID: 2, RecognitionPassed: true, ProductionPassed: true},
	}
	sel := nextSelection(pool, records, 0)
	if sel.index != 2 || sel.kind != Recognition {
		t.Fatalf("got %+v, want index 2 recognition", sel)
	}
}

func TestSelectorWrapsCircularly(t *testing.T) {
	pool := testPool()
	records := map[uint]MasteryRecord{
		4: {ItemID: 4, RecognitionPassed: true, ProductionPassed: true},
		5: {ItemID: 5, RecognitionPassed: true, ProductionPassed: true},
	}
	sel := nextSelection(pool, records, 3) // current item 4 is mastered
	if sel.index != 0 || sel.kind != Recognition {
		t.Fatalf("got %+v, want wrap to index 0", sel)
	}
}

func TestSelectorCompleteOnlyWhenAllMastered(t *testing.T) {
	pool := testPool()
	records := map[uint]MasteryRecord{}
	for _, item := range pool {
		records[item.ID] = MasteryRecord{ItemID: item.ID, RecognitionPassed: true, ProductionPassed: true}
	}
	if sel := nextSelection(pool, records, 2); !sel.complete {
		t.Fatalf("expected complete, got %+v", sel)
	}
	// Flip one gate back and the pool is no longer complete.
	rec := records[3]
	rec.ProductionPassed = false
	records[3] = rec
	sel := nextSelection(pool, records, 2)
	if sel.complete || sel.index != 2 || sel.kind != Production {
		t.Fatalf("got %+v, want index 2 production", sel)
	}
}

// A single-item pool reaches completion after exactly two successful passes:
// one recognition, one production.
func TestSelectorSingleItemTwoPasses(t *testing.T) {
	pool := []Item{{ID: 1, Prompt: "Apple", Answer: "Manzana"}}
	records := map[uint]MasteryRecord{}

	sel := nextSelection(pool, records, -1)
	if sel.complete || sel.kind != Recognition {
		t.Fatalf("first pass: got %+v, want recognition", sel)
	}
	records[1] = MasteryRecord{ItemID: 1, RecognitionPassed: true, Attempts: 1}

	sel = nextSelection(pool, records, 0)
	if sel.complete || sel.kind != Production {
		t.Fatalf("second pass: got %+v, want production", sel)
	}
	records[1] = MasteryRecord{ItemID: 1, RecognitionPassed: true, ProductionPassed: true, Attempts: 2}

	if sel = nextSelection(pool, records, 0); !sel.complete {
		t.Fatalf("after two passes: got %+v, want complete", sel)
	}
}
