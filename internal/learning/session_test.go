package learning

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeLedger is an in-memory Ledger with scriptable upsert failures.
type fakeLedger struct {
	records     map[uint]MasteryRecord
	completions int
	completed   bool
	failUpserts int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[uint]MasteryRecord)}
}

func (l *fakeLedger) Load(_ context.Context, _, _ uint) ([]MasteryRecord, error) {
	out := make([]MasteryRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, rec)
	}
	return out, nil
}

func (l *fakeLedger) Upsert(_ context.Context, rec MasteryRecord) (MasteryRecord, error) {
	if l.failUpserts > 0 {
		l.failUpserts--
		return MasteryRecord{}, errors.New("store down")
	}
	l.records[rec.ItemID] = rec
	return rec, nil
}

func (l *fakeLedger) WriteCompletion(_ context.Context, _, _ uint) error {
	if !l.completed {
		l.completed = true
		l.completions++
	}
	return nil
}

func (l *fakeLedger) Reset(_ context.Context, _, _ uint) error {
	l.records = make(map[uint]MasteryRecord)
	l.completed = false
	return nil
}

func fourItemPool() []Item {
	return []Item{
		{ID: 1, Prompt: "Apple", Answer: "Manzana"},
		{ID: 2, Prompt: "Banana", Answer: "Plátano"},
		{ID: 3, Prompt: "Cherry", Answer: "Cereza"},
		{ID: 4, Prompt: "Date", Answer: "Dátil"},
	}
}

func TestNewSessionRejectsBadPools(t *testing.T) {
	ledger := newFakeLedger()
	if _, err := NewSession(ledger, 1, 1, nil, nil); !errors.Is(err, ErrInvalidPool) {
		t.Fatalf("empty pool: got %v, want ErrInvalidPool", err)
	}
	_, err := NewSession(ledger, 1, 1, fourItemPool()[:3], nil)
	if !errors.Is(err, ErrInsufficientPoolSize) {
		t.Fatalf("small pool: got %v, want ErrInsufficientPoolSize", err)
	}
	// ErrInsufficientPoolSize is a refinement of ErrInvalidPool.
	if !errors.Is(err, ErrInvalidPool) {
		t.Fatal("ErrInsufficientPoolSize should match ErrInvalidPool")
	}
}

// Full run over the four-item pool: recognition then production per item,
// ending with exactly one completion write.
func TestSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	sess, err := NewSession(ledger, 42, 7, fourItemPool(), nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	ch := sess.Current()
	if ch == nil || ch.ItemID != 1 || ch.Kind != Recognition {
		t.Fatalf("first challenge = %+v, want Apple recognition", ch)
	}
	correctOptions := 0
	for _, opt := range ch.Options {
		if opt.Correct {
			correctOptions++
			if opt.Text != "Manzana" {
				t.Fatalf("correct option text %q, want Manzana", opt.Text)
			}
		}
	}
	if len(ch.Options) != 4 || correctOptions != 1 {
		t.Fatalf("got %d options with %d correct, want 4/1", len(ch.Options), correctOptions)
	}

	res, err := sess.Submit(ctx, Answer{OptionItemID: ch.ItemID})
	if err != nil || !res.Correct {
		t.Fatalf("recognition submit: res=%+v err=%v", res, err)
	}
	if rec := ledger.records[1]; !rec.RecognitionPassed || rec.Attempts != 1 {
		t.Fatalf("ledger after recognition: %+v", rec)
	}

	ch, err = sess.Advance(ctx)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if ch.ItemID != 1 || ch.Kind != Production {
		t.Fatalf("second challenge = %+v, want Apple production", ch)
	}
	if n := len([]rune(ch.MaskedAnswer)); n != 7 {
		t.Fatalf("masked answer %q has %d runes, want 7", ch.MaskedAnswer, n)
	}
	if hidden := strings.Count(ch.MaskedAnswer, "_"); hidden != 4 {
		t.Fatalf("masked answer %q hides %d positions, want 4", ch.MaskedAnswer, hidden)
	}

	res, err = sess.Submit(ctx, Answer{Text: "manzana"})
	if err != nil || !res.Correct {
		t.Fatalf("production submit: res=%+v err=%v", res, err)
	}
	if rec := ledger.records[1]; !rec.Mastered() || rec.Attempts != 2 {
		t.Fatalf("ledger after production: %+v", rec)
	}

	ch, err = sess.Advance(ctx)
	if err != nil {
		t.Fatalf("advance to second item: %v", err)
	}
	if ch.ItemID != 2 || ch.Kind != Recognition {
		t.Fatalf("third challenge = %+v, want Banana recognition", ch)
	}

	// Finish the remaining items.
	for sess.State() != StatePoolComplete {
		cur := sess.Current()
		ans := Answer{OptionItemID: cur.ItemID}
		if cur.Kind == Production {
			item := findItem(t, fourItemPool(), cur.ItemID)
			ans = Answer{Text: item.Answer}
		}
		if _, err := sess.Submit(ctx, ans); err != nil {
			t.Fatalf("submit for item %d: %v", cur.ItemID, err)
		}
		if _, err := sess.Advance(ctx); err != nil {
			t.Fatalf("advance after item %d: %v", cur.ItemID, err)
		}
	}

	if ledger.completions != 1 {
		t.Fatalf("completion writes = %d, want 1", ledger.completions)
	}
	mastered, total := sess.Progress()
	if mastered != 4 || total != 4 {
		t.Fatalf("progress = %d/%d, want 4/4", mastered, total)
	}
}

func findItem(t *testing.T, pool []Item, id uint) Item {
	t.Helper()
	for _, item := range pool {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("no item %d in pool", id)
	return Item{}
}

func TestSessionLedgerFailureKeepsGrade(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	sess, err := NewSession(ledger, 1, 1, fourItemPool(), nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	ledger.failUpserts = 1
	ch := sess.Current()
	res, err := sess.Submit(ctx, Answer{OptionItemID: ch.ItemID})
	if !errors.Is(err, ErrLedgerWrite) {
		t.Fatalf("expected ErrLedgerWrite, got %v", err)
	}
	if res == nil || !res.Correct {
		t.Fatalf("grade must survive the failed write, got %+v", res)
	}
	if sess.State() != StateShowingResult {
		t.Fatalf("state = %s, want showing_result", sess.State())
	}

	// Advancing is blocked until the record is persisted.
	if _, err := sess.Advance(ctx); !errors.Is(err, ErrLedgerWrite) {
		t.Fatalf("advance with pending write: got %v", err)
	}

	// Re-submitting retries the same record without another increment.
	res, err = sess.Submit(ctx, Answer{})
	if err != nil {
		t.Fatalf("retrying submit: %v", err)
	}
	if !res.Correct {
		t.Fatalf("retried submit changed the grade: %+v", res)
	}
	if rec := ledger.records[1]; rec.Attempts != 1 {
		t.Fatalf("attempts = %d after retried write, want 1", rec.Attempts)
	}
	if _, err := sess.Advance(ctx); err != nil {
		t.Fatalf("advance after flush: %v", err)
	}
}

func TestSessionRetryRegeneratesSameChallenge(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	sess, err := NewSession(ledger, 1, 1, fourItemPool(), nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	ch := sess.Current()
	wrong := uint(0)
	for _, opt := range ch.Options {
		if !opt.Correct {
			wrong = opt.ItemID
			break
		}
	}
	res, err := sess.Submit(ctx, Answer{OptionItemID: wrong})
	if err != nil || res.Correct {
		t.Fatalf("wrong submit: res=%+v err=%v", res, err)
	}
	if rec := ledger.records[1]; rec.RecognitionPassed || rec.Attempts != 1 {
		t.Fatalf("ledger after wrong attempt: %+v", rec)
	}

	retry, err := sess.Retry()
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retry.ItemID != ch.ItemID || retry.Kind != ch.Kind {
		t.Fatalf("retry challenge = %+v, want same item and kind", retry)
	}
	// The attempt counter only moves on submit, never on retry.
	if rec := ledger.records[1]; rec.Attempts != 1 {
		t.Fatalf("retry touched the ledger: %+v", rec)
	}

	// Retry after a correct grade is not a legal transition.
	if _, err := sess.Submit(ctx, Answer{OptionItemID: retry.ItemID}); err != nil {
		t.Fatalf("correct submit: %v", err)
	}
	if _, err := sess.Retry(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("retry after correct grade: got %v, want ErrInvalidTransition", err)
	}
}

func TestSessionResetRestartsAtFirstItem(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	sess, err := NewSession(ledger, 1, 1, fourItemPool(), nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	// Drive the whole pool to completion.
	for sess.State() != StatePoolComplete {
		cur := sess.Current()
		ans := Answer{OptionItemID: cur.ItemID}
		if cur.Kind == Production {
			ans = Answer{Text: findItem(t, fourItemPool(), cur.ItemID).Answer}
		}
		if _, err := sess.Submit(ctx, ans); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := sess.Advance(ctx); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if !ledger.completed {
		t.Fatal("completion marker missing after full run")
	}

	ch, err := sess.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ledger.completed || len(ledger.records) != 0 {
		t.Fatalf("reset left ledger state behind: completed=%v records=%d", ledger.completed, len(ledger.records))
	}
	if ch.ItemID != 1 || ch.Kind != Recognition {
		t.Fatalf("challenge after reset = %+v, want Apple recognition", ch)
	}
	if sess.State() != StatePresenting {
		t.Fatalf("state after reset = %s", sess.State())
	}
}

func TestSessionSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger()
	sess, err := NewSession(ledger, 9, 3, fourItemPool(), nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, err := sess.Submit(ctx, Answer{OptionItemID: sess.Current().ItemID}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap := sess.Snapshot()
	restored, err := RestoreSession(snap, ledger)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.State() != StateShowingResult {
		t.Fatalf("restored state = %s, want showing_result", restored.State())
	}
	if res := restored.LastResult(); res == nil || !res.Correct || res.ItemID != 1 {
		t.Fatalf("restored result = %+v", res)
	}

	// The restored session continues where the original stopped.
	ch, err := restored.Advance(ctx)
	if err != nil {
		t.Fatalf("advance on restored session: %v", err)
	}
	if ch.ItemID != 1 || ch.Kind != Production {
		t.Fatalf("challenge after restore = %+v, want Apple production", ch)
	}
}
