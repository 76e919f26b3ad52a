package learning

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// State names the progression controller's three states.
type State string

const (
	// StatePresenting means a challenge is on display and awaiting an answer.
	StatePresenting State = "presenting"
	// StateShowingResult means the last answer has been graded.
	StateShowingResult State = "showing_result"
	// StatePoolComplete means every item in the pool is mastered.
	StatePoolComplete State = "pool_complete"
)

// Answer carries one submission: the picked option for a recognition
// challenge, or the typed text for a production challenge.
type Answer struct {
	OptionItemID uint   `json:"option_item_id"`
	Text         string `json:"text"`
}

// Result is the graded outcome of a submission. The expected answer is
// revealed alongside the verdict.
type Result struct {
	ItemID  uint   `json:"item_id"`
	Kind    Kind   `json:"kind"`
	Correct bool   `json:"correct"`
	Answer  string `json:"answer"`
}

// Session drives one user's pass over one vocabulary set: select an item,
// present a challenge, grade the submission, persist the ledger update,
// advance. It assumes a single active session per user and is not safe for
// concurrent use.
type Session struct {
	userID  uint
	setID   uint
	pool    []Item
	records map[uint]MasteryRecord
	pointer int
	state   State

	challenge *Challenge
	result    *Result
	// pending holds a graded ledger update that failed to persist. It is
	// retried on the next Submit without incrementing attempts again.
	pending *MasteryRecord

	ledger Ledger
	rng    *rand.Rand
}

// NewSession validates the pool, seeds the session with previously persisted
// records and presents the first challenge. An empty pool is invalid input;
// a pool below MinPoolSize cannot support recognition challenges and is
// rejected before any selection happens.
func NewSession(ledger Ledger, userID, setID uint, pool []Item, records []MasteryRecord) (*Session, error) {
	if len(pool) == 0 {
		return nil, ErrInvalidPool
	}
	if len(pool) < MinPoolSize {
		return nil, ErrInsufficientPoolSize
	}
	s := &Session{
		userID:  userID,
		setID:   setID,
		pool:    pool,
		records: make(map[uint]MasteryRecord, len(pool)),
		pointer: -1,
		ledger:  ledger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, r := range records {
		s.records[r.ItemID] = r
	}
	if err := s.selectNext(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// State returns the controller's current state.
func (s *Session) State() State { return s.state }

// Current returns the challenge on display, or nil outside StatePresenting.
func (s *Session) Current() *Challenge { return s.challenge }

// LastResult returns the most recent graded outcome, or nil.
func (s *Session) LastResult() *Result { return s.result }

// Progress reports how many pool items are mastered.
func (s *Session) Progress() (mastered, total int) {
	for _, item := range s.pool {
		if s.records[item.ID].Mastered() {
			mastered++
		}
	}
	return mastered, len(s.pool)
}

// Submit grades the active challenge and persists the ledger update. The
// session moves to StateShowingResult with the grade either way; if the
// write fails the grade stays on display, ErrLedgerWrite is surfaced and a
// repeat Submit retries the same pending record without double-counting the
// attempt.
func (s *Session) Submit(ctx context.Context, ans Answer) (*Result, error) {
	if s.state == StateShowingResult && s.pending != nil {
		return s.result, s.flushPending(ctx)
	}
	if s.state != StatePresenting || s.challenge == nil {
		return nil, ErrInvalidTransition
	}

	item := s.pool[s.pointer]
	var correct bool
	switch s.challenge.Kind {
	case Recognition:
		correct = GradeRecognition(s.challenge, ans.OptionItemID)
	case Production:
		correct = GradeProduction(item.Answer, ans.Text)
	}

	prev := s.records[item.ID]
	rec := prev
	rec.ItemID = item.ID
	rec.UserID = s.userID
	rec.Attempts = prev.Attempts + 1
	rec.LastAttemptedAt = time.Now()
	if correct {
		switch s.challenge.Kind {
		case Recognition:
			rec.RecognitionPassed = true
		case Production:
			rec.ProductionPassed = true
		}
	}

	s.result = &Result{ItemID: item.ID, Kind: s.challenge.Kind, Correct: correct, Answer: item.Answer}
	s.state = StateShowingResult
	s.challenge = nil
	s.pending = &rec
	return s.result, s.flushPending(ctx)
}

// flushPending persists the graded record held in pending. On success the
// record becomes visible to the selector and pending clears; on failure the
// record stays pending for the next retry.
func (s *Session) flushPending(ctx context.Context) error {
	if s.pending == nil {
		return nil
	}
	rec, err := s.ledger.Upsert(ctx, *s.pending)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}
	s.records[rec.ItemID] = rec
	s.pending = nil
	return nil
}

// Advance moves on after a graded attempt: the selector runs against the
// latest records and either the next challenge is presented or, when the
// scan finds nothing left to master, the completion marker is written and
// the session ends in StatePoolComplete.
func (s *Session) Advance(ctx context.Context) (*Challenge, error) {
	if s.state != StateShowingResult {
		return nil, ErrInvalidTransition
	}
	if s.pending != nil {
		return nil, fmt.Errorf("%w: pending attempt not persisted, re-submit first", ErrLedgerWrite)
	}
	if err := s.selectNext(ctx); err != nil {
		return nil, err
	}
	return s.challenge, nil
}

// Retry re-presents the same item and kind after an incorrect grade. The
// pointer and the ledger are untouched; the challenge is regenerated, so a
// recognition retry redraws distractors and a production retry gets a fresh
// mask.
func (s *Session) Retry() (*Challenge, error) {
	if s.state != StateShowingResult || s.result == nil || s.result.Correct {
		return nil, ErrInvalidTransition
	}
	if s.pending != nil {
		return nil, fmt.Errorf("%w: pending attempt not persisted, re-submit first", ErrLedgerWrite)
	}
	if err := s.generate(s.pointer, s.result.Kind); err != nil {
		return nil, err
	}
	return s.challenge, nil
}

// Reset clears every mastery record and the completion marker for this user
// and set, then restarts the session at the first pool item.
func (s *Session) Reset(ctx context.Context) (*Challenge, error) {
	if err := s.ledger.Reset(ctx, s.userID, s.setID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}
	s.records = make(map[uint]MasteryRecord, len(s.pool))
	s.pending = nil
	s.result = nil
	s.pointer = -1
	if err := s.selectNext(ctx); err != nil {
		return nil, err
	}
	return s.challenge, nil
}

// selectNext runs the selector and either generates the next challenge or
// finishes the pool. The completion write is idempotent, so rediscovering an
// already-complete pool is a no-op at the store.
func (s *Session) selectNext(ctx context.Context) error {
	sel := nextSelection(s.pool, s.records, s.pointer)
	if sel.complete {
		if err := s.ledger.WriteCompletion(ctx, s.userID, s.setID); err != nil {
			return fmt.Errorf("%w: %v", ErrLedgerWrite, err)
		}
		s.state = StatePoolComplete
		s.challenge = nil
		s.result = nil
		return nil
	}
	s.pointer = sel.index
	return s.generate(sel.index, sel.kind)
}

func (s *Session) generate(idx int, kind Kind) error {
	switch kind {
	case Recognition:
		ch, err := newRecognitionChallenge(s.pool, idx, s.rng)
		if err != nil {
			return err
		}
		s.challenge = ch
	case Production:
		s.challenge = newProductionChallenge(s.pool[idx], s.rng)
	default:
		return ErrGenerationPrecondition
	}
	s.state = StatePresenting
	s.result = nil
	return nil
}
