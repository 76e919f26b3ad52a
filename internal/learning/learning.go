// Package learning implements the mastery progression engine behind the
// practice flow: it decides which word to quiz next, builds the concrete
// challenge for it, grades submissions and tracks per-item mastery until
// every item in a vocabulary set has passed both challenge kinds.
package learning

import (
	"context"
	"time"
)

// Kind identifies the two challenge types an item must pass.
type Kind string

const (
	// Recognition is the multiple-choice "pick the translation" challenge.
	Recognition Kind = "recognition"
	// Production is the typed-answer challenge with a partially masked hint.
	Production Kind = "production"
)

// MinPoolSize is the smallest pool that can support recognition challenges
// (one correct answer plus three distractors).
const MinPoolSize = 4

// Item is a single learnable word pair. Immutable for the life of a session.
type Item struct {
	ID     uint   `json:"id"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// Option is one of the four choices shown in a recognition challenge.
type Option struct {
	ItemID  uint   `json:"item_id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Challenge is the ephemeral exercise built for the currently selected item.
// It is regenerated on every selection; distractor draw and mask positions
// are random, so two presentations of the same item will differ.
type Challenge struct {
	ItemID       uint     `json:"item_id"`
	Prompt       string   `json:"prompt"`
	Kind         Kind     `json:"kind"`
	Options      []Option `json:"options,omitempty"`
	MaskedAnswer string   `json:"masked_answer,omitempty"`
}

// MasteryRecord is the per-user, per-item ledger entry. One exists per
// (user, item) pair once the item has been attempted at least once.
type MasteryRecord struct {
	ItemID            uint      `json:"item_id"`
	UserID            uint      `json:"user_id"`
	RecognitionPassed bool      `json:"recognition_passed"`
	ProductionPassed  bool      `json:"production_passed"`
	Attempts          int       `json:"attempts"`
	LastAttemptedAt   time.Time `json:"last_attempted_at"`
}

// Mastered reports whether both challenge kinds have been passed. It is
// always derived from the two gates and never stored on its own.
func (r MasteryRecord) Mastered() bool {
	return r.RecognitionPassed && r.ProductionPassed
}

// Ledger is the persistence contract for mastery records and the set-level
// completion marker. Upsert is keyed by (user, item); the session always
// supplies Attempts = previous + 1, so a single active session per user is
// assumed. WriteCompletion must be idempotent.
type Ledger interface {
	Load(ctx context.Context, userID, setID uint) ([]MasteryRecord, error)
	Upsert(ctx context.Context, rec MasteryRecord) (MasteryRecord, error)
	WriteCompletion(ctx context.Context, userID, setID uint) error
	Reset(ctx context.Context, userID, setID uint) error
}
