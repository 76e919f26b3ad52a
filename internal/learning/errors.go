package learning

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPool is returned when a session is started on an empty pool.
	ErrInvalidPool = errors.New("pool has no items")

	// ErrInsufficientPoolSize is returned when the pool cannot supply the
	// three distractors a recognition challenge needs.
	ErrInsufficientPoolSize = fmt.Errorf("pool needs at least %d items: %w", MinPoolSize, ErrInvalidPool)

	// ErrLedgerWrite wraps a store failure during a mastery or completion
	// write. The session keeps the grade visible and the caller may retry.
	ErrLedgerWrite = errors.New("ledger write failed")

	// ErrStoreUnavailable is returned when the pool or ledger cannot be
	// loaded at session start.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrGenerationPrecondition is returned when a challenge cannot be
	// built, e.g. the pool shrank below MinPoolSize mid-session.
	ErrGenerationPrecondition = errors.New("cannot build challenge for current pool")

	// ErrInvalidTransition is returned when an operation is not legal in
	// the session's current state.
	ErrInvalidTransition = errors.New("operation not allowed in current session state")
)
