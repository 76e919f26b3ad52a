package learning

import (
	"math/rand"
	"time"
)

// Snapshot is the serializable form of a session, used to park the state
// machine in a session store between HTTP requests. The ledger and the
// random source are not part of it; both are re-supplied on restore.
type Snapshot struct {
	UserID    uint            `json:"user_id"`
	SetID     uint            `json:"set_id"`
	Pool      []Item          `json:"pool"`
	Records   []MasteryRecord `json:"records"`
	Pointer   int             `json:"pointer"`
	State     State           `json:"state"`
	Challenge *Challenge      `json:"challenge,omitempty"`
	Result    *Result         `json:"result,omitempty"`
	Pending   *MasteryRecord  `json:"pending,omitempty"`
}

// Snapshot captures the session's current state.
func (s *Session) Snapshot() Snapshot {
	records := make([]MasteryRecord, 0, len(s.records))
	for _, item := range s.pool {
		if rec, ok := s.records[item.ID]; ok {
			records = append(records, rec)
		}
	}
	return Snapshot{
		UserID:    s.userID,
		SetID:     s.setID,
		Pool:      s.pool,
		Records:   records,
		Pointer:   s.pointer,
		State:     s.state,
		Challenge: s.challenge,
		Result:    s.result,
		Pending:   s.pending,
	}
}

// RestoreSession rebuilds a session from a snapshot. The same pool
// preconditions apply as at session start.
func RestoreSession(snap Snapshot, ledger Ledger) (*Session, error) {
	if len(snap.Pool) == 0 {
		return nil, ErrInvalidPool
	}
	if len(snap.Pool) < MinPoolSize {
		return nil, ErrInsufficientPoolSize
	}
	s := &Session{
		userID:    snap.UserID,
		setID:     snap.SetID,
		pool:      snap.Pool,
		records:   make(map[uint]MasteryRecord, len(snap.Pool)),
		pointer:   snap.Pointer,
		state:     snap.State,
		challenge: snap.Challenge,
		result:    snap.Result,
		pending:   snap.Pending,
		ledger:    ledger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, rec := range snap.Records {
		s.records[rec.ItemID] = rec
	}
	return s, nil
}
