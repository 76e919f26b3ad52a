package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"wordspark-backend/internal/learning"
	"wordspark-backend/internal/model"
	"wordspark-backend/internal/practice"
	"wordspark-backend/internal/repository"
	"wordspark-backend/utilities"
)

// ErrNotOwner is returned when a user touches a list or session that is not
// theirs.
var ErrNotOwner = errors.New("resource does not belong to this user")

// ListCompletedEvent is the payload published on the list_completed topic
// the first time a user masters every item in a list.
type ListCompletedEvent struct {
	UserID uint
	ListID uint
}

// OptionView is a recognition option with the correct flag stripped; the
// grade is decided server-side, never leaked to the client.
type OptionView struct {
	ItemID uint   `json:"item_id"`
	Text   string `json:"text"`
}

// ChallengeView is the client-facing shape of the active challenge.
type ChallengeView struct {
	ItemID       uint           `json:"item_id"`
	Prompt       string         `json:"prompt"`
	Kind         learning.Kind  `json:"kind"`
	Options      []OptionView   `json:"options,omitempty"`
	MaskedAnswer string         `json:"masked_answer,omitempty"`
}

// SessionView is what every practice endpoint returns: the state machine's
// position plus derived progress.
type SessionView struct {
	SessionID string           `json:"session_id"`
	State     learning.State   `json:"state"`
	Challenge *ChallengeView   `json:"challenge,omitempty"`
	Result    *learning.Result `json:"result,omitempty"`
	Mastered  int              `json:"mastered"`
	Total     int              `json:"total"`
}

type PracticeService interface {
	StartSession(ctx context.Context, userID, listID uint) (*SessionView, error)
	Current(ctx context.Context, userID uint, sessionID string) (*SessionView, error)
	Submit(ctx context.Context, userID uint, sessionID string, ans learning.Answer) (*SessionView, error)
	Advance(ctx context.Context, userID uint, sessionID string) (*SessionView, error)
	Retry(ctx context.Context, userID uint, sessionID string) (*SessionView, error)
	Reset(ctx context.Context, userID uint, sessionID string) (*SessionView, error)
}

type practiceService struct {
	vocabRepo   repository.VocabRepository
	masteryRepo repository.MasteryRepository
	store       practice.SessionStore
	bus         *utilities.EventBus
}

func NewPracticeService(
	vocabRepo repository.VocabRepository,
	masteryRepo repository.MasteryRepository,
	store practice.SessionStore,
	bus *utilities.EventBus,
) PracticeService {
	return &practiceService{
		vocabRepo:   vocabRepo,
		masteryRepo: masteryRepo,
		store:       store,
		bus:         bus,
	}
}

// StartSession loads the item pool and the user's ledger, builds a fresh
// learning session and parks it in the session store. Pools that are empty
// or too small for recognition challenges are rejected here, before any
// challenge is selected.
func (s *practiceService) StartSession(ctx context.Context, userID, listID uint) (*SessionView, error) {
	list, err := s.vocabRepo.GetListByID(listID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", learning.ErrStoreUnavailable, err)
	}
	if list.UserID != userID {
		return nil, ErrNotOwner
	}

	pool := make([]learning.Item, len(list.Items))
	for i, item := range list.Items {
		pool[i] = learning.Item{ID: item.ID, Prompt: item.Prompt, Answer: item.Answer}
	}

	records, err := s.masteryRepo.LoadByUserAndList(userID, listID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", learning.ErrStoreUnavailable, err)
	}

	sess, err := learning.NewSession(s.ledgerFor(), userID, listID, pool, toLearningRecords(records))
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	if err := s.park(ctx, sessionID, userID, listID, sess); err != nil {
		return nil, err
	}
	return buildView(sessionID, sess), nil
}

func (s *practiceService) Current(ctx context.Context, userID uint, sessionID string) (*SessionView, error) {
	sess, _, err := s.resume(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return buildView(sessionID, sess), nil
}

// Submit grades the active challenge. On a ledger write failure the grade
// is still part of the returned view; the error tells the caller the write
// must be retried by submitting again.
func (s *practiceService) Submit(ctx context.Context, userID uint, sessionID string, ans learning.Answer) (*SessionView, error) {
	sess, listID, err := s.resume(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	_, opErr := sess.Submit(ctx, ans)
	if err := s.park(ctx, sessionID, userID, listID, sess); err != nil {
		return nil, err
	}
	if opErr != nil && !errors.Is(opErr, learning.ErrLedgerWrite) {
		return nil, opErr
	}
	return buildView(sessionID, sess), opErr
}

func (s *practiceService) Advance(ctx context.Context, userID uint, sessionID string) (*SessionView, error) {
	sess, listID, err := s.resume(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	_, opErr := sess.Advance(ctx)
	if err := s.park(ctx, sessionID, userID, listID, sess); err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}
	return buildView(sessionID, sess), nil
}

func (s *practiceService) Retry(ctx context.Context, userID uint, sessionID string) (*SessionView, error) {
	sess, listID, err := s.resume(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	_, opErr := sess.Retry()
	if err := s.park(ctx, sessionID, userID, listID, sess); err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}
	return buildView(sessionID, sess), nil
}

func (s *practiceService) Reset(ctx context.Context, userID uint, sessionID string) (*SessionView, error) {
	sess, listID, err := s.resume(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	_, opErr := sess.Reset(ctx)
	if err := s.park(ctx, sessionID, userID, listID, sess); err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}
	return buildView(sessionID, sess), nil
}

// resume fetches a parked session, checks ownership and rebuilds the state
// machine around a live ledger.
func (s *practiceService) resume(ctx context.Context, userID uint, sessionID string) (*learning.Session, uint, error) {
	stored, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if stored.OwnerID != userID {
		return nil, 0, ErrNotOwner
	}
	sess, err := learning.RestoreSession(stored.Snapshot, s.ledgerFor())
	if err != nil {
		return nil, 0, err
	}
	return sess, stored.ListID, nil
}

func (s *practiceService) park(ctx context.Context, sessionID string, userID, listID uint, sess *learning.Session) error {
	return s.store.Put(ctx, sessionID, practice.StoredSession{
		OwnerID:  userID,
		ListID:   listID,
		Snapshot: sess.Snapshot(),
	})
}

func (s *practiceService) ledgerFor() learning.Ledger {
	return &masteryLedger{repo: s.masteryRepo, bus: s.bus}
}

func buildView(sessionID string, sess *learning.Session) *SessionView {
	mastered, total := sess.Progress()
	view := &SessionView{
		SessionID: sessionID,
		State:     sess.State(),
		Result:    sess.LastResult(),
		Mastered:  mastered,
		Total:     total,
	}
	if ch := sess.Current(); ch != nil {
		cv := &ChallengeView{
			ItemID:       ch.ItemID,
			Prompt:       ch.Prompt,
			Kind:         ch.Kind,
			MaskedAnswer: ch.MaskedAnswer,
		}
		for _, opt := range ch.Options {
			cv.Options = append(cv.Options, OptionView{ItemID: opt.ItemID, Text: opt.Text})
		}
		view.Challenge = cv
	}
	return view
}

// masteryLedger adapts the gorm repository to the learning.Ledger contract.
type masteryLedger struct {
	repo repository.MasteryRepository
	bus  *utilities.EventBus
}

func (l *masteryLedger) Load(_ context.Context, userID, setID uint) ([]learning.MasteryRecord, error) {
	records, err := l.repo.LoadByUserAndList(userID, setID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", learning.ErrStoreUnavailable, err)
	}
	return toLearningRecords(records), nil
}

func (l *masteryLedger) Upsert(_ context.Context, rec learning.MasteryRecord) (learning.MasteryRecord, error) {
	row := model.MasteryRecord{
		UserID:            rec.UserID,
		ItemID:            rec.ItemID,
		RecognitionPassed: rec.RecognitionPassed,
		ProductionPassed:  rec.ProductionPassed,
		Attempts:          rec.Attempts,
		LastAttemptedAt:   rec.LastAttemptedAt,
	}
	if err := l.repo.Upsert(&row); err != nil {
		return learning.MasteryRecord{}, err
	}
	return rec, nil
}

// WriteCompletion writes the marker once; the first write also announces
// the completion on the event bus.
func (l *masteryLedger) WriteCompletion(_ context.Context, userID, setID uint) error {
	created, err := l.repo.CreateCompletion(userID, setID)
	if err != nil {
		return err
	}
	if created && l.bus != nil {
		l.bus.Publish(utilities.EventListCompleted, ListCompletedEvent{UserID: userID, ListID: setID})
	}
	return nil
}

func (l *masteryLedger) Reset(_ context.Context, userID, setID uint) error {
	if err := l.repo.DeleteByUserAndList(userID, setID); err != nil {
		return err
	}
	return l.repo.DeleteCompletion(userID, setID)
}

func toLearningRecords(rows []model.MasteryRecord) []learning.MasteryRecord {
	out := make([]learning.MasteryRecord, len(rows))
	for i, row := range rows {
		out[i] = learning.MasteryRecord{
			ItemID:            row.ItemID,
			UserID:            row.UserID,
			RecognitionPassed: row.RecognitionPassed,
			ProductionPassed:  row.ProductionPassed,
			Attempts:          row.Attempts,
			LastAttemptedAt:   row.LastAttemptedAt,
		}
	}
	return out
}
