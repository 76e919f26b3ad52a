package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wordspark-backend/internal/db"
	"wordspark-backend/internal/learning"
	"wordspark-backend/internal/model"
	"wordspark-backend/internal/practice"
	"wordspark-backend/internal/repository"
)

func setupPracticeTest(t *testing.T) (PracticeService, *model.VocabList) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&model.User{},
		&model.VocabList{},
		&model.VocabItem{},
		&model.MasteryRecord{},
		&model.ListCompletion{},
	))
	db.SetDB(conn)

	vocabRepo := repository.NewVocabRepository()
	masteryRepo := repository.NewMasteryRepository()

	list := &model.VocabList{UserID: 1, Title: "Food", SourceLang: "en", TargetLang: "es"}
	require.NoError(t, vocabRepo.CreateList(list))
	words := [][2]string{
		{"apple", "manzana"},
		{"banana", "plátano"},
		{"cherry", "cereza"},
		{"date", "dátil"},
	}
	for i, w := range words {
		require.NoError(t, vocabRepo.AddItem(&model.VocabItem{
			ListID: list.ID, Prompt: w[0], Answer: w[1], Position: i + 1,
		}))
	}

	store := practice.NewMemoryStore(time.Minute)
	svc := NewPracticeService(vocabRepo, masteryRepo, store, nil)
	return svc, list
}

// answerFor returns a submission that grades correct for the given challenge.
func answerFor(ch *ChallengeView, answers map[string]string) learning.Answer {
	if ch.Kind == learning.Recognition {
		return learning.Answer{OptionItemID: ch.ItemID}
	}
	return learning.Answer{Text: answers[ch.Prompt]}
}

func TestPracticeServiceFullPass(t *testing.T) {
	svc, list := setupPracticeTest(t)
	ctx := context.Background()
	answers := map[string]string{
		"apple":  "manzana",
		"banana": "plátano",
		"cherry": "cereza",
		"date":   "dátil",
	}

	view, err := svc.StartSession(ctx, 1, list.ID)
	require.NoError(t, err)
	require.Equal(t, learning.StatePresenting, view.State)
	require.NotNil(t, view.Challenge)
	require.Equal(t, 4, view.Total)

	// Every item needs a recognition pass then a production pass; with
	// always-correct answers that is 8 submissions.
	for i := 0; i < 16 && view.State != learning.StatePoolComplete; i++ {
		view, err = svc.Submit(ctx, 1, view.SessionID, answerFor(view.Challenge, answers))
		require.NoError(t, err)
		require.Equal(t, learning.StateShowingResult, view.State)
		require.NotNil(t, view.Result)
		require.True(t, view.Result.Correct)

		view, err = svc.Advance(ctx, 1, view.SessionID)
		require.NoError(t, err)
	}

	require.Equal(t, learning.StatePoolComplete, view.State)
	require.Equal(t, 4, view.Mastered)

	// Completion landed exactly once.
	masteryRepo := repository.NewMasteryRepository()
	completion, err := masteryRepo.GetCompletion(1, list.ID)
	require.NoError(t, err)
	require.NotNil(t, completion)

	// The parked session survives and reports the final state.
	view, err = svc.Current(ctx, 1, view.SessionID)
	require.NoError(t, err)
	require.Equal(t, learning.StatePoolComplete, view.State)
}

func TestPracticeServiceOwnership(t *testing.T) {
	svc, list := setupPracticeTest(t)
	ctx := context.Background()

	view, err := svc.StartSession(ctx, 1, list.ID)
	require.NoError(t, err)

	// Another user cannot touch the session or the list.
	_, err = svc.Current(ctx, 2, view.SessionID)
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.StartSession(ctx, 2, list.ID)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestPracticeServiceRecognitionOptionsSanitized(t *testing.T) {
	svc, list := setupPracticeTest(t)
	ctx := context.Background()

	view, err := svc.StartSession(ctx, 1, list.ID)
	require.NoError(t, err)
	require.Equal(t, learning.Recognition, view.Challenge.Kind)
	require.Len(t, view.Challenge.Options, 4)

	// The view never reveals which option is correct; the only signal is
	// the item ID, which the client needs to submit anyway.
	seen := map[string]bool{}
	for _, opt := range view.Challenge.Options {
		require.NotEmpty(t, opt.Text)
		seen[opt.Text] = true
	}
	require.Len(t, seen, 4)
}

func TestPracticeServiceResetClearsLedger(t *testing.T) {
	svc, list := setupPracticeTest(t)
	ctx := context.Background()

	view, err := svc.StartSession(ctx, 1, list.ID)
	require.NoError(t, err)

	view, err = svc.Submit(ctx, 1, view.SessionID, learning.Answer{OptionItemID: view.Challenge.ItemID})
	require.NoError(t, err)

	view, err = svc.Reset(ctx, 1, view.SessionID)
	require.NoError(t, err)
	require.Equal(t, learning.StatePresenting, view.State)
	require.Equal(t, 0, view.Mastered)

	masteryRepo := repository.NewMasteryRepository()
	records, err := masteryRepo.LoadByUserAndList(1, list.ID)
	require.NoError(t, err)
	require.Empty(t, records)
}
