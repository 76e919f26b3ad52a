package service

import (
	"fmt"
	"time"

	"wordspark-backend/internal/model"
	"wordspark-backend/internal/repository"
)

// ListProgress is the per-list view: how far along the two-gate mastery of
// each item is. Mastered counts are always derived from the gates.
type ListProgress struct {
	ListID            uint       `json:"list_id"`
	TotalItems        int        `json:"total_items"`
	MasteredItems     int        `json:"mastered_items"`
	RecognitionPassed int        `json:"recognition_passed"`
	ProductionPassed  int        `json:"production_passed"`
	TotalAttempts     int        `json:"total_attempts"`
	Completed         bool       `json:"completed"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// Overview aggregates a user's standing across all their lists.
type Overview struct {
	TotalLists     int   `json:"total_lists"`
	CompletedLists int   `json:"completed_lists"`
	TotalAttempts  int64 `json:"total_attempts"`
}

type ProgressService interface {
	ListProgress(userID, listID uint) (*ListProgress, error)
	Overview(userID uint) (*Overview, error)
	Completions(userID uint) ([]model.ListCompletion, error)
}

type progressService struct {
	vocabRepo   repository.VocabRepository
	masteryRepo repository.MasteryRepository
}

func NewProgressService(vocabRepo repository.VocabRepository, masteryRepo repository.MasteryRepository) ProgressService {
	return &progressService{vocabRepo: vocabRepo, masteryRepo: masteryRepo}
}

func (s *progressService) ListProgress(userID, listID uint) (*ListProgress, error) {
	items, err := s.vocabRepo.GetItemsByList(listID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	records, err := s.masteryRepo.LoadByUserAndList(userID, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mastery records: %w", err)
	}

	progress := &ListProgress{ListID: listID, TotalItems: len(items)}
	for _, rec := range records {
		progress.TotalAttempts += rec.Attempts
		if rec.RecognitionPassed {
			progress.RecognitionPassed++
		}
		if rec.ProductionPassed {
			progress.ProductionPassed++
		}
		if rec.RecognitionPassed && rec.ProductionPassed {
			progress.MasteredItems++
		}
	}

	completion, err := s.masteryRepo.GetCompletion(userID, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completion: %w", err)
	}
	if completion != nil {
		progress.Completed = true
		progress.CompletedAt = &completion.CompletedAt
	}
	return progress, nil
}

func (s *progressService) Overview(userID uint) (*Overview, error) {
	lists, err := s.vocabRepo.GetListsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}
	completions, err := s.masteryRepo.GetCompletionsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	attempts, err := s.masteryRepo.CountAttemptsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	return &Overview{
		TotalLists:     len(lists),
		CompletedLists: len(completions),
		TotalAttempts:  attempts,
	}, nil
}

func (s *progressService) Completions(userID uint) ([]model.ListCompletion, error) {
	return s.masteryRepo.GetCompletionsByUser(userID)
}
