// Package scheduler runs the periodic housekeeping jobs: sweeping expired
// in-memory practice sessions and failing story generations that never
// finished.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"

	"wordspark-backend/internal/practice"
	"wordspark-backend/internal/repository"
	logger "wordspark-backend/pkg/logging"
)

// Stories stuck in generating longer than this are declared failed.
const staleStoryCutoff = 30 * time.Minute

type Scheduler struct {
	scheduler *gocron.Scheduler
	sessions  *practice.MemoryStore
	storyRepo repository.StoryRepository
}

// New creates the scheduler. sessions may be nil when Redis handles session
// expiry; the sweep job is then skipped.
func New(sessions *practice.MemoryStore, storyRepo repository.StoryRepository) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sessions:  sessions,
		storyRepo: storyRepo,
	}
}

// Start schedules all jobs and runs them in the background.
func (s *Scheduler) Start() {
	if s.sessions != nil {
		s.scheduler.Every(1).Hour().Do(s.sweepSessions)
	}
	s.scheduler.Every(10).Minutes().Do(s.failStaleStories)
	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweepSessions() {
	if removed := s.sessions.Sweep(); removed > 0 {
		logger.Info("Swept %d expired practice sessions", removed)
	}
}

func (s *Scheduler) failStaleStories() {
	failed, err := s.storyRepo.MarkStaleGenerating(staleStoryCutoff)
	if err != nil {
		logger.Error("Failed to mark stale stories: %v", err)
		return
	}
	if failed > 0 {
		logger.Warn("Marked %d stuck story generations as failed", failed)
	}
}
