package repository

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wordspark-backend/internal/db"
	"wordspark-backend/internal/model"
)

// setupTestDB points the db package at a fresh in-memory database.
func setupTestDB(t *testing.T) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&model.User{},
		&model.VocabList{},
		&model.VocabItem{},
		&model.MasteryRecord{},
		&model.ListCompletion{},
		&model.Story{},
		&model.StoryBit{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.SetDB(conn)
}

func seedList(t *testing.T, userID uint, words ...[2]string) *model.VocabList {
	t.Helper()
	vocabRepo := NewVocabRepository()
	list := &model.VocabList{UserID: userID, Title: "Test", SourceLang: "en", TargetLang: "es"}
	if err := vocabRepo.CreateList(list); err != nil {
		t.Fatalf("create list: %v", err)
	}
	for i, w := range words {
		item := &model.VocabItem{ListID: list.ID, Prompt: w[0], Answer: w[1], Position: i + 1}
		if err := vocabRepo.AddItem(item); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}
	return list
}

func TestMasteryUpsertKeyedOnUserAndItem(t *testing.T) {
	setupTestDB(t)
	list := seedList(t, 1, [2]string{"apple", "manzana"})
	repo := NewMasteryRepository()

	items, err := NewVocabRepository().GetItemsByList(list.ID)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	itemID := items[0].ID

	first := &model.MasteryRecord{UserID: 1, ItemID: itemID, RecognitionPassed: true, Attempts: 1, LastAttemptedAt: time.Now()}
	if err := repo.Upsert(first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second := &model.MasteryRecord{UserID: 1, ItemID: itemID, RecognitionPassed: true, ProductionPassed: true, Attempts: 2, LastAttemptedAt: time.Now()}
	if err := repo.Upsert(second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	records, err := repo.LoadByUserAndList(1, list.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if !rec.RecognitionPassed || !rec.ProductionPassed || rec.Attempts != 2 {
		t.Fatalf("got %+v", rec)
	}

	// A different user gets their own row for the same item.
	other := &model.MasteryRecord{UserID: 2, ItemID: itemID, Attempts: 1, LastAttemptedAt: time.Now()}
	if err := repo.Upsert(other); err != nil {
		t.Fatalf("other user upsert: %v", err)
	}
	otherRecords, err := repo.LoadByUserAndList(2, list.ID)
	if err != nil {
		t.Fatalf("load other: %v", err)
	}
	if len(otherRecords) != 1 || otherRecords[0].Attempts != 1 {
		t.Fatalf("got %+v", otherRecords)
	}
}

func TestCompletionIsIdempotent(t *testing.T) {
	setupTestDB(t)
	list := seedList(t, 1, [2]string{"apple", "manzana"})
	repo := NewMasteryRepository()

	created, err := repo.CreateCompletion(1, list.ID)
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if !created {
		t.Fatal("first completion write should report created")
	}

	created, err = repo.CreateCompletion(1, list.ID)
	if err != nil {
		t.Fatalf("repeat completion: %v", err)
	}
	if created {
		t.Fatal("repeat completion write should be a no-op")
	}

	completions, err := repo.GetCompletionsByUser(1)
	if err != nil {
		t.Fatalf("completions: %v", err)
	}
	if len(completions) != 1 {
		t.Fatalf("got %d completion rows, want 1", len(completions))
	}
}

func TestDeleteListCascades(t *testing.T) {
	setupTestDB(t)
	list := seedList(t, 1,
		[2]string{"apple", "manzana"},
		[2]string{"banana", "plátano"},
	)
	vocabRepo := NewVocabRepository()
	masteryRepo := NewMasteryRepository()
	storyRepo := NewStoryRepository()

	items, err := vocabRepo.GetItemsByList(list.ID)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	rec := &model.MasteryRecord{UserID: 1, ItemID: items[0].ID, Attempts: 3, LastAttemptedAt: time.Now()}
	if err := masteryRepo.Upsert(rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := masteryRepo.CreateCompletion(1, list.ID); err != nil {
		t.Fatalf("completion: %v", err)
	}
	story := &model.Story{UserID: 1, ListID: list.ID, Status: "generating"}
	if err := storyRepo.CreateStory(story); err != nil {
		t.Fatalf("story: %v", err)
	}
	bits := []model.StoryBit{{ItemID: items[0].ID, Position: 1, Text: "Había una manzana."}}
	if err := storyRepo.AttachBitsAndFinish(story.ID, bits); err != nil {
		t.Fatalf("bits: %v", err)
	}

	if err := vocabRepo.DeleteList(list.ID); err != nil {
		t.Fatalf("delete list: %v", err)
	}

	if items, _ := vocabRepo.GetItemsByList(list.ID); len(items) != 0 {
		t.Fatalf("items survived: %+v", items)
	}
	if records, _ := masteryRepo.LoadByUserAndList(1, list.ID); len(records) != 0 {
		t.Fatalf("mastery records survived: %+v", records)
	}
	completion, err := masteryRepo.GetCompletion(1, list.ID)
	if err != nil {
		t.Fatalf("completion lookup: %v", err)
	}
	if completion != nil {
		t.Fatalf("completion survived: %+v", completion)
	}
	if stories, _ := storyRepo.GetStoriesByList(list.ID); len(stories) != 0 {
		t.Fatalf("stories survived: %+v", stories)
	}
}

func TestMarkStaleGenerating(t *testing.T) {
	setupTestDB(t)
	repo := NewStoryRepository()

	stale := &model.Story{UserID: 1, ListID: 1, Status: "generating"}
	if err := repo.CreateStory(stale); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Backdate it past the cutoff.
	if err := db.GetDB().Model(&model.Story{}).Where("id = ?", stale.ID).
		Update("created_at", time.Now().Add(-2*time.Hour)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	fresh := &model.Story{UserID: 1, ListID: 1, Status: "generating"}
	if err := repo.CreateStory(fresh); err != nil {
		t.Fatalf("create: %v", err)
	}

	failed, err := repo.MarkStaleGenerating(30 * time.Minute)
	if err != nil {
		t.Fatalf("mark stale: %v", err)
	}
	if failed != 1 {
		t.Fatalf("failed %d stories, want 1", failed)
	}

	got, err := repo.GetStoryWithBits(fresh.ID)
	if err != nil {
		t.Fatalf("load fresh: %v", err)
	}
	if got.Status != "generating" {
		t.Fatalf("fresh story status %q", got.Status)
	}
}
