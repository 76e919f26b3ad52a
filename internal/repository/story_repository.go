package repository

import (
	"time"

	"gorm.io/gorm"

	"wordspark-backend/internal/db"
	"wordspark-backend/internal/model"
)

type StoryRepository interface {
	CreateStory(story *model.Story) error
	AttachBitsAndFinish(storyID uint, bits []model.StoryBit) error
	GetStoriesByUser(userID uint) ([]model.Story, error)
	GetStoriesByList(listID uint) ([]model.Story, error)
	GetStoryWithBits(storyID uint) (*model.Story, error)
	UpdateStatus(storyID uint, status string) error
	UpdateTitle(storyID uint, title string) error
	UpdateBitAudio(bitID uint, audioURL string) error
	DeleteStory(storyID uint) error
	MarkStaleGenerating(olderThan time.Duration) (int64, error)
}

type storyRepository struct{}

func NewStoryRepository() StoryRepository {
	return &storyRepository{}
}

func (r *storyRepository) CreateStory(story *model.Story) error {
	return db.GetDB().Create(story).Error
}

// AttachBitsAndFinish inserts every bit and flips the story to ready in one
// transaction. Either the full story lands or none of it does; there is no
// partially written story to clean up afterwards.
func (r *storyRepository) AttachBitsAndFinish(storyID uint, bits []model.StoryBit) error {
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		for i := range bits {
			bits[i].StoryID = storyID
		}
		if len(bits) > 0 {
			if err := tx.Create(&bits).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Story{}).Where("id = ?", storyID).
			Update("status", "ready").Error
	})
}

func (r *storyRepository) GetStoriesByUser(userID uint) ([]model.Story, error) {
	var stories []model.Story
	err := db.GetDB().Where("user_id = ?", userID).Order("created_at desc").Find(&stories).Error
	return stories, err
}

func (r *storyRepository) GetStoriesByList(listID uint) ([]model.Story, error) {
	var stories []model.Story
	err := db.GetDB().Where("list_id = ?", listID).Order("created_at desc").Find(&stories).Error
	return stories, err
}

func (r *storyRepository) GetStoryWithBits(storyID uint) (*model.Story, error) {
	var story model.Story
	err := db.GetDB().
		Preload("Bits", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc") }).
		Where("id = ?", storyID).First(&story).Error
	if err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) UpdateStatus(storyID uint, status string) error {
	return db.GetDB().Model(&model.Story{}).Where("id = ?", storyID).
		Update("status", status).Error
}

func (r *storyRepository) UpdateTitle(storyID uint, title string) error {
	return db.GetDB().Model(&model.Story{}).Where("id = ?", storyID).
		Update("title", title).Error
}

func (r *storyRepository) UpdateBitAudio(bitID uint, audioURL string) error {
	return db.GetDB().Model(&model.StoryBit{}).Where("id = ?", bitID).
		Update("audio_url", audioURL).Error
}

func (r *storyRepository) DeleteStory(storyID uint) error {
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", storyID).Delete(&model.StoryBit{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", storyID).Delete(&model.Story{}).Error
	})
}

// MarkStaleGenerating fails stories stuck in generating longer than the
// cutoff. The transactional bit insert means a stuck story has no bits, so
// failing it leaves nothing half-written behind.
func (r *storyRepository) MarkStaleGenerating(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := db.GetDB().Model(&model.Story{}).
		Where("status = ? AND created_at < ?", "generating", cutoff).
		Update("status", "failed")
	return res.RowsAffected, res.Error
}
