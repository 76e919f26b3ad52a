package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wordspark-backend/internal/db"
	"wordspark-backend/internal/model"
)

type MasteryRepository interface {
	LoadByUserAndList(userID, listID uint) ([]model.MasteryRecord, error)
	Upsert(rec *model.MasteryRecord) error
	DeleteByUserAndList(userID, listID uint) error
	GetCompletion(userID, listID uint) (*model.ListCompletion, error)
	CreateCompletion(userID, listID uint) (created bool, err error)
	DeleteCompletion(userID, listID uint) error
	GetCompletionsByUser(userID uint) ([]model.ListCompletion, error)
	CountAttemptsByUser(userID uint) (int64, error)
}

type masteryRepository struct{}

func NewMasteryRepository() MasteryRepository {
	return &masteryRepository{}
}

func (r *masteryRepository) LoadByUserAndList(userID, listID uint) ([]model.MasteryRecord, error) {
	itemIDs := db.GetDB().Model(&model.VocabItem{}).Select("id").Where("list_id = ?", listID)
	var records []model.MasteryRecord
	err := db.GetDB().
		Where("user_id = ? AND item_id IN (?)", userID, itemIDs).
		Find(&records).Error
	return records, err
}

// Upsert is keyed on (user_id, item_id): last writer wins on the flags and
// the caller-supplied attempt count.
func (r *masteryRepository) Upsert(rec *model.MasteryRecord) error {
	return db.GetDB().Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"recognition_passed", "production_passed", "attempts", "last_attempted_at", "updated_at",
		}),
	}).Create(rec).Error
}

func (r *masteryRepository) DeleteByUserAndList(userID, listID uint) error {
	itemIDs := db.GetDB().Model(&model.VocabItem{}).Select("id").Where("list_id = ?", listID)
	return db.GetDB().
		Where("user_id = ? AND item_id IN (?)", userID, itemIDs).
		Delete(&model.MasteryRecord{}).Error
}

func (r *masteryRepository) GetCompletion(userID, listID uint) (*model.ListCompletion, error) {
	var completion model.ListCompletion
	err := db.GetDB().Where("user_id = ? AND list_id = ?", userID, listID).First(&completion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &completion, nil
}

// CreateCompletion writes the marker once per (user, list). The conflict
// clause turns a repeat write into a no-op, so re-deriving completion for an
// already-complete list never duplicates the row.
func (r *masteryRepository) CreateCompletion(userID, listID uint) (bool, error) {
	completion := model.ListCompletion{
		UserID:      userID,
		ListID:      listID,
		CompletedAt: time.Now(),
	}
	res := db.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "list_id"}},
		DoNothing: true,
	}).Create(&completion)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *masteryRepository) DeleteCompletion(userID, listID uint) error {
	return db.GetDB().Where("user_id = ? AND list_id = ?", userID, listID).
		Delete(&model.ListCompletion{}).Error
}

func (r *masteryRepository) GetCompletionsByUser(userID uint) ([]model.ListCompletion, error) {
	var completions []model.ListCompletion
	err := db.GetDB().Where("user_id = ?", userID).Order("completed_at desc").Find(&completions).Error
	return completions, err
}

func (r *masteryRepository) CountAttemptsByUser(userID uint) (int64, error) {
	var total int64
	err := db.GetDB().Model(&model.MasteryRecord{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(attempts), 0)").Scan(&total).Error
	return total, err
}
