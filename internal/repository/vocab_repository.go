package repository

import (
	"gorm.io/gorm"

	"wordspark-backend/internal/db"
	"wordspark-backend/internal/model"
)

type VocabRepository interface {
	CreateList(list *model.VocabList) error
	GetListsByUser(userID uint) ([]model.VocabList, error)
	GetListByID(listID uint) (*model.VocabList, error)
	UpdateList(list *model.VocabList) error
	DeleteList(listID uint) error
	AddItem(item *model.VocabItem) error
	AddItems(items []model.VocabItem) error
	RemoveItem(itemID uint) error
	GetItemByID(itemID uint) (*model.VocabItem, error)
	GetItemsByList(listID uint) ([]model.VocabItem, error)
	NextPosition(listID uint) (int, error)
}

type vocabRepository struct{}

func NewVocabRepository() VocabRepository {
	return &vocabRepository{}
}

func (r *vocabRepository) CreateList(list *model.VocabList) error {
	return db.GetDB().Create(list).Error
}

func (r *vocabRepository) GetListsByUser(userID uint) ([]model.VocabList, error) {
	var lists []model.VocabList
	err := db.GetDB().Where("user_id = ?", userID).Order("created_at desc").Find(&lists).Error
	return lists, err
}

func (r *vocabRepository) GetListByID(listID uint) (*model.VocabList, error) {
	var list model.VocabList
	err := db.GetDB().
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc") }).
		Where("id = ?", listID).First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *vocabRepository) UpdateList(list *model.VocabList) error {
	return db.GetDB().Model(&model.VocabList{}).Where("id = ?", list.ID).
		Updates(map[string]interface{}{
			"title":       list.Title,
			"description": list.Description,
			"source_lang": list.SourceLang,
			"target_lang": list.TargetLang,
		}).Error
}

// DeleteList removes the list together with everything hanging off it:
// items, mastery records for those items, the completion marker and any
// generated stories. One transaction, so no orphans survive a failure.
func (r *vocabRepository) DeleteList(listID uint) error {
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		itemIDs := tx.Model(&model.VocabItem{}).Select("id").Where("list_id = ?", listID)
		if err := tx.Where("item_id IN (?)", itemIDs).Delete(&model.MasteryRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", listID).Delete(&model.ListCompletion{}).Error; err != nil {
			return err
		}
		storyIDs := tx.Model(&model.Story{}).Select("id").Where("list_id = ?", listID)
		if err := tx.Where("story_id IN (?)", storyIDs).Delete(&model.StoryBit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", listID).Delete(&model.Story{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", listID).Delete(&model.VocabItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", listID).Delete(&model.VocabList{}).Error
	})
}

func (r *vocabRepository) AddItem(item *model.VocabItem) error {
	return db.GetDB().Create(item).Error
}

func (r *vocabRepository) AddItems(items []model.VocabItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.GetDB().Create(&items).Error
}

// RemoveItem drops the item and its mastery records.
func (r *vocabRepository) RemoveItem(itemID uint) error {
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).Delete(&model.MasteryRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", itemID).Delete(&model.VocabItem{}).Error
	})
}

func (r *vocabRepository) GetItemByID(itemID uint) (*model.VocabItem, error) {
	var item model.VocabItem
	err := db.GetDB().Where("id = ?", itemID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *vocabRepository) GetItemsByList(listID uint) ([]model.VocabItem, error) {
	var items []model.VocabItem
	err := db.GetDB().Where("list_id = ?", listID).Order("position asc").Find(&items).Error
	return items, err
}

// NextPosition returns the position for the next appended item.
func (r *vocabRepository) NextPosition(listID uint) (int, error) {
	var max int
	err := db.GetDB().Model(&model.VocabItem{}).
		Where("list_id = ?", listID).
		Select("COALESCE(MAX(position), 0)").Scan(&max).Error
	return max + 1, err
}
