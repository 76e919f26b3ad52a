package model

import "time"

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"password,omitempty"` // bcrypt hash; cleared before responses
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VocabList struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	UserID      uint        `json:"user_id" gorm:"not null;index"`
	Title       string      `json:"title" gorm:"not null"`
	Description string      `json:"description"`
	SourceLang  string      `json:"source_lang" gorm:"not null"`
	TargetLang  string      `json:"target_lang" gorm:"not null"`
	Items       []VocabItem `json:"items,omitempty" gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// VocabItem is one word pair in a list. Position fixes the stable insertion
// order the practice selector scans in.
type VocabItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ListID    uint      `json:"list_id" gorm:"not null;index"`
	Prompt    string    `json:"prompt" gorm:"not null"`
	Answer    string    `json:"answer" gorm:"not null"`
	Position  int       `json:"position" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// MasteryRecord holds the two pass gates and the attempt counter for one
// (user, item) pair. Mastery is derived from the gates, never stored.
type MasteryRecord struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_mastery_user_item"`
	ItemID            uint      `json:"item_id" gorm:"not null;uniqueIndex:idx_mastery_user_item"`
	RecognitionPassed bool      `json:"recognition_passed"`
	ProductionPassed  bool      `json:"production_passed"`
	Attempts          int       `json:"attempts" gorm:"not null"`
	LastAttemptedAt   time.Time `json:"last_attempted_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ListCompletion marks a list fully mastered by a user. The unique index
// makes the completion write idempotent.
type ListCompletion struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_completion_user_list"`
	ListID      uint      `json:"list_id" gorm:"not null;uniqueIndex:idx_completion_user_list"`
	CompletedAt time.Time `json:"completed_at"`
}

type Story struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	ListID    uint       `json:"list_id" gorm:"not null;index"`
	Title     string     `json:"title"`
	Status    string     `json:"status" gorm:"default:'generating'"` // generating, ready, failed
	Bits      []StoryBit `json:"bits,omitempty" gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// StoryBit is one illustrated passage of a generated story, tied to the
// vocabulary item it weaves in.
type StoryBit struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoryID   uint      `json:"story_id" gorm:"not null;index"`
	ItemID    uint      `json:"item_id"`
	Position  int       `json:"position" gorm:"not null"`
	Text      string    `json:"text" gorm:"not null"`
	ImageURL  string    `json:"image_url"`
	AudioURL  string    `json:"audio_url"`
	CreatedAt time.Time `json:"created_at"`
}
