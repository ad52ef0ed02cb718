package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Link представляет сокращенную ссылку
type Link struct {
	ID          string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	OriginalURL string    `gorm:"column:original_url;not null;type:text" json:"original_url"`
	ShortCode   string    `gorm:"column:short_code;uniqueIndex;not null;size:20" json:"short_code"`
	Clicks      int64     `gorm:"column:clicks;not null;default:0" json:"clicks"`
	UserID      *string   `gorm:"column:user_id;size:36;index" json:"user_id,omitempty"` // nil для анонимных ссылок
	Flagged     bool      `gorm:"column:flagged;not null;default:false" json:"flagged"`
	FlagReason  *string   `gorm:"column:flag_reason;type:text" json:"flag_reason,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (Link) TableName() string {
	return "links"
}

// BeforeCreate генерирует строковый ID перед вставкой
func (l *Link) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy проверяет принадлежность ссылки пользователю
func (l *Link) OwnedBy(userID string) bool {
	return l.UserID != nil && *l.UserID == userID
}
