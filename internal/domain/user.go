package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role роль пользователя в системе
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid проверяет, что роль входит в допустимый набор
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User представляет пользователя сервиса.
type User struct {
	ID           string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	Name         *string   `gorm:"column:name" json:"name,omitempty"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"` // скрываем пароль в JSON
	Role         Role      `gorm:"column:role;size:10;not null;default:USER" json:"role"`
	Image        *string   `gorm:"column:image" json:"image,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Links []Link `gorm:"foreignKey:UserID" json:"links,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (User) TableName() string {
	return "users"
}

// BeforeCreate генерирует строковый ID перед вставкой
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
