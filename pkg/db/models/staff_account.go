package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/eldorado-books/bookstore-backend/pkg/enums"
)

// StaffAccount represents an employee login identity.
type StaffAccount struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Username     string          `gorm:"column:username;type:text;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	FullName     string          `gorm:"column:full_name;not null"`
	Role         enums.StaffRole `gorm:"column:role;type:text;not null"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
