package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book represents a single title carried in inventory.
type Book struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Title     string          `gorm:"column:title;not null"`
	Author    string          `gorm:"column:author;not null"`
	Genre     *string         `gorm:"column:genre"`
	Publisher *string         `gorm:"column:publisher"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null;default:0"`
	UpdatedBy *uuid.UUID      `gorm:"column:updated_by;type:uuid"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
