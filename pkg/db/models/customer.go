package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a store account that orders are billed against.
type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	FullName  string    `gorm:"column:full_name;not null"`
	Phone     string    `gorm:"column:phone;type:text;not null;uniqueIndex"`
	Email     *string   `gorm:"column:email;type:text;uniqueIndex"`
	Address   *string   `gorm:"column:address"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
