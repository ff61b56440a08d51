package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eldorado-books/bookstore-backend/pkg/enums"
)

// Order captures a customer purchase placed by a staff member.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID  uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	StaffID     uuid.UUID         `gorm:"column:staff_id;type:uuid;not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'Pending'"`
	TotalPrice  decimal.Decimal   `gorm:"column:total_price;type:numeric(10,2);not null"`
	LineItems   []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PlacedAt    time.Time         `gorm:"column:placed_at;autoCreateTime"`
	CompletedAt *time.Time        `gorm:"column:completed_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
