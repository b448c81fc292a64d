package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index"`
	RecipientUserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Chain            string    `gorm:"type:varchar(50);not null"`
	Amount           string    `gorm:"type:decimal(36,18);not null"`
	TokenAddress     *string   `gorm:"type:varchar(255)"` // Null means native asset
	TokenSymbol      string    `gorm:"type:varchar(20);not null"`
	TokenDecimals    int32     `gorm:"not null"`
	ReceivingAddress string    `gorm:"type:varchar(255);not null"`
	Status           string    `gorm:"type:varchar(50);not null;index"`
	TxHash           *string   `gorm:"type:varchar(255);index"`
	FailureReason    *string   `gorm:"type:text"`
	AmountReceived   *string   `gorm:"type:decimal(36,18)"`
	VerifiedAt       *time.Time
	ExpiresAt        time.Time `gorm:"not null;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
