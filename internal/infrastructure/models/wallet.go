package models

import (
	"time"

	"github.com/google/uuid"
)

type Wallet struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Chain     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_wallets_chain_address"`
	Address   string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_wallets_chain_address"`
	IsPrimary bool      `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
