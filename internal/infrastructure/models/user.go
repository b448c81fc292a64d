package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        *string   `gorm:"type:varchar(255);uniqueIndex"` // Null for wallet-only accounts
	Name         string    `gorm:"type:varchar(100);not null"`
	PasswordHash *string   `gorm:"type:varchar(255)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
