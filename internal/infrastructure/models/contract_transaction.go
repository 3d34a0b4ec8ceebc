package models

import (
	"time"

	"github.com/google/uuid"
)

type ContractTransaction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index"`
	Hash       string    `gorm:"type:varchar(80);not null;uniqueIndex"`
	Type       string    `gorm:"type:varchar(20);not null"`
	Function   *string   `gorm:"type:varchar(100)"` // Null for deploys
	Status     string    `gorm:"type:varchar(30);not null;index"`
	BlockHash  *string   `gorm:"type:varchar(80)"` // Null until settled
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
