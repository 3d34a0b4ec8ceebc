package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Contract struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name         string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Address      *string   `gorm:"type:varchar(80);index"` // Nullable until deployed
	AbiPath      string    `gorm:"type:varchar(255);not null"`
	ArtifactPath string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}
