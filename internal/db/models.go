package db

import (
	"time"

	"gorm.io/datatypes"
)

// RVSession is one guessing round.
type RVSession struct {
	ID               uint      `gorm:"primaryKey"`
	ImageURL         string    `gorm:"column:image_url;size:255;not null"`
	Name             string    `gorm:"size:100;not null;index"`
	UniqueIdentifier string    `gorm:"size:10;uniqueIndex;not null"`
	UserGuess        *string   `gorm:"type:text"`
	Rating           *int      `gorm:"index"`
	CreatedDate      time.Time `gorm:"not null;index"`
}

func (RVSession) TableName() string {
	return "rv_sessions"
}

// WebSession backs the rv_session cookie when the database is the web session backend.
type WebSession struct {
	ID        string    `gorm:"primaryKey;size:64"`
	CurrentID uint      `gorm:"not null;default:0"`
	Flash     string    `gorm:"size:280"`
	FlashKind string    `gorm:"size:16"`
	Name      string    `gorm:"size:100"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;index"`
}

// Event is an append-only audit row written alongside every session mutation.
type Event struct {
	ID        uint           `gorm:"primaryKey"`
	SessionID *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null;index"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
