package models

import (
	"time"
)

// LookupLog records the outcome of one resolve request.
type LookupLog struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	RawText       string    `json:"raw_text" gorm:"not null"`
	CardName      string    `json:"card_name"`
	SetIdentifier string    `json:"set_identifier"`
	Outcome       string    `json:"outcome" gorm:"not null;index"`
	CanonicalName string    `json:"canonical_name"`
	SetCode       string    `json:"set_code"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
}

// NameOverride maps a normalized user phrase to a canonical card name.
type NameOverride struct {
	Alias     string    `json:"alias" gorm:"primaryKey"`
	CardName  string    `json:"card_name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
