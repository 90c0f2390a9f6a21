package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codyseavey/mtg-rules-bot/internal/lookup"
	"github.com/codyseavey/mtg-rules-bot/internal/models"
)

const maxRecentLookups = 200

// NewLookupLog flattens a resolution result into a history row.
func NewLookupLog(res lookup.Result) models.LookupLog {
	entry := models.LookupLog{
		ID:            uuid.New().String(),
		RawText:       res.Request.RawText,
		CardName:      res.Request.CardName,
		SetIdentifier: res.Request.SetIdentifier,
		Outcome:       string(res.Kind),
		CreatedAt:     time.Now(),
	}
	if res.Card != nil {
		entry.CanonicalName = res.Card.Name
		entry.SetCode = res.Card.SetCode
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	return entry
}

// RecordLookup stores the outcome of one resolution.
func RecordLookup(db *gorm.DB, res lookup.Result) (*models.LookupLog, error) {
	entry := NewLookupLog(res)
	if err := db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// RecentLookups returns the newest history rows, optionally filtered by outcome.
func RecentLookups(db *gorm.DB, limit int, outcome string) ([]models.LookupLog, error) {
	if limit <= 0 || limit > maxRecentLookups {
		limit = maxRecentLookups
	}

	q := db.Order("created_at DESC").Limit(limit)
	if outcome != "" {
		q = q.Where("outcome = ?", outcome)
	}

	var entries []models.LookupLog
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
