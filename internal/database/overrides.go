package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/mtg-rules-bot/internal/lookup"
	"github.com/codyseavey/mtg-rules-bot/internal/metrics"
	"github.com/codyseavey/mtg-rules-bot/internal/models"
)

// ErrInvalidOverride is returned by Set when the alias or card name is blank.
var ErrInvalidOverride = errors.New("alias and card name are required")

// OverrideStore serves literal name overrides from memory and persists
// changes to the name_overrides table. It implements lookup.Overrides.
type OverrideStore struct {
	db *gorm.DB

	mu      sync.RWMutex
	aliases map[string]string
}

// NewOverrideStore loads all stored overrides into memory.
func NewOverrideStore(db *gorm.DB) (*OverrideStore, error) {
	s := &OverrideStore{db: db}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory table with the database contents.
func (s *OverrideStore) Reload() error {
	var rows []models.NameOverride
	if err := s.db.Find(&rows).Error; err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}

	aliases := make(map[string]string, len(rows))
	for _, row := range rows {
		aliases[lookup.OverrideKey(row.Alias)] = row.CardName
	}

	s.mu.Lock()
	s.aliases = aliases
	s.mu.Unlock()
	metrics.OverridesLoaded.Set(float64(len(aliases)))
	return nil
}

func (s *OverrideStore) Lookup(phrase string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.aliases[lookup.OverrideKey(phrase)]
	return name, ok
}

// Set creates or replaces an override.
func (s *OverrideStore) Set(alias, cardName string) (*models.NameOverride, error) {
	key := lookup.OverrideKey(alias)
	cardName = strings.TrimSpace(cardName)
	if key == "" || cardName == "" {
		return nil, ErrInvalidOverride
	}

	row := models.NameOverride{Alias: key, CardName: cardName}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "alias"}},
		DoUpdates: clause.AssignmentColumns([]string{"card_name", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("save override: %w", err)
	}

	s.mu.Lock()
	s.aliases[key] = cardName
	n := len(s.aliases)
	s.mu.Unlock()
	metrics.OverridesLoaded.Set(float64(n))
	return &row, nil
}

// Seed stores each entry that is not already present. Existing rows win so
// edits made through the API survive a restart.
func (s *OverrideStore) Seed(overrides map[string]string) (int, error) {
	added := 0
	for alias, name := range overrides {
		if _, ok := s.Lookup(alias); ok {
			continue
		}
		if _, err := s.Set(alias, name); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// Delete removes an override; deleting a missing alias is not an error.
func (s *OverrideStore) Delete(alias string) error {
	key := lookup.OverrideKey(alias)
	if err := s.db.Delete(&models.NameOverride{}, "alias = ?", key).Error; err != nil {
		return fmt.Errorf("delete override: %w", err)
	}

	s.mu.Lock()
	delete(s.aliases, key)
	n := len(s.aliases)
	s.mu.Unlock()
	metrics.OverridesLoaded.Set(float64(n))
	return nil
}

// List returns all overrides sorted by alias.
func (s *OverrideStore) List() []models.NameOverride {
	s.mu.RLock()
	out := make([]models.NameOverride, 0, len(s.aliases))
	for alias, name := range s.aliases {
		out = append(out, models.NameOverride{Alias: alias, CardName: name})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Alias < out[j].Alias
	})
	return out
}
