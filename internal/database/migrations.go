package database

import (
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/codyseavey/mtg-rules-bot/internal/models"
)

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	return normalizeOverrideAliases(db)
}

// normalizeOverrideAliases lowercases and collapses whitespace in aliases
// written by hand before the store started folding them. When two aliases
// fold to the same key the most recently updated row wins.
func normalizeOverrideAliases(db *gorm.DB) error {
	if !db.Migrator().HasTable("name_overrides") {
		return nil
	}

	var rows []models.NameOverride
	if err := db.Order("updated_at").Find(&rows).Error; err != nil {
		return err
	}

	fixed := 0
	for _, row := range rows {
		folded := strings.ToLower(strings.Join(strings.Fields(row.Alias), " "))
		if folded == row.Alias {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			var existing []models.NameOverride
			if err := tx.Where("alias = ?", folded).Limit(1).Find(&existing).Error; err != nil {
				return err
			}
			if len(existing) > 0 && existing[0].UpdatedAt.After(row.UpdatedAt) {
				return tx.Exec(`DELETE FROM name_overrides WHERE alias = ?`, row.Alias).Error
			}
			if err := tx.Exec(`DELETE FROM name_overrides WHERE alias = ?`, folded).Error; err != nil {
				return err
			}
			return tx.Exec(`UPDATE name_overrides SET alias = ? WHERE alias = ?`, folded, row.Alias).Error
		})
		if err != nil {
			return err
		}
		fixed++
	}

	if fixed > 0 {
		log.Printf("Normalized %d name override aliases", fixed)
	}
	return nil
}
