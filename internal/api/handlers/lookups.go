package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codyseavey/mtg-rules-bot/internal/database"
)

type LookupHistoryHandler struct {
	db *gorm.DB
}

func NewLookupHistoryHandler(db *gorm.DB) *LookupHistoryHandler {
	return &LookupHistoryHandler{db: db}
}

// GetRecentLookups answers GET /api/lookups?limit=50&outcome=not_found.
func (h *LookupHistoryHandler) GetRecentLookups(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := database.RecentLookups(h.db, limit, c.Query("outcome"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lookups": entries})
}
