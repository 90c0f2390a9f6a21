package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/mtg-rules-bot/internal/database"
	"github.com/codyseavey/mtg-rules-bot/internal/models"
)

// OverrideStore is the subset of database.OverrideStore the handler needs.
type OverrideStore interface {
	List() []models.NameOverride
	Set(alias, cardName string) (*models.NameOverride, error)
	Delete(alias string) error
}

type OverrideHandler struct {
	store OverrideStore
}

func NewOverrideHandler(store OverrideStore) *OverrideHandler {
	return &OverrideHandler{
		store: store,
	}
}

func (h *OverrideHandler) ListOverrides(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"overrides": h.store.List()})
}

type setOverrideRequest struct {
	Alias    string `json:"alias" binding:"required"`
	CardName string `json:"card_name" binding:"required"`
}

// SetOverride creates or replaces a literal name override.
func (h *OverrideHandler) SetOverride(c *gin.Context) {
	var req setOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alias and card_name are required"})
		return
	}

	override, err := h.store.Set(req.Alias, req.CardName)
	if errors.Is(err, database.ErrInvalidOverride) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("Failed to save override %q: %v", req.Alias, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, override)
}

func (h *OverrideHandler) DeleteOverride(c *gin.Context) {
	alias := c.Param("alias")
	if alias == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alias is required"})
		return
	}

	if err := h.store.Delete(alias); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": alias})
}
