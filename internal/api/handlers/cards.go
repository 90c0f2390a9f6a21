package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/mtg-rules-bot/internal/lookup"
	"github.com/codyseavey/mtg-rules-bot/internal/reply"
	"github.com/codyseavey/mtg-rules-bot/internal/services"
)

// LookupRecorder persists a finished resolution. It runs off the request path.
type LookupRecorder func(res lookup.Result)

type CardHandler struct {
	resolver *lookup.Resolver
	catalog  services.CardCatalog
	timeout  time.Duration
	record   LookupRecorder
}

func NewCardHandler(resolver *lookup.Resolver, catalog services.CardCatalog, timeout time.Duration, record LookupRecorder) *CardHandler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CardHandler{
		resolver: resolver,
		catalog:  catalog,
		timeout:  timeout,
		record:   record,
	}
}

// ResolveCard answers GET /api/cards/resolve?q=<command text>.
func (h *CardHandler) ResolveCard(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res := h.resolver.Resolve(ctx, query)
	if h.record != nil {
		go h.record(res)
	}

	body := gin.H{
		"result":  res,
		"message": reply.Format(res),
	}
	if res.Err != nil {
		body["error"] = res.Err.Error()
	}
	c.JSON(statusForKind(res.Kind), body)
}

// ParseCommand answers GET /api/cards/parse?q=<command text> without
// touching the catalog.
func (h *CardHandler) ParseCommand(c *gin.Context) {
	query := c.Query("q")
	req := h.resolver.Parse(query)
	c.JSON(http.StatusOK, gin.H{
		"request":    req,
		"lookup_key": h.resolver.Normalize(req.CardName),
	})
}

// SearchCards passes a full-text query through to the catalog.
func (h *CardHandler) SearchCards(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.catalog.SearchCards(ctx, query)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, services.ErrCatalogUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func statusForKind(kind lookup.Kind) int {
	switch kind {
	case lookup.KindFound, lookup.KindAmbiguousSet:
		return http.StatusOK
	case lookup.KindNotFound:
		return http.StatusNotFound
	case lookup.KindInvalidInput:
		return http.StatusBadRequest
	case lookup.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
