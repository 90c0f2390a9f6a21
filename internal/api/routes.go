package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/codyseavey/mtg-rules-bot/internal/api/handlers"
	"github.com/codyseavey/mtg-rules-bot/internal/config"
	"github.com/codyseavey/mtg-rules-bot/internal/database"
	"github.com/codyseavey/mtg-rules-bot/internal/lookup"
	"github.com/codyseavey/mtg-rules-bot/internal/metrics"
	"github.com/codyseavey/mtg-rules-bot/internal/services"
)

func SetupRouter(cfg *config.Config, resolver *lookup.Resolver, catalog services.CardCatalog, overrides handlers.OverrideStore, db *gorm.DB) *gin.Engine {
	router := gin.Default()
	router.Use(requestMetrics())

	// CORS configuration - allow origins from environment or use defaults
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = false // Explicitly set
	router.Use(cors.New(corsConfig))

	var record handlers.LookupRecorder
	if db != nil {
		record = func(res lookup.Result) {
			if _, err := database.RecordLookup(db, res); err != nil {
				log.Printf("Warning: failed to record lookup %q: %v", res.Request.RawText, err)
			}
		}
	}

	// Initialize handlers
	cardHandler := handlers.NewCardHandler(resolver, catalog, cfg.LookupTimeout, record)

	// API routes
	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("/resolve", cardHandler.ResolveCard)
			cards.GET("/parse", cardHandler.ParseCommand)
			cards.GET("/search", cardHandler.SearchCards)
		}

		if overrides != nil {
			overrideHandler := handlers.NewOverrideHandler(overrides)
			o := api.Group("/overrides")
			{
				o.GET("", overrideHandler.ListOverrides)
				o.POST("", overrideHandler.SetOverride)
				o.DELETE("/:alias", overrideHandler.DeleteOverride)
			}
		}

		if db != nil {
			historyHandler := handlers.NewLookupHistoryHandler(db)
			api.GET("/lookups", historyHandler.GetRecentLookups)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestMetrics records request counts and latency by route template so
// path parameters do not explode label cardinality.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
