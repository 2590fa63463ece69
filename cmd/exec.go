package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"pricing-system/config"
	"pricing-system/handlers"
	"pricing-system/models"
	"pricing-system/monitoring"
	"pricing-system/security"
	"pricing-system/services"
	"pricing-system/store"
	"pricing-system/utils"

	_ "pricing-system/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize the PubNub publisher
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := monitoring.NewMonitor()

	// Initialize stores and services
	salesStore := store.NewSalesStore(app)
	escalationStore := store.NewEscalationStore(app)

	escalationService := services.NewEscalationService(escalationStore, pn, monitor)
	recommendationService := services.NewRecommendationService(salesStore, escalationService, redisClient, cfg, monitor)
	feedManager := services.NewFeedManager(ctx, escalationStore, cfg, monitor)
	rateLimiter := security.NewRateLimiter(redisClient)

	// Initialize handlers
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService, rateLimiter, cfg)
	notificationHandler := handlers.NewNotificationHandler(feedManager)
	supportHandler := handlers.NewSupportHandler(escalationService)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Setup graceful shutdown
	go handleShutdown(cancel, feedManager)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Recommendation job trigger
		e.Router.GET("/api/reccomendation", recommendationHandler.Run)

		// Notification feed endpoints
		e.Router.GET("/api/notifications", notificationHandler.List).Bind(apis.RequireAuth())
		e.Router.POST("/api/notifications/refresh", notificationHandler.Refresh).Bind(apis.RequireAuth())
		e.Router.POST("/api/notifications/read-all", notificationHandler.MarkAllRead).Bind(apis.RequireAuth())
		e.Router.POST("/api/notifications/{id}/read", notificationHandler.MarkRead).Bind(apis.RequireAuth())
		e.Router.DELETE("/api/notifications/{id}", notificationHandler.Delete).Bind(apis.RequireAuth())

		// Support escalation tool entry point
		e.Router.POST("/api/support/escalations", supportHandler.Create)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		if cfg.EnableMetrics {
			e.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		log.Println("Server routes registered")

		setupEscalationHooks(app, escalationService)

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// setupEscalationHooks republishes escalation rows touched through the
// PocketBase record API (the mobile app edits them directly) as realtime
// change messages, so the feed sees them the same way it sees job writes.
func setupEscalationHooks(app *pocketbase.PocketBase, escalationService *services.EscalationService) {
	app.OnRecordCreateRequest("escalations").BindFunc(func(e *core.RecordRequestEvent) error {
		if err := e.Next(); err != nil {
			return err
		}
		esc := store.EscalationFromRecord(e.Record)
		escalationService.PublishChange(e.Request.Context(), models.ChangeInsert, esc)
		slog.Info("Published escalation insert", "id", esc.ID)
		return nil
	})

	app.OnRecordUpdateRequest("escalations").BindFunc(func(e *core.RecordRequestEvent) error {
		if err := e.Next(); err != nil {
			return err
		}
		esc := store.EscalationFromRecord(e.Record)
		escalationService.PublishChange(e.Request.Context(), models.ChangeUpdate, esc)
		slog.Info("Published escalation update", "id", esc.ID)
		return nil
	})

	app.OnRecordDeleteRequest("escalations").BindFunc(func(e *core.RecordRequestEvent) error {
		esc := store.EscalationFromRecord(e.Record)
		if err := e.Next(); err != nil {
			return err
		}
		escalationService.PublishChange(e.Request.Context(), models.ChangeDelete, esc)
		slog.Info("Published escalation delete", "id", esc.ID)
		return nil
	})
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc, feedManager *services.FeedManager) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	feedManager.StopAll()
	cancel()
}
