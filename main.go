package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chefdispatch/config"
	"chefdispatch/cron"
	"chefdispatch/database"
	chefRepo "chefdispatch/database/repository/chef"
	dispatchRepo "chefdispatch/database/repository/dispatch"
	"chefdispatch/handlers"
	"chefdispatch/middleware"
	"chefdispatch/routes"
	"chefdispatch/services/dispatch"
	"chefdispatch/services/geo"
	"chefdispatch/services/notification"
	"chefdispatch/services/travel"
	"chefdispatch/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	chefs := chefRepo.NewMongoChefRepo()
	bookings := dispatchRepo.NewMongoBookingRepo()

	// services.
	travelService := &travel.DefaultTravelTimeService{
		Cache: utils.GetTravelCacheClient(),
		Providers: []travel.RouteProvider{
			&travel.GoogleMatrixProvider{APIKey: config.AppConfig.GoogleAPIKey},
			&travel.OSRMProvider{BaseURL: config.AppConfig.OSRMBaseURL},
		},
		CacheTTL:        config.TravelCacheTTL(),
		ProviderTimeout: config.ProviderTimeout(),
		Logger:          logger,
	}

	geocoder := &geo.GoogleGeocoder{
		APIKey: config.AppConfig.GoogleAPIKey,
		Cache:  utils.GetGeoCacheClient(),
		Logger: logger,
	}

	slotManager := dispatch.NewSlotManager()

	availabilityEngine := &dispatch.AvailabilityEngine{
		ChefRepo:    chefs,
		BookingRepo: bookings,
		Logger:      logger,
	}

	optimizer := &dispatch.DefaultChefOptimizer{
		Travel:      travelService,
		BookingRepo: bookings,
		Logger:      logger,
	}

	notificationService := &notification.DefaultNotificationService{
		Tokens: &notification.MongoTokenLookup{
			Coll: database.MongoClient.Database("chefdispatch").Collection("customers"),
		},
	}

	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	defer taskClient.Close()

	negotiationService := &dispatch.DefaultNegotiationService{
		BookingRepo: bookings,
		Store:       &dispatch.RedisNegotiationStore{Client: utils.GetNegotiationCacheClient()},
		Notifier:    notificationService,
		TaskClient:  taskClient,
		TTL:         config.NegotiationTTL(),
		Logger:      logger,
	}

	dispatchService := &dispatch.DefaultDispatchService{
		Slots:        slotManager,
		Availability: availabilityEngine,
		Optimizer:    optimizer,
		Negotiation:  negotiationService,
		Travel:       travelService,
		Geocoder:     geocoder,
		ChefRepo:     chefs,
		BookingRepo:  bookings,
		Notifier:     notificationService,
		Logger:       logger,
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Dispatch:    handlers.NewDispatchHandler(dispatchService, availabilityEngine, slotManager, logger),
		Negotiation: handlers.NewNegotiationHandler(negotiationService, logger),
		Geo:         handlers.NewGeoHandler(geocoder, travelService),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Background workers and health monitoring.
	cron.InitNegotiationWorker(negotiationService)
	utils.StartHealthMonitor(map[string]*redis.Client{
		"travel":      utils.GetTravelCacheClient(),
		"geo":         utils.GetGeoCacheClient(),
		"negotiation": utils.GetNegotiationCacheClient(),
	}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
