package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CampusResponseAPI/internal/auth"
	"CampusResponseAPI/internal/config"
	"CampusResponseAPI/internal/database"
	"CampusResponseAPI/internal/geo"
	"CampusResponseAPI/internal/handler"
	"CampusResponseAPI/internal/logger"
	"CampusResponseAPI/internal/mqtt"
	"CampusResponseAPI/internal/notify"
	"CampusResponseAPI/internal/repository"
	"CampusResponseAPI/internal/server"
	"CampusResponseAPI/internal/service"
	"CampusResponseAPI/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// 2. Initialize Logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: %v", err)
	}

	cfg.Print()
	log.Info("Starting Campus Response API Server")

	// 3. Database Connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Info("Database connected successfully")

	// 4. Change Notifier
	notifier := notify.NewNotifier()
	defer notifier.Close()

	// 5. Repositories
	alertRepo := repository.NewAlertRepository(db.DB, notifier)
	profileRepo := repository.NewProfileRepository(db.DB, notifier)

	// 6. MQTT Client (location fix transport)
	mqttClient, err := mqtt.NewClient(&cfg.MQTT, log)
	if err != nil {
		log.Fatal("Failed to create MQTT client: %v", err)
	}
	if err := mqttClient.Connect(); err != nil {
		log.Fatal("Failed to connect to MQTT broker: %v", err)
	}
	defer mqttClient.Disconnect()

	// 7. Location Tracking
	watchOpts := geo.WatchOptions{
		HighAccuracy: cfg.MQTT.HighAccuracy,
		MaxAge:       cfg.MQTT.FixMaxAge,
		Timeout:      cfg.MQTT.FixTimeout,
	}
	tracking := geo.NewRegistry(func(userID string) geo.Sensor {
		return geo.NewMQTTSensor(mqttClient, cfg.MQTT.FixTopicPrefix, userID, log)
	}, watchOpts, log)
	defer tracking.StopAll()

	// 8. WebSocket Hub
	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()

	hub := websocket.NewHub(log)
	go hub.Run(hubCtx)

	// 9. Identity
	tokenManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpirationHours)

	var ldapVerifier *auth.LDAPVerifier
	if cfg.Auth.Backend == config.AuthBackendLDAP {
		ldapVerifier = auth.NewLDAPVerifier(cfg.Auth.LDAPAddr, cfg.Auth.LDAPBaseDN, cfg.Auth.LDAPUserAttribute)
	}

	var ssoClient *auth.SSOClient
	if cfg.Auth.SSOEnabled {
		ssoClient = auth.NewSSOClient(
			cfg.Auth.SSOClientID,
			cfg.Auth.SSOClientSecret,
			cfg.Auth.SSOAuthURL,
			cfg.Auth.SSOTokenURL,
			cfg.Auth.SSOUserInfoURL,
			cfg.Auth.SSORedirectURL,
		)
	}

	// 10. Services
	accountService := service.NewAccountService(profileRepo, tokenManager, ldapVerifier, ssoClient, tracking, &cfg.Auth, log)
	submissionService := service.NewSubmissionService(alertRepo, log)
	statusService := service.NewStatusService(alertRepo, log)

	feed := service.NewFeed(alertRepo, notifier, hub, log)
	feed.Subscribe()
	defer feed.Unsubscribe()

	// Prime the staff view so the first dashboard connection has data.
	if err := feed.Load(context.Background()); err != nil {
		log.Warn("Initial feed load failed: %v", err)
	}

	// 11. Handlers
	authHandler := handler.NewAuthHandler(accountService, log)
	alertHandler := handler.NewAlertHandler(submissionService, statusService, feed, tracking, log)
	wsHandler := handler.NewWSHandler(hub, tokenManager, log)
	healthHandler := handler.NewHealthHandler(db, mqttClient, log)

	// 12. Start HTTP Server
	srv := server.New(cfg, log)
	srv.RegisterHandlers(tokenManager, authHandler, alertHandler, wsHandler, healthHandler)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed: %v", err)
		}
	}()

	log.Info("API server ready on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	// 13. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	log.Info("Shutdown complete")
}
