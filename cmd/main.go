package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"pmbackend/clients"
	"pmbackend/clients/socketio"
	"pmbackend/config"
	"pmbackend/db"
	"pmbackend/handlers"
	"pmbackend/liveness"
	"pmbackend/middleware"
	commandsservice "pmbackend/services/commands"
	computersservice "pmbackend/services/computers"
	notificationsservice "pmbackend/services/notifications"
	organizationsservice "pmbackend/services/organizations"
	sessionsservice "pmbackend/services/sessions"
	settingsservice "pmbackend/services/settings"
	"pmbackend/services/txmanager"
	usersservice "pmbackend/services/users"
	agentsusecase "pmbackend/usecases/agents"
	dashboardusecase "pmbackend/usecases/dashboard"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize error alert middleware
	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "pmbackend",
		LogsURL:     cfg.ServerLogsURL,
	})

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Initialize repositories with shared connection
	organizationsRepo := db.NewPostgresOrganizationsRepository(dbConn, cfg.DatabaseSchema)
	usersRepo := db.NewPostgresUsersRepository(dbConn, cfg.DatabaseSchema)
	computersRepo := db.NewPostgresComputersRepository(dbConn, cfg.DatabaseSchema)
	sessionsRepo := db.NewPostgresSessionsRepository(dbConn, cfg.DatabaseSchema)
	notificationsRepo := db.NewPostgresNotificationsRepository(dbConn, cfg.DatabaseSchema)
	commandsRepo := db.NewPostgresCommandsRepository(dbConn, cfg.DatabaseSchema)
	settingsRepo := db.NewPostgresSettingsRepository(dbConn, cfg.DatabaseSchema)

	// Initialize transaction manager
	txManager := txmanager.NewTransactionManager(dbConn)

	organizationsService := organizationsservice.NewOrganizationsService(organizationsRepo)
	usersService := usersservice.NewUsersService(usersRepo, organizationsService, txManager)
	computersService := computersservice.NewComputersService(computersRepo)
	sessionsService := sessionsservice.NewSessionsService(sessionsRepo, txManager)
	notificationsService := notificationsservice.NewNotificationsService(notificationsRepo)
	commandsService := commandsservice.NewCommandsService(commandsRepo)
	settingsService := settingsservice.NewSettingsService(settingsRepo)

	// Agent socket connections authenticate with the organization secret key
	apiKeyValidator := func(apiKey string) (string, error) {
		maybeOrg, err := organizationsService.GetOrganizationBySecretKey(context.Background(), apiKey)
		if err != nil {
			return "", err
		}
		organization, ok := maybeOrg.Get()
		if !ok {
			return "", fmt.Errorf("invalid API key")
		}
		return organization.ID, nil
	}

	wsClient := socketio.NewSocketIOClient(apiKeyValidator)

	evaluator := liveness.NewEvaluator(cfg.LivenessConfig.OnlineThreshold)
	agentsUseCase := agentsusecase.NewAgentsUseCase(
		wsClient,
		computersService,
		sessionsService,
		notificationsService,
		commandsService,
	)
	dashboardUseCase := dashboardusecase.NewDashboardUseCase(
		organizationsService,
		computersService,
		sessionsService,
		notificationsService,
		evaluator,
	)

	wsHandler := handlers.NewMessagesHandler(agentsUseCase)
	dashboardHandler := handlers.NewDashboardAPIHandler(
		dashboardUseCase,
		agentsUseCase,
		organizationsService,
		computersService,
		sessionsService,
		notificationsService,
		settingsService,
	)
	dashboardHTTPHandler := handlers.NewDashboardHTTPHandler(dashboardHandler)
	authMiddleware := middleware.NewClerkAuthMiddleware(usersService, cfg.ClerkConfig.SecretKey)

	// Create a new router
	router := mux.NewRouter()

	// Setup endpoints with the new router
	wsClient.RegisterWithRouter(router)

	apiRouter := router.PathPrefix("/api").Subrouter()
	dashboardHTTPHandler.SetupEndpoints(apiRouter, authMiddleware)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	// Create wrapper functions for usecase methods that now require context
	onAgentConnected := alertMiddleware.WrapConnectionHook(func(client *clients.Client) error {
		return agentsUseCase.OnAgentConnected(context.Background(), client)
	})
	onAgentDisconnected := alertMiddleware.WrapConnectionHook(func(client *clients.Client) error {
		return agentsUseCase.OnAgentDisconnected(context.Background(), client)
	})
	onAgentPing := alertMiddleware.WrapConnectionHook(func(client *clients.Client) error {
		return agentsUseCase.OnAgentPing(context.Background(), client)
	})
	onMessage := alertMiddleware.WrapMessageHandler(wsHandler.HandleMessage)

	// Register socket hooks for agent lifecycle
	wsClient.RegisterConnectionHook(asClientHook(onAgentConnected))
	wsClient.RegisterDisconnectionHook(asClientHook(onAgentDisconnected))
	wsClient.RegisterPingHook(asClientHook(onAgentPing))

	// Register socket message handler
	wsClient.RegisterMessageHandler(func(raw any, msg any) {
		client, ok := raw.(*clients.Client)
		if !ok || client == nil {
			return
		}
		onMessage(client, msg)
	})

	// Periodically sweep computers whose heartbeats went stale
	sweepTicker := time.NewTicker(cfg.LivenessConfig.SweepInterval)
	go func() {
		for range sweepTicker.C {
			_ = alertMiddleware.WrapBackgroundTask("MarkStaleComputersOffline", func() error {
				return agentsUseCase.MarkStaleComputersOffline(
					context.Background(),
					cfg.LivenessConfig.OnlineThreshold,
				)
			})()
		}
	}()
	defer sweepTicker.Stop()

	// Setup CORS middleware
	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Setup and handle graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

// asClientHook narrows the transport's generic hook signature to our client type
func asClientHook(hook func(*clients.Client) error) func(any) error {
	return func(raw any) error {
		client, ok := raw.(*clients.Client)
		if !ok || client == nil {
			return fmt.Errorf("hook invoked with unexpected client type %T", raw)
		}
		return hook(client)
	}
}

func handleGracefulShutdown(server *http.Server) error {
	// Channel to listen for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
