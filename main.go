package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pivoLogAPI/handlers"
	"pivoLogAPI/internal/notification"
	"pivoLogAPI/middleware"
	"pivoLogAPI/services"
)

var (
	dbPool             *pgxpool.Pool
	jwtSecret          []byte
	userService        *services.UserService
	entryService       *services.EntryService
	statsService       *services.StatsService
	achievementService *services.AchievementService
	awardService       *services.AwardService
	groupService       *services.GroupService
	fcmService         *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}
	jwtSecret = []byte(secret)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
		fcmService = nil
	} else {
		log.Println("FCM push provider initialized successfully")
	}

	userService = services.NewUserService(dbPool, jwtSecret)
	entryService = services.NewEntryService(dbPool)
	statsService = services.NewStatsService(dbPool)
	achievementService = services.NewAchievementService(dbPool, fcmService)
	awardService = services.NewAwardService(dbPool)
	groupService = services.NewGroupService(dbPool)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	authHandler := handlers.NewAuthHandler(userService)
	entryHandler := handlers.NewEntryHandler(entryService, achievementService)
	statsHandler := handlers.NewStatsHandler(statsService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	groupHandler := handlers.NewGroupHandler(groupService, awardService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "pivo-log-api"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(jwtSecret))

	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	protected.HandleFunc("/auth/register-device", authHandler.RegisterDevice).Methods("POST")

	protected.HandleFunc("/entries", entryHandler.QuickAdd).Methods("POST")
	protected.HandleFunc("/entries/today", entryHandler.GetToday).Methods("GET")
	protected.HandleFunc("/entries/{id}", entryHandler.Delete).Methods("DELETE")
	protected.HandleFunc("/beers/search", entryHandler.SearchBeers).Methods("GET")

	protected.HandleFunc("/stats/me", statsHandler.MyStats).Methods("GET")
	protected.HandleFunc("/stats/user/{id}", statsHandler.UserStats).Methods("GET")
	protected.HandleFunc("/stats/leaderboard/{id}", statsHandler.Leaderboard).Methods("GET")

	protected.HandleFunc("/achievements", achievementHandler.List).Methods("GET")
	protected.HandleFunc("/achievements/summary", achievementHandler.Summary).Methods("GET")

	protected.HandleFunc("/groups", groupHandler.Create).Methods("POST")
	protected.HandleFunc("/groups", groupHandler.MyGroups).Methods("GET")
	protected.HandleFunc("/groups/join", groupHandler.Join).Methods("POST")
	protected.HandleFunc("/groups/{id}/members", groupHandler.Members).Methods("GET")
	protected.HandleFunc("/groups/{id}/leave", groupHandler.Leave).Methods("POST")
	protected.HandleFunc("/groups/{id}/awards", groupHandler.Awards).Methods("GET")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited gracefully")
}
