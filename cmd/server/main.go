package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/minhtc/folio/internal/cache"
	"github.com/minhtc/folio/internal/db"
	"github.com/minhtc/folio/internal/handlers"
	"github.com/minhtc/folio/internal/logger"
	"github.com/minhtc/folio/internal/models"
	"github.com/minhtc/folio/internal/repositories"
	"github.com/minhtc/folio/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	zlog, err := logger.New()
	if err != nil {
		log.Fatal("failed to build logger:", err)
	}
	defer zlog.Sync()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		zlog.Fatal("JWT_SECRET is not set")
	}

	// Database connection
	config := db.NewConfig()
	database, err := db.Connect(config)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Health(); err != nil {
		zlog.Fatal("database health check failed", zap.Error(err))
	}
	if err := database.AutoMigrate(
		&models.User{},
		&models.Holding{},
		&models.Transaction{},
		&models.Snapshot{},
	); err != nil {
		zlog.Fatal("database migration failed", zap.Error(err))
	}
	zlog.Info("database connection established", zap.String("driver", config.Driver))

	// Repositories
	users := repositories.NewUserRepository(database)
	holdings := repositories.NewHoldingRepository(database)
	transactions := repositories.NewTransactionRepository(database)
	snapshots := repositories.NewSnapshotRepository(database)

	// Each concern gets its own cache lifetime
	resolveCache := cache.New[string]()
	equityCache := cache.New[services.Quote]()
	cryptoCache := cache.New[services.Quote]()
	searchCache := cache.New[[]services.SearchResult]()

	// Services
	auth := services.NewAuthService(users, secret)
	resolver := services.NewCoinGeckoResolver(resolveCache, zlog)
	equityFetcher := services.NewStooqFetcher(equityCache, zlog)
	cryptoFetcher := services.NewCoinGeckoFetcher(cryptoCache, zlog)
	valuation := services.NewValuationService(resolver, equityFetcher, cryptoFetcher, zlog)
	search := services.NewSearchService(searchCache, zlog)

	// Handlers
	secureCookies := os.Getenv("APP_ENV") == "production"
	authHandler := handlers.NewAuthHandler(auth, secureCookies, zlog)
	holdingHandler := handlers.NewHoldingHandler(holdings, zlog)
	transactionHandler := handlers.NewTransactionHandler(transactions, zlog)
	portfolioHandler := handlers.NewPortfolioHandler(holdings, transactions, valuation, zlog)
	snapshotHandler := handlers.NewSnapshotHandler(holdings, snapshots, valuation, zlog)
	priceHandler := handlers.NewPriceHandler(equityFetcher, cryptoFetcher)
	searchHandler := handlers.NewSearchHandler(search)

	// Router
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	api.HandleFunc("/auth/register", authHandler.HandleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.HandleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.HandleLogout).Methods(http.MethodPost)

	api.HandleFunc("/prices/last", priceHandler.HandleLast).Methods(http.MethodGet)
	api.HandleFunc("/search", searchHandler.HandleSearch).Methods(http.MethodGet)

	// Everything below requires a session
	authed := api.NewRoute().Subrouter()
	authed.Use(handlers.RequireAuth(auth))

	authed.HandleFunc("/holdings", holdingHandler.HandleList).Methods(http.MethodGet)
	authed.HandleFunc("/holdings", holdingHandler.HandleCreate).Methods(http.MethodPost)
	authed.HandleFunc("/holdings/{id}", holdingHandler.HandleUpdate).Methods(http.MethodPut)
	authed.HandleFunc("/holdings/{id}", holdingHandler.HandleDelete).Methods(http.MethodDelete)

	authed.HandleFunc("/transactions", transactionHandler.HandleList).Methods(http.MethodGet)
	authed.HandleFunc("/transactions", transactionHandler.HandleCreate).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/{id}", transactionHandler.HandleDelete).Methods(http.MethodDelete)

	authed.HandleFunc("/portfolio/summary", portfolioHandler.HandleSummary).Methods(http.MethodGet)

	authed.HandleFunc("/snapshots", snapshotHandler.HandleCreate).Methods(http.MethodPost)
	authed.HandleFunc("/snapshots", snapshotHandler.HandleList).Methods(http.MethodGet)

	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	router.Use(handlers.CORS(origin))

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	zlog.Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
