package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/happyloop/vendbot/internal/api/handlers"
	"github.com/happyloop/vendbot/internal/api/middleware"
	"github.com/happyloop/vendbot/internal/config"
	"github.com/happyloop/vendbot/internal/intent"
	"github.com/happyloop/vendbot/internal/logger"
	"github.com/happyloop/vendbot/internal/store"
	"github.com/happyloop/vendbot/internal/vending"
)

func main() {
	// Parse command-line flags
	var (
		addr = flag.String("addr", "", "HTTP listen address (overrides HTTP_ADDR env)")
		dsn  = flag.String("dsn", "", "SQLite DSN (overrides DATABASE_DSN env)")
		seed = flag.Bool("seed", false, "Seed the initial catalog if the database is empty")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	cfg := config.Load()
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *dsn != "" {
		cfg.DatabaseDSN = *dsn
	}

	ctx := context.Background()

	// Open datastore and run migrations
	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", cfg.DatabaseDSN).Msg("Failed to open datastore")
	}

	if *seed {
		inserted, err := store.Seed(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed catalog")
		}
		if inserted > 0 {
			log.Info().Int("products", inserted).Msg("Seeded initial catalog")
		}
	}

	products := store.NewGormProductRepository(db)
	ledger := store.NewGormTransactionRepository(db)
	committer := store.NewGormPurchaseCommitter(db)

	// Pick the extractor: Gemini when a credential is configured, keyword
	// rules otherwise.
	var extractor vending.Extractor
	if cfg.GeminiAPIKey != "" {
		gem, err := intent.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, products, vending.DefaultAliases, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini extractor")
		}
		extractor = gem
		log.Info().Str("model", cfg.GeminiModel).Msg("Using Gemini intent extractor")
	} else {
		extractor = intent.NewRules(catalogNames(ctx, products), vending.DefaultAliases)
		log.Warn().Msg("No GEMINI_API_KEY configured - using rule-based intent extractor")
	}

	resolver := vending.NewResolver(products, nil)
	machine := vending.NewMachine(extractor, resolver, products, ledger, committer, log)

	// Initialize handlers
	vendingHandler := handlers.NewVendingHandler(machine, log)
	productsHandler := handlers.NewProductsHandler(products, machine, log)
	transactionsHandler := handlers.NewTransactionsHandler(ledger, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			vendingHandler.Chat(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			productsHandler.Available(w, r)
		case http.MethodPost:
			productsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/products/all", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			productsHandler.ListAll(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/products/low-stock", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			productsHandler.LowStock(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/products/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/products/")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(rest, "/restock"):
			productID := strings.TrimSuffix(rest, "/restock")
			if productID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Product ID is required")
				return
			}
			productsHandler.Restock(w, r, productID)
		case r.Method == http.MethodDelete && rest != "" && !strings.Contains(rest, "/"):
			productsHandler.Deactivate(w, r, rest)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/transactions/recent", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.Recent(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/transactions/summary/daily", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.DailySummary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/transactions/analytics/popular", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.Popular(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/transactions/analytics/hourly", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.Hourly(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "operational",
			"message": "Vending machine ready to serve!",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// catalogNames loads the canonical product names for the rule-based
// extractor's vocabulary. The catalog being unreadable at startup is not
// fatal; the alias table alone still resolves the common cases.
func catalogNames(ctx context.Context, products store.ProductRepository) []string {
	list, err := products.ListAvailable(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(list))
	for _, p := range list {
		names = append(names, p.Name)
	}
	return names
}
