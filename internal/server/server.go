// Package server wires the application together: storage backend, services,
// handlers, middleware and routes. It is the composition root; main.go only
// loads config and calls Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mkarim/marketplace/internal/auth"
	"github.com/mkarim/marketplace/internal/handler"
	"github.com/mkarim/marketplace/internal/middleware"
	"github.com/mkarim/marketplace/internal/repository"
	"github.com/mkarim/marketplace/internal/repository/memory"
	sqliteRepo "github.com/mkarim/marketplace/internal/repository/sqlite"
	"github.com/mkarim/marketplace/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port int

	// Store selects the backend: "memory" (default, nothing survives a
	// restart) or "sqlite".
	Store  string
	DBPath string

	// SessionTTL expires sessions this long after creation. Zero means
	// sessions live until logout.
	SessionTTL time.Duration
}

// Server owns the router and, for the sqlite backend, the database handle it
// must close on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB // nil with the memory backend
}

// New assembles the full dependency chain: store → services → handlers →
// routes. Handlers never see storage and stores never see HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	var store repository.Store
	switch cfg.Store {
	case "", "memory":
		store = memory.New(memory.Config{SessionTTL: cfg.SessionTTL})
	case "sqlite":
		db, err := sqliteRepo.New(cfg.DBPath, sqliteRepo.WithSessionTTL(cfg.SessionTTL))
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		s.db = db
		store = db
	default:
		return nil, fmt.Errorf("unknown store %q (want memory or sqlite)", cfg.Store)
	}

	s.setupRoutes(store)
	return s, nil
}

func (s *Server) setupRoutes(store repository.Store) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(store, store, passwords, s.logger)
	userService := service.NewUserService(store, store, s.logger)
	productService := service.NewProductService(store, store, s.logger)
	cartService := service.NewCartService(store, store, s.logger)
	checkoutService := service.NewCheckoutService(store, store, store, s.logger)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	cartHandler := handler.NewCartHandler(cartService)
	purchaseHandler := handler.NewPurchaseHandler(checkoutService)

	requireAuth := middleware.RequireAuth(authService)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", authHandler.HandleLogout)
				r.Get("/me", authHandler.HandleMe)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", userHandler.HandleProfile)
			r.Put("/profile", userHandler.HandleUpdateProfile)
			r.Get("/listings", userHandler.HandleListings)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.HandleList)
			r.Get("/meta/categories", productHandler.HandleCategories)
			r.Get("/{id}", productHandler.HandleGet)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", productHandler.HandleCreate)
				r.Put("/{id}", productHandler.HandleUpdate)
				r.Delete("/{id}", productHandler.HandleDelete)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", cartHandler.HandleGet)
			r.Post("/add/{productId}", cartHandler.HandleAdd)
			r.Delete("/remove/{productId}", cartHandler.HandleRemove)
			r.Put("/update/{productId}", cartHandler.HandleUpdateQuantity)
			r.Delete("/clear", cartHandler.HandleClear)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", purchaseHandler.HandleList)
			r.Post("/checkout", purchaseHandler.HandleCheckout)
			r.Get("/{id}", purchaseHandler.HandleGet)
		})
	})
}

// Handler exposes the router, mainly so tests can drive the full stack with
// httptest without opening a port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	if s.db != nil {
		defer s.db.Close()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("store", storeName(s.config.Store)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func storeName(store string) string {
	if store == "" {
		return "memory"
	}
	return store
}
