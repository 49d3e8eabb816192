package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bookcart/internal/backend"
	"bookcart/internal/config"
	"bookcart/internal/db"
	"bookcart/internal/httpserver"
	cartrepo "bookcart/internal/repository/cart"
	productrepo "bookcart/internal/repository/product"
	"bookcart/internal/seed"
	cartsvc "bookcart/internal/service/cart"
	productsvc "bookcart/internal/service/product"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()

	var (
		dbpool      *pgxpool.Pool
		cartBackend cartsvc.Backend
		catalog     productsvc.Catalog
	)
	switch cfg.BackendMode {
	case config.BackendMemory:
		mem := backend.NewMemory(cfg.Currency)
		for _, entry := range seed.Catalog() {
			if err := mem.AddCatalogEntry(entry); err != nil {
				logger.Fatalf("seed memory catalog: %v", err)
			}
		}
		cartBackend = mem
		catalog = mem
		logger.Printf("running with in-memory backend")
	case config.BackendPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()
		dbpool = pool
		cartBackend = cartrepo.NewPostgres(pool, cfg.Currency)
		catalog = productrepo.NewPostgres(pool, logger)
	default:
		logger.Fatalf("unknown backend mode %q", cfg.BackendMode)
	}

	manager := cartsvc.NewManager(cartBackend, logger)
	products := productsvc.New(catalog)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Carts:    manager,
		Products: products,
	}, httpserver.Options{
		CORSOrigins:  cfg.CORSOrigins,
		CookieMaxAge: cfg.CookieMaxAge,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
