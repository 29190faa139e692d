package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"carton-service/internal/config"
	"carton-service/internal/db"
	"carton-service/internal/events"
	"carton-service/internal/httpserver"
	cartrepo "carton-service/internal/repository/cart"
	userrepo "carton-service/internal/repository/user"
	cartsvc "carton-service/internal/service/cart"
	"carton-service/internal/service/session"
	usersvc "carton-service/internal/service/user"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	sessions := session.NewManager(cfg.SessionTTL)
	bus := events.NewBus()

	cartRepo := cartrepo.NewPostgres(dbpool)
	cartService := cartsvc.New(cartRepo, sessions, logger, cfg.DefaultCurrency)
	userRepo := userrepo.NewPostgres(dbpool)
	userService := usersvc.New(userRepo, bus)

	// Merge the anonymous cart into the user's cart after every login.
	bus.SubscribeLogin(func(ctx context.Context, ev events.UserLoggedIn) {
		if ev.SessionToken == "" {
			return
		}
		results, err := cartService.MergeUserCart(ctx, ev.SessionToken, ev.UserID)
		if err != nil {
			logger.Printf("merge cart for user %s: %v", ev.UserID, err)
			return
		}
		for _, r := range results {
			if r.Err != nil {
				logger.Printf("merge cart for user %s: line %q not transferred: %v", ev.UserID, r.Title, r.Err)
			}
		}
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:  cartService,
		UserSvc:  userService,
		Sessions: sessions,
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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
