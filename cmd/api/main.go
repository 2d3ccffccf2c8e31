package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/cors"

	"github.com/sharetrip-app/sharetrip-api/internal/adapters/httpapi"
	membookingrepo "github.com/sharetrip-app/sharetrip-api/internal/adapters/memory/bookingrepo"
	memtriprepo "github.com/sharetrip-app/sharetrip-api/internal/adapters/memory/triprepo"
	memuserrepo "github.com/sharetrip-app/sharetrip-api/internal/adapters/memory/userrepo"
	"github.com/sharetrip-app/sharetrip-api/internal/adapters/postgres"
	pgbookingrepo "github.com/sharetrip-app/sharetrip-api/internal/adapters/postgres/bookingrepo"
	pgtriprepo "github.com/sharetrip-app/sharetrip-api/internal/adapters/postgres/triprepo"
	pguserrepo "github.com/sharetrip-app/sharetrip-api/internal/adapters/postgres/userrepo"
	"github.com/sharetrip-app/sharetrip-api/internal/app/bookings"
	"github.com/sharetrip-app/sharetrip-api/internal/app/trips"
	"github.com/sharetrip-app/sharetrip-api/internal/app/users"
	"github.com/sharetrip-app/sharetrip-api/internal/platform/auth"
	platformclock "github.com/sharetrip-app/sharetrip-api/internal/platform/clock"
	"github.com/sharetrip-app/sharetrip-api/internal/platform/config"
	bookingrepoport "github.com/sharetrip-app/sharetrip-api/internal/ports/out/bookingrepo"
	triprepoport "github.com/sharetrip-app/sharetrip-api/internal/ports/out/triprepo"
	userrepoport "github.com/sharetrip-app/sharetrip-api/internal/ports/out/userrepo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Auth configuration:
	// - Production: require JWT_SECRET and enforce bearer auth
	// - Local dev: set AUTH_MODE=dev to bypass JWT verification and use X-Debug-Subject
	authMode := getenv("AUTH_MODE", "jwt")
	var authMW, optionalAuthMW func(http.Handler) http.Handler
	switch authMode {
	case "dev":
		authMW = httpapi.NewDevAuthMiddleware(getenv("DEV_SUBJECT", "dev|local"))
		optionalAuthMW = httpapi.NewOptionalDevAuthMiddleware()
	default:
		if cfg.JWT.Secret == "" {
			log.Fatalf("JWT_SECRET is required when AUTH_MODE=jwt")
		}
		verifier := auth.NewVerifier(auth.Config{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL})
		authMW = httpapi.NewAuthMiddleware(verifier)
		optionalAuthMW = httpapi.NewOptionalAuthMiddleware(verifier)
	}

	clk := platformclock.NewSystemClock()

	storageBackend := getenv("STORAGE_BACKEND", "memory")
	var (
		userRepo    userrepoport.Repository
		tripRepo    triprepoport.Repository
		bookingRepo bookingrepoport.Repository
		cleanup     func()
	)

	switch storageBackend {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			dsn = cfg.Database.GetDSN()
		}
		pool, err := postgres.NewPool(context.Background(), dsn, postgres.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
			AppName:  "sharetrip-api",
		})
		if err != nil {
			log.Fatalf("invalid postgres config: %v", err)
		}
		cleanup = pool.Close

		userRepo = pguserrepo.NewRepo(pool)
		tripRepo = pgtriprepo.NewRepo(pool)
		bookingRepo = pgbookingrepo.NewRepo(pool)
	default:
		userRepo = memuserrepo.NewRepo()
		tripRepo = memtriprepo.NewRepo()
		bookingRepo = membookingrepo.NewRepo()
	}

	if cleanup != nil {
		defer cleanup()
	}

	userSvc := users.NewService(userRepo, tripRepo, bookingRepo, clk)
	tripSvc := trips.NewService(tripRepo, userRepo, bookingRepo, clk)
	bookingSvc := bookings.NewService(bookingRepo, tripRepo, clk)

	api := httpapi.NewServer(userSvc, tripSvc, bookingSvc)

	handler := httpapi.NewRouter(api, httpapi.RouterOptions{
		AuthMiddleware:         authMW,
		OptionalAuthMiddleware: optionalAuthMW,
		CORS: cors.New(cors.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Debug-Subject"},
		}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("api listening on :%s (auth=%s storage=%s)", cfg.Server.Port, authMode, storageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
