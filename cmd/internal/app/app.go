package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"gymgate/cmd/identity"
	"gymgate/cmd/internal/auth/api"
	"gymgate/cmd/internal/auth/session"
	"gymgate/cmd/security/password"
)

// App is the assembled service.
type App struct {
	cfg     Config
	log     *slog.Logger
	pool    *pgxpool.Pool
	metrics *Metrics
	server  *http.Server
}

// New wires storage, auth and the HTTP server from configuration.
func New(ctx context.Context, cfg Config) (*App, error) {
	log := NewLogger(cfg)

	if err := CheckTokenHardening(log); err != nil {
		return nil, err
	}

	authCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	apiCfg, err := api.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, err
	}

	var (
		pool      *pgxpool.Pool
		users     identity.Store
		sessStore session.Store
	)
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			if err := Migrate(cfg.DatabaseURL); err != nil {
				return nil, err
			}
			log.Info("app.migrations_applied")
		}
		pool, err = OpenPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		users = identity.NewPostgresStore(pool)
		sessStore = session.NewPostgresStore(pool)
	} else {
		log.Warn("app.memory_profile", "hint", "set GYMGATE_DATABASE_URL for persistence")
		users = identity.NewMemoryStore()
		sessStore = session.NewMemoryStore()
	}

	var codec session.TokenCodec
	if authCfg.PasetoV4SecretKeyHex != "" {
		if codec, err = session.NewPasetoV4(authCfg.PasetoV4SecretKeyHex, authCfg.Issuer); err != nil {
			closePool(pool)
			return nil, err
		}
	} else if pool == nil {
		// Tokens die with the process, which is fine for a memory run.
		log.Warn("app.ephemeral_signing_key")
		codec = session.NewEphemeralPasetoV4(authCfg.Issuer)
	} else {
		closePool(pool)
		return nil, fmt.Errorf("%w: GYMGATE_AUTH_PASETO_SECRET_KEY is required with a database", ErrConfig)
	}

	svc := session.NewService(authCfg, sessStore, users, codec, log)
	metrics := NewMetrics()
	handler := api.NewHandler(apiCfg, svc, users, pwCfg, metrics.Registry, log)

	mux := newRouter(handler, metrics, pool)
	return &App{
		cfg:     cfg,
		log:     log,
		pool:    pool,
		metrics: metrics,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           Instrument(mux, log, metrics),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
	}, nil
}

func closePool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}
