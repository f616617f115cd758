package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "patitas-a-casa/docs"
	"patitas-a-casa/internal/adapters/auth/jwtauth"
	mem "patitas-a-casa/internal/adapters/storage/memory"
	pg "patitas-a-casa/internal/adapters/storage/postgres"
	"patitas-a-casa/internal/config"
	"patitas-a-casa/internal/domain/accounts"
	"patitas-a-casa/internal/domain/lostdogs"
	"patitas-a-casa/internal/domain/sightings"
	"patitas-a-casa/internal/middleware"
	"patitas-a-casa/internal/platform/logger"
	"patitas-a-casa/internal/platform/media"
	"patitas-a-casa/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Config nil => config.Default() (modo dev).
	Config *config.Config
	Logger logger.Logger

	// Opcional: si viene, usa Postgres. Si no, intenta DB_DSN y si no in-memory.
	DB *sql.DB

	// Media nil => afero en memoria.
	Media *media.Storage

	// Tokens nil => JWT HS256 con el secreto de Config.
	Tokens *jwtauth.Manager
}

type repos struct {
	accounts  accounts.Repository
	sightings sightings.Repository
	lostDogs  lostdogs.Repository
}

func NewRouter(opts Options) http.Handler {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	store := opts.Media
	if store == nil {
		store = media.NewStorage(nil, cfg.MediaURL)
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = jwtauth.NewManager(jwtauth.Config{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL, Issuer: cfg.AppName})
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))
	r.Use(metrics.Middleware)

	r.Use(middleware.AuthContext(tokens, cfg.DevAuth))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	rp := selectRepos(opts.DB, cfg, log)

	// Services por módulo
	accountsSvc := accounts.NewService(rp.accounts, tokens, store, log)
	sightingsSvc := sightings.NewService(rp.sightings, accountsSvc, store, log)
	lostDogsSvc := lostdogs.NewService(rp.lostDogs, accountsSvc, store, log)
	if loc, err := cfg.Location(); err == nil {
		lostDogsSvc.SetLocation(loc)
	} else {
		log.Warn("invalid APP_TZ, using UTC", map[string]any{"error": err})
	}

	// Al borrar una cuenta, los blobs de sus perros se limpian después del commit.
	accountsSvc.OnDelete(lostDogsSvc.OnAccountDelete)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := accountsSvc.EnsureDefaultServices(ctx); err != nil {
		log.Error("seed shelter services failed", map[string]any{"error": err})
	}

	// Rutas por módulo
	accounts.RegisterRoutes(r, accountsSvc)
	sightings.RegisterRoutes(r, sightingsSvc)
	lostdogs.RegisterRoutes(r, lostDogsSvc)

	return r
}

// selectRepos: Postgres si hay DB (explícita o por DB_DSN), si no in-memory.
func selectRepos(db *sql.DB, cfg *config.Config, log logger.Logger) repos {
	if db == nil && cfg.DBDSN != "" {
		opened, err := pg.Open(cfg.DBDSN)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err = pg.Migrate(ctx, opened); err != nil {
				_ = opened.Close()
			}
			cancel()
		}
		if err != nil {
			log.Warn("postgres unavailable, using in-memory storage", map[string]any{"error": err})
		} else {
			db = opened
		}
	}

	if db != nil {
		return repos{
			accounts:  pg.NewAccountsRepo(db),
			sightings: pg.NewSightingsRepo(db),
			lostDogs:  pg.NewLostDogsRepo(db),
		}
	}

	s := mem.NewStore()
	return repos{
		accounts:  s.Accounts(),
		sightings: s.Sightings(),
		lostDogs:  s.LostDogs(),
	}
}
