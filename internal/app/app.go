package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/geoduel/internal/config"
	"github.com/riskibarqy/geoduel/internal/domain/location"
	"github.com/riskibarqy/geoduel/internal/domain/match"
	"github.com/riskibarqy/geoduel/internal/domain/player"
	"github.com/riskibarqy/geoduel/internal/domain/rating"
	"github.com/riskibarqy/geoduel/internal/domain/round"
	"github.com/riskibarqy/geoduel/internal/infrastructure/ephemeral"
	"github.com/riskibarqy/geoduel/internal/infrastructure/notify"
	cacherepo "github.com/riskibarqy/geoduel/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/geoduel/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/geoduel/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/geoduel/internal/interfaces/httpapi"
	"github.com/riskibarqy/geoduel/internal/platform/cache"
	idgen "github.com/riskibarqy/geoduel/internal/platform/id"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
	"github.com/riskibarqy/geoduel/internal/platform/resilience"
	"github.com/riskibarqy/geoduel/internal/platform/scheduler"
	"github.com/riskibarqy/geoduel/internal/usecase"
)

type repositories struct {
	players   player.Repository
	matches   match.Repository
	rounds    round.Repository
	locations location.Repository
	history   rating.Repository
}

// App owns every long-lived component of the API process.
type App struct {
	Server      *http.Server
	Scheduler   *scheduler.Scheduler
	Matchmaking *usecase.MatchmakingService

	cfg        config.Config
	logger     *logging.Logger
	db         *sqlx.DB
	redis      redis.UniversalClient
	dispatcher *notify.Dispatcher
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{cfg: cfg, logger: logger}

	repos, err := a.buildRepositories(ctx)
	if err != nil {
		a.closeClients()
		return nil, err
	}

	store, err := a.buildEphemeralStore(ctx)
	if err != nil {
		a.closeClients()
		return nil, err
	}

	sink, err := a.buildSink(ctx)
	if err != nil {
		a.closeClients()
		return nil, err
	}
	a.dispatcher, err = notify.NewDispatcher(sink, notify.DispatcherConfig{
		Workers:     cfg.NotifierWorkers,
		SendTimeout: cfg.NotifierSendTimeout,
	}, logger.Named("notify"))
	if err != nil {
		a.closeClients()
		return nil, fmt.Errorf("create notification dispatcher: %w", err)
	}

	a.Scheduler, err = scheduler.New(scheduler.Config{TaskTimeout: cfg.SchedulerTaskTimeout}, logger)
	if err != nil {
		a.closeClients()
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	roundSvc := usecase.NewRoundService(repos.matches, repos.rounds, a.dispatcher, a.Scheduler, store, usecase.RoundConfig{
		RoundTimeout:           cfg.RoundTimeout,
		RushRoundTimeout:       cfg.RushRoundTimeout,
		LockInGrace:            cfg.LockInGrace,
		OpponentUpdateThrottle: cfg.OpponentUpdateThrottle,
		SettleRetryDelay:       cfg.SettleRetryDelay,
		SettleMaxAttempts:      cfg.SettleMaxAttempts,
	}, logger.Named("round"))
	ratingSvc := usecase.NewRatingService(repos.players, repos.matches, repos.history, ids, rating.Config{
		KNewPlayer:         cfg.RatingKNewPlayer,
		KMid:               cfg.RatingKMid,
		KBase:              cfg.RatingKBase,
		NewPlayerGames:     cfg.RatingNewPlayerGames,
		MidRatingThreshold: cfg.RatingMidRatingThreshold,
		Floor:              cfg.RatingFloor,
	}, logger.Named("rating"))
	matchSvc := usecase.NewMatchService(repos.matches, repos.rounds, repos.players, repos.locations, roundSvc, ratingSvc,
		a.dispatcher, a.Scheduler, ids, usecase.MatchConfig{
			Rules: match.Rules{
				MaxHealth:        cfg.MaxHealth,
				RushRoundCap:     cfg.RushRoundCap,
				ForfeitThreshold: cfg.ForfeitThreshold,
			},
			StartDelay:     cfg.MatchStartDelay,
			NextRoundDelay: cfg.NextRoundDelay,
		}, logger.Named("match"))
	a.Matchmaking = usecase.NewMatchmakingService(store, repos.players, matchSvc, a.Scheduler, usecase.MatchmakingConfig{
		QueueTTL:          cfg.MatchmakingQueueTTL,
		LockTTL:           cfg.MatchmakingLockTTL,
		RedrainDelay:      cfg.MatchmakingRedrainDelay,
		DrainInterval:     cfg.MatchmakingDrainInterval,
		CreateConcurrency: cfg.MatchmakingCreateConcurrency,
	}, logger.Named("matchmaking"))
	playerSvc := usecase.NewPlayerService(repos.players, ids)

	handler := httpapi.NewHandler(playerSvc, matchSvc, roundSvc, ratingSvc, a.Matchmaking, logger)
	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if a.Server.Addr == "" {
		a.closeClients()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return a, nil
}

// Start begins running scheduled tasks and the periodic queue drain.
func (a *App) Start() error {
	a.Scheduler.Start()
	if err := a.Matchmaking.StartPeriodicDrain(); err != nil {
		return fmt.Errorf("start matchmaking drain: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests first, then drains timers and
// notifications before closing the backing clients.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.Scheduler.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("shutdown scheduler: %w", err))
	}

	timeout := time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = max(time.Until(deadline), 0)
	}
	if err := a.dispatcher.Close(timeout); err != nil {
		errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
	}

	errs = append(errs, a.closeClients()...)
	return errors.Join(errs...)
}

func (a *App) closeClients() []error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		a.redis = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
		a.db = nil
	}
	return errs
}

func (a *App) buildRepositories(ctx context.Context) (repositories, error) {
	var repos repositories

	switch a.cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := openPostgres(ctx, a.cfg)
		if err != nil {
			return repositories{}, err
		}
		a.db = db
		if a.cfg.DBSeedOnBoot {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				return repositories{}, fmt.Errorf("seed locations: %w", err)
			}
		}
		repos = repositories{
			players:   postgres.NewPlayerRepository(db),
			matches:   postgres.NewMatchRepository(db),
			rounds:    postgres.NewRoundRepository(db),
			locations: postgres.NewLocationRepository(db),
			history:   postgres.NewRatingHistoryRepository(db),
		}
	default:
		rounds := memory.NewRoundRepository()
		repos = repositories{
			players:   memory.NewPlayerRepository(nil),
			matches:   memory.NewMatchRepository(rounds),
			rounds:    rounds,
			locations: memory.NewLocationRepository(memory.SeedMaps(), memory.SeedLocations()),
			history:   memory.NewRatingHistoryRepository(),
		}
	}

	if a.cfg.CacheEnabled {
		store := cache.NewStore(a.cfg.CacheTTL)
		repos.locations = cacherepo.NewLocationRepository(repos.locations, store)
		repos.players = cacherepo.NewPlayerRepository(repos.players, store)
	}

	a.logger.Info("storage ready", "backend", a.cfg.StorageBackend, "cache_enabled", a.cfg.CacheEnabled)
	return repos, nil
}

func (a *App) buildEphemeralStore(ctx context.Context) (usecase.EphemeralStore, error) {
	if a.cfg.EphemeralBackend != config.EphemeralRedis {
		return cache.NewEphemeral(cache.NewStore(0)), nil
	}

	client, err := a.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	return ephemeral.NewRedisStore(client, ephemeral.RedisStoreConfig{
		KeyPrefix: a.cfg.RedisKeyPrefix,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          a.cfg.RedisCircuitEnabled,
			FailureThreshold: a.cfg.RedisCircuitFailureCount,
			OpenTimeout:      a.cfg.RedisCircuitOpenTimeout,
			HalfOpenMaxReq:   a.cfg.RedisCircuitHalfOpenMaxReq,
		},
	}, a.logger.Named("redis")), nil
}

func (a *App) buildSink(ctx context.Context) (notify.Sink, error) {
	if a.cfg.NotifierBackend != config.NotifierRedis {
		return notify.NewLogSink(a.logger.Named("events")), nil
	}

	client, err := a.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	return notify.NewRedisSink(client, a.cfg.NotifierChannelPrefix), nil
}

// redisClient lazily opens the one client shared by the queue store and
// the event sink.
func (a *App) redisClient(ctx context.Context) (redis.UniversalClient, error) {
	if a.redis != nil {
		return a.redis, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", a.cfg.RedisAddr, err)
	}

	a.redis = client
	a.logger.Info("redis connected", "addr", a.cfg.RedisAddr, "db", a.cfg.RedisDB)
	return client, nil
}
