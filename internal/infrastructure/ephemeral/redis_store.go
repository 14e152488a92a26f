package ephemeral

import (
	"context"
	stderrors "errors"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
	"github.com/riskibarqy/geoduel/internal/platform/resilience"
)

const defaultWatchRetries = 16

// releaseScript deletes a lock key only while it still holds the caller's
// token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisStoreConfig struct {
	KeyPrefix      string
	WatchRetries   int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// RedisStore keeps the matchmaking queue and short-lived locks in redis so
// several API processes share them. Lists are stored as one JSON value per
// key and rewritten under WATCH/MULTI.
type RedisStore struct {
	client         redis.UniversalClient
	prefix         string
	watchRetries   int
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	logger         *logging.Logger
}

func NewRedisStore(client redis.UniversalClient, cfg RedisStoreConfig, logger *logging.Logger) *RedisStore {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.WatchRetries <= 0 {
		cfg.WatchRetries = defaultWatchRetries
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &RedisStore{
		client:         client,
		prefix:         cfg.KeyPrefix,
		watchRetries:   cfg.WatchRetries,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		logger:         logger,
	}
}

func (s *RedisStore) List(ctx context.Context, key string) ([]string, error) {
	var items []string
	err := s.execute(func() error {
		var err error
		items, err = readList(ctx, s.client, s.prefix+key)
		return err
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "read list %s", key)
	}
	return items, nil
}

// UpdateList retries fn until its result is written without another client
// touching the key in between. An empty result deletes the key.
func (s *RedisStore) UpdateList(ctx context.Context, key string, ttl time.Duration, fn func(current []string) []string) ([]string, error) {
	fullKey := s.prefix + key

	var out []string
	txf := func(tx *redis.Tx) error {
		current, err := readList(ctx, tx, fullKey)
		if err != nil {
			return err
		}
		next := fn(current)

		var encoded []byte
		if len(next) > 0 {
			encoded, err = sonic.Marshal(next)
			if err != nil {
				return crerr.Wrap(err, "encode list")
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(next) == 0 {
				pipe.Del(ctx, fullKey)
				return nil
			}
			pipe.Set(ctx, fullKey, encoded, ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = append([]string(nil), next...)
		return nil
	}

	err := s.execute(func() error {
		for attempt := 0; attempt < s.watchRetries; attempt++ {
			err := s.client.Watch(ctx, txf, fullKey)
			if stderrors.Is(err, redis.TxFailedErr) {
				continue
			}
			return err
		}
		return crerr.Newf("list %s kept changing after %d attempts", key, s.watchRetries)
	})
	if err != nil {
		return nil, crerr.Wrapf(err, "update list %s", key)
	}
	return out, nil
}

func (s *RedisStore) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	fullKey := s.prefix + key
	token := uuid.NewString()

	var acquired bool
	err := s.execute(func() error {
		var err error
		acquired, err = s.client.SetNX(ctx, fullKey, token, ttl).Result()
		return err
	})
	if err != nil {
		return nil, false, crerr.Wrapf(err, "acquire lock %s", key)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, s.client, []string{fullKey}, token).Err(); err != nil {
			return crerr.Wrapf(err, "release lock %s", key)
		}
		return nil
	}
	return release, true, nil
}

func (s *RedisStore) execute(fn func() error) error {
	if !s.circuitEnabled {
		return fn()
	}
	err := s.breaker.Execute(fn, isRedisFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		s.logger.Warn("redis circuit breaker rejected request", "state", s.breaker.State())
	}
	return err
}

func isRedisFailure(err error) bool {
	return err != nil && !stderrors.Is(err, redis.Nil) && !stderrors.Is(err, context.Canceled)
}

func readList(ctx context.Context, cmd redis.Cmdable, key string) ([]string, error) {
	raw, err := cmd.Get(ctx, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []string
	if err := sonic.Unmarshal(raw, &items); err != nil {
		return nil, crerr.Wrapf(err, "decode list %s", key)
	}
	return items, nil
}
