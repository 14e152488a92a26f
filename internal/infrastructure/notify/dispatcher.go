package notify

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
)

const defaultSendTimeout = 5 * time.Second

type DispatcherConfig struct {
	Workers     int
	SendTimeout time.Duration
}

// Dispatcher hands events to a Sink on a bounded worker pool so game
// operations never wait on delivery. Events are dropped, with a warning,
// when the pool is saturated.
type Dispatcher struct {
	sink        Sink
	pool        *ants.Pool
	sendTimeout time.Duration
	logger      *logging.Logger
}

func NewDispatcher(sink Sink, cfg DispatcherConfig, logger *logging.Logger) (*Dispatcher, error) {
	if sink == nil {
		return nil, crerr.New("notification sink is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}

	pool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, crerr.Wrap(err, "create notification worker pool")
	}

	return &Dispatcher{
		sink:        sink,
		pool:        pool,
		sendTimeout: cfg.SendTimeout,
		logger:      logger,
	}, nil
}

func (d *Dispatcher) Publish(ctx context.Context, channel, event string, payload any) {
	ctx = context.WithoutCancel(ctx)
	err := d.pool.Submit(func() {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()

		if err := d.sink.Send(sendCtx, channel, event, payload); err != nil {
			d.logger.WarnContext(ctx, "deliver event failed", "channel", channel, "event", event, "error", err)
		}
	})
	if err != nil {
		d.logger.WarnContext(ctx, "drop event", "channel", channel, "event", event, "error", err)
	}
}

// Close waits up to timeout for queued deliveries and stops the pool.
func (d *Dispatcher) Close(timeout time.Duration) error {
	if err := d.pool.ReleaseTimeout(timeout); err != nil {
		return crerr.Wrap(err, "release notification worker pool")
	}
	return nil
}
