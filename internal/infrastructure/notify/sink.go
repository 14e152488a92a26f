package notify

import (
	"context"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
)

// Sink delivers one event to one channel.
type Sink interface {
	Send(ctx context.Context, channel, event string, payload any) error
}

type envelope struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Payload any    `json:"payload,omitempty"`
}

// LogSink writes events to the structured log. It is the default when no
// broker is configured.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(ctx context.Context, channel, event string, payload any) error {
	s.logger.InfoContext(ctx, "event published", "channel", channel, "event", event, "payload", payload)
	return nil
}

// RedisSink publishes a JSON envelope on a redis pub/sub channel named
// prefix+channel.
type RedisSink struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSink(client redis.UniversalClient, prefix string) *RedisSink {
	return &RedisSink{client: client, prefix: prefix}
}

func (s *RedisSink) Send(ctx context.Context, channel, event string, payload any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := encodeEnvelope(buf, channel, event, payload); err != nil {
		return err
	}
	if err := s.client.Publish(ctx, s.prefix+channel, buf.String()).Err(); err != nil {
		return crerr.Wrapf(err, "publish %s to %s", event, channel)
	}
	return nil
}

func encodeEnvelope(buf *bytebufferpool.ByteBuffer, channel, event string, payload any) error {
	encoded, err := sonic.Marshal(envelope{Event: event, Channel: channel, Payload: payload})
	if err != nil {
		return crerr.Wrapf(err, "encode %s payload", event)
	}
	_, _ = buf.Write(encoded)
	return nil
}
