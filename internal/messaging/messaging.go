package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/veggie-dogs/orders/internal/config"
)

// Message represents a message consumed from the event channel.
type Message struct {
	Channel string
	Key     []byte
	Value   []byte
	Headers map[string]string
	Offset  int64
	Time    time.Time
}

// Handler processes an inbound message.
type Handler func(context.Context, Message) error

// Client is the pluggable event-channel abstraction. Publish is
// fire-and-forget from the caller's point of view: delivery is at-most-once
// and messages published while nobody listens are lost.
type Client interface {
	Publish(ctx context.Context, key []byte, value []byte) error
	Consume(ctx context.Context, handler Handler) error
	Channel() string
}

// Module wires the messaging client.
var Module = fx.Provide(NewClient)

// NewClient builds a messaging client based on configuration. Redis pub/sub
// is the default broker; kafka is available for deployments that want a
// consumer-group model instead.
func NewClient(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (Client, error) {
	if !cfg.Messaging.Enabled || cfg.Messaging.Driver == "noop" {
		logger.Info("messaging disabled; using noop client")

		return noopClient{channel: cfg.Messaging.Channel}, nil
	}

	switch cfg.Messaging.Driver {
	case "redis":
		return newRedisClient(lc, cfg, logger)
	case "kafka":
		return newKafkaClient(lc, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported messaging driver: %s", cfg.Messaging.Driver)
	}
}

// noopClient is used when messaging is disabled.
type noopClient struct {
	channel string
}

func (n noopClient) Publish(context.Context, []byte, []byte) error { return nil }
func (n noopClient) Consume(ctx context.Context, handler Handler) error {
	<-ctx.Done()
	return ctx.Err()
}
func (n noopClient) Channel() string { return n.channel }

// redisClient implements the Client over redis pub/sub. Pub/sub has no
// persistence and no acknowledgment, which matches the channel's contract.
type redisClient struct {
	client  *goredis.Client
	channel string
	logger  *zap.Logger
}

func newRedisClient(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Messaging.Redis.Addr,
		Password: cfg.Messaging.Redis.Password,
		DB:       cfg.Messaging.Redis.DB,
	})

	rc := &redisClient{client: client, channel: cfg.Messaging.Channel, logger: logger}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping redis broker: %w", err)
			}
			logger.Info("redis broker connected",
				zap.String("addr", cfg.Messaging.Redis.Addr),
				zap.String("channel", cfg.Messaging.Channel),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("closing redis broker client")

			return client.Close()
		},
	})

	return rc, nil
}

func (r *redisClient) Publish(ctx context.Context, _ []byte, value []byte) error {
	return r.client.Publish(ctx, r.channel, value).Err()
}

func (r *redisClient) Consume(ctx context.Context, handler Handler) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		_ = sub.Close()
	}()

	// Wait for the subscription confirmation so callers observe an attached
	// listener once Consume is running.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("redis subscription closed")
			}
			wrapped := Message{
				Channel: msg.Channel,
				Value:   []byte(msg.Payload),
				Time:    time.Now().UTC(),
			}
			if err := handler(ctx, wrapped); err != nil {
				r.logger.Error("message handler failed", zap.Error(err), zap.String("channel", msg.Channel))
			}
		}
	}
}

func (r *redisClient) Channel() string { return r.channel }

// kafkaClient implements the Client via kafka-go.
type kafkaClient struct {
	writer  *kafka.Writer
	reader  *kafka.Reader
	channel string
	logger  *zap.Logger
}

func (k *kafkaClient) Publish(ctx context.Context, key []byte, value []byte) error {
	// The writer is already bound to the channel topic; setting Topic on the
	// message as well makes kafka-go reject the write before any I/O.
	msg := kafka.Message{Key: key, Value: value}
	return k.writer.WriteMessages(ctx, msg)
}

func (k *kafkaClient) Consume(ctx context.Context, handler Handler) error {
	for {
		msg, err := k.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			k.logger.Error("kafka fetch failed", zap.Error(err))

			time.Sleep(time.Second)
			continue
		}

		wrapped := Message{
			Channel: msg.Topic,
			Key:     append([]byte(nil), msg.Key...),
			Value:   append([]byte(nil), msg.Value...),
			Offset:  msg.Offset,
			Time:    msg.Time,
			Headers: func() map[string]string {
				if len(msg.Headers) == 0 {
					return nil
				}
				m := make(map[string]string, len(msg.Headers))
				for _, h := range msg.Headers {
					m[h.Key] = string(h.Value)
				}
				return m
			}(),
		}

		if err := handler(ctx, wrapped); err != nil {
			k.logger.Error("message handler failed", zap.Error(err), zap.Int64("offset", msg.Offset))

			// Handler signals failure; skip commit to allow retry.
			continue
		}

		if err := k.reader.CommitMessages(ctx, msg); err != nil {
			k.logger.Warn("commit failed", zap.Error(err))

		}
	}
}

func (k *kafkaClient) Channel() string { return k.channel }

func newKafkaClient(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (Client, error) {
	channel := cfg.Messaging.Channel

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Messaging.Kafka.Brokers...),
		Topic:        channel,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		Logger:       kafkaLogger{logger: logger},
		ErrorLogger:  kafkaLogger{logger: logger},
	}

	readerConfig := kafka.ReaderConfig{
		Brokers:        cfg.Messaging.Kafka.Brokers,
		GroupID:        cfg.Messaging.ConsumerGroup,
		Topic:          channel,
		MinBytes:       cfg.Messaging.Kafka.MinBytes,
		MaxBytes:       cfg.Messaging.Kafka.MaxBytes,
		CommitInterval: cfg.Messaging.Kafka.CommitInterval,
		Dialer: &kafka.Dialer{
			Timeout:  cfg.Messaging.Kafka.ConnectTimeout,
			ClientID: cfg.Messaging.Kafka.ClientID,
		},
	}

	reader := kafka.NewReader(readerConfig)

	client := &kafkaClient{writer: writer, reader: reader, channel: channel, logger: logger}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("closing kafka client")

			if err := writer.Close(); err != nil {
				return err
			}
			return reader.Close()
		},
	})

	return client, nil
}

type kafkaLogger struct {
	logger *zap.Logger
}

func (k kafkaLogger) Printf(msg string, args ...interface{}) {
	k.logger.Sugar().Debugf(msg, args...)

}
