package messaging

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func TestNoopClientConsumeBlocksUntilCancel(t *testing.T) {
	client := noopClient{channel: "order_created"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- client.Consume(ctx, func(context.Context, Message) error { return nil })
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("consume did not return after cancel")
	}
}

func TestKafkaClientPublishLeavesTopicToWriter(t *testing.T) {
	// The writer carries the channel topic, mirroring how the client is
	// constructed at startup. A message that sets the topic again is rejected
	// by kafka-go before any broker round trip, so every publish would fail.
	writer := &kafka.Writer{
		Addr:         kafka.TCP("127.0.0.1:1"),
		Topic:        "order_created",
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	defer writer.Close()

	client := &kafkaClient{writer: writer, channel: "order_created", logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Publish(ctx, nil, []byte(`{"order_id":1}`))
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
	if strings.Contains(err.Error(), "must not be specified") {
		t.Fatalf("message topic conflicts with writer topic: %v", err)
	}
}

func TestNoopClientPublishDropsSilently(t *testing.T) {
	client := noopClient{channel: "order_created"}

	if err := client.Publish(context.Background(), nil, []byte(`{}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Channel() != "order_created" {
		t.Fatalf("unexpected channel %s", client.Channel())
	}
}
