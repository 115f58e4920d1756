package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/veggie-dogs/orders/internal/config"
	"github.com/veggie-dogs/orders/internal/messaging"
)

type fakeClient struct {
	msgs []messaging.Message
}

func (f *fakeClient) Publish(context.Context, []byte, []byte) error { return nil }

func (f *fakeClient) Consume(ctx context.Context, handler messaging.Handler) error {
	for _, msg := range f.msgs {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeClient) Channel() string { return "order_created" }

func workerConfig(enabled bool) config.Config {
	return config.Config{
		Messaging: config.Messaging{
			Enabled: enabled,
			Channel: "order_created",
			Workers: config.Worker{Enabled: enabled, Concurrency: 1},
		},
	}
}

func TestEngineDispatchesToRegisteredHandler(t *testing.T) {
	handled := make(chan messaging.Message, 1)
	client := &fakeClient{msgs: []messaging.Message{
		{Channel: "order_created", Value: []byte(`{"order_id":7}`)},
	}}

	engine := NewEngine(Params{
		Client: client,
		Logger: zap.NewNop(),
		Config: workerConfig(true),
		Registrations: []HandlerRegistration{{
			Channel: "order_created",
			Handler: func(_ context.Context, msg messaging.Message) error {
				handled <- msg
				return nil
			},
		}},
	})

	if err := engine.start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case msg := <-handled:
		if string(msg.Value) != `{"order_id":7}` {
			t.Fatalf("unexpected payload %s", msg.Value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := engine.stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestEngineIgnoresUnregisteredChannels(t *testing.T) {
	handled := make(chan struct{}, 1)
	client := &fakeClient{msgs: []messaging.Message{
		{Channel: "something_else", Value: []byte(`{}`)},
	}}

	engine := NewEngine(Params{
		Client: client,
		Logger: zap.NewNop(),
		Config: workerConfig(true),
		Registrations: []HandlerRegistration{{
			Channel: "order_created",
			Handler: func(context.Context, messaging.Message) error {
				handled <- struct{}{}
				return nil
			},
		}},
	})

	if err := engine.start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-handled:
		t.Fatal("handler must not fire for a foreign channel")
	case <-time.After(100 * time.Millisecond):
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := engine.stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestEngineDisabledDoesNotStart(t *testing.T) {
	engine := NewEngine(Params{
		Client: &fakeClient{},
		Logger: zap.NewNop(),
		Config: workerConfig(false),
	})

	if err := engine.start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	// stop with no started workers must be a no-op.
	if err := engine.stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
