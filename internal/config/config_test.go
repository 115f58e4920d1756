package config

import "testing"

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Driver != "mysql" {
		t.Fatalf("expected mysql driver, got %s", cfg.Database.Driver)
	}
	if cfg.Database.Port != 3306 {
		t.Fatalf("expected default port 3306, got %d", cfg.Database.Port)
	}
	if cfg.Messaging.Channel != "order_created" {
		t.Fatalf("expected order_created channel, got %s", cfg.Messaging.Channel)
	}
	if cfg.Messaging.Driver != "redis" {
		t.Fatalf("expected redis messaging driver, got %s", cfg.Messaging.Driver)
	}
	if cfg.Database.QueryTimeout <= 0 {
		t.Fatalf("query timeout must be positive, got %v", cfg.Database.QueryTimeout)
	}
}

func TestNewReadsDatabaseEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "svc")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "orders_prod")
	t.Setenv("DB_PORT", "3307")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "svc:secret@tcp(db.internal:3307)/orders_prod?parseTime=true"
	if got := cfg.Database.WriterDSN(); got != want {
		t.Fatalf("unexpected DSN %q, want %q", got, want)
	}
	if got := cfg.Database.ReaderDSN(); got != want {
		t.Fatalf("reader DSN should match writer without a reader host, got %q", got)
	}
}

func TestNewReaderHostGetsOwnDSN(t *testing.T) {
	t.Setenv("DB_HOST", "primary")
	t.Setenv("DB_READER_HOST", "replica")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.WriterDSN() == cfg.Database.ReaderDSN() {
		t.Fatalf("expected distinct reader DSN")
	}
}

func TestNewRejectsUnknownMessagingDriver(t *testing.T) {
	t.Setenv("MESSAGING_DRIVER", "carrier-pigeon")

	if _, err := New(); err == nil {
		t.Fatalf("expected error for unknown messaging driver")
	}
}

func TestNewRejectsUnknownDatabaseDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	if _, err := New(); err == nil {
		t.Fatalf("expected error for unknown database driver")
	}
}

func TestNewRejectsMissingDatabaseName(t *testing.T) {
	t.Setenv("DB_NAME", "")

	if _, err := New(); err == nil {
		t.Fatalf("expected error for missing database name")
	}
}

func TestNewDisabledMessagingFallsBackToNoop(t *testing.T) {
	t.Setenv("MESSAGING_ENABLED", "false")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Messaging.Driver != "noop" {
		t.Fatalf("expected noop driver, got %s", cfg.Messaging.Driver)
	}
}
