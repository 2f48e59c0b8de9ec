package postgres

import (
	"context"
	"testing"
	"time"
)

func TestStore_PingAndSchema(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	// EnsureSchema идемпотентен.
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
}

func TestStore_NilGuards(t *testing.T) {
	var store *Store

	if err := store.Ping(context.Background()); err == nil {
		t.Fatal("expected error for nil store ping")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("nil store close must be no-op, got %v", err)
	}
}
