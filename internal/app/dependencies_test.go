package app

import (
	"context"
	"testing"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

func TestNewDependencies_InMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdminToken = "dev-admin"

	deps, err := NewDependencies(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("build dependencies: %v", err)
	}
	defer deps.Close()

	if deps.Orders == nil || deps.Stock == nil || deps.Pricing == nil || deps.Health == nil {
		t.Fatalf("incomplete dependency graph: %+v", deps)
	}

	actor, err := deps.Auth.Verify(context.Background(), "dev-admin")
	if err != nil {
		t.Fatalf("verify admin token: %v", err)
	}
	if actor.Role != domain.ActorRoleAdmin {
		t.Fatalf("expected admin actor, got %+v", actor)
	}

	if _, err := deps.Auth.Verify(context.Background(), "unknown"); err == nil {
		t.Fatal("expected error for unknown token")
	}
}

func TestNewDependencies_WithoutAdminToken(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("build dependencies: %v", err)
	}
	defer deps.Close()

	if _, err := deps.Auth.Verify(context.Background(), "anything"); err == nil {
		t.Fatal("expected empty token table")
	}
}

func TestDependencies_CloseIsSafe(t *testing.T) {
	var deps *Dependencies
	deps.Close()

	built, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("build dependencies: %v", err)
	}
	built.Close()
	built.Close()
}
