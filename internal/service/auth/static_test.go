package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/fdp/internal/domain"
)

func TestStaticService_Verify(t *testing.T) {
	svc := NewStaticService()
	svc.Register("token-1", domain.Actor{ID: "c1", Name: "Buyer", Role: domain.ActorRoleCustomer})

	actor, err := svc.Verify(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if actor.ID != "c1" || actor.Role != domain.ActorRoleCustomer {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestStaticService_VerifyRejects(t *testing.T) {
	svc := NewStaticService()
	svc.Register("token-1", domain.Actor{ID: "c1", Role: domain.ActorRoleCustomer})

	for _, token := range []string{"", "unknown"} {
		if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("token %q: expected ErrTokenInvalid, got %v", token, err)
		}
	}
}
