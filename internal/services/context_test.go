package services_test

import (
	"context"
	"testing"

	"cinesearch/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithTitleID(ctx, "s42")
	ctx = services.WithOperation(ctx, "search")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.TitleIDFromContext(ctx); !ok || id != "s42" {
		t.Fatalf("unexpected title id: %v %v", id, ok)
	}
	if op, ok := services.OperationFromContext(ctx); !ok || op != "search" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithOperation(ctx, "")
	if _, ok := services.OperationFromContext(ctx); ok {
		t.Fatal("expected no operation value")
	}
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := services.EnsureRequestID(context.Background())
	if id == "" {
		t.Fatal("expected generated request id")
	}
	again, same := services.EnsureRequestID(ctx)
	if same != id {
		t.Fatalf("expected existing id %q to be kept, got %q", id, same)
	}
	if got, _ := services.RequestIDFromContext(again); got != id {
		t.Fatalf("context lost request id: %q", got)
	}
}
