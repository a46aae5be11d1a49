package services_test

import (
	"context"
	"testing"

	"spool/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithJobID(ctx, 42)
	ctx = services.WithStage(ctx, "video")
	ctx = services.WithSource(ctx, "/media/movie.vpy")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected job id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "video" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if source, ok := services.SourceFromContext(ctx); !ok || source != "/media/movie.vpy" {
		t.Fatalf("unexpected source: %v %v", source, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
