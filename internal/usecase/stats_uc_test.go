//go:build !integration

// File: internal/usecase/stats_uc_test.go
package usecase

import (
	"context"
	"testing"
	"time"

	"smm-storefront/internal/domain/model"
)

func TestStatsUC(t *testing.T) {
	ctx := context.Background()
	repo := newMemOrderRepo()
	seedOrder(t, repo, "a", model.OrderStatusProcessing, time.Now())
	seedOrder(t, repo, "b", model.OrderStatusCompleted, time.Now())
	seedOrder(t, repo, "c", model.OrderStatusCompleted, time.Now())
	seedOrder(t, repo, "d", model.OrderStatusFailedSubmission, time.Now())
	uc := NewStatsUseCase(repo)

	t.Run("should count orders per status", func(t *testing.T) {
		totals, err := uc.Totals(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if totals[model.OrderStatusCompleted] != 2 {
			t.Errorf("completed = %d, want 2", totals[model.OrderStatusCompleted])
		}
		if totals[model.OrderStatusProcessing] != 1 || totals[model.OrderStatusFailedSubmission] != 1 {
			t.Errorf("unexpected totals: %v", totals)
		}
	})

	t.Run("should sum revenue over delivered orders only", func(t *testing.T) {
		week, _, _, err := uc.Revenue(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		// three delivered-or-delivering orders at 999 minor units each
		if week != 3*999 {
			t.Errorf("week revenue = %d, want %d", week, 3*999)
		}
	})
}
