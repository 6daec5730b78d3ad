package matching

import (
	"testing"

	"github.com/folio-labs/bindery-core/internal/core/domain"
)

func TestSelectMatch_ThresholdBoundary(t *testing.T) {
	const threshold = 45

	below := []Result{{Book: domain.Book{ID: 1}, Score: threshold - 1}}
	if _, ok := SelectMatch(below, threshold); ok {
		t.Errorf("score %d accepted at threshold %d", threshold-1, threshold)
	}

	at := []Result{{Book: domain.Book{ID: 1}, Score: threshold}}
	if _, ok := SelectMatch(at, threshold); !ok {
		t.Errorf("score %d rejected at threshold %d", threshold, threshold)
	}
}

func TestSelectMatch_HighestWins(t *testing.T) {
	results := []Result{
		{Book: domain.Book{ID: 1}, Score: 50},
		{Book: domain.Book{ID: 2}, Score: 120},
		{Book: domain.Book{ID: 3}, Score: 80},
	}

	best, ok := SelectMatch(results, 45)
	if !ok {
		t.Fatal("expected a match")
	}
	if best.Book.ID != 2 {
		t.Errorf("selected book %d, want 2", best.Book.ID)
	}
}

func TestSelectMatch_StableTieBreak(t *testing.T) {
	results := []Result{
		{Book: domain.Book{ID: 7}, Score: 90},
		{Book: domain.Book{ID: 8}, Score: 90},
	}

	best, ok := SelectMatch(results, 45)
	if !ok {
		t.Fatal("expected a match")
	}
	if best.Book.ID != 7 {
		t.Errorf("tie must keep first retrieved candidate, got book %d", best.Book.ID)
	}
}

func TestSelectMatch_Empty(t *testing.T) {
	if _, ok := SelectMatch(nil, 45); ok {
		t.Error("empty candidate set must not match")
	}
}

func TestSelectMatch_NegativeScores(t *testing.T) {
	results := []Result{
		{Book: domain.Book{ID: 1}, Score: -40},
		{Book: domain.Book{ID: 2}, Score: -10},
	}
	if _, ok := SelectMatch(results, 45); ok {
		t.Error("negative scores must not match")
	}
}
