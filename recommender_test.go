package cfkit

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/similarity"
	"github.com/rushteam/cfkit/store"
)

func newTestRecommender(t *testing.T) *Recommender {
	t.Helper()
	s := store.NewMemoryInteractions()
	records := []core.Interaction{
		{UserID: "101", ItemID: "A"},
		{UserID: "101", ItemID: "B"},
		{UserID: "102", ItemID: "A"},
		{UserID: "102", ItemID: "B"},
		{UserID: "102", ItemID: "C"},
		{UserID: "103", ItemID: "C"},
		{UserID: "103", ItemID: "D"},
	}
	if err := s.Load(context.Background(), records); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return New(s)
}

func TestRecommender_Recommend(t *testing.T) {
	ctx := context.Background()
	rec := newTestRecommender(t)

	items, err := rec.Recommend(ctx, "101", 5)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// 101 的唯一邻居是 102（sim 2/3），唯一新颖候选是 C
	if len(items) != 1 {
		t.Fatalf("Recommend() returned %d items, want 1: %v", len(items), items)
	}
	if items[0].ID != "C" {
		t.Errorf("Recommend()[0].ID = %q, want C", items[0].ID)
	}
	if math.Abs(items[0].Score-2.0/3.0) > 1e-12 {
		t.Errorf("Recommend()[0].Score = %v, want 2/3", items[0].Score)
	}
}

func TestRecommender_Recommend_Deterministic(t *testing.T) {
	ctx := context.Background()
	rec := newTestRecommender(t)
	rec.MaxConcurrent = 4

	first, err := rec.Recommend(ctx, "101", 5)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := rec.Recommend(ctx, "101", 5)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: %d items, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].ID != first[j].ID || again[j].Score != first[j].Score {
				t.Fatalf("run %d: result %v differs from first %v", i, again[j], first[j])
			}
		}
	}
}

func TestRecommender_Recommend_InvalidN(t *testing.T) {
	ctx := context.Background()
	rec := newTestRecommender(t)

	for _, n := range []int{0, -3} {
		_, err := rec.Recommend(ctx, "101", n)
		if err == nil {
			t.Fatalf("Recommend(n=%d) expected error", n)
		}
		if !core.IsInvalidInput(err) {
			t.Errorf("Recommend(n=%d) error = %v, want INVALID_INPUT", n, err)
		}
	}
}

func TestRecommender_Recommend_UnknownUser(t *testing.T) {
	ctx := context.Background()
	rec := newTestRecommender(t)

	items, err := rec.Recommend(ctx, "999", 5)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Recommend(unknown) = %v, want empty", items)
	}
}

func TestRecommender_Neighbors(t *testing.T) {
	ctx := context.Background()
	rec := newTestRecommender(t)

	got, err := rec.Neighbors(ctx, "101")
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}
	want := []core.Neighbor{{UserID: "102", Score: 2.0 / 3.0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors() = %v, want %v", got, want)
	}
}

func TestRecommender_Similarity(t *testing.T) {
	ctx := context.Background()
	rec := newTestRecommender(t)

	tests := []struct {
		userA, userB string
		want         float64
	}{
		{"101", "102", 2.0 / 3.0},
		{"101", "103", 0},
		{"101", "101", 1},
	}
	for _, tt := range tests {
		got, err := rec.Similarity(ctx, tt.userA, tt.userB)
		if err != nil {
			t.Fatalf("Similarity() error = %v", err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Similarity(%s, %s) = %v, want %v", tt.userA, tt.userB, got, tt.want)
		}
	}
}

func TestRecommender_CosineMetric(t *testing.T) {
	ctx := context.Background()
	rec := newTestRecommender(t)
	rec.Metric = similarity.Cosine{}

	items, err := rec.Recommend(ctx, "101", 5)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != "C" {
		t.Fatalf("Recommend() = %v, want single item C", items)
	}
	want := 2.0 / math.Sqrt(6.0)
	if math.Abs(items[0].Score-want) > 1e-12 {
		t.Errorf("Recommend()[0].Score = %v, want %v", items[0].Score, want)
	}
}
