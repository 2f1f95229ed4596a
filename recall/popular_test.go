package recall

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/store"
)

func TestPopular_Recall_FromInteractions(t *testing.T) {
	ctx := context.Background()
	p := &Popular{Interactions: newTestStore(t, testRecords), TopK: 3}

	items, err := p.Recall(ctx, &core.RecommendContext{UserID: "101"})
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	// A/B/C 各 2 人拥有（同数按 ID 升序），D 1 人；TopK=3
	want := []string{"A", "B", "C"}
	if len(items) != len(want) {
		t.Fatalf("Recall() returned %d items, want %d", len(items), len(want))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("Recall()[%d].ID = %q, want %q", i, items[i].ID, id)
		}
		if lbl, ok := items[i].Labels["recall_source"]; !ok || lbl.Value != "popular" {
			t.Errorf("Recall()[%d] recall_source = %v, want popular", i, items[i].Labels)
		}
	}
}

func TestPopular_Recall_FromZSet(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()

	a := store.NewKVInteractions(kv, "cf")
	if err := a.Load(ctx, testRecords); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	p := &Popular{Store: kv, Key: a.PopularKey(), TopK: 2}
	items, err := p.Recall(ctx, &core.RecommendContext{UserID: "101"})
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(items) != 2 || items[0].ID != "A" || items[1].ID != "B" {
		t.Errorf("Recall() = %v, want [A B]", items)
	}
}

func TestFanout_Process(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, testRecords)

	fanout := &Fanout{
		Sources: []Source{
			&UserCF{Store: s},
			&Popular{Interactions: s, TopK: 3},
		},
		Dedup:         true,
		Timeout:       time.Second,
		MaxConcurrent: 2,
	}

	items, err := fanout.Process(ctx, &core.RecommendContext{UserID: "101"}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	// UserCF 产出 C；Popular 产出 A/B/C；去重后 C 保留 UserCF 的（源顺序优先）
	ids := make(map[string]int)
	for _, it := range items {
		ids[it.ID]++
	}
	for id, n := range ids {
		if n > 1 {
			t.Errorf("item %s appears %d times after dedup", id, n)
		}
	}
	if _, ok := ids["C"]; !ok {
		t.Error("expected item C in fanout result")
	}
	if items[0].ID != "C" {
		t.Errorf("items[0].ID = %q, want C (usercf source first)", items[0].ID)
	}
	if items[0].Score == 0 {
		t.Error("dedup kept popular item over usercf item (score lost)")
	}
}
