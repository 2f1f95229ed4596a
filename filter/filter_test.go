package filter

import (
	"context"
	"testing"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/pkg/utils"
	"github.com/rushteam/cfkit/store"
)

func newOwnedStore(t *testing.T) core.InteractionStore {
	t.Helper()
	s := store.NewMemoryInteractions()
	records := []core.Interaction{
		{UserID: "101", ItemID: "A"},
		{UserID: "101", ItemID: "B"},
	}
	if err := s.Load(context.Background(), records); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func TestOwnedFilter(t *testing.T) {
	ctx := context.Background()
	f := &OwnedFilter{Store: newOwnedStore(t)}
	rctx := &core.RecommendContext{UserID: "101"}

	tests := []struct {
		itemID string
		want   bool
	}{
		{itemID: "A", want: true},  // 已拥有
		{itemID: "C", want: false}, // 未拥有
	}
	for _, tt := range tests {
		got, err := f.ShouldFilter(ctx, rctx, core.NewItem(tt.itemID))
		if err != nil {
			t.Fatalf("ShouldFilter(%s) error = %v", tt.itemID, err)
		}
		if got != tt.want {
			t.Errorf("ShouldFilter(%s) = %v, want %v", tt.itemID, got, tt.want)
		}
	}

	// 未知用户什么都不过滤
	got, err := f.ShouldFilter(ctx, &core.RecommendContext{UserID: "999"}, core.NewItem("A"))
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if got {
		t.Error("ShouldFilter() for unknown user = true, want false")
	}
}

func TestBlacklistFilter(t *testing.T) {
	ctx := context.Background()
	f := NewBlacklistFilter([]string{"X", "Y"}, nil, "")

	if got, _ := f.ShouldFilter(ctx, nil, core.NewItem("X")); !got {
		t.Error("ShouldFilter(X) = false, want true")
	}
	if got, _ := f.ShouldFilter(ctx, nil, core.NewItem("A")); got {
		t.Error("ShouldFilter(A) = true, want false")
	}
}

func TestBlacklistFilter_FromStore(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	if err := kv.Set(ctx, "blacklist:items", []byte(`["X"]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	f := NewBlacklistFilter(nil, kv, "blacklist:items")
	if got, _ := f.ShouldFilter(ctx, nil, core.NewItem("X")); !got {
		t.Error("ShouldFilter(X) = false, want true")
	}
	if got, _ := f.ShouldFilter(ctx, nil, core.NewItem("A")); got {
		t.Error("ShouldFilter(A) = true, want false")
	}
}

func TestExprFilter(t *testing.T) {
	ctx := context.Background()
	rctx := &core.RecommendContext{UserID: "101"}

	weak := core.NewItem("A")
	weak.Score = 0.05
	weak.PutLabel("recall_source", utils.Label{Value: "usercf", Source: "recall"})

	strong := core.NewItem("B")
	strong.Score = 0.8
	strong.PutLabel("recall_source", utils.Label{Value: "usercf", Source: "recall"})

	f := &ExprFilter{Expr: `item.score < 0.1`}

	if got, err := f.ShouldFilter(ctx, rctx, weak); err != nil || !got {
		t.Errorf("ShouldFilter(weak) = (%v, %v), want (true, nil)", got, err)
	}
	if got, err := f.ShouldFilter(ctx, rctx, strong); err != nil || got {
		t.Errorf("ShouldFilter(strong) = (%v, %v), want (false, nil)", got, err)
	}

	// label 访问
	f = &ExprFilter{Expr: `label.recall_source == "usercf"`}
	if got, err := f.ShouldFilter(ctx, rctx, strong); err != nil || !got {
		t.Errorf("ShouldFilter(label expr) = (%v, %v), want (true, nil)", got, err)
	}

	// 空表达式不过滤
	f = &ExprFilter{}
	if got, err := f.ShouldFilter(ctx, rctx, weak); err != nil || got {
		t.Errorf("ShouldFilter(empty expr) = (%v, %v), want (false, nil)", got, err)
	}
}

func TestFilterNode_Process(t *testing.T) {
	ctx := context.Background()
	node := &FilterNode{Filters: []Filter{
		&OwnedFilter{Store: newOwnedStore(t)},
		NewBlacklistFilter([]string{"X"}, nil, ""),
	}}
	rctx := &core.RecommendContext{UserID: "101"}

	items := []*core.Item{
		core.NewItem("A"), // owned
		core.NewItem("C"),
		core.NewItem("X"), // blacklisted
		core.NewItem("D"),
	}

	got, err := node.Process(ctx, rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "C" || got[1].ID != "D" {
		t.Errorf("Process() = %v, want [C D]", got)
	}
}
