package config

import (
	"context"
	"testing"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/pipeline"
	"github.com/rushteam/cfkit/store"
)

func newDeps(t *testing.T) Deps {
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
	return Deps{Interactions: s}
}

func TestDefaultFactory_BuildAndRun(t *testing.T) {
	deps := newDeps(t)
	factory := DefaultFactory(deps)

	var cfg pipeline.Config
	cfg.Pipeline.Name = "usercf_top5"
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{
			Type: "recall.usercf",
			Config: map[string]interface{}{
				"metric":          "tanimoto",
				"top_k_neighbors": 10,
			},
		},
		{
			Type: "filter",
			Config: map[string]interface{}{
				"filters": []interface{}{
					map[string]interface{}{"type": "owned"},
				},
			},
		},
		{
			Type:   "rerank.topn",
			Config: map[string]interface{}{"n": 5},
		},
	}

	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}

	items, err := p.Run(context.Background(), &core.RecommendContext{UserID: "101"}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != "C" {
		t.Errorf("Run() = %v, want single item C", items)
	}
}

func TestDefaultFactory_UnknownNodeType(t *testing.T) {
	factory := DefaultFactory(newDeps(t))

	if _, err := factory.Build("rank.dnn", nil); err == nil {
		t.Fatal("Build() expected error for unknown node type")
	}
}

func TestDefaultFactory_UserCFRequiresStore(t *testing.T) {
	factory := DefaultFactory(Deps{})

	if _, err := factory.Build("recall.usercf", nil); err == nil {
		t.Fatal("Build() expected error without interaction store")
	}
}

func TestDefaultFactory_Fanout(t *testing.T) {
	deps := newDeps(t)
	factory := DefaultFactory(deps)

	node, err := factory.Build("recall.fanout", map[string]interface{}{
		"dedup": true,
		"sources": []interface{}{
			map[string]interface{}{"type": "usercf"},
			map[string]interface{}{"type": "popular", "top_k": 3},
		},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	items, err := node.Process(context.Background(), &core.RecommendContext{UserID: "101"}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(items) == 0 {
		t.Error("Process() returned no items")
	}
}
