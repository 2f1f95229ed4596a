// Package config 提供从 YAML/JSON 配置构建 Pipeline 的默认 Node 工厂。
package config

import (
	"fmt"
	"time"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/filter"
	"github.com/rushteam/cfkit/pipeline"
	"github.com/rushteam/cfkit/pkg/conv"
	"github.com/rushteam/cfkit/recall"
	"github.com/rushteam/cfkit/rerank"
	"github.com/rushteam/cfkit/similarity"
)

// Deps 是工厂构建 Node 时注入的运行时依赖。
// 配置文件描述拓扑与参数；存储等有状态依赖由调用方显式传入，
// 不依赖任何全局会话状态。
type Deps struct {
	// Interactions 交互存储，recall.usercf / recall.popular / filter owned 使用
	Interactions core.InteractionStore

	// KV 通用 KV 存储（可选），recall.popular 排行 / filter blacklist 使用
	KV core.Store
}

// DefaultFactory 返回一个包含所有内置 Node 的默认工厂。
func DefaultFactory(deps Deps) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	// 注册 Recall Nodes
	factory.Register("recall.usercf", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildUserCFNode(deps, cfg)
	})
	factory.Register("recall.popular", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildPopularNode(deps, cfg)
	})
	factory.Register("recall.fanout", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildFanoutNode(deps, cfg)
	})

	// 注册 Filter Nodes
	factory.Register("filter", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildFilterNode(deps, cfg)
	})

	// 注册 ReRank Nodes
	factory.Register("rerank.topn", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildTopNNode(cfg)
	})

	return factory
}

func buildUserCFNode(deps Deps, config map[string]interface{}) (pipeline.Node, error) {
	if deps.Interactions == nil {
		return nil, fmt.Errorf("recall.usercf requires an interaction store")
	}
	return &recall.UserCF{
		Store:           deps.Interactions,
		Metric:          similarity.MetricByName(conv.ConfigGet[string](config, "metric", "")),
		Threshold:       conv.ConfigGetFloat64(config, "threshold", 0),
		TopKNeighbors:   conv.ConfigGetInt(config, "top_k_neighbors", 0),
		TopKItems:       conv.ConfigGetInt(config, "top_k_items", 0),
		MinIntersection: conv.ConfigGetInt(config, "min_intersection", 0),
		MaxConcurrent:   conv.ConfigGetInt(config, "max_concurrent", 0),
	}, nil
}

func buildPopularNode(deps Deps, config map[string]interface{}) (pipeline.Node, error) {
	return &recall.Popular{
		Store:        deps.KV,
		Key:          conv.ConfigGet[string](config, "key", ""),
		Interactions: deps.Interactions,
		TopK:         conv.ConfigGetInt(config, "top_k", 0),
	}, nil
}

func buildFanoutNode(deps Deps, config map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := config["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet[string](sourceMap, "type", "")
		switch sourceType {
		case "usercf":
			node, err := buildUserCFNode(deps, sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, node.(*recall.UserCF))
		case "popular":
			node, err := buildPopularNode(deps, sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, node.(*recall.Popular))
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}

	fanout := &recall.Fanout{
		Sources: sources,
		Dedup:   conv.ConfigGet[bool](config, "dedup", true),
	}
	if sec := conv.ConfigGetInt(config, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt(config, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = n
	}

	return fanout, nil
}

func buildFilterNode(deps Deps, config map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := config["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet[string](filterMap, "type", "")
		switch filterType {
		case "owned":
			filters = append(filters, &filter.OwnedFilter{Store: deps.Interactions})

		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			if ids == nil {
				ids = []string{}
			}
			key := conv.ConfigGet[string](filterMap, "key", "")
			filters = append(filters, filter.NewBlacklistFilter(ids, deps.KV, key))

		case "expr":
			filters = append(filters, &filter.ExprFilter{
				Expr: conv.ConfigGet[string](filterMap, "expr", ""),
			})

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}

func buildTopNNode(config map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{
		N: conv.ConfigGetInt(config, "n", 0),
	}, nil
}
