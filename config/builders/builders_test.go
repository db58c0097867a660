package builders

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merobazar/recsys/config"
	"github.com/merobazar/recsys/core"
	"github.com/merobazar/recsys/pipeline"
	"github.com/merobazar/recsys/recall"
	"github.com/merobazar/recsys/service"
)

const homeFeed = `
pipeline:
  name: home_feed
  nodes:
    - type: recall.hybrid
      config: {collaborative_weight: 0.6, content_weight: 0.4}
    - type: filter.listing
      config: {active_only: true, exclude_owned: true}
    - type: filter.expr
      config: {expr: 'item.score >= 0.4'}
    - type: rerank.topn
      config: {n: 2}
`

func newService(t *testing.T) *service.Service {
	t.Helper()
	ctx := context.Background()
	svc, err := service.Open(ctx, config.Default(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	require.NoError(t, svc.UpsertListings(ctx,
		core.Listing{ID: "i1", OwnerID: "seller", Description: "red leather jacket", Active: true},
		core.Listing{ID: "i2", OwnerID: "seller", Description: "red leather bag", Active: true},
		core.Listing{ID: "i3", OwnerID: "seller", Description: "brass desk lamp", Active: true},
		core.Listing{ID: "i4", OwnerID: "u1", Description: "red leather wallet", Active: true},
	))
	for _, in := range [][3]string{
		{"u1", "i1", "view"},
		{"u1", "i2", "cart"},
		{"u2", "i1", "purchase"},
		{"u2", "i3", "view"},
		{"u2", "i4", "view"},
	} {
		_, err := svc.RecordInteraction(ctx, in[0], in[1], in[2])
		require.NoError(t, err)
	}
	return svc
}

func TestInstallRegistersBuiltins(t *testing.T) {
	Install(Deps{})
	types := config.SupportedTypes()
	for _, want := range []string{
		"recall.hybrid", "recall.popular", "recall.fanout",
		"filter", "filter.listing", "filter.expr", "filter.blacklist", "filter.interacted",
		"rerank.topn", "rerank.diversity",
	} {
		assert.Contains(t, types, want)
	}
}

func TestHomeFeedPipeline(t *testing.T) {
	svc := newService(t)
	Install(FromService(svc))

	cfg, err := pipeline.ParseYAML([]byte(homeFeed))
	require.NoError(t, err)
	require.NoError(t, config.ValidatePipelineConfig(cfg))

	p, err := cfg.BuildPipeline(config.DefaultFactory())
	require.NoError(t, err)
	require.Len(t, p.Nodes, 4)

	items, err := p.Run(context.Background(), &core.RecommendContext{UserID: "u1", Limit: 10}, nil)
	require.NoError(t, err)
	ids := core.ItemIDs(items)
	assert.LessOrEqual(t, len(ids), 2)
	assert.NotEmpty(t, ids)
	assert.NotContains(t, ids, "i4", "own listing")
	for _, it := range items {
		assert.GreaterOrEqual(t, it.Score, 0.4)
	}
}

func TestHybridBuilderZeroContentWeight(t *testing.T) {
	svc := newService(t)
	node, err := FromService(svc).buildHybrid(map[string]interface{}{"collaborative_weight": 1, "content_weight": 0})
	require.NoError(t, err)
	h := node.(*recall.Hybrid)
	assert.Equal(t, 1.0, h.CollaborativeWeight)
	assert.Equal(t, 0.0, h.ContentWeight)
	assert.NotSame(t, svc.Hybrid, h)
}

func TestFanoutWithPopular(t *testing.T) {
	svc := newService(t)
	deps := FromService(svc)

	node, err := deps.buildFanout(map[string]interface{}{
		"sources":        []interface{}{"hybrid", map[string]interface{}{"type": "popular", "window_days": 7}},
		"merge_strategy": "first",
	})
	require.NoError(t, err)

	items, err := node.Process(context.Background(), &core.RecommendContext{UserID: "newbie", Limit: 3}, nil)
	require.NoError(t, err)
	ids := core.ItemIDs(items)
	require.NotEmpty(t, ids)
	assert.Equal(t, "i1", ids[0], "popular fills in for cold users")
}

func TestBuilderErrors(t *testing.T) {
	deps := Deps{}
	tests := []struct {
		name  string
		build pipeline.NodeBuilder
		cfg   map[string]interface{}
	}{
		{"hybrid without deps", deps.buildHybrid, nil},
		{"popular without deps", deps.buildPopular, nil},
		{"hybrid all weights zero", Deps{Hybrid: &recall.Hybrid{}}.buildHybrid, map[string]interface{}{"collaborative_weight": 0, "content_weight": 0}},
		{"fanout without sources", deps.buildFanout, map[string]interface{}{}},
		{"fanout bad merge", deps.buildFanout, map[string]interface{}{"sources": []interface{}{}, "merge_strategy": "max"}},
		{"fanout unknown source", deps.buildFanout, map[string]interface{}{"sources": []interface{}{"ann"}}},
		{"expr missing", deps.single("expr"), map[string]interface{}{}},
		{"expr invalid", deps.single("expr"), map[string]interface{}{"expr": "item.score >>> 1"}},
		{"listing without catalog", deps.single("listing"), nil},
		{"interacted bad kind", Deps{Interactions: fakeLog{}}.single("interacted"), map[string]interface{}{"kinds": []interface{}{"like"}}},
		{"unknown filter", deps.buildFilterNode, map[string]interface{}{"filters": []interface{}{map[string]interface{}{"type": "geo"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build(tt.cfg)
			assert.Error(t, err)
		})
	}
}

type fakeLog struct{ core.InteractionLog }

func TestDiversityAndTopN(t *testing.T) {
	n, err := buildTopN(map[string]interface{}{"n": 3})
	require.NoError(t, err)
	assert.Equal(t, "rerank.topn", n.Name())

	d, err := Deps{}.buildDiversity(map[string]interface{}{"max_per_category": 2})
	require.NoError(t, err)
	assert.Equal(t, "rerank.diversity", d.Name())
}
