package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/merobazar/recsys/core"
)

type fixedNode struct {
	name string
	ids  []string
	err  error
}

func (n *fixedNode) Name() string { return n.name }
func (n *fixedNode) Kind() Kind   { return KindRecall }
func (n *fixedNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	for _, id := range n.ids {
		items = append(items, core.NewItem(id))
	}
	return items, nil
}

func TestPipelineRun(t *testing.T) {
	p := &Pipeline{Nodes: []Node{
		&fixedNode{name: "a", ids: []string{"i1"}},
		&fixedNode{name: "b", ids: []string{"i2"}},
	}}
	got, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ids := core.ItemIDs(got); len(ids) != 2 || ids[0] != "i1" || ids[1] != "i2" {
		t.Fatalf("got %v", ids)
	}

	boom := errors.New("boom")
	p.Nodes = append(p.Nodes, &fixedNode{name: "c", err: boom})
	_, err = p.Run(context.Background(), &core.RecommendContext{}, nil)
	if !errors.Is(err, boom) || !strings.HasPrefix(err.Error(), "c:") {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildPipelineFromYAML(t *testing.T) {
	cfg, err := ParseYAML([]byte(`
pipeline:
  name: demo
  nodes:
    - type: fixed
      config:
        ids: [x]
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pipeline.Name != "demo" || len(cfg.Pipeline.Nodes) != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	f := NewNodeFactory()
	f.Register("fixed", func(c map[string]interface{}) (Node, error) {
		raw, _ := c["ids"].([]interface{})
		ids := make([]string, 0, len(raw))
		for _, v := range raw {
			ids = append(ids, v.(string))
		}
		return &fixedNode{name: "fixed", ids: ids}, nil
	})
	p, err := cfg.BuildPipeline(f)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "demo" {
		t.Fatalf("name = %q", p.Name)
	}
	got, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil || len(got) != 1 || got[0].ID != "x" {
		t.Fatalf("got %v, err %v", got, err)
	}

	cfg.Pipeline.Nodes[0].Type = "unknown"
	if _, err := cfg.BuildPipeline(f); err == nil {
		t.Fatal("expected unknown node type error")
	}
}

func TestPipelineLogsNodes(t *testing.T) {
	var buf bytes.Buffer
	p := &Pipeline{
		Name:   "feed",
		Nodes:  []Node{&fixedNode{name: "seed", ids: []string{"i1", "i2"}}},
		Logger: zerolog.New(&buf).Level(zerolog.DebugLevel),
	}
	if _, err := p.Run(context.Background(), &core.RecommendContext{}, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`"pipeline":"feed"`, `"node":"seed"`, `"kind":"recall"`, `"in":0`, `"out":2`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %s", out, want)
		}
	}
}

func TestPipelineStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Nodes: []Node{&fixedNode{name: "seed", ids: []string{"i1"}}}}
	if _, err := p.Run(ctx, &core.RecommendContext{}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "p.json")
	if err := os.WriteFile(jsonPath, []byte(`{"pipeline":{"name":"j","nodes":[{"type":"fixed"}]}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(jsonPath)
	if err != nil || cfg.Pipeline.Name != "j" || len(cfg.Pipeline.Nodes) != 1 {
		t.Fatalf("cfg %+v err %v", cfg, err)
	}

	yamlPath := filepath.Join(dir, "p.yml")
	if err := os.WriteFile(yamlPath, []byte("pipeline:\n  name: y\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(yamlPath)
	if err != nil || cfg.Pipeline.Name != "y" {
		t.Fatalf("cfg %+v err %v", cfg, err)
	}
	if _, err := cfg.BuildPipeline(NewNodeFactory()); err == nil {
		t.Fatal("expected error for pipeline without nodes")
	}

	if _, err := Load(filepath.Join(dir, "p.toml")); err == nil {
		t.Fatal("expected read error")
	}
	tomlPath := filepath.Join(dir, "q.toml")
	_ = os.WriteFile(tomlPath, []byte("x"), 0o600)
	if _, err := Load(tomlPath); err == nil {
		t.Fatal("expected unsupported extension error")
	}
}
