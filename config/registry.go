package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/merobazar/recsys/pipeline"
)

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.NodeBuilder

// Registry 保存 Node 类型到构建函数的映射，并发安全。
// 进程内通常只用包级默认实例；测试或多租户场景可自行 NewRegistry。
type Registry struct {
	mu       sync.RWMutex
	builders map[string]NodeBuilder
}

func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]NodeBuilder)}
}

// Register 注册构建逻辑，同名类型后者覆盖前者；空名或 nil builder 忽略。
func (r *Registry) Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[typeName] = builder
}

// Types 返回已注册类型（排序）。
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Factory 返回当前注册表的快照，之后的 Register 不影响已返回的 factory。
func (r *Registry) Factory() *pipeline.NodeFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range r.builders {
		f.Register(typeName, builder)
	}
	return f
}

// Validate 检查配置中所有 node 类型均已注册，未注册时错误信息附带可用类型列表。
func (r *Registry) Validate(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			return fmt.Errorf("node #%d: empty type", i)
		}
		if _, ok := r.builders[nc.Type]; !ok {
			types := make([]string, 0, len(r.builders))
			for t := range r.builders {
				types = append(types, t)
			}
			sort.Strings(types)
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, types)
		}
	}
	return nil
}

var defaultRegistry = NewRegistry()

// 使用配置驱动时，需在入口处调用 builders.Install(deps) 把内置 Node 注册到默认实例。

// Register 注册到默认注册表。
func Register(typeName string, builder NodeBuilder) { defaultRegistry.Register(typeName, builder) }

// SupportedTypes 返回默认注册表中的类型。
func SupportedTypes() []string { return defaultRegistry.Types() }

// DefaultFactory 返回默认注册表的 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory { return defaultRegistry.Factory() }

// ValidatePipelineConfig 用默认注册表校验配置。
func ValidatePipelineConfig(cfg *pipeline.Config) error { return defaultRegistry.Validate(cfg) }
