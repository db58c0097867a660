// Package store 提供 core 中存储接口的实现：
//   - MemoryStore / RedisStore 实现 core.KeyValueStore
//   - MemoryInteractionLog 实现 core.InteractionLog
//   - MemoryCatalog 实现 core.Catalog
//
// SQL 实现见子包 sqlstore。
//
// 示例：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	sims := recall.NewStoreSimilarityAdapter(kv, "sim")
package store
