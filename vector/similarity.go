// Package vector 提供向量相似度与 TopK 选择等纯计算工具。
package vector

import (
	"math"
	"sort"
)

// Norm 返回 L2 范数。
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize 原地做 L2 归一化；零向量保持不变。
func Normalize(v []float64) {
	n := Norm(v)
	if n == 0 {
		return
	}
	for i := range v {
		v[i] /= n
	}
}

// Dot 返回点积，长度不同时按较短的计算。
func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Cosine 计算余弦相似度；任一为零向量时返回 0。
func Cosine(a, b []float64) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// CosineSparse 计算稀疏向量（map 表示）的余弦相似度。
func CosineSparse(a, b map[string]float64) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var dot, normA, normB float64
	for k, va := range a {
		normA += va * va
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Scored 是带分数的 ID。
type Scored struct {
	ID    string
	Score float64
}

// TopK 按分数降序稳定排序并截取前 k 个；k <= 0 时不截断。
// 同分保持输入顺序。
func TopK(in []Scored, k int) []Scored {
	out := make([]Scored, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// RankMap 把 map 分数转为按分数降序、同分按 ID 升序的列表，只保留 score > 0 的条目。
func RankMap(scores map[string]float64) []Scored {
	out := make([]Scored, 0, len(scores))
	for id, s := range scores {
		if s > 0 {
			out = append(out, Scored{ID: id, Score: s})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}
