package feature

import (
	"math"
	"sort"
)

// Vectorizer 是 TF-IDF 向量化器。
//
// 规则：
//   - 词表按语料总词频取前 MaxFeatures 个（同频按字典序），超出的词被丢弃
//   - TF 为原始词频，IDF = ln((1+n)/(1+df)) + 1（平滑）
//   - 输出向量做 L2 归一化，因此两向量的点积即余弦相似度
type Vectorizer struct {
	// MaxFeatures 词表上限，<= 0 时默认 1000
	MaxFeatures int

	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// Fit 从分好词的语料学习词表与 IDF。
func (v *Vectorizer) Fit(docs [][]string) {
	maxFeatures := v.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = 1000
	}

	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			termFreq[tok]++
			if _, ok := seen[tok]; !ok {
				docFreq[tok]++
				seen[tok] = struct{}{}
			}
		}
	}

	candidates := make([]string, 0, len(termFreq))
	for term := range termFreq {
		candidates = append(candidates, term)
	}
	sort.Slice(candidates, func(i, j int) bool {
		fi, fj := termFreq[candidates[i]], termFreq[candidates[j]]
		if fi != fj {
			return fi > fj
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > maxFeatures {
		candidates = candidates[:maxFeatures]
	}
	sort.Strings(candidates)

	n := float64(len(docs))
	v.terms = candidates
	v.vocabulary = make(map[string]int, len(candidates))
	v.idf = make([]float64, len(candidates))
	for i, term := range candidates {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
}

// Transform 把词元转为稀疏 TF-IDF 向量（key 为词）。词表外的词被忽略。
func (v *Vectorizer) Transform(tokens []string) map[string]float64 {
	out := make(map[string]float64)
	for _, tok := range tokens {
		if _, ok := v.vocabulary[tok]; ok {
			out[tok]++
		}
	}
	var sum float64
	for term, tf := range out {
		w := tf * v.idf[v.vocabulary[term]]
		out[term] = w
		sum += w * w
	}
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for term := range out {
		out[term] /= norm
	}
	return out
}

// Vocabulary 返回按字典序排列的词表。
func (v *Vectorizer) Vocabulary() []string {
	return v.terms
}

// IDF 返回词的 IDF；词表外返回 0, false。
func (v *Vectorizer) IDF(term string) (float64, bool) {
	idx, ok := v.vocabulary[term]
	if !ok {
		return 0, false
	}
	return v.idf[idx], true
}
