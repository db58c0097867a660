// Package feature 把上架商品的文本与类目属性转为 TF-IDF 特征向量。
package feature

import "github.com/merobazar/recsys/core"

// Space 是一次构建的商品特征空间，与商品列表一一对齐。
type Space struct {
	IDs     []string
	Index   map[string]int
	Vectors []map[string]float64

	vectorizer *Vectorizer
}

// BuildSpace 只对 Active 商品构建向量；没有描述的商品依然参与（其他字段有贡献）。
// maxFeatures <= 0 时使用默认词表上限。
func BuildSpace(listings []core.Listing, maxFeatures int) *Space {
	tok := NewTokenizer()
	s := &Space{
		Index:      make(map[string]int),
		vectorizer: &Vectorizer{MaxFeatures: maxFeatures},
	}
	docs := make([][]string, 0, len(listings))
	for _, l := range listings {
		if !l.Active {
			continue
		}
		if _, dup := s.Index[l.ID]; dup {
			continue
		}
		s.Index[l.ID] = len(s.IDs)
		s.IDs = append(s.IDs, l.ID)
		docs = append(docs, tok.Tokenize(Document(l)))
	}

	s.vectorizer.Fit(docs)
	s.Vectors = make([]map[string]float64, len(docs))
	for i, doc := range docs {
		s.Vectors[i] = s.vectorizer.Transform(doc)
	}
	return s
}

// Vector 返回商品的特征向量；商品不在空间中时 ok=false。
func (s *Space) Vector(id string) (map[string]float64, bool) {
	idx, ok := s.Index[id]
	if !ok {
		return nil, false
	}
	return s.Vectors[idx], true
}

// Len 返回空间中的商品数。
func (s *Space) Len() int {
	if s == nil {
		return 0
	}
	return len(s.IDs)
}

// Vocabulary 返回本空间使用的词表。
func (s *Space) Vocabulary() []string {
	return s.vectorizer.Vocabulary()
}
