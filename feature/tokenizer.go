package feature

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/merobazar/recsys/core"
)

// 与常见 TF-IDF 实现一致：至少两个字符的词元，单字符被忽略。
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenizer 负责把文本切成小写、NFKC 归一化后的词元，并去除停用词。
type Tokenizer struct {
	// StopWords 为 nil 时使用 EnglishStopWords
	StopWords map[string]struct{}
}

// NewTokenizer 创建一个使用英文停用词的 Tokenizer。
func NewTokenizer() *Tokenizer {
	return &Tokenizer{StopWords: EnglishStopWords}
}

// Tokenize 切分文本，可并发调用。
func (t *Tokenizer) Tokenize(text string) []string {
	stop := t.StopWords
	if stop == nil {
		stop = EnglishStopWords
	}
	normalized := cases.Fold().String(norm.NFKC.String(text))
	raw := tokenPattern.FindAllString(normalized, -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, ok := stop[tok]; ok {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Document 把商品的文本/类目属性拼接为一篇文档：
// 名称、描述、品牌、颜色、成色代码、类目名。缺失字段贡献空串。
func Document(l core.Listing) string {
	fields := []string{l.Name, l.Description, l.Brand, l.Color, l.Condition, l.CategoryName}
	return strings.Join(fields, " ")
}
