package utils

import "strings"

// Label 描述一条推荐结果的来历，例如 recall_source=hybrid、fallback_reason=cold_start。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rerank / service
}

// MergeLabel 合并同名 Label。
// Value 以 '|' 累积，Source 以 ',' 累积；已出现过的片段不重复追加，
// 因此同一物品被多路召回或多次降级时标签保持稳定。
func MergeLabel(existing Label, incoming Label) Label {
	return Label{
		Value:  appendPart(existing.Value, incoming.Value, "|"),
		Source: appendPart(existing.Source, incoming.Source, ","),
	}
}

func appendPart(acc, part, sep string) string {
	switch {
	case acc == "":
		return part
	case part == "":
		return acc
	}
	for _, p := range strings.Split(acc, sep) {
		if p == part {
			return acc
		}
	}
	return acc + sep + part
}
