// Package matrix 从交互快照构建稠密的用户×商品加权矩阵。
package matrix

import "github.com/merobazar/recsys/core"

// UserItem 是一次构建的结果。索引只对本次快照有效，不可跨快照复用。
type UserItem struct {
	Values    [][]float64
	Users     []string
	Items     []string
	UserIndex map[string]int
	ItemIndex map[string]int
}

// Build 按首次出现顺序分配行/列下标，M[u][i] 为该用户对该商品所有交互强度之和。
// 空快照返回 0×0 矩阵与空映射。
func Build(interactions []core.Interaction) *UserItem {
	m := &UserItem{
		UserIndex: make(map[string]int),
		ItemIndex: make(map[string]int),
	}
	for _, in := range interactions {
		if _, ok := m.UserIndex[in.UserID]; !ok {
			m.UserIndex[in.UserID] = len(m.Users)
			m.Users = append(m.Users, in.UserID)
		}
		if _, ok := m.ItemIndex[in.ItemID]; !ok {
			m.ItemIndex[in.ItemID] = len(m.Items)
			m.Items = append(m.Items, in.ItemID)
		}
	}

	m.Values = make([][]float64, len(m.Users))
	for u := range m.Values {
		m.Values[u] = make([]float64, len(m.Items))
	}
	for _, in := range interactions {
		m.Values[m.UserIndex[in.UserID]][m.ItemIndex[in.ItemID]] += in.Strength()
	}
	return m
}

// Row 返回用户所在行；用户不在快照中时 ok=false。
func (m *UserItem) Row(userID string) ([]float64, bool) {
	idx, ok := m.UserIndex[userID]
	if !ok {
		return nil, false
	}
	return m.Values[idx], true
}

// Empty 报告矩阵是否不含任何协同信号。
func (m *UserItem) Empty() bool {
	return m == nil || len(m.Users) == 0
}

// Cell 返回 M[user][item]，任一不存在时为 0。
func (m *UserItem) Cell(userID, itemID string) float64 {
	u, ok := m.UserIndex[userID]
	if !ok {
		return 0
	}
	i, ok := m.ItemIndex[itemID]
	if !ok {
		return 0
	}
	return m.Values[u][i]
}
