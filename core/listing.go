package core

import "time"

// 商品成色代码
const (
	ConditionNew         = "new"
	ConditionUsedLikeNew = "used_like_new"
	ConditionUsedGood    = "used_good"
	ConditionUsedFair    = "used_fair"
)

// Listing 是商品目录对推荐引擎暴露的只读视图。
type Listing struct {
	ID           string
	OwnerID      string
	Name         string
	Description  string
	Brand        string
	Color        string
	Condition    string
	CategoryName string
	Active       bool
	CreatedAt    time.Time
}

// OwnedBy 报告商品是否由 userID 发布。
func (l Listing) OwnedBy(userID string) bool {
	return userID != "" && l.OwnerID == userID
}
