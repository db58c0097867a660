package core

import (
	"fmt"
	"strings"
	"time"
)

// InteractionKind 是用户与商品的交互类型，取值封闭。
type InteractionKind uint8

const (
	KindView InteractionKind = iota + 1
	KindClick
	KindWishlist
	KindCart
	KindPurchase
)

// AllInteractionKinds 按强度升序列出所有交互类型。
var AllInteractionKinds = []InteractionKind{KindView, KindClick, KindWishlist, KindCart, KindPurchase}

// ErrInvalidInteractionKind 表示未知的交互类型，在写入时拒绝。
var ErrInvalidInteractionKind = NewDomainError(ModuleInteraction, ErrorCodeInvalidInput, "interaction: unknown kind")

// Weight 返回交互强度：view=1, click=2, wishlist=3, cart=4, purchase=5。
func (k InteractionKind) Weight() float64 {
	switch k {
	case KindView:
		return 1
	case KindClick:
		return 2
	case KindWishlist:
		return 3
	case KindCart:
		return 4
	case KindPurchase:
		return 5
	}
	return 0
}

// Valid 报告 k 是否为已定义的交互类型。
func (k InteractionKind) Valid() bool {
	return k >= KindView && k <= KindPurchase
}

func (k InteractionKind) String() string {
	switch k {
	case KindView:
		return "view"
	case KindClick:
		return "click"
	case KindWishlist:
		return "wishlist"
	case KindCart:
		return "cart"
	case KindPurchase:
		return "purchase"
	}
	return fmt.Sprintf("InteractionKind(%d)", uint8(k))
}

// ParseInteractionKind 解析交互类型字符串（大小写不敏感）。
func ParseInteractionKind(s string) (InteractionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view":
		return KindView, nil
	case "click":
		return KindClick, nil
	case "wishlist":
		return KindWishlist, nil
	case "cart":
		return KindCart, nil
	case "purchase":
		return KindPurchase, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidInteractionKind, s)
}

// MarshalText 使 InteractionKind 以字符串形式出现在 JSON/YAML 中。
func (k InteractionKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, ErrInvalidInteractionKind
	}
	return []byte(k.String()), nil
}

func (k *InteractionKind) UnmarshalText(b []byte) error {
	parsed, err := ParseInteractionKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Interaction 是一条用户-商品交互记录。
// 同一 (UserID, ItemID, Kind) 只有一行，重复记录时 Weight 累加，Timestamp 保留首次时间。
type Interaction struct {
	ID        string
	UserID    string
	ItemID    string
	Kind      InteractionKind
	Weight    float64
	Timestamp time.Time
}

// Strength 返回该交互在打分中的贡献（按类型强度，不乘累计次数）。
func (in Interaction) Strength() float64 {
	return in.Kind.Weight()
}
