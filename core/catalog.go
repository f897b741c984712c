package core

import (
	"context"
	"time"
)

// 交互事件类型。训练与画像只消费其中的强信号子集
// （view / add_to_cart / wishlist / purchase）。
const (
	EventView      = "view"
	EventClick     = "click"
	EventAddToCart = "add_to_cart"
	EventWishlist  = "wishlist"
	EventPurchase  = "purchase"
	EventReview    = "review"
)

// Interaction 是一条用户-物品交互记录（外部系统产出，本核心只读）。
type Interaction struct {
	UserID     string    `json:"user_id"`
	ItemID     string    `json:"item_id"`
	EventType  string    `json:"event_type"`
	EventValue float64   `json:"event_value,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProductMeta 是内容画像所需的最小物品元数据。
// 完整的展示元数据由外部 CRUD 层解析，本核心不关心。
type ProductMeta struct {
	ID         string   `json:"id"`
	CategoryID string   `json:"category_id,omitempty"`
	Brand      string   `json:"brand,omitempty"`
	Price      float64  `json:"price,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// CatalogStore 是物品元数据的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store / 外部 CRUD）实现
//   - 遵循依赖倒置原则，避免循环依赖
type CatalogStore interface {
	// GetProduct 获取单个物品的元数据；不存在时返回 ErrStoreNotFound
	GetProduct(ctx context.Context, itemID string) (*ProductMeta, error)
}

// InteractionStore 提供用户的交互历史，用于构建内容画像。
//
// 实现：
//   - store.MemoryInteractions（测试 / 原型）
//   - store.RedisInteractions（生产）
//   - feast.InteractionStore（Feature Store 在线特征）
type InteractionStore interface {
	// ListByUser 获取用户的交互记录；eventTypes 为空表示不过滤事件类型
	ListByUser(ctx context.Context, userID string, eventTypes ...string) ([]Interaction, error)
}

// UserStateStore 提供用户当前的拥有/意向集合，用于多源聚合推荐
// 以及结果中对已拥有物品的剔除。
type UserStateStore interface {
	// RecentPurchases 按时间倒序返回最近完成的购买物品 id
	RecentPurchases(ctx context.Context, userID string, limit int) ([]string, error)

	// WishlistItems 按加入时间倒序返回心愿单物品 id
	WishlistItems(ctx context.Context, userID string, limit int) ([]string, error)

	// CartItems 按加入时间倒序返回购物车物品 id
	CartItems(ctx context.Context, userID string, limit int) ([]string, error)
}
