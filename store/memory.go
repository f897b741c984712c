// Package store 提供目录、交互与用户状态数据的存取实现。
// 内存实现用于开发与测试，Redis 实现用于线上共享。
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/hybrec/core"
)

// MemoryCatalog 是内存实现的商品目录。
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[string]*core.ProductMeta
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{products: make(map[string]*core.ProductMeta)}
}

func (s *MemoryCatalog) Put(p *core.ProductMeta) {
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
}

func (s *MemoryCatalog) GetProduct(_ context.Context, itemID string) (*core.ProductMeta, error) {
	s.mu.RLock()
	p, ok := s.products[itemID]
	s.mu.RUnlock()
	if !ok {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound,
			"product not found: "+itemID)
	}
	return p, nil
}

// MemoryInteractions 是内存实现的交互历史存储。
type MemoryInteractions struct {
	mu     sync.RWMutex
	byUser map[string][]core.Interaction
}

func NewMemoryInteractions() *MemoryInteractions {
	return &MemoryInteractions{byUser: make(map[string][]core.Interaction)}
}

func (s *MemoryInteractions) Append(interactions ...core.Interaction) {
	s.mu.Lock()
	for _, in := range interactions {
		s.byUser[in.UserID] = append(s.byUser[in.UserID], in)
	}
	s.mu.Unlock()
}

// ListByUser 返回用户的交互记录，按时间降序。
// eventTypes 为空时返回全部类型。
func (s *MemoryInteractions) ListByUser(_ context.Context, userID string, eventTypes ...string) ([]core.Interaction, error) {
	s.mu.RLock()
	all := s.byUser[userID]
	s.mu.RUnlock()

	wanted := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		wanted[t] = true
	}

	out := make([]core.Interaction, 0, len(all))
	for _, in := range all {
		if len(wanted) > 0 && !wanted[in.EventType] {
			continue
		}
		out = append(out, in)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// MemoryUserState 是内存实现的用户状态存储（已购、心愿单、购物车）。
type MemoryUserState struct {
	mu        sync.RWMutex
	purchases map[string][]string
	wishlist  map[string][]string
	cart      map[string][]string
}

func NewMemoryUserState() *MemoryUserState {
	return &MemoryUserState{
		purchases: make(map[string][]string),
		wishlist:  make(map[string][]string),
		cart:      make(map[string][]string),
	}
}

func (s *MemoryUserState) AddPurchase(userID string, itemIDs ...string) {
	s.mu.Lock()
	s.purchases[userID] = append(s.purchases[userID], itemIDs...)
	s.mu.Unlock()
}

func (s *MemoryUserState) AddWishlist(userID string, itemIDs ...string) {
	s.mu.Lock()
	s.wishlist[userID] = append(s.wishlist[userID], itemIDs...)
	s.mu.Unlock()
}

func (s *MemoryUserState) AddCart(userID string, itemIDs ...string) {
	s.mu.Lock()
	s.cart[userID] = append(s.cart[userID], itemIDs...)
	s.mu.Unlock()
}

func head(ids []string, limit int) []string {
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func (s *MemoryUserState) RecentPurchases(_ context.Context, userID string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return head(s.purchases[userID], limit), nil
}

func (s *MemoryUserState) WishlistItems(_ context.Context, userID string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return head(s.wishlist[userID], limit), nil
}

func (s *MemoryUserState) CartItems(_ context.Context, userID string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return head(s.cart[userID], limit), nil
}
