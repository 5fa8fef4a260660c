package services

import (
	"context"
	"encoding/json"
	"fmt"

	"phonestore/internal/domain"
	applog "phonestore/internal/log"
	"phonestore/internal/metrics"
	"phonestore/internal/repos"
)

// DefaultCartKey is the key a cart is stored under inside a profile's store.
const DefaultCartKey = "inditex_cart"

// storedItem is the persisted layout of one line item.
type storedItem struct {
	Phone           domain.PhoneModel    `json:"phone"`
	SelectedColor   string               `json:"selectedColor"`
	SelectedStorage domain.StorageOption `json:"selectedStorage"`
	Quantity        int                  `json:"quantity"`
}

// CartStorage mirrors a Cart into a KV store under a single key, as JSON.
type CartStorage struct {
	Store repos.KV
	Key   string
}

func NewCartStorage(store repos.KV, key string) *CartStorage {
	if key == "" {
		key = DefaultCartKey
	}
	return &CartStorage{Store: store, Key: key}
}

// SaveCart overwrites the stored cart with the full item list.
func (s *CartStorage) SaveCart(ctx context.Context, cart *domain.Cart) error {
	items := cart.Items()
	records := make([]storedItem, 0, len(items))
	for _, it := range items {
		records = append(records, storedItem{
			Phone:           it.Phone.Model(),
			SelectedColor:   it.SelectedColor,
			SelectedStorage: it.SelectedStorage,
			Quantity:        it.Quantity,
		})
	}
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.Store.Set(ctx, s.Key, string(b)); err != nil {
		metrics.CartStoreErrors.WithLabelValues("save").Inc()
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// LoadCart rebuilds the stored cart by replaying every record in order through
// Cart.AddItemN, so duplicate records coalesce and quantities survive. A
// missing key yields an empty cart. A malformed value is logged, deleted and
// also yields an empty cart.
func (s *CartStorage) LoadCart(ctx context.Context) (*domain.Cart, error) {
	cart := domain.NewCart()
	raw, ok, err := s.Store.Get(ctx, s.Key)
	if err != nil {
		metrics.CartStoreErrors.WithLabelValues("load").Inc()
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if !ok {
		return cart, nil
	}

	records, err := decodeCart(raw)
	if err != nil {
		metrics.CartCorruptLoads.Inc()
		applog.Warn(nil, "cart.storage.corrupt", err, map[string]any{"key": s.Key, "bytes": len(raw)})
		if derr := s.Store.Delete(ctx, s.Key); derr != nil {
			applog.Error(nil, "cart.storage.discard", derr, map[string]any{"key": s.Key})
		}
		return cart, nil
	}

	for _, rec := range records {
		cart.AddItemN(domain.FromModel(rec.Phone), rec.SelectedColor, rec.SelectedStorage, rec.Quantity)
	}
	return cart, nil
}

// ClearCart removes the stored cart. A missing key is not an error.
func (s *CartStorage) ClearCart(ctx context.Context) error {
	if err := s.Store.Delete(ctx, s.Key); err != nil {
		metrics.CartStoreErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// decodeCart rejects null records and records without a phone id.
func decodeCart(raw string) ([]*storedItem, error) {
	var records []*storedItem
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("record %d: null", i)
		}
		if rec.Phone.ID == "" {
			return nil, fmt.Errorf("record %d: missing phone id", i)
		}
	}
	return records, nil
}
