package services

import (
	"context"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"phonestore/internal/domain"
	"phonestore/internal/metrics"
	"phonestore/internal/repos"
)

// CartSession owns one Cart and the storage it is mirrored to. Every
// mutation is followed by a full save.
type CartSession struct {
	cart    *domain.Cart
	storage *CartStorage
}

func NewCartSession(cart *domain.Cart, storage *CartStorage) *CartSession {
	return &CartSession{cart: cart, storage: storage}
}

func (s *CartSession) Add(ctx context.Context, phone domain.Phone, color string, storage domain.StorageOption) error {
	s.cart.AddItem(phone, color, storage)
	metrics.CartMutations.WithLabelValues("add").Inc()
	return s.storage.SaveCart(ctx, s.cart)
}

func (s *CartSession) Remove(ctx context.Context, phoneID, color, storageSize string) error {
	s.cart.RemoveItem(phoneID, color, storageSize)
	metrics.CartMutations.WithLabelValues("remove").Inc()
	return s.storage.SaveCart(ctx, s.cart)
}

// Clear empties the cart and deletes the stored copy.
func (s *CartSession) Clear(ctx context.Context) error {
	s.cart.Clear()
	metrics.CartMutations.WithLabelValues("clear").Inc()
	return s.storage.ClearCart(ctx)
}

func (s *CartSession) Items() []domain.CartItem { return s.cart.Items() }
func (s *CartSession) ItemCount() int           { return s.cart.ItemCount() }
func (s *CartSession) TotalPrice() float64      { return s.cart.TotalPrice() }

// SessionService opens carts for browser profiles identified by a session id.
type SessionService struct {
	Store repos.KV
	Key   string
}

func NewSessionService(store repos.KV, key string) *SessionService {
	return &SessionService{Store: store, Key: key}
}

// Open loads the cart for sid from the profile's namespace.
func (s *SessionService) Open(ctx context.Context, sid string) (*CartSession, error) {
	storage := s.Storage(sid)
	cart, err := storage.LoadCart(ctx)
	if err != nil {
		return nil, err
	}
	return NewCartSession(cart, storage), nil
}

// Storage is the cart storage for sid.
func (s *SessionService) Storage(sid string) *CartStorage {
	return NewCartStorage(repos.Scoped(s.Store, ProfileNamespace(sid)), s.Key)
}

// ProfileNamespace derives the store namespace for a session id so raw ids
// never appear in store keys.
func ProfileNamespace(sid string) string {
	sum := blake2b.Sum256([]byte(sid))
	return "profile:" + hex.EncodeToString(sum[:16])
}
