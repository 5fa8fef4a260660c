package services

import (
	"context"
	"strings"

	"phonestore/internal/domain"
)

// PhoneProvider is a source of catalog records. Phone returns
// domain.ErrPhoneNotFound for unknown ids.
type PhoneProvider interface {
	Phones(ctx context.Context) ([]domain.Phone, error)
	Phone(ctx context.Context, id string) (domain.Phone, error)
}

const maxSimilar = 4

type CatalogService struct {
	Phones PhoneProvider
}

func NewCatalogService(phones PhoneProvider) *CatalogService {
	return &CatalogService{Phones: phones}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Phone, error) {
	return s.Phones.Phones(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id string) (domain.Phone, error) {
	return s.Phones.Phone(ctx, id)
}

// Search keeps phones whose brand or model contains q, case-insensitively.
// An empty query returns everything.
func (s *CatalogService) Search(ctx context.Context, q string) ([]domain.Phone, error) {
	all, err := s.Phones.Phones(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return all, nil
	}
	out := []domain.Phone{}
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Brand()), q) || strings.Contains(strings.ToLower(p.Name()), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Similar returns up to four other phones of the same brand.
func (s *CatalogService) Similar(ctx context.Context, id string) ([]domain.Phone, error) {
	phone, err := s.Phones.Phone(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SimilarTo(ctx, phone)
}

// SimilarTo is Similar for a phone the caller already holds.
func (s *CatalogService) SimilarTo(ctx context.Context, phone domain.Phone) ([]domain.Phone, error) {
	all, err := s.Phones.Phones(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Phone{}
	for _, p := range all {
		if p.Brand() == phone.Brand() && p.ID() != phone.ID() {
			out = append(out, p)
			if len(out) == maxSimilar {
				break
			}
		}
	}
	return out, nil
}
