// Package source holds the upstream product providers feeding the catalog
// aggregator. Every provider maps its own wire shape into domain.RawProduct
// so the normalization fallbacks live in exactly one place.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopcomplex/storefront/internal/domain"
)

const defaultFakeStoreURL = "https://fakestoreapi.com"

// FakeStore fetches the Fake Store API product list.
type FakeStore struct {
	base   string
	client *http.Client
}

func NewFakeStore(base string) *FakeStore {
	if base == "" {
		base = defaultFakeStoreURL
	}
	return &FakeStore{base: base, client: &http.Client{Timeout: 15 * time.Second}}
}

func (s *FakeStore) Name() string { return "fakestore" }

type fakeStoreItem struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Image    string  `json:"image"`
	Rating   *struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

func (s *FakeStore) Fetch(ctx context.Context) ([]domain.RawProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/products", nil)
	if err != nil {
		return nil, err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fakestore fetch: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("fakestore status %d: %s", res.StatusCode, string(body))
	}
	var items []fakeStoreItem
	if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("fakestore decode: %w", err)
	}

	out := make([]domain.RawProduct, 0, len(items))
	for _, it := range items {
		r := domain.RawProduct{
			ID:       it.ID,
			HasID:    it.ID != 0,
			Title:    it.Title,
			Price:    it.Price,
			Category: it.Category,
			Image:    it.Image,
		}
		if it.Rating != nil {
			rate := it.Rating.Rate
			r.Rating = &rate
			if it.Rating.Count > 0 {
				count := it.Rating.Count
				r.RatingCount = &count
			}
		}
		out = append(out, r)
	}
	return out, nil
}
