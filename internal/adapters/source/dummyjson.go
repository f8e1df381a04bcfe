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

const (
	defaultDummyJSONURL = "https://dummyjson.com"
	dummyJSONLimit      = 50
)

// DummyJSON fetches the DummyJSON product list.
type DummyJSON struct {
	base   string
	client *http.Client
}

func NewDummyJSON(base string) *DummyJSON {
	if base == "" {
		base = defaultDummyJSONURL
	}
	return &DummyJSON{base: base, client: &http.Client{Timeout: 15 * time.Second}}
}

func (s *DummyJSON) Name() string { return "dummyjson" }

type dummyJSONItem struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
	Thumbnail string  `json:"thumbnail"`
	Rating    float64 `json:"rating"`
	Stock     int     `json:"stock"`
}

type dummyJSONPage struct {
	Products []dummyJSONItem `json:"products"`
	Total    int             `json:"total"`
}

func (s *DummyJSON) Fetch(ctx context.Context) ([]domain.RawProduct, error) {
	url := fmt.Sprintf("%s/products?limit=%d", s.base, dummyJSONLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dummyjson fetch: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("dummyjson status %d: %s", res.StatusCode, string(body))
	}
	var page dummyJSONPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("dummyjson decode: %w", err)
	}

	out := make([]domain.RawProduct, 0, len(page.Products))
	for _, it := range page.Products {
		r := domain.RawProduct{
			ID:        it.ID,
			HasID:     it.ID != 0,
			Title:     it.Title,
			Price:     it.Price,
			Category:  it.Category,
			Thumbnail: it.Thumbnail,
		}
		if it.Rating != 0 {
			rate := it.Rating
			r.Rating = &rate
		}
		if it.Stock > 0 {
			stock := it.Stock
			r.Stock = &stock
		}
		out = append(out, r)
	}
	return out, nil
}
