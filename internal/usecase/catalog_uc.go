package usecase

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shopcomplex/storefront/internal/domain"
	"github.com/shopcomplex/storefront/internal/metrics"
)

// Price normalization bounds: every aggregated product lands inside
// [minPrice, maxPrice], with the most expensive source item pinned to
// maxPrice exactly.
const (
	minPrice = 200.0
	maxPrice = 50000.0

	// fallbackScaleDenom avoids a zero denominator when the merged batch is
	// empty or carries no positive price.
	fallbackScaleDenom = 1000.0

	// synthIDBase seeds ids for records whose source id is missing or
	// collides with an earlier record.
	synthIDBase = 2000

	placeholderName  = "Unnamed Product"
	placeholderImage = "https://via.placeholder.com/400"
	defaultRating    = 4.0
	soldFillerMax    = 1000
)

// CatalogUC merges the configured product sources into one normalized,
// uniquely keyed catalog. The whole catalog is rebuilt on every Refresh; no
// incremental update.
type CatalogUC struct {
	Sources []domain.ProductSource

	mu        sync.RWMutex
	filler    *rand.Rand
	products  []domain.Product
	refreshed time.Time
}

// NewCatalogUC builds the aggregator. filler backs the sold-count fallback
// for records carrying neither a stock nor a rating count; pass a fixed-seed
// generator for reproducible output.
func NewCatalogUC(sources []domain.ProductSource, filler *rand.Rand) *CatalogUC {
	if filler == nil {
		filler = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &CatalogUC{Sources: sources, filler: filler}
}

// Refresh fetches every source concurrently and rebuilds the catalog. A
// failing source logs a diagnostic and contributes an empty batch; it never
// aborts the others. Source-priority order of the merged batch matches the
// order of Sources.
func (uc *CatalogUC) Refresh(ctx context.Context) {
	batches := make([][]domain.RawProduct, len(uc.Sources))
	var wg sync.WaitGroup
	for i, src := range uc.Sources {
		wg.Add(1)
		go func(i int, src domain.ProductSource) {
			defer wg.Done()
			list, err := src.Fetch(ctx)
			if err != nil {
				metrics.SourceFetches.WithLabelValues(src.Name(), "error").Inc()
				log.Warn().Err(err).Str("source", src.Name()).Msg("source fetch failed, contributing empty batch")
				return
			}
			metrics.SourceFetches.WithLabelValues(src.Name(), "ok").Inc()
			batches[i] = list
		}(i, src)
	}
	wg.Wait()

	merged := make([]domain.RawProduct, 0, 64)
	for _, b := range batches {
		merged = append(merged, b...)
	}

	uc.mu.Lock()
	uc.products = uc.normalize(merged)
	uc.refreshed = time.Now()
	n := len(uc.products)
	uc.mu.Unlock()

	metrics.CatalogSize.Set(float64(n))
	log.Info().Int("products", n).Int("sources", len(uc.Sources)).Msg("catalog refreshed")
}

// normalize maps the merged raw batch into canonical products. Caller holds
// uc.mu (the filler is not safe for concurrent use).
func (uc *CatalogUC) normalize(raw []domain.RawProduct) []domain.Product {
	maxSource := 0.0
	for _, r := range raw {
		if r.Price > maxSource {
			maxSource = r.Price
		}
	}
	if maxSource <= 0 {
		maxSource = fallbackScaleDenom
	}

	seen := make(map[int]struct{}, len(raw))
	out := make([]domain.Product, 0, len(raw))
	for i, r := range raw {
		id := r.ID
		if !r.HasID {
			id = synthIDBase + i
		}
		if _, dup := seen[id]; dup {
			id = synthIDBase + i
			for {
				if _, dup := seen[id]; !dup {
					break
				}
				id++
			}
		}
		seen[id] = struct{}{}

		price := r.Price
		if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			price = 0
		}

		name := strings.TrimSpace(r.Title)
		if name == "" {
			name = placeholderName
		}

		category := strings.TrimSpace(r.Category)
		if category == "" {
			category = "Uncategorized"
		}

		image := r.Image
		if image == "" {
			image = r.Thumbnail
		}
		if image == "" {
			image = placeholderImage
		}

		rating := defaultRating
		if r.Rating != nil && !math.IsNaN(*r.Rating) {
			rating = *r.Rating
		}

		var sold int
		switch {
		case r.Stock != nil:
			sold = *r.Stock
		case r.RatingCount != nil:
			sold = *r.RatingCount
		default:
			sold = uc.filler.Intn(soldFillerMax)
		}

		out = append(out, domain.Product{
			ID:           id,
			Name:         name,
			Price:        minPrice + (price/maxSource)*(maxPrice-minPrice),
			Category:     category,
			Image:        image,
			Rating:       rating,
			Sold:         sold,
			SupplierID:   r.SupplierID,
			SupplierName: r.SupplierName,
		})
	}
	return out
}

// Products returns a copy of the current catalog in aggregation order.
func (uc *CatalogUC) Products() []domain.Product {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	out := make([]domain.Product, len(uc.products))
	copy(out, uc.products)
	return out
}

// Get resolves one catalog entry by id.
func (uc *CatalogUC) Get(id int) (domain.Product, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	for _, p := range uc.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Filter returns catalog entries passing f, preserving catalog order.
func (uc *CatalogUC) Filter(f domain.ProductFilter) []domain.Product {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	out := []domain.Product{}
	for _, p := range uc.products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists distinct categories in catalog order.
func (uc *CatalogUC) Categories() []string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range uc.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// RefreshedAt reports when the catalog was last rebuilt.
func (uc *CatalogUC) RefreshedAt() time.Time {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.refreshed
}
