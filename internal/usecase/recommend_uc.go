package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shopcomplex/storefront/internal/domain"
)

const (
	defaultSimilar   = 6
	forYouTarget     = 5
	forYouCap        = 10
	defaultTrendWindow = 7 * 24 * time.Hour
)

// RecommendUC derives product suggestions from the current catalog, the
// shopper's view history and the recorded interaction stream. Interactions
// and Cache are optional; without them Trending degrades to empty and
// responses are computed on every call.
type RecommendUC struct {
	Catalog      *CatalogUC
	Interactions domain.InteractionRepo
	Cache        domain.RecCache
}

// Similar returns up to n other products sharing the target's category, in
// catalog order. An unknown product id degrades to an empty slice.
func (uc *RecommendUC) Similar(productID, n int) []domain.Product {
	if n <= 0 {
		n = defaultSimilar
	}
	target, ok := uc.Catalog.Get(productID)
	if !ok {
		return []domain.Product{}
	}
	out := []domain.Product{}
	for _, p := range uc.Catalog.Products() {
		if p.Category == target.Category && p.ID != productID {
			out = append(out, p)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// ForYou computes the personalized list for one view history. Empty history
// yields the first five catalog entries; otherwise candidates come from the
// viewed categories, already-viewed items are excluded, and the list is
// backfilled with remaining unviewed entries up to five, capped at ten.
func (uc *RecommendUC) ForYou(history domain.ViewHistory) []domain.Product {
	products := uc.Catalog.Products()
	if len(history) == 0 {
		if len(products) > forYouTarget {
			products = products[:forYouTarget]
		}
		return products
	}

	viewedCategories := map[string]struct{}{}
	for _, id := range history {
		// ids that no longer resolve (deleted from catalog) are skipped
		if p, ok := uc.Catalog.Get(id); ok {
			viewedCategories[p.Category] = struct{}{}
		}
	}

	recs := []domain.Product{}
	chosen := map[int]struct{}{}
	for _, p := range products {
		if _, ok := viewedCategories[p.Category]; ok && !history.Contains(p.ID) {
			recs = append(recs, p)
			chosen[p.ID] = struct{}{}
		}
	}
	if len(recs) < forYouTarget {
		for _, p := range products {
			if len(recs) >= forYouTarget {
				break
			}
			if history.Contains(p.ID) {
				continue
			}
			if _, ok := chosen[p.ID]; ok {
				continue
			}
			recs = append(recs, p)
			chosen[p.ID] = struct{}{}
		}
	}
	if len(recs) > forYouCap {
		recs = recs[:forYouCap]
	}
	return recs
}

// Trending ranks products by weighted interaction counts inside the window
// (purchases count most, plain views least). Results go through the
// response cache when one is configured.
func (uc *RecommendUC) Trending(ctx context.Context, window time.Duration, n int) ([]domain.Product, error) {
	if uc.Interactions == nil {
		return []domain.Product{}, nil
	}
	if window <= 0 {
		window = defaultTrendWindow
	}
	if n <= 0 {
		n = forYouCap
	}

	cacheKey := fmt.Sprintf("trending:%d:%d", int(window.Seconds()), n)
	if uc.Cache != nil {
		var cached []domain.Product
		if hit, err := uc.Cache.Get(ctx, cacheKey, &cached); err != nil {
			log.Warn().Err(err).Msg("trending cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	events, err := uc.Interactions.Since(ctx, time.Now().Add(-window))
	if err != nil {
		return nil, err
	}

	scores := map[int]float64{}
	for _, ev := range events {
		scores[ev.ProductID] += ev.Kind.Weight()
	}

	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})

	out := []domain.Product{}
	for _, id := range ids {
		if p, ok := uc.Catalog.Get(id); ok {
			out = append(out, p)
			if len(out) == n {
				break
			}
		}
	}

	if uc.Cache != nil {
		if err := uc.Cache.Set(ctx, cacheKey, out); err != nil {
			log.Warn().Err(err).Msg("trending cache write failed")
		}
	}
	return out, nil
}
