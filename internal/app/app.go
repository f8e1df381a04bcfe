package app

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopcomplex/storefront/internal/adapters/cache"
	"github.com/shopcomplex/storefront/internal/adapters/httpserver"
	"github.com/shopcomplex/storefront/internal/adapters/otp"
	"github.com/shopcomplex/storefront/internal/adapters/repo/gormdb"
	"github.com/shopcomplex/storefront/internal/adapters/source"
	"github.com/shopcomplex/storefront/internal/domain"
	"github.com/shopcomplex/storefront/internal/usecase"
)

type App struct {
	Catalog      *usecase.CatalogUC
	Recs         *usecase.RecommendUC
	Carts        *usecase.CartUC
	Suppliers    *usecase.SupplierUC
	OTP          *usecase.OTPUC
	Interactions domain.InteractionRepo
	KV           domain.KVStore

	recCache *cache.Redis
}

// NewApp wires the storefront. db may be nil (trending degrades to empty);
// kv is required.
func NewApp(db *gorm.DB, kv domain.KVStore) (*App, error) {
	suppliers := usecase.NewSupplierUC(kv)

	sources := []domain.ProductSource{
		source.NewFakeStore(os.Getenv("FAKESTORE_URL")),
		source.NewDummyJSON(os.Getenv("DUMMYJSON_URL")),
		source.NewSeed(),
		source.NewSupplierListings(suppliers),
	}
	catalog := usecase.NewCatalogUC(sources, nil)

	var interactions domain.InteractionRepo
	if db != nil {
		repo := gormdb.NewInteractionRepo(db)
		if err := repo.Migrate(); err != nil {
			return nil, err
		}
		interactions = repo
	}

	app := &App{
		Catalog:      catalog,
		Carts:        usecase.NewCartUC(kv),
		Suppliers:    suppliers,
		Interactions: interactions,
		KV:           kv,
	}

	var recCache domain.RecCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" && os.Getenv("CACHE_ENABLED") != "false" {
		ttl := time.Hour
		if v, err := strconv.Atoi(os.Getenv("CACHE_TTL")); err == nil && v > 0 {
			ttl = time.Duration(v) * time.Second
		}
		c := cache.NewRedis(addr, "recs:", ttl)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", addr).Msg("redis unavailable, recommendation cache disabled")
			_ = c.Close()
		} else {
			recCache = c
			app.recCache = c
		}
	}
	app.Recs = &usecase.RecommendUC{Catalog: catalog, Interactions: interactions, Cache: recCache}

	devFallback := false
	switch strings.ToLower(os.Getenv("OTP_DEV_FALLBACK")) {
	case "1", "true", "yes":
		devFallback = true
	}
	app.OTP = usecase.NewOTPUC(otp.NewClient(os.Getenv("OTP_BASE_URL")), devFallback, nil)

	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.Catalog, a.Recs, a.Carts, a.Suppliers, a.OTP, a.Interactions)
}

// StartRefreshing rebuilds the catalog now and then on every tick until ctx
// is cancelled. The ticker is stopped on exit.
func (a *App) StartRefreshing(ctx context.Context, interval time.Duration) {
	a.Catalog.Refresh(ctx)
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.Catalog.Refresh(ctx)
			}
		}
	}()
}

func (a *App) Close() {
	if a.recCache != nil {
		_ = a.recCache.Close()
	}
}
