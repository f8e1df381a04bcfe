package source

import (
	"context"

	"github.com/shopcomplex/storefront/internal/domain"
	"github.com/shopcomplex/storefront/internal/usecase"
)

// SupplierListings surfaces locally entered seller products as the last
// source in the aggregation order. Listings keep a back-reference to the
// selling party through SupplierID/SupplierName.
type SupplierListings struct {
	suppliers *usecase.SupplierUC
}

func NewSupplierListings(uc *usecase.SupplierUC) *SupplierListings {
	return &SupplierListings{suppliers: uc}
}

func (*SupplierListings) Name() string { return "supplier" }

func (s *SupplierListings) Fetch(_ context.Context) ([]domain.RawProduct, error) {
	names := map[string]string{}
	out := []domain.RawProduct{}
	for _, l := range s.suppliers.Listings("") {
		if l.Status != "" && l.Status != "active" {
			continue
		}
		name, ok := names[l.SupplierID]
		if !ok {
			if sup, err := s.suppliers.ByID(l.SupplierID); err == nil {
				name = sup.BusinessName
			}
			names[l.SupplierID] = name
		}
		stock := l.Stock
		out = append(out, domain.RawProduct{
			Title:        l.Name,
			Price:        l.Price,
			Category:     l.Category,
			Image:        l.Image,
			Stock:        &stock,
			SupplierID:   l.SupplierID,
			SupplierName: name,
		})
	}
	return out, nil
}
