package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shopcomplex/storefront/internal/domain"
)

// Storage keys of the supplier backend. Whole-value semantics: each key is
// read and rewritten in full on every change.
const (
	keySuppliers   = "suppliers_data"
	keyListings    = "supplier_products"
	keySupSession  = "supplier_session"
)

// SupplierUC is the seller dashboard backend: supplier directory, session
// and product listings, all on top of the key-value store.
type SupplierUC struct {
	KV domain.KVStore

	// serializes read-modify-write cycles on the shared keys
	mu sync.Mutex
}

func NewSupplierUC(kv domain.KVStore) *SupplierUC {
	return &SupplierUC{KV: kv}
}

func loadSlice[T any](kv domain.KVStore, key string) []T {
	raw, ok, err := kv.Get(key)
	if err != nil || !ok {
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("kv read failed")
		}
		return nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding malformed stored value")
		return nil
	}
	return out
}

func storeSlice[T any](kv domain.KVStore, key string, v []T) error {
	if len(v) == 0 {
		return kv.Delete(key)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(key, b)
}

// Register adds a supplier to the directory. A duplicate email or mobile is
// rejected.
func (uc *SupplierUC) Register(s domain.Supplier) (domain.Supplier, error) {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Mobile = strings.TrimSpace(s.Mobile)
	if s.Email == "" && s.Mobile == "" {
		return domain.Supplier{}, fmt.Errorf("%w: email or mobile required", domain.ErrBadRequest)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	suppliers := loadSlice[domain.Supplier](uc.KV, keySuppliers)
	for _, existing := range suppliers {
		if (s.Email != "" && existing.Email == s.Email) || (s.Mobile != "" && existing.Mobile == s.Mobile) {
			return domain.Supplier{}, fmt.Errorf("supplier %w with this email or mobile", domain.ErrDuplicate)
		}
	}

	s.ID = "SUP_" + uuid.NewString()
	s.Status = domain.SupplierActive
	s.JoinedAt = time.Now()
	suppliers = append(suppliers, s)
	if err := storeSlice(uc.KV, keySuppliers, suppliers); err != nil {
		return domain.Supplier{}, err
	}
	log.Info().Str("supplier", s.ID).Msg("supplier registered")
	return s, nil
}

// Lookup resolves a supplier by email or mobile.
func (uc *SupplierUC) Lookup(identifier string) (domain.Supplier, error) {
	identifier = strings.TrimSpace(identifier)
	for _, s := range loadSlice[domain.Supplier](uc.KV, keySuppliers) {
		if strings.EqualFold(s.Email, identifier) || s.Mobile == identifier {
			return s, nil
		}
	}
	return domain.Supplier{}, domain.ErrNotFound
}

// ByID resolves a supplier by id.
func (uc *SupplierUC) ByID(id string) (domain.Supplier, error) {
	for _, s := range loadSlice[domain.Supplier](uc.KV, keySuppliers) {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Supplier{}, domain.ErrNotFound
}

// CreateSession stores the supplier as the current session, whole-value.
func (uc *SupplierUC) CreateSession(s domain.Supplier) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return uc.KV.Set(keySupSession, b)
}

// CurrentSession returns the logged-in supplier, if any.
func (uc *SupplierUC) CurrentSession() (domain.Supplier, bool) {
	raw, ok, err := uc.KV.Get(keySupSession)
	if err != nil || !ok {
		return domain.Supplier{}, false
	}
	var s domain.Supplier
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Warn().Err(err).Msg("discarding malformed supplier session")
		return domain.Supplier{}, false
	}
	return s, true
}

// Logout deletes the session key.
func (uc *SupplierUC) Logout() error {
	return uc.KV.Delete(keySupSession)
}

// Listings returns the listings of one supplier, or all listings when
// supplierID is empty.
func (uc *SupplierUC) Listings(supplierID string) []domain.Listing {
	all := loadSlice[domain.Listing](uc.KV, keyListings)
	if supplierID == "" {
		return all
	}
	out := []domain.Listing{}
	for _, l := range all {
		if l.SupplierID == supplierID {
			out = append(out, l)
		}
	}
	return out
}

// AddListing appends a supplier product.
func (uc *SupplierUC) AddListing(l domain.Listing) (domain.Listing, error) {
	if l.SupplierID == "" {
		return domain.Listing{}, fmt.Errorf("%w: supplier id required", domain.ErrBadRequest)
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	l.ID = "PROD_" + uuid.NewString()
	l.Status = "active"
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	all := loadSlice[domain.Listing](uc.KV, keyListings)
	all = append(all, l)
	if err := storeSlice(uc.KV, keyListings, all); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

// ListingPatch carries the fields of a listing update; nil fields are left
// untouched.
type ListingPatch struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Category *string  `json:"category"`
	Image    *string  `json:"image"`
	Stock    *int     `json:"stock"`
	Status   *string  `json:"status"`
}

// UpdateListing applies the patch to the stored listing, keeping id, owner
// and creation time.
func (uc *SupplierUC) UpdateListing(id string, patch ListingPatch) (domain.Listing, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	all := loadSlice[domain.Listing](uc.KV, keyListings)
	for i := range all {
		if all[i].ID != id {
			continue
		}
		if patch.Name != nil {
			all[i].Name = *patch.Name
		}
		if patch.Price != nil {
			all[i].Price = *patch.Price
		}
		if patch.Category != nil {
			all[i].Category = *patch.Category
		}
		if patch.Image != nil {
			all[i].Image = *patch.Image
		}
		if patch.Stock != nil {
			all[i].Stock = *patch.Stock
		}
		if patch.Status != nil {
			all[i].Status = *patch.Status
		}
		all[i].UpdatedAt = time.Now()
		if err := storeSlice(uc.KV, keyListings, all); err != nil {
			return domain.Listing{}, err
		}
		return all[i], nil
	}
	return domain.Listing{}, domain.ErrNotFound
}

// DeleteListing removes one listing by id.
func (uc *SupplierUC) DeleteListing(id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	all := loadSlice[domain.Listing](uc.KV, keyListings)
	out := all[:0]
	found := false
	for _, l := range all {
		if l.ID == id {
			found = true
			continue
		}
		out = append(out, l)
	}
	if !found {
		return domain.ErrNotFound
	}
	return storeSlice(uc.KV, keyListings, out)
}
