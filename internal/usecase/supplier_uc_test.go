package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopcomplex/storefront/internal/adapters/kv"
	"github.com/shopcomplex/storefront/internal/domain"
)

func newSuppliers(t *testing.T) *SupplierUC {
	t.Helper()
	store := kv.NewMemory()
	t.Cleanup(func() { store.Close() })
	return NewSupplierUC(store)
}

func TestRegisterAssignsIDAndStatus(t *testing.T) {
	uc := newSuppliers(t)
	s, err := uc.Register(domain.Supplier{BusinessName: "Acme", Email: "Acme@Example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(s.ID, "SUP_") {
		t.Errorf("id = %q, want SUP_ prefix", s.ID)
	}
	if s.Status != domain.SupplierActive {
		t.Errorf("status = %q, want active", s.Status)
	}
	if s.Email != "acme@example.com" {
		t.Errorf("email = %q, want lowercased", s.Email)
	}
	if s.JoinedAt.IsZero() {
		t.Error("joined_at not set")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	uc := newSuppliers(t)
	if _, err := uc.Register(domain.Supplier{Email: "a@b.com", Mobile: "9876543210"}); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Register(domain.Supplier{Email: "a@b.com"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("duplicate email: err = %v", err)
	}
	if _, err := uc.Register(domain.Supplier{Mobile: "9876543210"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("duplicate mobile: err = %v", err)
	}
	if _, err := uc.Register(domain.Supplier{}); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("empty contact: err = %v", err)
	}
}

func TestLookupByEmailOrMobile(t *testing.T) {
	uc := newSuppliers(t)
	reg, _ := uc.Register(domain.Supplier{Email: "a@b.com", Mobile: "9876543210"})

	byEmail, err := uc.Lookup("A@B.com")
	if err != nil || byEmail.ID != reg.ID {
		t.Fatalf("lookup by email: %v, %+v", err, byEmail)
	}
	byMobile, err := uc.Lookup("9876543210")
	if err != nil || byMobile.ID != reg.ID {
		t.Fatalf("lookup by mobile: %v, %+v", err, byMobile)
	}
	if _, err := uc.Lookup("missing@x.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown lookup: err = %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	uc := newSuppliers(t)
	reg, _ := uc.Register(domain.Supplier{Email: "a@b.com"})

	if _, ok := uc.CurrentSession(); ok {
		t.Fatal("session present before login")
	}
	if err := uc.CreateSession(reg); err != nil {
		t.Fatal(err)
	}
	got, ok := uc.CurrentSession()
	if !ok || got.ID != reg.ID {
		t.Fatalf("session = %+v, %v", got, ok)
	}
	if err := uc.Logout(); err != nil {
		t.Fatal(err)
	}
	if _, ok := uc.CurrentSession(); ok {
		t.Fatal("session survived logout")
	}
}

func TestListingCRUD(t *testing.T) {
	uc := newSuppliers(t)
	sup, _ := uc.Register(domain.Supplier{Email: "a@b.com"})

	l, err := uc.AddListing(domain.Listing{SupplierID: sup.ID, Name: "Widget", Price: 99, Stock: 5})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(l.ID, "PROD_") {
		t.Errorf("listing id = %q, want PROD_ prefix", l.ID)
	}
	if l.Status != "active" {
		t.Errorf("status = %q, want active", l.Status)
	}

	if _, err := uc.AddListing(domain.Listing{Name: "orphan"}); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("listing without supplier: err = %v", err)
	}

	name := "Gadget"
	stock := 0
	updated, err := uc.UpdateListing(l.ID, ListingPatch{Name: &name, Stock: &stock})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Gadget" || updated.Stock != 0 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Price != 99 {
		t.Errorf("price = %.2f, want untouched 99", updated.Price)
	}

	if _, err := uc.UpdateListing("PROD_missing", ListingPatch{Name: &name}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update unknown: err = %v", err)
	}

	if got := uc.Listings(sup.ID); len(got) != 1 {
		t.Fatalf("listings = %+v", got)
	}
	if got := uc.Listings("SUP_other"); len(got) != 0 {
		t.Fatalf("foreign listings = %+v", got)
	}

	if err := uc.DeleteListing(l.ID); err != nil {
		t.Fatal(err)
	}
	if err := uc.DeleteListing(l.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("double delete: err = %v", err)
	}
	if got := uc.Listings(""); len(got) != 0 {
		t.Fatalf("listings after delete = %+v", got)
	}
}

func TestMalformedStoredSuppliersIgnored(t *testing.T) {
	store := kv.NewMemory()
	t.Cleanup(func() { store.Close() })
	if err := store.Set("suppliers_data", []byte("garbage")); err != nil {
		t.Fatal(err)
	}
	uc := NewSupplierUC(store)
	if _, err := uc.Register(domain.Supplier{Email: "a@b.com"}); err != nil {
		t.Fatalf("register after malformed store: %v", err)
	}
}
