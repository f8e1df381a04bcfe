package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/shopcomplex/storefront/internal/adapters/kv"
	"github.com/shopcomplex/storefront/internal/domain"
)

func newCart(t *testing.T) (*CartUC, domain.KVStore) {
	t.Helper()
	store := kv.NewMemory()
	t.Cleanup(func() { store.Close() })
	uc := NewCartUC(store)
	// fixed clock keeps line ids stable inside a test
	base := time.UnixMilli(1700000000000)
	uc.Now = func() time.Time {
		base = base.Add(time.Millisecond)
		return base
	}
	return uc, store
}

func TestAddMergesSameProduct(t *testing.T) {
	uc, _ := newCart(t)
	p := domain.Product{ID: 1, Name: "widget", Price: 10}

	first, err := uc.Add("", p)
	if err != nil {
		t.Fatal(err)
	}
	second, err := uc.Add("", p)
	if err != nil {
		t.Fatal(err)
	}

	lines := uc.Lines("")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 merged line", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", lines[0].Quantity)
	}
	if second.LineID != first.LineID {
		t.Errorf("merge minted a new line id %q", second.LineID)
	}
	if total := uc.Total(""); total != 20 {
		t.Errorf("total = %.2f, want 20", total)
	}
}

func TestAddDistinctProductsKeepSeparateLines(t *testing.T) {
	uc, _ := newCart(t)
	if _, err := uc.Add("", domain.Product{ID: 1, Price: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Add("", domain.Product{ID: 2, Price: 5}); err != nil {
		t.Fatal(err)
	}
	lines := uc.Lines("")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].LineID == lines[1].LineID {
		t.Error("distinct products share a line id")
	}
}

func TestUpdateQuantityRejectsBelowOne(t *testing.T) {
	uc, _ := newCart(t)
	line, _ := uc.Add("", domain.Product{ID: 1, Price: 10})

	if err := uc.UpdateQuantity("", line.LineID, 0); err != nil {
		t.Fatalf("qty 0 should be a silent no-op, got %v", err)
	}
	if got := uc.Lines("")[0].Quantity; got != 1 {
		t.Errorf("quantity = %d, want unchanged 1", got)
	}

	if err := uc.UpdateQuantity("", line.LineID, 4); err != nil {
		t.Fatal(err)
	}
	if got := uc.Lines("")[0].Quantity; got != 4 {
		t.Errorf("quantity = %d, want 4", got)
	}
}

func TestUpdateQuantityUnknownLine(t *testing.T) {
	uc, _ := newCart(t)
	if err := uc.UpdateQuantity("", "nope", 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveDeletesExactlyOneLine(t *testing.T) {
	uc, _ := newCart(t)
	keep, _ := uc.Add("", domain.Product{ID: 1, Price: 10})
	gone, _ := uc.Add("", domain.Product{ID: 2, Price: 5})

	if err := uc.Remove("", gone.LineID); err != nil {
		t.Fatal(err)
	}
	lines := uc.Lines("")
	if len(lines) != 1 || lines[0].LineID != keep.LineID {
		t.Fatalf("lines = %+v, want only %s", lines, keep.LineID)
	}
	if err := uc.Remove("", gone.LineID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestEmptyCartDeletesStoredKey(t *testing.T) {
	uc, store := newCart(t)
	line, _ := uc.Add("", domain.Product{ID: 1, Price: 10})
	if _, ok, _ := store.Get("shopping_cart"); !ok {
		t.Fatal("snapshot missing after add")
	}
	if err := uc.Remove("", line.LineID); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get("shopping_cart"); ok {
		t.Error("empty cart left the key behind")
	}
}

func TestClearDropsEverything(t *testing.T) {
	uc, store := newCart(t)
	uc.Add("", domain.Product{ID: 1, Price: 10})
	uc.Add("", domain.Product{ID: 2, Price: 5})
	if err := uc.Clear(""); err != nil {
		t.Fatal(err)
	}
	if got := uc.Lines(""); len(got) != 0 {
		t.Fatalf("lines after clear = %+v", got)
	}
	if _, ok, _ := store.Get("shopping_cart"); ok {
		t.Error("clear left the key behind")
	}
}

func TestMalformedSnapshotTreatedAsEmpty(t *testing.T) {
	uc, store := newCart(t)
	if err := store.Set("shopping_cart", []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if got := uc.Lines(""); got != nil {
		t.Fatalf("lines = %+v, want nil for malformed snapshot", got)
	}
	// the cart stays usable
	if _, err := uc.Add("", domain.Product{ID: 1, Price: 10}); err != nil {
		t.Fatal(err)
	}
	if len(uc.Lines("")) != 1 {
		t.Fatal("cart unusable after malformed snapshot")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	uc, _ := newCart(t)
	uc.Add("alice", domain.Product{ID: 1, Price: 10})
	uc.Add("bob", domain.Product{ID: 2, Price: 5})

	if lines := uc.Lines("alice"); len(lines) != 1 || lines[0].Product.ID != 1 {
		t.Fatalf("alice lines = %+v", lines)
	}
	if lines := uc.Lines("bob"); len(lines) != 1 || lines[0].Product.ID != 2 {
		t.Fatalf("bob lines = %+v", lines)
	}
}
