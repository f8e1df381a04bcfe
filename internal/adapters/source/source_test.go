package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopcomplex/storefront/internal/adapters/kv"
	"github.com/shopcomplex/storefront/internal/domain"
	"github.com/shopcomplex/storefront/internal/usecase"
)

func TestFakeStoreFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing",
			 "image":"https://img/1.jpg","rating":{"rate":3.9,"count":120}},
			{"id":2,"title":"No rating","price":22.3,"category":"men's clothing","image":""}
		]`))
	}))
	defer srv.Close()

	got, err := NewFakeStore(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	first := got[0]
	if !first.HasID || first.ID != 1 || first.Title != "Backpack" {
		t.Errorf("first = %+v", first)
	}
	if first.Rating == nil || *first.Rating != 3.9 {
		t.Errorf("rating = %v", first.Rating)
	}
	if first.RatingCount == nil || *first.RatingCount != 120 {
		t.Errorf("rating count = %v", first.RatingCount)
	}
	if got[1].Rating != nil || got[1].RatingCount != nil {
		t.Errorf("second record should carry no rating: %+v", got[1])
	}
}

func TestFakeStoreErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewFakeStore(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestDummyJSONFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "50" {
			t.Errorf("limit = %s", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[
			{"id":1,"title":"Essence Mascara","price":9.99,"category":"beauty",
			 "thumbnail":"https://img/t.jpg","rating":4.94,"stock":5},
			{"id":2,"title":"Out of stock","price":19.99,"category":"beauty","stock":0}
		],"total":2}`))
	}))
	defer srv.Close()

	got, err := NewDummyJSON(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Thumbnail != "https://img/t.jpg" {
		t.Errorf("thumbnail = %q", got[0].Thumbnail)
	}
	if got[0].Stock == nil || *got[0].Stock != 5 {
		t.Errorf("stock = %v", got[0].Stock)
	}
	if got[1].Stock != nil {
		t.Errorf("zero stock should stay nil: %v", *got[1].Stock)
	}
}

func TestDummyJSONMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	if _, err := NewDummyJSON(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSeedIsStableAndComplete(t *testing.T) {
	s := NewSeed()
	a, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 10 {
		t.Fatalf("seed carries %d records, want 10", len(a))
	}
	for _, r := range a {
		if !r.HasID || r.ID < 1001 || r.ID > 1010 {
			t.Errorf("seed id %d outside [1001, 1010]", r.ID)
		}
		if r.Title == "" || r.Price <= 0 || r.Category == "" {
			t.Errorf("incomplete seed record: %+v", r)
		}
	}
	b, _ := s.Fetch(context.Background())
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Title != b[i].Title || a[i].Price != b[i].Price ||
			*a[i].Rating != *b[i].Rating || *a[i].RatingCount != *b[i].RatingCount {
			t.Fatal("seed output not stable across fetches")
		}
	}
}

func TestSupplierListingsExposesActiveOnly(t *testing.T) {
	store := kv.NewMemory()
	defer store.Close()
	suppliers := usecase.NewSupplierUC(store)

	sup, err := suppliers.Register(domain.Supplier{BusinessName: "Acme Traders", Email: "acme@x.com"})
	if err != nil {
		t.Fatal(err)
	}
	active, err := suppliers.AddListing(domain.Listing{SupplierID: sup.ID, Name: "Widget", Price: 500, Stock: 7})
	if err != nil {
		t.Fatal(err)
	}
	paused, err := suppliers.AddListing(domain.Listing{SupplierID: sup.ID, Name: "Hidden", Price: 100, Stock: 2})
	if err != nil {
		t.Fatal(err)
	}
	status := "inactive"
	if _, err := suppliers.UpdateListing(paused.ID, usecase.ListingPatch{Status: &status}); err != nil {
		t.Fatal(err)
	}

	src := NewSupplierListings(suppliers)
	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want only the active listing", len(got))
	}
	r := got[0]
	if r.Title != active.Name || r.SupplierID != sup.ID || r.SupplierName != "Acme Traders" {
		t.Errorf("record = %+v", r)
	}
	if r.Stock == nil || *r.Stock != 7 {
		t.Errorf("stock = %v", r.Stock)
	}
	if r.HasID {
		t.Error("supplier listings should take synthetic catalog ids")
	}
}
