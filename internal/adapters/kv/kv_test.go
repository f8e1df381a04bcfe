package kv

import (
	"testing"

	"github.com/shopcomplex/storefront/internal/domain"
)

func runStoreTests(t *testing.T, store domain.KVStore) {
	t.Helper()

	if _, ok, err := store.Get("missing"); ok || err != nil {
		t.Fatalf("missing key: ok=%v err=%v, want absent without error", ok, err)
	}

	if err := store.Set("k", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	got, ok, err := store.Get("k")
	if err != nil || !ok || string(got) != "v1" {
		t.Fatalf("get = %q, %v, %v", got, ok, err)
	}

	// whole-value overwrite
	if err := store.Set("k", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	got, _, _ = store.Get("k")
	if string(got) != "v2" {
		t.Fatalf("after overwrite got %q", got)
	}

	if err := store.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get("k"); ok {
		t.Fatal("key survived delete")
	}

	// deleting an absent key is not an error
	if err := store.Delete("k"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	runStoreTests(t, store)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemory()
	defer store.Close()

	buf := []byte("original")
	if err := store.Set("k", buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'
	got, _, _ := store.Get("k")
	if string(got) != "original" {
		t.Fatalf("stored value aliased caller buffer: %q", got)
	}
	got[0] = 'Y'
	again, _, _ := store.Get("k")
	if string(again) != "original" {
		t.Fatalf("returned value aliased stored buffer: %q", again)
	}
}

func TestPebbleStore(t *testing.T) {
	store, err := OpenPebble(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	runStoreTests(t, store)
}

func TestPebbleReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenPebble(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set("persisted", []byte("yes")); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	store, err = OpenPebble(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	got, ok, err := store.Get("persisted")
	if err != nil || !ok || string(got) != "yes" {
		t.Fatalf("after reopen: %q, %v, %v", got, ok, err)
	}
}
