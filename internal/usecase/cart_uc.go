package usecase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shopcomplex/storefront/internal/domain"
)

// cartKey is the fixed storage key for the cart snapshot; per-session carts
// hang off it as a suffix.
const cartKey = "shopping_cart"

// CartUC maintains the cart as a multiset of products with quantities. The
// whole snapshot is written to the key-value store on every mutation; an
// empty cart deletes the key instead of storing an empty value.
type CartUC struct {
	KV  domain.KVStore
	Now func() time.Time
}

func NewCartUC(kv domain.KVStore) *CartUC {
	return &CartUC{KV: kv, Now: time.Now}
}

func (uc *CartUC) key(session string) string {
	if session == "" {
		return cartKey
	}
	return cartKey + ":" + session
}

// Lines loads the stored snapshot. A malformed snapshot is logged and
// treated as an empty cart, never a startup failure.
func (uc *CartUC) Lines(session string) []domain.CartLine {
	raw, ok, err := uc.KV.Get(uc.key(session))
	if err != nil {
		log.Warn().Err(err).Msg("cart snapshot read failed")
		return nil
	}
	if !ok {
		return nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		log.Warn().Err(err).Msg("discarding malformed cart snapshot")
		return nil
	}
	return lines
}

func (uc *CartUC) persist(session string, lines []domain.CartLine) error {
	if len(lines) == 0 {
		return uc.KV.Delete(uc.key(session))
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return uc.KV.Set(uc.key(session), b)
}

// Add merges the product into the cart: an existing line for the same
// product id gets its quantity bumped, otherwise a new line with quantity 1
// and a fresh line id is appended.
func (uc *CartUC) Add(session string, p domain.Product) (domain.CartLine, error) {
	lines := uc.Lines(session)
	for i := range lines {
		if lines[i].Product.ID == p.ID {
			lines[i].Quantity++
			return lines[i], uc.persist(session, lines)
		}
	}
	line := domain.CartLine{
		LineID:   fmt.Sprintf("%d-%d", p.ID, uc.Now().UnixMilli()),
		Product:  p,
		Quantity: 1,
	}
	lines = append(lines, line)
	return line, uc.persist(session, lines)
}

// UpdateQuantity sets the line's quantity. Quantities below 1 are rejected
// silently; removal is a distinct operation.
func (uc *CartUC) UpdateQuantity(session, lineID string, qty int) error {
	if qty < 1 {
		return nil
	}
	lines := uc.Lines(session)
	for i := range lines {
		if lines[i].LineID == lineID {
			lines[i].Quantity = qty
			return uc.persist(session, lines)
		}
	}
	return domain.ErrNotFound
}

// Remove deletes exactly one line.
func (uc *CartUC) Remove(session, lineID string) error {
	lines := uc.Lines(session)
	out := lines[:0]
	found := false
	for _, l := range lines {
		if l.LineID == lineID && !found {
			found = true
			continue
		}
		out = append(out, l)
	}
	if !found {
		return domain.ErrNotFound
	}
	return uc.persist(session, out)
}

// Clear drops the whole cart, deleting the stored key.
func (uc *CartUC) Clear(session string) error {
	return uc.persist(session, nil)
}

// Total sums price*quantity across all lines.
func (uc *CartUC) Total(session string) float64 {
	return domain.CartTotal(uc.Lines(session))
}
