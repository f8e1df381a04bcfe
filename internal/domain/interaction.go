package domain

import "time"

type InteractionKind string

const (
	InteractionView     InteractionKind = "view"
	InteractionWishlist InteractionKind = "wishlist"
	InteractionCart     InteractionKind = "cart"
	InteractionPurchase InteractionKind = "purchase"
)

// Weight orders interaction kinds by intent strength. Unknown kinds count
// as views.
func (k InteractionKind) Weight() float64 {
	switch k {
	case InteractionPurchase:
		return 5.0
	case InteractionCart:
		return 3.0
	case InteractionWishlist:
		return 2.0
	default:
		return 1.0
	}
}

// Interaction is one recorded shopper action against a catalog product.
// Trending is computed from the recent window of these events.
type Interaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SessionID string          `gorm:"size:64;index" json:"session_id"`
	ProductID int             `gorm:"index" json:"product_id"`
	Kind      InteractionKind `gorm:"type:varchar(20);index" json:"kind"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}
