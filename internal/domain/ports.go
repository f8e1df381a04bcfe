package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("already registered")
	ErrBadRequest = errors.New("bad request")
)

// ProductSource is one upstream product provider. Sources are fetched
// independently; a failing source degrades to an empty batch and never
// aborts aggregation of the others.
type ProductSource interface {
	Name() string
	Fetch(ctx context.Context) ([]RawProduct, error)
}

// KVStore is whole-value durable key-value storage: no partial updates, no
// schema versioning. Get reports presence explicitly so a missing key is
// not an error.
type KVStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// InteractionRepo persists shopper interaction events.
type InteractionRepo interface {
	Record(ctx context.Context, in *Interaction) error
	Since(ctx context.Context, cutoff time.Time) ([]Interaction, error)
	BySession(ctx context.Context, sessionID string) ([]Interaction, error)
}

// OTPGateway talks to the OTP-issuing backend.
type OTPGateway interface {
	Request(ctx context.Context, identifier string) error
	Verify(ctx context.Context, key, code string) error
}

// RecCache caches computed recommendation responses. Get reports a miss as
// (false, nil); cache failures are non-fatal to the caller.
type RecCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}
