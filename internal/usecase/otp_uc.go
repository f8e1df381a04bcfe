package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shopcomplex/storefront/internal/domain"
)

var (
	emailRe  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	mobileRe = regexp.MustCompile(`^[0-9]{10}$`)
)

// Challenge is the outcome of an OTP request. DevCode is set only on the
// development fallback path and is meant to be shown to the tester, never
// delivered anywhere.
type Challenge struct {
	Key     string `json:"key"`
	DevCode string `json:"dev_code,omitempty"`
}

type localOTP struct {
	code     string
	issuedAt time.Time
}

// OTPUC issues and verifies login codes through the OTP backend. When the
// backend is unreachable and DevFallback is set, a locally generated code is
// issued instead; without the flag the failure is surfaced to the caller.
type OTPUC struct {
	Gateway     domain.OTPGateway
	DevFallback bool
	ResendAfter time.Duration
	TTL         time.Duration
	Now         func() time.Time

	mu       sync.Mutex
	rng      *rand.Rand
	local    map[string]localOTP
	lastSent map[string]time.Time
}

func NewOTPUC(gw domain.OTPGateway, devFallback bool, rng *rand.Rand) *OTPUC {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &OTPUC{
		Gateway:     gw,
		DevFallback: devFallback,
		ResendAfter: 30 * time.Second,
		TTL:         5 * time.Minute,
		Now:         time.Now,
		rng:         rng,
		local:       map[string]localOTP{},
		lastSent:    map[string]time.Time{},
	}
}

// ValidIdentifier reports whether s is a 10-digit mobile number or an email
// address.
func ValidIdentifier(s string) bool {
	s = strings.TrimSpace(s)
	return mobileRe.MatchString(s) || emailRe.MatchString(s)
}

// Request asks the backend to send a code to identifier. The identifier
// itself is the verification key. Resends inside the countdown window are
// rejected.
func (uc *OTPUC) Request(ctx context.Context, identifier string) (Challenge, error) {
	identifier = strings.TrimSpace(identifier)
	if !ValidIdentifier(identifier) {
		return Challenge{}, fmt.Errorf("%w: enter a valid 10-digit mobile number or email", domain.ErrBadRequest)
	}

	uc.mu.Lock()
	if last, ok := uc.lastSent[identifier]; ok {
		wait := uc.ResendAfter - uc.Now().Sub(last)
		if wait > 0 {
			uc.mu.Unlock()
			return Challenge{}, fmt.Errorf("%w: resend available in %ds", domain.ErrBadRequest, int(wait.Seconds())+1)
		}
	}
	uc.mu.Unlock()

	var err error
	if uc.Gateway != nil {
		err = uc.Gateway.Request(ctx, identifier)
	} else {
		err = errors.New("otp backend not configured")
	}
	if err != nil {
		if !uc.DevFallback {
			return Challenge{}, err
		}
		uc.mu.Lock()
		code := fmt.Sprintf("%06d", uc.rng.Intn(1000000))
		uc.local[identifier] = localOTP{code: code, issuedAt: uc.Now()}
		uc.lastSent[identifier] = uc.Now()
		uc.mu.Unlock()
		log.Warn().Err(err).Msg("otp backend unreachable, issued local development code")
		return Challenge{Key: identifier, DevCode: code}, nil
	}

	uc.mu.Lock()
	uc.lastSent[identifier] = uc.Now()
	uc.mu.Unlock()
	return Challenge{Key: identifier}, nil
}

// Verify checks the code for key. A pending local code is checked here;
// everything else is delegated to the backend.
func (uc *OTPUC) Verify(ctx context.Context, key, code string) error {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return fmt.Errorf("%w: enter the complete 6-digit code", domain.ErrBadRequest)
	}

	uc.mu.Lock()
	pending, ok := uc.local[key]
	if ok {
		defer uc.mu.Unlock()
		if uc.Now().Sub(pending.issuedAt) > uc.TTL {
			delete(uc.local, key)
			return fmt.Errorf("%w: code expired", domain.ErrBadRequest)
		}
		if pending.code != code {
			return fmt.Errorf("%w: invalid code", domain.ErrBadRequest)
		}
		delete(uc.local, key)
		return nil
	}
	uc.mu.Unlock()

	if uc.Gateway == nil {
		return errors.New("otp backend not configured")
	}
	return uc.Gateway.Verify(ctx, key, code)
}
