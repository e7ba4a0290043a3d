package repository

import (
	"time"

	"github.com/amirasaad/ledger/pkg/config"
	"github.com/cenkalti/backoff/v4"
)

// DefaultRetry mirrors the stock transient-fault policy: three attempts,
// exponential delay capped at thirty seconds.
var DefaultRetry = config.Retry{
	MaxAttempts:     3,
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     30 * time.Second,
}

// NewBackOff builds a bounded exponential backoff from cfg.
func NewBackOff(cfg *config.Retry) backoff.BackOff {
	if cfg == nil {
		cfg = &DefaultRetry
	}
	b := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		b.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		b.MaxInterval = cfg.MaxInterval
	}
	b.MaxElapsedTime = 0
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithMaxRetries(b, uint64(attempts-1))
}
