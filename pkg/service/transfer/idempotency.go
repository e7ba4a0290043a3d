package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	idempotencyKeyPrefix = "idempotency:transfer:"
	// reservationTTL bounds how long a crashed holder can block its key.
	reservationTTL = time.Minute
)

var (
	// ErrIdempotencyKeyReused is returned when a key is presented again with different transfer parameters.
	ErrIdempotencyKeyReused = fmt.Errorf("%w: idempotency key already used for a different transfer", domain.ErrValidation)
	// ErrIdempotencyUnavailable is returned by TransferOnce when no idempotency store is configured.
	ErrIdempotencyUnavailable = errors.New("idempotency store not configured")
	// ErrIdempotencyInProgress is returned while another process holds the reservation for a key.
	ErrIdempotencyInProgress = fmt.Errorf("%w: transfer with this idempotency key is in progress", domain.ErrConcurrencyConflict)
)

type idempotencyRecord struct {
	Origin      int64           `json:"origin"`
	Destination int64           `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   uuid.UUID       `json:"reference"`
	Pending     bool            `json:"pending,omitempty"`
}

func (r idempotencyRecord) matches(origin, destination int64, amount decimal.Decimal) bool {
	return r.Origin == origin && r.Destination == destination && r.Amount.Equal(amount)
}

type onceResult struct {
	record   idempotencyRecord
	tx       *account.Transaction
	replayed bool
}

// TransferOnce performs Transfer at most once per key. A repeated call with the
// same key and parameters returns the original ledger entry with replayed set.
// The key is reserved in the store before the transfer runs and released if it
// fails, so a failed transfer may be retried under the same key. A call that
// finds another holder's reservation fails with ErrIdempotencyInProgress.
// An empty key behaves like Transfer.
func (s *Service) TransferOnce(
	ctx context.Context,
	key string,
	originAccountID, destinationAccountID int64,
	amount decimal.Decimal,
) (tx *account.Transaction, replayed bool, err error) {
	if key == "" {
		tx, err = s.Transfer(ctx, originAccountID, destinationAccountID, amount)
		return tx, false, err
	}
	if s.store == nil {
		return nil, false, ErrIdempotencyUnavailable
	}

	cacheKey := idempotencyKeyPrefix + key
	leader := false
	v, err, _ := s.inflight.Do(cacheKey, func() (any, error) {
		leader = true
		return s.transferOnce(ctx, cacheKey, key, originAccountID, destinationAccountID, amount)
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(*onceResult)
	if !res.record.matches(originAccountID, destinationAccountID, amount) {
		return nil, false, ErrIdempotencyKeyReused
	}
	return res.tx, res.replayed || !leader, nil
}

func (s *Service) transferOnce(
	ctx context.Context,
	cacheKey, key string,
	originAccountID, destinationAccountID int64,
	amount decimal.Decimal,
) (*onceResult, error) {
	rec, found, err := s.lookup(ctx, cacheKey)
	if err != nil {
		return nil, err
	}
	if !found {
		rec = idempotencyRecord{
			Origin:      originAccountID,
			Destination: destinationAccountID,
			Amount:      amount,
			Pending:     true,
		}
		reserved, err := s.reserve(ctx, cacheKey, rec)
		if err != nil {
			return nil, err
		}
		if reserved {
			return s.executeReserved(ctx, cacheKey, key, rec)
		}
		// Lost the reservation race to another process.
		if rec, found, err = s.lookup(ctx, cacheKey); err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrIdempotencyInProgress
		}
	}

	if !rec.matches(originAccountID, destinationAccountID, amount) {
		return &onceResult{record: rec}, nil
	}
	if rec.Pending {
		return nil, ErrIdempotencyInProgress
	}
	tx, err := s.replay(ctx, rec.Reference)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Transfer replayed", "idempotency_key", key, "reference", rec.Reference)
	return &onceResult{record: rec, tx: tx, replayed: true}, nil
}

func (s *Service) executeReserved(ctx context.Context, cacheKey, key string, rec idempotencyRecord) (*onceResult, error) {
	tx, err := s.execute(ctx, rec.Origin, rec.Destination, rec.Amount, key)
	if err != nil {
		if derr := s.store.Delete(context.WithoutCancel(ctx), cacheKey); derr != nil {
			s.logger.Error("Idempotency reservation not released", "idempotency_key", key, "error", derr)
		}
		return nil, err
	}
	rec.Reference = tx.Reference
	rec.Pending = false
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode idempotency record: %w", err)
	}
	if err := s.store.Set(context.WithoutCancel(ctx), cacheKey, string(payload), s.ttl); err != nil {
		// The transfer is already committed; the reservation keeps the key blocked until it expires.
		s.logger.Error("Idempotency record not stored", "idempotency_key", key, "reference", tx.Reference, "error", err)
	}
	return &onceResult{record: rec, tx: tx}, nil
}

func (s *Service) lookup(ctx context.Context, cacheKey string) (idempotencyRecord, bool, error) {
	var rec idempotencyRecord
	raw, found, err := s.store.Get(ctx, cacheKey)
	if err != nil {
		return rec, false, fmt.Errorf("%w: idempotency lookup: %s", domain.ErrStoreUnavailable, err.Error())
	}
	if !found {
		return rec, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return rec, false, fmt.Errorf("decode idempotency record: %w", err)
	}
	return rec, true, nil
}

func (s *Service) reserve(ctx context.Context, cacheKey string, rec idempotencyRecord) (bool, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encode idempotency record: %w", err)
	}
	ttl := reservationTTL
	if s.ttl < ttl {
		ttl = s.ttl
	}
	ok, err := s.store.SetNX(ctx, cacheKey, string(payload), ttl)
	if err != nil {
		return false, fmt.Errorf("%w: idempotency reservation: %s", domain.ErrStoreUnavailable, err.Error())
	}
	return ok, nil
}

func (s *Service) replay(ctx context.Context, ref uuid.UUID) (*account.Transaction, error) {
	var tx *account.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		tx, err = txs.GetByReference(ctx, ref)
		return err
	}, repository.ReadOnly())
	if err != nil {
		return nil, err
	}
	return tx, nil
}
