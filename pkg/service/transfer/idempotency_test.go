package transfer_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amirasaad/ledger/infra/cache"
	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/service/transfer"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	getErr error
	setErr error
	nxErr  error
}

func (s failingStore) Get(context.Context, string) (string, bool, error) { return "", false, s.getErr }

func (s failingStore) Set(context.Context, string, string, time.Duration) error { return s.setErr }

func (s failingStore) SetNX(context.Context, string, string, time.Duration) (bool, error) {
	return s.nxErr == nil, s.nxErr
}

func (s failingStore) Delete(context.Context, string) error { return nil }

func newIdempotentService(t *testing.T, f *fixture) *transfer.Service {
	t.Helper()
	store := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	return f.service(transfer.WithIdempotencyStore(store, time.Hour))
}

func TestTransferOnce_ReplaysSameRequest(t *testing.T) {
	f := newFixture(t)
	a := f.seedAccount(t, "1", "A-1", "100")
	b := f.seedAccount(t, "2", "B-1", "0")
	svc := newIdempotentService(t, f)
	ctx := context.Background()

	first, replayed, err := svc.TransferOnce(ctx, "key-1", a.ID, b.ID, dec("40"))
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := svc.TransferOnce(ctx, "key-1", a.ID, b.ID, dec("40.00"))
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.Reference, second.Reference)
	assert.Equal(t, first.ID, second.ID)

	assert.True(t, f.balance(t, a.ID).Equal(dec("60")))
	assert.Len(t, f.entries(t, a.ID), 1)

	published := f.bus.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "key-1", published[0].(events.TransferCompleted).IdempotencyKey)
}

func TestTransferOnce_KeyReusedWithDifferentParameters(t *testing.T) {
	f := newFixture(t)
	a := f.seedAccount(t, "1", "A-1", "100")
	b := f.seedAccount(t, "2", "B-1", "0")
	svc := newIdempotentService(t, f)
	ctx := context.Background()

	_, _, err := svc.TransferOnce(ctx, "key-1", a.ID, b.ID, dec("40"))
	require.NoError(t, err)

	_, _, err = svc.TransferOnce(ctx, "key-1", a.ID, b.ID, dec("41"))
	require.ErrorIs(t, err, transfer.ErrIdempotencyKeyReused)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = svc.TransferOnce(ctx, "key-1", b.ID, a.ID, dec("40"))
	require.ErrorIs(t, err, transfer.ErrIdempotencyKeyReused)

	assert.True(t, f.balance(t, a.ID).Equal(dec("60")))
}

func TestTransferOnce_FailedTransferCanBeRetried(t *testing.T) {
	f := newFixture(t)
	a := f.seedAccount(t, "1", "A-1", "10")
	b := f.seedAccount(t, "2", "B-1", "0")
	svc := newIdempotentService(t, f)
	ctx := context.Background()

	_, _, err := svc.TransferOnce(ctx, "key-1", a.ID, b.ID, dec("20"))
	require.ErrorIs(t, err, account.ErrInsufficientFunds)

	_, replayed, err := svc.TransferOnce(ctx, "key-1", a.ID, b.ID, dec("10"))
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.True(t, f.balance(t, b.ID).Equal(dec("10")))
}

func TestTransferOnce_ConcurrentDuplicatesCommitOnce(t *testing.T) {
	f := newFixture(t)
	a := f.seedAccount(t, "1", "A-1", "100")
	b := f.seedAccount(t, "2", "B-1", "0")
	svc := newIdempotentService(t, f)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*account.Transaction, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = svc.TransferOnce(context.Background(), "dup", a.ID, b.ID, dec("10"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Reference, results[i].Reference)
	}
	assert.True(t, f.balance(t, a.ID).Equal(dec("90")))
	assert.Len(t, f.entries(t, a.ID), 1)
}

func TestTransferOnce_EmptyKeyIsPlainTransfer(t *testing.T) {
	f := newFixture(t)
	a := f.seedAccount(t, "1", "A-1", "100")
	b := f.seedAccount(t, "2", "B-1", "0")
	svc := f.service()

	_, replayed, err := svc.TransferOnce(context.Background(), "", a.ID, b.ID, dec("5"))
	require.NoError(t, err)
	assert.False(t, replayed)
	_, _, err = svc.TransferOnce(context.Background(), "", a.ID, b.ID, dec("5"))
	require.NoError(t, err)
	assert.True(t, f.balance(t, b.ID).Equal(dec("10")))
}

func TestTransferOnce_WithoutStore(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.service().TransferOnce(context.Background(), "key", 1, 2, dec("5"))
	require.ErrorIs(t, err, transfer.ErrIdempotencyUnavailable)
}

func TestTransferOnce_StoreFailures(t *testing.T) {
	f := newFixture(t)
	a := f.seedAccount(t, "1", "A-1", "100")
	b := f.seedAccount(t, "2", "B-1", "0")
	ctx := context.Background()

	t.Run("lookup failure aborts before transfer", func(t *testing.T) {
		svc := f.service(transfer.WithIdempotencyStore(failingStore{getErr: errors.New("connection refused")}, time.Hour))
		_, _, err := svc.TransferOnce(ctx, "key", a.ID, b.ID, dec("5"))
		require.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.True(t, f.balance(t, a.ID).Equal(dec("100")))
	})

	t.Run("reservation failure aborts before transfer", func(t *testing.T) {
		svc := f.service(transfer.WithIdempotencyStore(failingStore{nxErr: errors.New("connection reset")}, time.Hour))
		_, _, err := svc.TransferOnce(ctx, "key", a.ID, b.ID, dec("5"))
		require.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.True(t, f.balance(t, a.ID).Equal(dec("100")))
	})

	t.Run("save failure keeps committed transfer", func(t *testing.T) {
		svc := f.service(transfer.WithIdempotencyStore(failingStore{setErr: errors.New("read only replica")}, time.Hour))
		tx, _, err := svc.TransferOnce(ctx, "key", a.ID, b.ID, dec("5"))
		require.NoError(t, err)
		assert.NotNil(t, tx)
		assert.True(t, f.balance(t, a.ID).Equal(dec("95")))
	})
}

func TestTransferOnce_SharedStoreAcrossInstances(t *testing.T) {
	f := newFixture(t)
	a := f.seedAccount(t, "1", "A-1", "100")
	b := f.seedAccount(t, "2", "B-1", "0")

	mr := miniredis.RunT(t)
	store := cache.NewRedisCacheWithOptions(&redis.Options{Addr: mr.Addr()}, "ledger:", nil)
	t.Cleanup(func() { _ = store.Close() })
	instances := []*transfer.Service{
		f.service(transfer.WithIdempotencyStore(store, time.Hour)),
		f.service(transfer.WithIdempotencyStore(store, time.Hour)),
	}

	var wg sync.WaitGroup
	results := make([]*account.Transaction, len(instances))
	errs := make([]error, len(instances))
	start := make(chan struct{})
	for i, svc := range instances {
		wg.Add(1)
		go func(i int, svc *transfer.Service) {
			defer wg.Done()
			<-start
			results[i], _, errs[i] = svc.TransferOnce(context.Background(), "same-key", a.ID, b.ID, dec("10"))
		}(i, svc)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for i := range instances {
		if errs[i] == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, errs[i], transfer.ErrIdempotencyInProgress)
		assert.True(t, domain.IsRetryable(errs[i]))
	}
	assert.GreaterOrEqual(t, succeeded, 1)
	assert.True(t, f.balance(t, a.ID).Equal(dec("90")))
	assert.Len(t, f.entries(t, a.ID), 1)

	for _, svc := range instances {
		tx, replayed, err := svc.TransferOnce(context.Background(), "same-key", a.ID, b.ID, dec("10"))
		require.NoError(t, err)
		assert.True(t, replayed)
		assert.NotNil(t, tx)
	}
	assert.Len(t, f.entries(t, a.ID), 1)
}

func TestTransferOnce_HeldReservation(t *testing.T) {
	f := newFixture(t)
	a := f.seedAccount(t, "1", "A-1", "100")
	b := f.seedAccount(t, "2", "B-1", "0")
	store := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	svc := f.service(transfer.WithIdempotencyStore(store, time.Hour))
	ctx := context.Background()

	held := `{"origin":` + strconv.FormatInt(a.ID, 10) + `,"destination":` + strconv.FormatInt(b.ID, 10) +
		`,"amount":"10","reference":"00000000-0000-0000-0000-000000000000","pending":true}`
	ok, err := store.SetNX(ctx, "idempotency:transfer:held", held, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, _, err = svc.TransferOnce(ctx, "held", a.ID, b.ID, dec("10"))
	require.ErrorIs(t, err, transfer.ErrIdempotencyInProgress)

	_, _, err = svc.TransferOnce(ctx, "held", a.ID, b.ID, dec("11"))
	require.ErrorIs(t, err, transfer.ErrIdempotencyKeyReused)
	assert.True(t, f.balance(t, a.ID).Equal(dec("100")))

	require.NoError(t, store.Delete(ctx, "idempotency:transfer:held"))
	_, replayed, err := svc.TransferOnce(ctx, "held", a.ID, b.ID, dec("10"))
	require.NoError(t, err)
	assert.False(t, replayed)
}

func TestTransferOnce_FailureReleasesReservation(t *testing.T) {
	f := newFixture(t)
	a := f.seedAccount(t, "1", "A-1", "10")
	b := f.seedAccount(t, "2", "B-1", "0")
	store := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	svc := f.service(transfer.WithIdempotencyStore(store, time.Hour))
	ctx := context.Background()

	_, _, err := svc.TransferOnce(ctx, "key-1", a.ID, b.ID, dec("20"))
	require.ErrorIs(t, err, account.ErrInsufficientFunds)

	_, found, err := store.Get(ctx, "idempotency:transfer:key-1")
	require.NoError(t, err)
	assert.False(t, found)
}
