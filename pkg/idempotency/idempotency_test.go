package idempotency_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	infracache "github.com/amirasaad/fintechflow/infra/cache"
	"github.com/amirasaad/fintechflow/pkg/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T) *idempotency.Guard {
	t.Helper()
	store := infracache.NewMemoryCache()
	t.Cleanup(func() { _ = store.Close() })
	return idempotency.NewGuard(store, time.Hour, nil)
}

func TestGuard_ReplaysCompletedResult(t *testing.T) {
	g := newGuard(t)
	ctx := context.Background()
	calls := 0
	fn := func() (*idempotency.Result, error) {
		calls++
		return &idempotency.Result{StatusCode: 200, Body: []byte(`{"n":1}`)}, nil
	}

	res, replayed, err := g.Do(ctx, "k", fn)
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 200, res.StatusCode)

	res, replayed, err = g.Do(ctx, "k", fn)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.JSONEq(t, `{"n":1}`, string(res.Body))
	assert.Equal(t, 1, calls)
}

func TestGuard_FailuresAreNotRemembered(t *testing.T) {
	g := newGuard(t)
	ctx := context.Background()
	boom := errors.New("boom")

	_, _, err := g.Do(ctx, "k", func() (*idempotency.Result, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	res, replayed, err := g.Do(ctx, "k", func() (*idempotency.Result, error) {
		return &idempotency.Result{StatusCode: 201}, nil
	})
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 201, res.StatusCode)
}

func TestGuard_ConcurrentCallsRunOnce(t *testing.T) {
	g := newGuard(t)
	ctx := context.Background()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := g.Do(ctx, "same", func() (*idempotency.Result, error) {
				calls.Add(1)
				<-release
				return &idempotency.Result{StatusCode: 200}, nil
			})
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}
