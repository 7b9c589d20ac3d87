package bruteforce

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/openaudit/internal/config"
	internal_errors "github.com/openaudit/openaudit/internal/errors"
)

// memoryCounters is an in-memory CounterStore; windows don't expire.
type memoryCounters struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newMemoryCounters() *memoryCounters {
	return &memoryCounters{counts: map[string]int64{}}
}

func (m *memoryCounters) IncrementCounter(ctx context.Context, action, clientKey string, window time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[action+":"+clientKey]++
	return m.counts[action+":"+clientKey], nil
}

func testConfig(budgets map[string]int) config.BruteForce {
	return config.BruteForce{WindowSeconds: 3600, Budgets: budgets}
}

func TestCheck_BudgetExhaustion(t *testing.T) {
	guard := New(newMemoryCounters(), testConfig(map[string]int{"login": 5}))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.NoError(t, guard.Check(ctx, "login", "1.2.3.4"), "attempt %d", i+1)
	}

	err := guard.Check(ctx, "login", "1.2.3.4")
	require.Error(t, err)
	status, code := internal_errors.StatusAndCode(err)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, internal_errors.CodeThrottled, code)

	// Stays throttled until the window resets
	assert.Error(t, guard.Check(ctx, "login", "1.2.3.4"))
}

func TestCheck_KeysAreIndependent(t *testing.T) {
	guard := New(newMemoryCounters(), testConfig(map[string]int{"login": 1, "signup": 1}))
	ctx := context.Background()

	require.NoError(t, guard.Check(ctx, "login", "1.2.3.4"))
	require.Error(t, guard.Check(ctx, "login", "1.2.3.4"))

	// Different client, same action
	assert.NoError(t, guard.Check(ctx, "login", "5.6.7.8"))

	// Different action, same client
	assert.NoError(t, guard.Check(ctx, "signup", "1.2.3.4"))
}

func TestCheck_ThrottledMessageLeaksNothing(t *testing.T) {
	guard := New(newMemoryCounters(), testConfig(map[string]int{"login": 1}))
	ctx := context.Background()

	require.NoError(t, guard.Check(ctx, "login", "1.2.3.4"))
	err := guard.Check(ctx, "login", "1.2.3.4")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "1")
	assert.NotContains(t, err.Error(), "login")
}

func TestCheck_StoreFailure(t *testing.T) {
	store := newMemoryCounters()
	store.err = errors.New("redis down")
	guard := New(store, testConfig(nil))

	assert.Error(t, guard.Check(context.Background(), "login", "1.2.3.4"))
}

func TestCheck_DefaultBudget(t *testing.T) {
	guard := New(newMemoryCounters(), testConfig(nil))
	ctx := context.Background()

	// Unconfigured actions fall back to the conservative default of 20
	for i := 0; i < 20; i++ {
		require.NoError(t, guard.Check(ctx, "mystery", "1.2.3.4"))
	}
	assert.Error(t, guard.Check(ctx, "mystery", "1.2.3.4"))
}
