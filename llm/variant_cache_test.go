package llm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func echoInvoker(calls *atomic.Int64) ModelInvoker {
	return InvokerFunc(func(_ context.Context, prompt string, opts InvokeOptions) (string, error) {
		if calls != nil {
			calls.Add(1)
		}
		return prompt + "|" + variantKey(opts), nil
	})
}

func TestVariantCache_ZeroOptionsReturnBase(t *testing.T) {
	t.Parallel()

	base := echoInvoker(nil)
	cache := NewVariantCache(base, zap.NewNop())

	got := cache.Variant(InvokeOptions{})
	assert.Equal(t, 0, cache.Len())

	out, err := got.Invoke(context.Background(), "hi", InvokeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hi|default|default|0", out)
}

func TestVariantCache_PinsOverrides(t *testing.T) {
	t.Parallel()

	cache := NewVariantCache(echoInvoker(nil), zap.NewNop())
	temp := 0.2

	variant := cache.Variant(InvokeOptions{Model: "fast", Temperature: &temp})
	out, err := variant.Invoke(context.Background(), "q", InvokeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "q|fast|0.2000|0", out)
	assert.Equal(t, 1, cache.Len())

	// same options hit the cache
	again := cache.Variant(InvokeOptions{Model: "fast", Temperature: &temp})
	assert.Same(t, variant, again)
	assert.Equal(t, 1, cache.Len())
}

func TestVariantCache_DifferingOutputCapsAreDistinct(t *testing.T) {
	t.Parallel()

	var caps []int
	base := InvokerFunc(func(_ context.Context, prompt string, opts InvokeOptions) (string, error) {
		caps = append(caps, opts.MaxOutputTokens)
		return prompt, nil
	})
	cache := NewVariantCache(base, zap.NewNop())

	short := cache.Variant(InvokeOptions{Model: "shared", MaxOutputTokens: 100})
	long := cache.Variant(InvokeOptions{Model: "shared", MaxOutputTokens: 200})
	assert.NotSame(t, short, long, "caps differ, variants must not share a cache entry")
	assert.Equal(t, 2, cache.Len())

	_, err := short.Invoke(context.Background(), "a", InvokeOptions{})
	require.NoError(t, err)
	_, err = long.Invoke(context.Background(), "b", InvokeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{100, 200}, caps, "each variant must deliver its own output cap")
}

func TestVariantCache_ConcurrentGetOrCreateIsSingle(t *testing.T) {
	t.Parallel()

	cache := NewVariantCache(echoInvoker(nil), zap.NewNop())
	temp := 0.7

	const goroutines = 32
	variants := make([]ModelInvoker, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			variants[i] = cache.Variant(InvokeOptions{Model: "shared", Temperature: &temp})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, cache.Len(), "concurrent requests must not construct duplicates")
	for i := 1; i < goroutines; i++ {
		assert.Same(t, variants[0], variants[i])
	}
}
