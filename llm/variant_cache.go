package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// VariantCache shares configured model variants across concurrent pipeline
// runs. Construction of an uncached variant is guarded by singleflight so
// two runs requesting the same option set never race to build duplicate
// instances.
type VariantCache struct {
	base    ModelInvoker
	mu      sync.RWMutex
	entries map[string]ModelInvoker
	group   singleflight.Group
	logger  *zap.Logger
}

// NewVariantCache creates a cache over a base invoker.
func NewVariantCache(base ModelInvoker, logger *zap.Logger) *VariantCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VariantCache{
		base:    base,
		entries: make(map[string]ModelInvoker),
		logger:  logger,
	}
}

// Variant returns the invoker for the given options, constructing and
// caching it on first use. Options with no overrides return the base
// invoker directly.
func (c *VariantCache) Variant(opts InvokeOptions) ModelInvoker {
	if opts.Model == "" && opts.Temperature == nil && opts.MaxOutputTokens == 0 {
		return c.base
	}

	key := variantKey(opts)

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		variant := newPinnedInvoker(c.base, opts)
		c.mu.Lock()
		c.entries[key] = variant
		c.mu.Unlock()

		c.logger.Debug("model variant created",
			zap.String("key", key))
		return variant, nil
	})

	return v.(ModelInvoker)
}

// Len reports the number of cached variants.
func (c *VariantCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// pinnedInvoker wraps a base invoker with fixed option overrides. Per-call
// options still win over the pinned ones when set.
type pinnedInvoker struct {
	base ModelInvoker
	opts InvokeOptions
}

func newPinnedInvoker(base ModelInvoker, opts InvokeOptions) ModelInvoker {
	return &pinnedInvoker{base: base, opts: opts}
}

func (p *pinnedInvoker) Invoke(ctx context.Context, prompt string, opts InvokeOptions) (string, error) {
	merged := p.opts
	if opts.Model != "" {
		merged.Model = opts.Model
	}
	if opts.Temperature != nil {
		merged.Temperature = opts.Temperature
	}
	if opts.MaxOutputTokens != 0 {
		merged.MaxOutputTokens = opts.MaxOutputTokens
	}
	return p.base.Invoke(ctx, prompt, merged)
}
