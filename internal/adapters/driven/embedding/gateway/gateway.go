// Package gateway wraps an embedding provider with rate limiting and a
// daily quota fallback. All embedding traffic for a process funnels
// through one gateway instance, so external quotas are respected no
// matter how many pipelines run concurrently.
package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure Gateway implements the interface.
var _ driven.Embedder = (*Gateway)(nil)

// Default configuration values.
const (
	// DefaultMinInterval is the minimum spacing between provider calls.
	DefaultMinInterval = 4 * time.Second

	// DefaultBurst is the token bucket burst size.
	DefaultBurst = 1

	// DefaultTimeout bounds each provider call.
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the embedding gateway.
type Config struct {
	// MinInterval is the minimum spacing between provider calls
	// (default: 4s). Concurrent callers queue rather than fail.
	MinInterval time.Duration

	// Burst is the token bucket burst size (default: 1).
	Burst int

	// DailyQuota is the number of texts that may be embedded per UTC
	// day. Zero means unlimited. Once exhausted, the gateway returns
	// deterministic fallback vectors marked degraded instead of
	// failing the caller.
	DailyQuota int

	// Timeout bounds each provider call (default: 30s).
	Timeout time.Duration
}

// Gateway is a rate-limited, fallback-capable wrapper around an
// embedding provider. It is an explicit stateful component: construct
// one per process and inject it into every caller, so tests can use a
// fresh instance per case.
type Gateway struct {
	provider driven.EmbeddingProvider
	limiter  *rate.Limiter
	timeout  time.Duration
	quota    int

	mu   sync.Mutex
	day  string // UTC day the counter belongs to, formatted 2006-01-02
	used int

	now func() time.Time
}

// New creates a gateway around the given provider.
func New(provider driven.EmbeddingProvider, cfg Config) *Gateway {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Gateway{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Every(cfg.MinInterval), cfg.Burst),
		timeout:  cfg.Timeout,
		quota:    cfg.DailyQuota,
		now:      time.Now,
	}
}

// SetClock overrides the gateway's clock. Used by tests to control the
// daily quota window.
func (g *Gateway) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Dimensions returns the embedding vector size.
func (g *Gateway) Dimensions() int {
	return g.provider.Dimensions()
}

// Embed embeds a batch of texts. Quota exhaustion never fails the call:
// texts beyond the remaining daily quota get deterministic fallback
// vectors and the result is marked degraded. Transport failures wrap
// domain.ErrEmbeddingProvider.
func (g *Gateway) Embed(ctx context.Context, texts []string) (domain.EmbedResult, error) {
	if len(texts) == 0 {
		return domain.EmbedResult{}, nil
	}

	allowed := g.consume(len(texts))
	vectors := make([][]float32, 0, len(texts))
	degraded := allowed < len(texts)

	if allowed > 0 {
		real, err := g.callProvider(ctx, texts[:allowed])
		if err != nil {
			return domain.EmbedResult{}, err
		}
		vectors = append(vectors, real...)
	}

	if degraded {
		logger.Warn("Embedding quota exhausted: %d of %d texts using fallback vectors",
			len(texts)-allowed, len(texts))
		for _, text := range texts[allowed:] {
			vectors = append(vectors, FallbackVector(text, g.provider.Dimensions()))
		}
	}

	return domain.EmbedResult{Vectors: vectors, Degraded: degraded}, nil
}

// EmbedQuery embeds a single query string. The bool reports whether the
// vector is a degraded quota fallback.
func (g *Gateway) EmbedQuery(ctx context.Context, text string) ([]float32, bool, error) {
	res, err := g.Embed(ctx, []string{text})
	if err != nil {
		return nil, false, err
	}
	return res.Vectors[0], res.Degraded, nil
}

// callProvider waits on the rate limiter, then invokes the provider
// under the configured timeout.
func (g *Gateway) callProvider(ctx context.Context, texts []string) ([][]float32, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", domain.ErrEmbeddingProvider, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	vectors, err := g.provider.EmbedBatch(callCtx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d texts",
			domain.ErrEmbeddingProvider, len(vectors), len(texts))
	}
	return vectors, nil
}

// consume reserves up to n texts from the daily quota and returns how
// many may use the real provider. The counter resets on UTC day change.
func (g *Gateway) consume(n int) int {
	if g.quota <= 0 {
		return n
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	today := g.now().UTC().Format("2006-01-02")
	if today != g.day {
		g.day = today
		g.used = 0
	}

	remaining := g.quota - g.used
	if remaining <= 0 {
		return 0
	}
	if n > remaining {
		n = remaining
	}
	g.used += n
	return n
}

// FallbackVector derives a deterministic pseudo-embedding from the text
// itself. It is a unit vector, so cosine and inner-product scoring stay
// meaningful relative to other fallback vectors of the same text.
func FallbackVector(text string, dim int) []float32 {
	vec := make([]float32, dim)
	seed := sha256.Sum256([]byte(text))

	var block [32]byte = seed
	var norm float64
	for i := 0; i < dim; i++ {
		if i%8 == 0 && i > 0 {
			block = sha256.Sum256(block[:])
		}
		bits := binary.LittleEndian.Uint32(block[(i%8)*4:])
		// Map to [-1, 1).
		v := float64(int32(bits)) / float64(math.MaxInt32)
		vec[i] = float32(v)
		norm += v * v
	}

	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}
