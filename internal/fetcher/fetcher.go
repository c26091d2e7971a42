// Package fetcher reads the output body behind each correlated key.
package fetcher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	"github.com/dbsmedya/getversions/internal/config"
	"github.com/dbsmedya/getversions/internal/logger"
)

// ObjectGetter reads one object body.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Result is one instance's reported value.
type Result struct {
	InstanceID string `json:"instance_id" yaml:"instance_id"`
	Key        string `json:"key" yaml:"key"`
	Value      string `json:"value" yaml:"value"`
}

// Fetcher reads bodies at a bounded request rate.
type Fetcher struct {
	getter  ObjectGetter
	limiter *rate.Limiter
	logger  *logger.Logger
}

// New creates a Fetcher. A non-positive rate disables pacing.
func New(getter ObjectGetter, cfg config.FetchConfig, log *logger.Logger) (*Fetcher, error) {
	if getter == nil {
		return nil, fmt.Errorf("object getter is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Fetcher{
		getter:  getter,
		limiter: rate.NewLimiter(limit, burst),
		logger:  log,
	}, nil
}

// Fetch reads the body of every key in latest, sorted by instance id.
// The first read failure aborts the fetch.
func (f *Fetcher) Fetch(ctx context.Context, bucket string, latest map[string]string) ([]Result, error) {
	ids := make([]string, 0, len(latest))
	for id := range latest {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("fetch cancelled: %w", err)
		}

		key := latest[id]
		body, err := f.getter.GetObject(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch output for %s: %w", id, err)
		}

		value := strings.TrimRight(string(body), "\r\n")
		f.logger.WithInstance(id).Debugw("Fetched output", "key", key, "value", value)
		results = append(results, Result{InstanceID: id, Key: key, Value: value})
	}

	return results, nil
}
