package correlate

import (
	"context"
	"fmt"
	"iter"

	"github.com/dbsmedya/getversions/internal/logger"
)

// ObjectLister lists object keys under a prefix. Iteration stops after the
// first non-nil error.
type ObjectLister interface {
	ListKeys(ctx context.Context, bucket, prefix string) iter.Seq2[string, error]
}

// Correlator runs a Tracker over a bucket listing.
type Correlator struct {
	lister ObjectLister
	logger *logger.Logger
}

// NewCorrelator creates a Correlator reading from lister.
func NewCorrelator(lister ObjectLister, log *logger.Logger) (*Correlator, error) {
	if lister == nil {
		return nil, fmt.Errorf("object lister is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Correlator{
		lister: lister,
		logger: log,
	}, nil
}

// Correlate scans bucket/prefix and returns the populated Tracker.
// Listing errors are returned unchanged apart from wrapping.
func (c *Correlator) Correlate(ctx context.Context, bucket, prefix, runID string) (*Tracker, error) {
	t := NewTracker(runID)

	for key, err := range c.lister.ListKeys(ctx, bucket, prefix) {
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", bucket, prefix, err)
		}
		t.Observe(key)
	}

	seen, matched := t.Stats()
	c.logger.Debugw("Correlation scan finished",
		"bucket", bucket,
		"prefix", prefix,
		"run_id", t.codec.RunID(),
		"global", t.codec.Global(),
		"objects_seen", seen,
		"objects_matched", matched,
		"instances", t.Len(),
	)

	return t, nil
}

// CorrelateLatest returns the instance id to latest object key mapping for
// runID under bucket/prefix. Instances without output are absent.
func (c *Correlator) CorrelateLatest(ctx context.Context, bucket, prefix, runID string) (map[string]string, error) {
	t, err := c.Correlate(ctx, bucket, prefix, runID)
	if err != nil {
		return nil, err
	}
	return t.Result(), nil
}
