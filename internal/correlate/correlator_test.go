package correlate

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/getversions/internal/logger"
)

type fakeLister struct {
	keys    []string
	failAt  int // index at which to yield err; -1 = never
	err     error
	yielded int
	bucket  string
	prefix  string
}

func (f *fakeLister) ListKeys(_ context.Context, bucket, prefix string) iter.Seq2[string, error] {
	f.bucket, f.prefix = bucket, prefix
	return func(yield func(string, error) bool) {
		for i, k := range f.keys {
			if i == f.failAt {
				yield("", f.err)
				return
			}
			f.yielded++
			if !yield(k, nil) {
				return
			}
		}
	}
}

func TestNewCorrelator_Validation(t *testing.T) {
	c, err := NewCorrelator(nil, logger.NewNop())
	assert.Error(t, err)
	assert.Nil(t, c)

	c, err = NewCorrelator(&fakeLister{failAt: -1}, nil)
	require.NoError(t, err)
	assert.NotNil(t, c.logger)
}

func TestCorrelator_CorrelateLatest(t *testing.T) {
	lister := &fakeLister{
		failAt: -1,
		keys: []string{
			"acct/i-1/assoc-1/2024-01-01T10-00-00.000Z/out/stdout",
			"acct/i-1/assoc-1/2024-01-01T10-00-00.000Z/out/stderr",
			"acct/i-2/assoc-1/2024-01-01T11-00-00.000Z/out/stdout",
			"acct/i-1/assoc-1/2024-01-02T09-00-00.000Z/out/stdout",
			"acct/i-3/assoc-9/2024-01-09T09-00-00.000Z/out/stdout",
		},
	}
	c, err := NewCorrelator(lister, logger.NewNop())
	require.NoError(t, err)

	got, err := c.CorrelateLatest(context.Background(), "bucket", "acct", "assoc-1")

	require.NoError(t, err)
	assert.Equal(t, "bucket", lister.bucket)
	assert.Equal(t, "acct", lister.prefix)
	assert.Equal(t, map[string]string{
		"i-1": "acct/i-1/assoc-1/2024-01-02T09-00-00.000Z/out/stdout",
		"i-2": "acct/i-2/assoc-1/2024-01-01T11-00-00.000Z/out/stdout",
	}, got)
}

func TestCorrelator_ListingErrorPropagates(t *testing.T) {
	boom := errors.New("AccessDenied")
	lister := &fakeLister{
		failAt: 1,
		err:    boom,
		keys: []string{
			"i-1/run1/2024-01-01T10-00-00.000Z/stdout",
			"i-2/run1/2024-01-01T10-00-00.000Z/stdout",
		},
	}
	c, _ := NewCorrelator(lister, logger.NewNop())

	got, err := c.CorrelateLatest(context.Background(), "bucket", "", "run1")

	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, lister.yielded)
}

func TestCorrelator_CorrelateReturnsTracker(t *testing.T) {
	lister := &fakeLister{
		failAt: -1,
		keys: []string{
			"i-1/run1/2024-01-01T10-00-00.000Z/stdout",
			"unrelated/object.json",
		},
	}
	c, _ := NewCorrelator(lister, logger.NewNop())

	tr, err := c.Correlate(context.Background(), "bucket", "", "run1")

	require.NoError(t, err)
	seen, matched := tr.Stats()
	assert.Equal(t, 2, seen)
	assert.Equal(t, 1, matched)
}
