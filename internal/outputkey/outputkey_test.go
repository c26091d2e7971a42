package outputkey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidKey(t *testing.T) {
	raw := "i-1/run1/2024-01-02T09-00-00.000Z/out/stdout"

	pk, ok := Parse(raw, "run1")

	require.True(t, ok)
	assert.Equal(t, "i-1", pk.InstanceID)
	assert.Equal(t, "run1", pk.RunID)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC).Unix(), pk.Timestamp)
	assert.Equal(t, raw, pk.RawKey)
}

func TestParse_WithOutputPrefix(t *testing.T) {
	raw := "123456789012/i-085553375ff1887b2/7c4e1a2b-0000-4f9d-b1a4-1f2e3d4c5b6a/2023-11-30T23-59-59.999Z/awsrunShellScript/0.awsrunShellScript/stdout"

	pk, ok := Parse(raw, "7c4e1a2b-0000-4f9d-b1a4-1f2e3d4c5b6a")

	require.True(t, ok)
	assert.Equal(t, "i-085553375ff1887b2", pk.InstanceID)
	// Milliseconds are truncated to whole seconds
	assert.Equal(t, time.Date(2023, 11, 30, 23, 59, 59, 0, time.UTC).Unix(), pk.Timestamp)
}

func TestParse_NonMatching(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"stderr stream", "i-1/run1/2024-01-02T09-00-00.000Z/out/stderr"},
		{"other run id", "i-1/run2/2024-01-02T09-00-00.000Z/out/stdout"},
		{"run id prefix only", "i-1/run10/2024-01-02T09-00-00.000Z/out/stdout"},
		{"metadata object", "i-1/run1/2024-01-02T09-00-00.000Z/"},
		{"colons in time", "i-1/run1/2024-01-02T09:00:00.000Z/out/stdout"},
		{"missing millis", "i-1/run1/2024-01-02T09-00-00Z/out/stdout"},
		{"not an instance", "host-1/run1/2024-01-02T09-00-00.000Z/out/stdout"},
		{"instance glued to prefix", "xi-1/run1/2024-01-02T09-00-00.000Z/out/stdout"},
		{"empty", ""},
	}

	codec := NewCodec("run1")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := codec.Parse(tt.raw)
			assert.False(t, ok)
		})
	}
}

func TestParse_RunIDIsLiteral(t *testing.T) {
	// Regex metacharacters in the run id must not widen the match
	codec := NewCodec("run.1")
	assert.Equal(t, "run.1", codec.RunID())
	assert.False(t, codec.Global())

	_, ok := codec.Parse("i-1/runX1/2024-01-02T09-00-00.000Z/stdout")
	assert.False(t, ok)

	_, ok = codec.Parse("i-1/run.1/2024-01-02T09-00-00.000Z/stdout")
	assert.True(t, ok)
}

func TestParse_GlobalMode(t *testing.T) {
	codec := NewCodec("")
	assert.True(t, codec.Global())
	assert.Empty(t, codec.RunID())

	a, ok := codec.Parse("i-1/run1/2024-01-02T09-00-00.000Z/out/stdout")
	require.True(t, ok)
	assert.Equal(t, "run1", a.RunID)

	b, ok := codec.Parse("i-1/run2/2024-01-03T09-00-00.000Z/out/stdout")
	require.True(t, ok)
	assert.Equal(t, "run2", b.RunID)

	_, ok = codec.Parse("i-1/run2/2024-01-03T09-00-00.000Z/out/stderr")
	assert.False(t, ok)
}

func TestParse_ImpossibleCalendarValuePanics(t *testing.T) {
	codec := NewCodec("run1")
	assert.Panics(t, func() {
		codec.Parse("i-1/run1/2024-13-45T99-00-00.000Z/stdout")
	})
}

func TestFormat_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 2, 29, 17, 4, 5, 123_000_000, time.UTC)

	raw := Format("i-0abc", "run1", ts, "awsrunShellScript/0.awsrunShellScript/stdout")
	assert.Equal(t, "i-0abc/run1/2024-02-29T17-04-05.123Z/awsrunShellScript/0.awsrunShellScript/stdout", raw)

	pk, ok := Parse(raw, "run1")
	require.True(t, ok)
	assert.Equal(t, "i-0abc", pk.InstanceID)
	assert.Equal(t, ts.Unix(), pk.Timestamp)
}

func TestFormat_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 1, 1, 1, 30, 0, 0, loc)

	raw := Format("i-1", "run1", ts, "/stdout")
	assert.Equal(t, "i-1/run1/2024-01-01T00-30-00.000Z/stdout", raw)
}
