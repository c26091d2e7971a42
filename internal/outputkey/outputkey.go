// Package outputkey parses and encodes the S3 object keys that Systems
// Manager writes association output under.
//
// A key has the shape
//
//	[<prefix>/]<instance_id>/<run_id>/<YYYY-MM-DD>T<HH-MM-SS>.<mmm>Z/<...>stdout
//
// where the time component uses hyphens instead of colons. Keys that do
// not have this shape are not errors; Parse simply reports no match.
package outputkey

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Stream is the trailing token of every key that carries command output.
const Stream = "stdout"

// stampLayout renders the timestamp segment of a key.
const stampLayout = "2006-01-02T15-04-05.000Z"

// ParsedKey is the projection of one output object key.
type ParsedKey struct {
	InstanceID string
	RunID      string
	Timestamp  int64 // unix seconds
	RawKey     string
}

// Codec matches keys belonging to one run id, or to any run id when
// constructed with an empty run id.
type Codec struct {
	runID string
	re    *regexp.Regexp
}

// NewCodec returns a Codec scoped to runID. An empty runID matches every
// run, which is how the global latest correlation is expressed.
func NewCodec(runID string) *Codec {
	run := `[^/]+`
	if runID != "" {
		run = regexp.QuoteMeta(runID)
	}
	pattern := `(?:^|/)(i-[0-9A-Za-z]+)/(` + run + `)/(\d{4}-\d{2}-\d{2})T(\d{2}-\d{2}-\d{2})\.(\d{3})Z.*` + Stream + `$`
	return &Codec{
		runID: runID,
		re:    regexp.MustCompile(pattern),
	}
}

// RunID returns the run id the codec is scoped to ("" for global).
func (c *Codec) RunID() string {
	return c.runID
}

// Global reports whether the codec ignores the run id segment.
func (c *Codec) Global() bool {
	return c.runID == ""
}

// Parse returns the parsed key and true when raw is a stdout key for the
// codec's run. Any other key yields false.
func (c *Codec) Parse(raw string) (ParsedKey, bool) {
	m := c.re.FindStringSubmatch(raw)
	if m == nil {
		return ParsedKey{}, false
	}

	return ParsedKey{
		InstanceID: m[1],
		RunID:      m[2],
		Timestamp:  decodeTimestamp(raw, m[3], m[4], m[5]),
		RawKey:     raw,
	}, true
}

// Parse is a convenience for NewCodec(runID).Parse(raw). Callers parsing
// many keys should build the Codec once.
func Parse(raw, runID string) (ParsedKey, bool) {
	return NewCodec(runID).Parse(raw)
}

// decodeTimestamp rebuilds an RFC 3339 string from the captured groups.
// The pattern has already checked every digit group, so a parse failure
// here means an impossible calendar value slipped through (month 13,
// hour 99) and is treated as a broken invariant.
func decodeTimestamp(raw, date, clock, millis string) int64 {
	fixed := date + "T" + strings.ReplaceAll(clock, "-", ":") + "." + millis + "Z"
	t, err := time.Parse(time.RFC3339, fixed)
	if err != nil {
		panic(fmt.Sprintf("outputkey: undecodable timestamp %q in key %q: %v", fixed, raw, err))
	}
	return t.Unix()
}

// Format encodes a key for instanceID and runID at ts (converted to UTC).
// suffix is appended after the timestamp segment and should end in Stream
// for the key to be picked up by Parse.
func Format(instanceID, runID string, ts time.Time, suffix string) string {
	return instanceID + "/" + runID + "/" + ts.UTC().Format(stampLayout) + "/" + strings.TrimPrefix(suffix, "/")
}
