// Package correlate selects, per instance, the most recent command output
// object from an unordered object listing.
package correlate

import (
	"iter"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/getversions/internal/outputkey"
)

// Entry is the latest output recorded for one instance.
type Entry struct {
	InstanceID string
	RunID      string
	Timestamp  int64
	Key        string
}

// Tracker is a latest-wins fold over output keys. It keeps one entry per
// instance and never holds more than that, so it can consume arbitrarily
// long listings.
//
// A Tracker is owned by a single scan and is not safe for concurrent use.
// Parallel scans each use their own Tracker and are combined with Merge.
type Tracker struct {
	codec   *outputkey.Codec
	latest  *orderedmap.OrderedMap[string, Entry]
	seen    int
	matched int
}

// NewTracker returns an empty Tracker scoped to runID ("" = any run).
func NewTracker(runID string) *Tracker {
	return &Tracker{
		codec:  outputkey.NewCodec(runID),
		latest: orderedmap.NewOrderedMap[string, Entry](),
	}
}

// Observe feeds one raw key to the tracker. It reports whether the key
// was an output key for the tracked run.
func (t *Tracker) Observe(raw string) bool {
	t.seen++
	pk, ok := t.codec.Parse(raw)
	if !ok {
		return false
	}
	t.matched++
	t.offer(Entry{
		InstanceID: pk.InstanceID,
		RunID:      pk.RunID,
		Timestamp:  pk.Timestamp,
		Key:        pk.RawKey,
	})
	return true
}

// offer records e if it is strictly newer than the current entry for its
// instance. Equal timestamps keep the entry seen first.
func (t *Tracker) offer(e Entry) {
	cur, ok := t.latest.Get(e.InstanceID)
	if ok && e.Timestamp <= cur.Timestamp {
		return
	}
	t.latest.Set(e.InstanceID, e)
}

// Merge folds other into t with the same rule as Observe. On equal
// timestamps t keeps its own entry.
func (t *Tracker) Merge(other *Tracker) {
	for el := other.latest.Front(); el != nil; el = el.Next() {
		t.offer(el.Value)
	}
	t.seen += other.seen
	t.matched += other.matched
}

// Latest returns the entry recorded for instanceID.
func (t *Tracker) Latest(instanceID string) (Entry, bool) {
	return t.latest.Get(instanceID)
}

// Result returns the instance id to object key mapping.
func (t *Tracker) Result() map[string]string {
	out := make(map[string]string, t.latest.Len())
	for el := t.latest.Front(); el != nil; el = el.Next() {
		out[el.Key] = el.Value.Key
	}
	return out
}

// Entries returns the recorded entries in the order their instances were
// first seen.
func (t *Tracker) Entries() []Entry {
	out := make([]Entry, 0, t.latest.Len())
	for el := t.latest.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// Instances returns instance ids in first-seen order.
func (t *Tracker) Instances() []string {
	out := make([]string, 0, t.latest.Len())
	for el := t.latest.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key)
	}
	return out
}

// Len returns the number of instances with a recorded entry.
func (t *Tracker) Len() int {
	return t.latest.Len()
}

// Stats returns how many keys were observed and how many matched.
func (t *Tracker) Stats() (seen, matched int) {
	return t.seen, t.matched
}

// Scan consumes keys once and returns the latest key per instance for
// runID ("" = any run).
func Scan(keys iter.Seq[string], runID string) map[string]string {
	t := NewTracker(runID)
	for k := range keys {
		t.Observe(k)
	}
	return t.Result()
}
