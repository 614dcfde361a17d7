// Package perf keeps a bounded in-memory history of request and query
// timings for the admin perf endpoint.
package perf

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the number of entries kept before the oldest is overwritten.
const DefaultRingSize = 10000

// EntryKind distinguishes API requests from SQL statements.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is one timing sample.
type Entry struct {
	Kind EntryKind
	// Key groups samples: "GET /api/schedule?action=all-schedules" for
	// requests, the first line of the statement for queries.
	Key        string
	StatusCode int // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring of entries. Aggregation happens on read.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	total   atomic.Int64
}

// NewCollector returns a collector holding up to size entries.
// POST: size <= 0 selects DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when the ring is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.next] = e
	c.next = (c.next + 1) % len(c.entries)
	c.mu.Unlock()
	c.total.Add(1)
}

// TotalRecorded counts every entry ever recorded, including overwritten ones.
func (c *Collector) TotalRecorded() int64 {
	return c.total.Load()
}

// Snapshot is the aggregated view served as JSON.
type Snapshot struct {
	TotalRecorded    int64          `json:"totalRecorded"`
	Requests         int            `json:"requests"`
	ClientErrors     int            `json:"clientErrors"`
	ServerErrors     int            `json:"serverErrors"`
	RequestP50Ms     float64        `json:"requestP50Ms"`
	RequestP95Ms     float64        `json:"requestP95Ms"`
	RequestP99Ms     float64        `json:"requestP99Ms"`
	SlowestEndpoints []EndpointStat `json:"slowestEndpoints"`
	SlowestQueries   []EndpointStat `json:"slowestQueries"`
}

// EndpointStat aggregates the samples sharing one Key.
type EndpointStat struct {
	Key    string  `json:"key"`
	Count  int     `json:"count"`
	AvgMs  float64 `json:"avgMs"`
	MaxMs  float64 `json:"maxMs"`
	Errors int     `json:"errors,omitempty"`

	totalMs float64
}

type statSet map[string]*EndpointStat

func (s statSet) add(e Entry) {
	st, ok := s[e.Key]
	if !ok {
		st = &EndpointStat{Key: e.Key}
		s[e.Key] = st
	}
	st.Count++
	st.totalMs += e.DurationMs
	st.MaxMs = max(st.MaxMs, e.DurationMs)
	if e.StatusCode >= 500 {
		st.Errors++
	}
}

// top returns the n keys with the highest average, ties broken by key.
func (s statSet) top(n int) []EndpointStat {
	list := make([]EndpointStat, 0, len(s))
	for _, st := range s {
		st.AvgMs = st.totalMs / float64(st.Count)
		list = append(list, *st)
	}
	slices.SortFunc(list, func(a, b EndpointStat) int {
		if c := cmp.Compare(b.AvgMs, a.AvgMs); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}

// Snapshot aggregates entries recorded at or after since.
// PRE: topN > 0
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := slices.Clone(c.entries)
	c.mu.Unlock()

	var durations []float64
	requests, queries := statSet{}, statSet{}
	snap := Snapshot{TotalRecorded: c.TotalRecorded()}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		if e.Kind == KindQuery {
			queries.add(e)
			continue
		}
		durations = append(durations, e.DurationMs)
		requests.add(e)
		switch {
		case e.StatusCode >= 500:
			snap.ServerErrors++
		case e.StatusCode >= 400:
			snap.ClientErrors++
		}
	}

	snap.Requests = len(durations)
	snap.SlowestEndpoints = requests.top(topN)
	snap.SlowestQueries = queries.top(topN)
	if len(durations) > 0 {
		slices.Sort(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted, non-empty slice.
func percentile(sorted []float64, p float64) float64 {
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}
