/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schemacache

import (
	"github.com/uber-go/tally/v4"
)

// Metrics is the struct containing all the counters that track internal state of the cache.
type Metrics struct {
	Hits          tally.Counter
	Misses        tally.Counter
	Builds        tally.Counter
	BuildFailures tally.Counter
	Evictions     tally.Counter
	Abandoned     tally.Counter

	Entries       tally.Gauge
	BuildDuration tally.Timer
}

// NewMetrics returns a new Metrics struct, with all metrics
// initialized and rooted at the given tally.Scope. A nil scope reports nowhere.
func NewMetrics(scope tally.Scope) *Metrics {
	if scope == nil {
		scope = tally.NoopScope
	}
	s := scope.SubScope("schema_cache")
	return &Metrics{
		Hits:          s.Counter("hits"),
		Misses:        s.Counter("misses"),
		Builds:        s.Counter("builds"),
		BuildFailures: s.Counter("build_failures"),
		Evictions:     s.Counter("evictions"),
		Abandoned:     s.Counter("abandoned_waits"),

		Entries:       s.Gauge("entries"),
		BuildDuration: s.Timer("build_duration"),
	}
}
