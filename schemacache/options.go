/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schemacache

import (
	"time"

	"github.com/suparena/partitionstore/logger"
	"github.com/uber-go/tally/v4"
)

// Options configures a Cache. The zero value keeps every artifact for the
// lifetime of the process.
type Options struct {
	// MaxEntries bounds the number of cached artifacts; the least recently
	// used entry is evicted first. Zero means unbounded.
	MaxEntries int
	// TTL expires artifacts this long after they were published. Zero
	// disables age based expiry.
	TTL    time.Duration
	Clock  func() time.Time
	Logger *logger.Logger
	Scope  tally.Scope
}

// Option is a functional option for configuring a Cache
type Option func(*Options)

// DefaultOptions returns unbounded retention with no-op logging and metrics.
func DefaultOptions() Options {
	return Options{
		Clock:  time.Now,
		Logger: logger.Nop(),
		Scope:  tally.NoopScope,
	}
}

// WithMaxEntries sets the maximum number of cached artifacts
func WithMaxEntries(n int) Option {
	return func(o *Options) {
		o.MaxEntries = n
	}
}

// WithTTL sets the age after which an artifact is rebuilt
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.TTL = ttl
	}
}

// WithClock replaces the clock used for TTL bookkeeping
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Clock = now
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithMetricsScope roots the cache metrics at scope. nil disables metrics.
func WithMetricsScope(scope tally.Scope) Option {
	return func(o *Options) {
		if scope == nil {
			scope = tally.NoopScope
		}
		o.Scope = scope
	}
}
