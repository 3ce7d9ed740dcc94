/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package partitionstore

import (
	"context"
	"fmt"

	"github.com/suparena/partitionstore/errors"
	"github.com/suparena/partitionstore/logger"
	"github.com/suparena/partitionstore/registry"
	"github.com/suparena/partitionstore/schema"
	"github.com/suparena/partitionstore/schemacache"
)

// Factory opens sessions bound to one partition of an entity type. Schema
// artifacts come from the factory's cache, so concurrent opens of the same
// partition share one build.
type Factory struct {
	registry *registry.Registry
	cache    *schemacache.Cache
	builder  *schema.Builder
	openers  *openerSet
	log      *logger.Logger
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the factory logger
func WithLogger(l *logger.Logger) FactoryOption {
	return func(f *Factory) {
		if l != nil {
			f.log = l
		}
	}
}

// WithBuilder replaces the schema builder, e.g. to install a build hook
func WithBuilder(b *schema.Builder) FactoryOption {
	return func(f *Factory) {
		if b != nil {
			f.builder = b
		}
	}
}

// NewFactory creates a factory resolving entity types in reg and caching
// artifacts in cache. A nil cache gets a fresh unbounded one.
func NewFactory(reg *registry.Registry, cache *schemacache.Cache, opts ...FactoryOption) *Factory {
	if cache == nil {
		cache = schemacache.New()
	}
	f := &Factory{
		registry: reg,
		cache:    cache,
		builder:  schema.NewBuilder(),
		openers:  newOpenerSet(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) Cache() *schemacache.Cache     { return f.cache }
func (f *Factory) Registry() *registry.Registry { return f.registry }

// Open returns a session over the partition p of T's entity type. The
// descriptor is validated before any cache access, and nothing is cached
// when it is rejected. On any error no session is returned.
func Open[T any](ctx context.Context, f *Factory, p schema.Partition) (*Session[T], error) {
	et, ok := registry.Lookup[T](f.registry)
	if !ok {
		return nil, errors.NewValidationError("type", fmt.Sprintf("no entity type registered for %s", typeOf[T]()))
	}
	opener, ok := getOpener[T](f.openers)
	if !ok {
		return nil, errors.NewValidationError("type", fmt.Sprintf("no opener registered for %s", typeOf[T]()))
	}
	if err := et.ValidatePartition(p); err != nil {
		return nil, err
	}

	key := schema.DeriveKey(et, p)
	artifact, err := f.cache.GetOrBuild(ctx, key, func() (*schema.Artifact, error) {
		return f.builder.Build(et, p)
	})
	if err != nil {
		return nil, err
	}

	store, err := opener.Open(ctx, artifact)
	if err != nil {
		return nil, err
	}

	s := newSession(artifact, store, f.log)
	f.log.Debug("session opened", "session", s.id, "key", key.String(), "table", artifact.TableName())
	return s, nil
}
