/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import "fmt"

// Key identifies one schema variant: an entity type descriptor paired with
// a normalized partition. Keys are comparable and safe to use as map keys.
// Two descriptors with the same name never share a key.
type Key struct {
	entity    string
	entityID  uint64
	partition Partition
}

// DeriveKey computes the cache key for et at p. It is pure and total; p is
// expected to have been validated by the caller.
func DeriveKey(et *EntityType, p Partition) Key {
	return Key{entity: et.Name(), entityID: et.ID(), partition: p}
}

func (k Key) Entity() string       { return k.entity }
func (k Key) EntityID() uint64     { return k.entityID }
func (k Key) Partition() Partition { return k.partition }

// String renders the key as "News#1|day|20200327" or "News#1|-" for the base
// table. Entity names cannot contain '#' or '|', so distinct keys never
// render the same.
func (k Key) String() string {
	if !k.partition.IsPartitioned() {
		return fmt.Sprintf("%s#%d|-", k.entity, k.entityID)
	}
	return fmt.Sprintf("%s#%d|%s|%s", k.entity, k.entityID, k.partition.granularity, k.partition.digits())
}
