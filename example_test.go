/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package partitionstore_test

import (
	"context"
	"fmt"
	"time"

	"github.com/suparena/partitionstore"
	"github.com/suparena/partitionstore/datastore/mock"
	"github.com/suparena/partitionstore/registry"
	"github.com/suparena/partitionstore/schema"
	"github.com/suparena/partitionstore/schemacache"
	"github.com/suparena/partitionstore/storagemodels"
)

func ExampleOpen() {
	type Event struct {
		ID   string `store:"id,pk"`
		Kind string
	}

	reg := registry.New()
	registry.MustRegister[Event](reg, schema.NewEntityType("Event",
		schema.WithGranularity(schema.GranularityDay),
		schema.WithTablePrefix("events_"),
	))

	server := mock.NewServer()
	server.Provision("events_20200327")

	factory := partitionstore.NewFactory(reg, schemacache.New(schemacache.WithMaxEntries(64)))
	if err := partitionstore.RegisterOpener[Event](factory, mock.NewOpener[Event](server)); err != nil {
		panic(err)
	}

	ctx := context.Background()
	session, err := partitionstore.Open[Event](ctx, factory, schema.DayOf(2020, time.March, 27))
	if err != nil {
		panic(err)
	}
	defer session.Close()

	session.Add(Event{ID: "e-1", Kind: "login"})
	session.Add(Event{ID: "e-2", Kind: "logout"})
	if _, err := session.Commit(ctx); err != nil {
		panic(err)
	}

	logins, _ := session.Query(ctx, storagemodels.NewQuery().Eq("Kind", "login"))
	fmt.Println(session.TableName(), len(logins), logins[0].ID)
	// Output: events_20200327 1 e-1
}
