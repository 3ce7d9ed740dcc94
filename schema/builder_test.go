/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/partitionstore/errors"
)

type newsItem struct {
	ID          string    `store:"id,pk"`
	Title       string    `store:"title"`
	Body        string
	Views       int64
	PublishedAt time.Time
	EditedAt    *time.Time
	Draft       bool `store:"-"`
	internal    string
}

func newsType(opts ...EntityOption) *EntityType {
	base := []EntityOption{WithGranularity(GranularityDay), WithTableName("news")}
	return EntityTypeOf[newsItem](append(base, opts...)...)
}

func TestBuildDayPartition(t *testing.T) {
	a, err := NewBuilder().Build(newsType(), DayOf(2020, time.March, 27))
	require.NoError(t, err)

	assert.Equal(t, "20200327", a.TableName())
	assert.Equal(t, "newsItem", a.Entity())
	assert.Equal(t, DayOf(2020, time.March, 27), a.Partition())

	cols := a.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "title", "body", "views", "published_at", "edited_at"}, names)

	pk := a.PrimaryKey()
	require.Len(t, pk, 1)
	assert.Equal(t, "ID", pk[0].Field)

	edited, ok := a.Column("EditedAt")
	require.True(t, ok)
	assert.True(t, edited.Nullable)
	assert.Equal(t, KindTime, edited.Kind)

	_, ok = a.Column("Draft")
	assert.False(t, ok)
	_, ok = a.ColumnByName("internal")
	assert.False(t, ok)
}

func TestBuildTablePrefixAndMonth(t *testing.T) {
	et := NewEntityType("Audit",
		WithGranularity(GranularityMonth),
		WithTablePrefix("audit_"),
		WithFields(Field{Name: "ID", Kind: KindInt, PrimaryKey: true}),
	)
	a, err := NewBuilder().Build(et, Month(time.Date(2020, 3, 27, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, "audit_202003", a.TableName())

	name, err := et.ObjectName(MonthOf(2020, time.March))
	require.NoError(t, err)
	assert.Equal(t, a.TableName(), name)
}

func TestBuildUnpartitioned(t *testing.T) {
	a, err := NewBuilder().Build(newsType(), Unpartitioned)
	require.NoError(t, err)
	assert.Equal(t, "news", a.TableName())

	_, err = NewBuilder().Build(EntityTypeOf[newsItem](WithGranularity(GranularityDay)), Unpartitioned)
	assert.True(t, errors.IsInvalidMapping(err))
}

func TestBuildIsDeterministic(t *testing.T) {
	b := NewBuilder()
	p := DayOf(2020, time.March, 27)
	et := newsType()
	a1, err := b.Build(et, p)
	require.NoError(t, err)
	a2, err := b.Build(et, p)
	require.NoError(t, err)

	assert.NotSame(t, a1, a2)
	assert.True(t, a1.Equal(a2))

	other, err := b.Build(et, p.Next())
	require.NoError(t, err)
	assert.False(t, a1.Equal(other))
	assert.NotEqual(t, a1.TableName(), other.TableName())
}

func TestBuildDescriptorErrors(t *testing.T) {
	tests := []struct {
		name string
		et   *EntityType
		p    Partition
	}{
		{name: "year zero", et: newsType(), p: DayOf(0, time.March, 27)},
		{name: "day out of range", et: newsType(), p: DayOf(2021, time.February, 29)},
		{name: "granularity mismatch", et: newsType(), p: MonthOf(2020, time.March)},
		{name: "entity not partitioned", et: EntityTypeOf[newsItem](WithTableName("news")), p: DayOf(2020, time.March, 27)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewBuilder().Build(tt.et, tt.p)
			assert.Nil(t, a)
			assert.True(t, errors.IsInvalidDescriptor(err), "got %v", err)
		})
	}
}

func TestBuildMappingErrors(t *testing.T) {
	type noKey struct {
		Title string
	}
	type badType struct {
		ID   string `store:"id,pk"`
		Tags []string
	}
	type badTag struct {
		ID string `store:"id,primary"`
	}
	type dupColumn struct {
		ID    string `store:"id,pk"`
		Other string `store:"id"`
	}
	day := DayOf(2020, time.March, 27)

	tests := []struct {
		name string
		et   *EntityType
	}{
		{name: "no primary key", et: EntityTypeOf[noKey](WithGranularity(GranularityDay))},
		{name: "unsupported type", et: EntityTypeOf[badType](WithGranularity(GranularityDay))},
		{name: "unknown tag option", et: EntityTypeOf[badTag](WithGranularity(GranularityDay))},
		{name: "duplicate column", et: EntityTypeOf[dupColumn](WithGranularity(GranularityDay))},
		{name: "no fields", et: NewEntityType("Empty", WithGranularity(GranularityDay))},
		{name: "bad name", et: NewEntityType("with|pipe", WithGranularity(GranularityDay), WithFields(Field{Name: "ID", Kind: KindString, PrimaryKey: true}))},
		{name: "nullable key", et: NewEntityType("N", WithGranularity(GranularityDay), WithFields(Field{Name: "ID", Kind: KindString, PrimaryKey: true, Nullable: true}))},
		{name: "rename unknown field", et: newsType(WithRename("Nope", "x", DayOf(2020, time.January, 1)))},
		{name: "rename wrong granularity", et: newsType(WithRename("Body", "content", MonthOf(2020, time.January)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewBuilder().Build(tt.et, day)
			assert.Nil(t, a)
			assert.True(t, errors.IsInvalidMapping(err), "got %v", err)
		})
	}
}

func TestBuildRenamesApplyFromPartition(t *testing.T) {
	et := newsType(
		WithRename("Body", "content", DayOf(2020, time.March, 27)),
		WithRename("Body", "content_v2", DayOf(2020, time.June, 1)),
	)
	b := NewBuilder()

	colFor := func(p Partition) string {
		a, err := b.Build(et, p)
		require.NoError(t, err)
		c, ok := a.Column("Body")
		require.True(t, ok)
		return c.Name
	}

	assert.Equal(t, "body", colFor(DayOf(2020, time.March, 26)))
	assert.Equal(t, "content", colFor(DayOf(2020, time.March, 27)))
	assert.Equal(t, "content", colFor(DayOf(2020, time.May, 31)))
	assert.Equal(t, "content_v2", colFor(DayOf(2020, time.June, 1)))
	assert.Equal(t, "body", colFor(Unpartitioned))
}

func TestBuildExpandsPartitionMacro(t *testing.T) {
	et := newsType(WithIndexMap(map[string]string{
		"PK": "NEWS#{ID}",
		"SK": "DAY#" + PartitionMacro,
	}))
	a, err := NewBuilder().Build(et, DayOf(2020, time.March, 27))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"PK": "NEWS#{ID}", "SK": "DAY#20200327"}, a.IndexMap())

	// the entity type keeps its raw templates
	assert.Equal(t, "DAY#{Partition}", et.IndexMap()["SK"])
}

func TestBuildHookAndClock(t *testing.T) {
	var calls []Partition
	stamp := time.Date(2020, 3, 27, 12, 0, 0, 0, time.UTC)
	b := NewBuilder(
		WithBuildHook(func(et *EntityType, p Partition) { calls = append(calls, p) }),
		WithBuildClock(func() time.Time { return stamp }),
	)
	a, err := b.Build(newsType(), DayOf(2020, time.March, 27))
	require.NoError(t, err)
	assert.Equal(t, stamp, a.BuiltAt())
	_, _ = b.Build(newsType(), DayOf(0, time.March, 27))
	assert.Equal(t, []Partition{DayOf(2020, time.March, 27), DayOf(0, time.March, 27)}, calls)
}

func TestArtifactAccessorsReturnCopies(t *testing.T) {
	a, err := NewBuilder().Build(newsType(WithIndexMap(map[string]string{"PK": "N#{ID}"})), DayOf(2020, time.March, 27))
	require.NoError(t, err)

	cols := a.Columns()
	cols[0].Name = "mutated"
	im := a.IndexMap()
	im["PK"] = "mutated"

	c, _ := a.Column("ID")
	assert.Equal(t, "id", c.Name)
	assert.Equal(t, "N#{ID}", a.IndexMap()["PK"])
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"ID":          "id",
		"PublishedAt": "published_at",
		"UserID":      "user_id",
		"HTTPServer":  "http_server",
		"views":       "views",
		"Page2Title":  "page2_title",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeCase(in), in)
	}
}

func TestBindKeepsDeclaredFields(t *testing.T) {
	et := NewEntityType("News", WithGranularity(GranularityDay), WithFields(
		Field{Name: "ID", Column: "news_id", Kind: KindString, PrimaryKey: true},
	)).Bind(reflect.TypeOf(&newsItem{}))

	assert.Equal(t, reflect.TypeOf(newsItem{}), et.GoType())
	a, err := NewBuilder().Build(et, DayOf(2020, time.March, 27))
	require.NoError(t, err)
	require.Len(t, a.Columns(), 1)
	assert.Equal(t, "news_id", a.Columns()[0].Name)
}

func TestValidatePartition(t *testing.T) {
	et := newsType()
	assert.NoError(t, et.ValidatePartition(DayOf(2020, time.March, 27)))
	assert.NoError(t, et.ValidatePartition(Unpartitioned))
	assert.True(t, errors.IsInvalidDescriptor(et.ValidatePartition(MonthOf(2020, time.March))))
	assert.True(t, errors.IsInvalidDescriptor(et.ValidatePartition(DayOf(0, time.March, 27))))

	flat := NewEntityType("Settings", WithTableName("settings"),
		WithFields(Field{Name: "Key", Kind: KindString, PrimaryKey: true}))
	assert.True(t, errors.IsInvalidDescriptor(flat.ValidatePartition(DayOf(2020, time.March, 27))))

	_, err := flat.ObjectName(DayOf(2020, time.March, 27))
	assert.True(t, errors.IsInvalidDescriptor(err))
}
