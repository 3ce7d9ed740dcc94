/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/partitionstore/errors"
)

func TestDayNormalizesClock(t *testing.T) {
	morning := time.Date(2020, 3, 27, 8, 15, 0, 0, time.UTC)
	night := time.Date(2020, 3, 27, 23, 59, 59, 999, time.UTC)

	assert.Equal(t, Day(morning), Day(night))
	assert.Equal(t, DayOf(2020, time.March, 27), Day(morning))
	assert.NotEqual(t, Day(morning), Day(morning.AddDate(0, 0, -1)))

	name, err := Day(morning).Format()
	require.NoError(t, err)
	assert.Equal(t, "20200327", name)
}

func TestDayUsesLocationOfTimestamp(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	ts := time.Date(2020, 3, 27, 1, 0, 0, 0, tokyo)

	assert.Equal(t, DayOf(2020, time.March, 27), Day(ts))
	assert.Equal(t, DayOf(2020, time.March, 26), Day(ts.UTC()))
}

func TestMonth(t *testing.T) {
	p := Month(time.Date(2020, 3, 27, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, MonthOf(2020, time.March), p)
	assert.Equal(t, Month(time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)), p)

	name, err := p.Format()
	require.NoError(t, err)
	assert.Equal(t, "202003", name)
	assert.Equal(t, MonthOf(2020, time.April), p.Next())
	assert.Equal(t, MonthOf(2021, time.January), MonthOf(2020, time.December).Next())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Partition
		wantErr bool
	}{
		{name: "unpartitioned", p: Unpartitioned},
		{name: "valid day", p: DayOf(2020, time.March, 27)},
		{name: "leap day", p: DayOf(2020, time.February, 29)},
		{name: "not a leap day", p: DayOf(2019, time.February, 29), wantErr: true},
		{name: "year zero", p: DayOf(0, time.March, 27), wantErr: true},
		{name: "year too large", p: DayOf(10000, time.January, 1), wantErr: true},
		{name: "month zero", p: DayOf(2020, 0, 1), wantErr: true},
		{name: "day zero", p: DayOf(2020, time.March, 0), wantErr: true},
		{name: "month partition", p: MonthOf(9999, time.December)},
		{name: "bad month partition", p: MonthOf(2020, 13), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidDescriptor(err))
				_, ferr := tt.p.Format()
				assert.True(t, errors.IsInvalidDescriptor(ferr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	p, err := ParseDay("2020-03-27")
	require.NoError(t, err)
	assert.Equal(t, DayOf(2020, time.March, 27), p)

	_, err = ParseDay("27/03/2020")
	assert.True(t, errors.IsInvalidDescriptor(err))

	year0, err := ParseDay("0000-03-27")
	require.NoError(t, err)
	assert.True(t, errors.IsInvalidDescriptor(year0.Validate()))
}

func TestFromDate(t *testing.T) {
	d := strfmt.Date(time.Date(2020, 3, 26, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, DayOf(2020, time.March, 26), FromDate(d))
}

func TestParsePartition(t *testing.T) {
	p, err := ParsePartition(GranularityMonth, "2020-03")
	require.NoError(t, err)
	assert.Equal(t, MonthOf(2020, time.March), p)

	p, err = ParsePartition(GranularityDay, "-")
	require.NoError(t, err)
	assert.Equal(t, Unpartitioned, p)

	_, err = ParsePartition(GranularityNone, "2020-03-27")
	assert.True(t, errors.IsInvalidDescriptor(err))
}

func TestCompareAndNext(t *testing.T) {
	a := DayOf(2020, time.March, 26)
	b := a.Next()
	assert.Equal(t, DayOf(2020, time.March, 27), b)
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(DayOf(2020, time.March, 26)))
	assert.Equal(t, DayOf(2020, time.March, 1), DayOf(2020, time.February, 29).Next())
}

func TestPartitionString(t *testing.T) {
	assert.Equal(t, "unpartitioned", Unpartitioned.String())
	assert.Equal(t, "day:2020-03-27", DayOf(2020, time.March, 27).String())
	assert.Equal(t, "month:2020-03", MonthOf(2020, time.March).String())
}

func TestDeriveKey(t *testing.T) {
	news := NewEntityType("News", WithGranularity(GranularityDay))
	audit := NewEntityType("Audit", WithGranularity(GranularityDay))
	day := DayOf(2020, time.March, 27)

	assert.Equal(t, DeriveKey(news, day), DeriveKey(news, Day(day.Start().Add(5*time.Hour))))
	assert.NotEqual(t, DeriveKey(news, day), DeriveKey(news, day.Next()))
	assert.NotEqual(t, DeriveKey(news, day), DeriveKey(audit, day))
	assert.NotEqual(t, DeriveKey(news, day), DeriveKey(news, Unpartitioned))

	id := news.ID()
	assert.Equal(t, fmt.Sprintf("News#%d|day|20200327", id), DeriveKey(news, day).String())
	assert.Equal(t, fmt.Sprintf("News#%d|-", id), DeriveKey(news, Unpartitioned).String())
	assert.Equal(t, fmt.Sprintf("News#%d|month|202003", id), DeriveKey(news, MonthOf(2020, time.March)).String())
}

func TestDeriveKeyDistinguishesDescriptors(t *testing.T) {
	day := DayOf(2020, time.March, 27)
	v1 := NewEntityType("News", WithGranularity(GranularityDay))
	v2 := NewEntityType("News", WithGranularity(GranularityDay))

	assert.NotEqual(t, v1.ID(), v2.ID())
	assert.NotEqual(t, DeriveKey(v1, day), DeriveKey(v2, day))
	assert.NotEqual(t, DeriveKey(v1, day).String(), DeriveKey(v2, day).String())
	assert.Equal(t, DeriveKey(v1, day), DeriveKey(v1, day))

	renamed := v1.Named("News")
	assert.NotEqual(t, DeriveKey(v1, day), DeriveKey(renamed, day))
}
