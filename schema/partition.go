/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/suparena/partitionstore/errors"
)

// Granularity is the size of the time slice a partition covers.
type Granularity uint8

const (
	GranularityNone Granularity = iota
	GranularityDay
	GranularityMonth
)

func (g Granularity) String() string {
	switch g {
	case GranularityNone:
		return "none"
	case GranularityDay:
		return "day"
	case GranularityMonth:
		return "month"
	default:
		return fmt.Sprintf("granularity(%d)", uint8(g))
	}
}

// ParseGranularity accepts "none", "day" or "month" (case insensitive, empty means none).
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return GranularityNone, nil
	case "day", "daily":
		return GranularityDay, nil
	case "month", "monthly":
		return GranularityMonth, nil
	default:
		return GranularityNone, fmt.Errorf("unknown granularity %q", s)
	}
}

// Layout returns the fixed-width, lexically sortable layout used for physical
// object names at this granularity.
func (g Granularity) Layout() string {
	switch g {
	case GranularityDay:
		return "20060102"
	case GranularityMonth:
		return "200601"
	default:
		return ""
	}
}

// Partition identifies the physical partition a session targets. It is a
// comparable value: two partitions are the same partition iff they are ==.
// The zero value is Unpartitioned.
type Partition struct {
	granularity Granularity
	year        int
	month       time.Month
	day         int
}

// Unpartitioned selects an entity's base table.
var Unpartitioned = Partition{}

// Day returns the day partition containing t. The calendar date is taken in
// t's own location and the clock is dropped.
func Day(t time.Time) Partition {
	y, m, d := t.Date()
	return Partition{granularity: GranularityDay, year: y, month: m, day: d}
}

// Month returns the month partition containing t, in t's own location.
func Month(t time.Time) Partition {
	y, m, _ := t.Date()
	return Partition{granularity: GranularityMonth, year: y, month: m, day: 1}
}

// DayOf returns a day partition from raw calendar fields. Unlike Day it does
// not normalize, so out-of-range values are reported by Validate.
func DayOf(year int, month time.Month, day int) Partition {
	return Partition{granularity: GranularityDay, year: year, month: month, day: day}
}

// MonthOf returns a month partition from raw calendar fields.
func MonthOf(year int, month time.Month) Partition {
	return Partition{granularity: GranularityMonth, year: year, month: month, day: 1}
}

// FromDate returns the day partition for a swagger full-date.
func FromDate(d strfmt.Date) Partition {
	return Day(time.Time(d))
}

// ParseDay parses a full-date ("2020-03-27") into a day partition.
func ParseDay(s string) (Partition, error) {
	if s == "" {
		return Unpartitioned, errors.NewDescriptorError(s, "empty date")
	}
	var d strfmt.Date
	if err := d.UnmarshalText([]byte(s)); err != nil {
		return Unpartitioned, errors.NewDescriptorError(s, "not a full-date (YYYY-MM-DD)")
	}
	return FromDate(d), nil
}

// ParseMonth parses "2020-03" into a month partition.
func ParseMonth(s string) (Partition, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Unpartitioned, errors.NewDescriptorError(s, "not a year-month (YYYY-MM)")
	}
	return Month(t), nil
}

// ParsePartition parses s at granularity g. An empty string or "-" yields
// Unpartitioned regardless of g.
func ParsePartition(g Granularity, s string) (Partition, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return Unpartitioned, nil
	}
	switch g {
	case GranularityDay:
		return ParseDay(s)
	case GranularityMonth:
		return ParseMonth(s)
	default:
		return Unpartitioned, errors.NewDescriptorError(s, "entity is not partitioned")
	}
}

func (p Partition) Granularity() Granularity { return p.granularity }

// IsPartitioned reports whether p addresses a partition rather than the base table.
func (p Partition) IsPartitioned() bool { return p.granularity != GranularityNone }

// Validate reports whether p can be formatted by the fixed naming rule.
func (p Partition) Validate() error {
	switch p.granularity {
	case GranularityNone:
		if p != Unpartitioned {
			return errors.NewDescriptorError(p.String(), "unpartitioned descriptor carries a date")
		}
		return nil
	case GranularityDay, GranularityMonth:
	default:
		return errors.NewDescriptorError(p.String(), "unknown granularity")
	}
	if p.year < 1 || p.year > 9999 {
		return errors.NewDescriptorError(p.String(), "year out of range 1..9999")
	}
	if p.month < time.January || p.month > time.December {
		return errors.NewDescriptorError(p.String(), "month out of range")
	}
	if p.granularity == GranularityDay {
		if p.day < 1 || p.day > daysIn(p.year, p.month) {
			return errors.NewDescriptorError(p.String(), "day out of range")
		}
	}
	return nil
}

// Format renders p with the granularity's layout: YYYYMMDD for days and
// YYYYMM for months. Unpartitioned formats as the empty string.
func (p Partition) Format() (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p.digits(), nil
}

func (p Partition) digits() string {
	switch p.granularity {
	case GranularityDay:
		return fmt.Sprintf("%04d%02d%02d", p.year, int(p.month), p.day)
	case GranularityMonth:
		return fmt.Sprintf("%04d%02d", p.year, int(p.month))
	default:
		return ""
	}
}

func (p Partition) String() string {
	switch p.granularity {
	case GranularityNone:
		if p == Unpartitioned {
			return "unpartitioned"
		}
		return fmt.Sprintf("none:%04d-%02d-%02d", p.year, int(p.month), p.day)
	case GranularityDay:
		return fmt.Sprintf("day:%04d-%02d-%02d", p.year, int(p.month), p.day)
	case GranularityMonth:
		return fmt.Sprintf("month:%04d-%02d", p.year, int(p.month))
	default:
		return fmt.Sprintf("%s:%04d-%02d-%02d", p.granularity, p.year, int(p.month), p.day)
	}
}

// Start returns the first instant of the partition in UTC.
func (p Partition) Start() time.Time {
	if !p.IsPartitioned() {
		return time.Time{}
	}
	return time.Date(p.year, p.month, p.day, 0, 0, 0, 0, time.UTC)
}

// Next returns the partition immediately after p at the same granularity.
func (p Partition) Next() Partition {
	switch p.granularity {
	case GranularityDay:
		return Day(p.Start().AddDate(0, 0, 1))
	case GranularityMonth:
		return Month(p.Start().AddDate(0, 1, 0))
	default:
		return p
	}
}

// Compare orders partitions of the same granularity chronologically.
// Partitions of different granularity are ordered by granularity first.
func (p Partition) Compare(o Partition) int {
	switch {
	case p.granularity != o.granularity:
		return cmpInt(int(p.granularity), int(o.granularity))
	case p.year != o.year:
		return cmpInt(p.year, o.year)
	case p.month != o.month:
		return cmpInt(int(p.month), int(o.month))
	default:
		return cmpInt(p.day, o.day)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
