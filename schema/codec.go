/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/suparena/partitionstore/errors"
)

// Row encodes entity (a struct or pointer to struct) into a column-keyed
// map. Values are normalized to string, int64, uint64, float64, bool,
// time.Time (UTC), []byte or nil.
func (a *Artifact) Row(entity any) (map[string]any, error) {
	v, err := structValue(entity)
	if err != nil {
		return nil, err
	}
	row := make(map[string]any, len(a.columns))
	for _, c := range a.columns {
		fv := v.FieldByName(c.Field)
		if !fv.IsValid() {
			return nil, errors.NewValidationError(c.Field, "field not present on "+v.Type().String())
		}
		row[c.Name] = normalize(fv)
	}
	return row, nil
}

// Scan decodes a column-keyed row into dst, which must be a pointer to a
// struct. Columns missing from row leave the field at its zero value.
func (a *Artifact) Scan(row map[string]any, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return errors.NewValidationError("dst", fmt.Sprintf("expected pointer to struct, got %T", dst))
	}
	v := rv.Elem()
	for _, c := range a.columns {
		raw, ok := row[c.Name]
		if !ok {
			continue
		}
		fv := v.FieldByName(c.Field)
		if !fv.IsValid() || !fv.CanSet() {
			return errors.NewValidationError(c.Field, "field not settable on "+v.Type().String())
		}
		if err := assign(fv, raw); err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}
	}
	return nil
}

// KeyOf extracts the primary key values of entity in key order.
func (a *Artifact) KeyOf(entity any) ([]any, error) {
	v, err := structValue(entity)
	if err != nil {
		return nil, err
	}
	key := make([]any, len(a.primaryKey))
	for i, idx := range a.primaryKey {
		c := a.columns[idx]
		fv := v.FieldByName(c.Field)
		if !fv.IsValid() {
			return nil, errors.NewValidationError(c.Field, "primary key field not present on "+v.Type().String())
		}
		val := normalize(fv)
		if s, ok := val.(string); ok && s == "" {
			return nil, errors.NewValidationError(c.Field, "empty primary key")
		}
		key[i] = val
	}
	return key, nil
}

// NormalizeKey checks key has one value per primary key column and
// converts each value to the column's normalized representation.
func (a *Artifact) NormalizeKey(key []any) ([]any, error) {
	if len(key) != len(a.primaryKey) {
		return nil, errors.NewValidationError("key", fmt.Sprintf("expected %d key values, got %d", len(a.primaryKey), len(key)))
	}
	out := make([]any, len(key))
	for i, idx := range a.primaryKey {
		c := a.columns[idx]
		val, err := a.ColumnValue(c, key[i])
		if err != nil {
			return nil, errors.NewValidationError(c.Field, err.Error())
		}
		out[i] = val
	}
	return out, nil
}

// ColumnValue converts an arbitrary Go value to c's normalized representation.
func (a *Artifact) ColumnValue(c Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	target := reflect.New(goTypeFor(c.Kind)).Elem()
	if err := assign(target, v); err != nil {
		return nil, err
	}
	return normalize(target), nil
}

// KeyString renders a normalized key as a stable string, e.g. for map keys
// and error messages. String parts are quoted, so distinct composite keys
// never render the same.
func KeyString(key []any) string {
	parts := make([]string, len(key))
	for i, v := range key {
		switch tv := v.(type) {
		case string:
			parts[i] = strconv.Quote(tv)
		case time.Time:
			parts[i] = tv.UTC().Format(time.RFC3339Nano)
		case []byte:
			parts[i] = strconv.Quote(string(tv))
		default:
			parts[i] = fmt.Sprintf("%v", tv)
		}
	}
	return strings.Join(parts, "|")
}

func structValue(entity any) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, errors.NewValidationError("entity", "nil entity")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, errors.NewValidationError("entity", fmt.Sprintf("expected struct, got %T", entity))
	}
	return v, nil
}

func goTypeFor(k Kind) reflect.Type {
	switch k {
	case KindString:
		return reflect.TypeOf("")
	case KindInt:
		return reflect.TypeOf(int64(0))
	case KindUint:
		return reflect.TypeOf(uint64(0))
	case KindFloat:
		return reflect.TypeOf(float64(0))
	case KindBool:
		return reflect.TypeOf(false)
	case KindTime:
		return timeType
	case KindBytes:
		return reflect.TypeOf([]byte(nil))
	default:
		return reflect.TypeOf((*any)(nil)).Elem()
	}
}

func normalize(fv reflect.Value) any {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	if fv.Type() == timeType {
		return fv.Interface().(time.Time).UTC()
	}
	switch fv.Kind() {
	case reflect.String:
		return fv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fv.Uint()
	case reflect.Float32, reflect.Float64:
		return fv.Float()
	case reflect.Bool:
		return fv.Bool()
	case reflect.Slice:
		if fv.IsNil() {
			return nil
		}
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			return append([]byte(nil), fv.Bytes()...)
		}
	case reflect.Interface:
		if fv.IsNil() {
			return nil
		}
		return fv.Interface()
	}
	return fv.Interface()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// assign stores raw into fv, converting between the representations storage
// backends hand back (for example float64 numbers from DynamoDB or int64
// booleans from sqlite).
func assign(fv reflect.Value, raw any) error {
	if raw == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	if fv.Kind() == reflect.Pointer {
		elem := reflect.New(fv.Type().Elem())
		if err := assign(elem.Elem(), raw); err != nil {
			return err
		}
		fv.Set(elem)
		return nil
	}
	if fv.Kind() == reflect.Interface {
		fv.Set(reflect.ValueOf(raw))
		return nil
	}
	if fv.Type() == timeType {
		t, err := toTime(raw)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(t))
		return nil
	}
	switch fv.Kind() {
	case reflect.String:
		switch tv := raw.(type) {
		case string:
			fv.SetString(tv)
		case []byte:
			fv.SetString(string(tv))
		default:
			fv.SetString(fmt.Sprint(tv))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(raw)
		if err != nil {
			return err
		}
		if fv.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, fv.Type())
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := toUint64(raw)
		if err != nil {
			return err
		}
		if fv.OverflowUint(u) {
			return fmt.Errorf("value %d overflows %s", u, fv.Type())
		}
		fv.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(raw)
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	case reflect.Bool:
		b, err := toBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("unsupported destination %s", fv.Type())
		}
		switch tv := raw.(type) {
		case []byte:
			fv.SetBytes(append([]byte(nil), tv...))
		case string:
			fv.SetBytes([]byte(tv))
		default:
			return fmt.Errorf("cannot decode %T into %s", raw, fv.Type())
		}
	default:
		rv := reflect.ValueOf(raw)
		if !rv.Type().ConvertibleTo(fv.Type()) {
			return fmt.Errorf("cannot decode %T into %s", raw, fv.Type())
		}
		fv.Set(rv.Convert(fv.Type()))
	}
	return nil
}

func toInt64(raw any) (int64, error) {
	switch tv := raw.(type) {
	case int64:
		return tv, nil
	case int:
		return int64(tv), nil
	case int32:
		return int64(tv), nil
	case int16:
		return int64(tv), nil
	case int8:
		return int64(tv), nil
	case uint64:
		if tv > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", tv)
		}
		return int64(tv), nil
	case uint, uint32, uint16, uint8:
		return reflect.ValueOf(tv).Convert(reflect.TypeOf(int64(0))).Int(), nil
	case float64:
		if tv != math.Trunc(tv) {
			return 0, fmt.Errorf("value %v is not integral", tv)
		}
		return int64(tv), nil
	case float32:
		return toInt64(float64(tv))
	case bool:
		if tv {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseInt(tv, 10, 64)
	case []byte:
		return strconv.ParseInt(string(tv), 10, 64)
	default:
		return 0, fmt.Errorf("cannot decode %T as integer", raw)
	}
}

func toUint64(raw any) (uint64, error) {
	switch tv := raw.(type) {
	case uint64:
		return tv, nil
	case string:
		return strconv.ParseUint(tv, 10, 64)
	case []byte:
		return strconv.ParseUint(string(tv), 10, 64)
	}
	n, err := toInt64(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("value %d is negative", n)
	}
	return uint64(n), nil
}

func toFloat64(raw any) (float64, error) {
	switch tv := raw.(type) {
	case float64:
		return tv, nil
	case float32:
		return float64(tv), nil
	case uint64:
		return float64(tv), nil
	case string:
		return strconv.ParseFloat(tv, 64)
	case []byte:
		return strconv.ParseFloat(string(tv), 64)
	default:
		n, err := toInt64(raw)
		if err != nil {
			return 0, fmt.Errorf("cannot decode %T as float", raw)
		}
		return float64(n), nil
	}
}

func toBool(raw any) (bool, error) {
	switch tv := raw.(type) {
	case bool:
		return tv, nil
	case string:
		return strconv.ParseBool(tv)
	case []byte:
		return strconv.ParseBool(string(tv))
	default:
		n, err := toInt64(raw)
		if err != nil {
			return false, fmt.Errorf("cannot decode %T as bool", raw)
		}
		return n != 0, nil
	}
}

func toTime(raw any) (time.Time, error) {
	switch tv := raw.(type) {
	case time.Time:
		return tv.UTC(), nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, tv); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse time %q", tv)
	case []byte:
		return toTime(string(tv))
	case int64:
		return time.Unix(0, tv).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("cannot decode %T as time", raw)
	}
}
