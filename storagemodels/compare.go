/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Compare orders two normalized column values (string, int64, uint64,
// float64, bool, time.Time, []byte or nil). nil sorts before everything.
// Numbers of different Go types compare numerically.
func Compare(a, b any) (int, error) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, nil
		case a == nil:
			return -1, nil
		default:
			return 1, nil
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), nil
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0, nil
			case !av:
				return -1, nil
			default:
				return 1, nil
			}
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), nil
		}
	case []byte:
		if bv, ok := b.([]byte); ok {
			return bytes.Compare(av, bv), nil
		}
	case int64, uint64, float64:
		if af, ok := number(a); ok {
			if bf, ok := number(b); ok {
				if ai, aok := a.(int64); aok {
					if bi, bok := b.(int64); bok {
						return cmp(ai, bi), nil
					}
				}
				if au, aok := a.(uint64); aok {
					if bu, bok := b.(uint64); bok {
						return cmp(au, bu), nil
					}
				}
				return cmp(af, bf), nil
			}
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

// Match reports whether "a op b" holds.
func Match(op Op, a, b any) (bool, error) {
	if op == OpBeginsWith {
		as, aok := a.(string)
		bs, bok := b.(string)
		if !aok || !bok {
			return false, fmt.Errorf("begins_with needs strings, got %T and %T", a, b)
		}
		return strings.HasPrefix(as, bs), nil
	}
	c, err := Compare(a, b)
	if err != nil {
		return false, err
	}
	switch op {
	case OpEq:
		return c == 0, nil
	case OpNe:
		return c != 0, nil
	case OpLt:
		return c < 0, nil
	case OpLe:
		return c <= 0, nil
	case OpGt:
		return c > 0, nil
	case OpGe:
		return c >= 0, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", op)
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func cmp[N int64 | uint64 | float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
