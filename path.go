// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "fmt"

// PathSegment is one step of a [Path]: a string field name or an integer
// array index.
type PathSegment = any

// Path is a sequence of field/index lookups applied after dereferencing
// a capability. Path extension never mutates the original —
// [Stub.Get] always returns a new slice.
type Path []PathSegment

// append returns a new Path with seg appended, never aliasing p's
// backing array.
func (p Path) append(seg PathSegment) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// clone returns an independent copy of p.
func (p Path) clone() Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// pathGet indexes into a resolved host value one segment at a time, once
// a reference's base value is known: awaiting a promise, evaluating a
// promise reference, and locating a call's target all use it.
func pathGet(v any, path Path) (any, error) {
	cur := v
	for _, seg := range path {
		next, err := getOne(cur, seg)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func getOne(v any, seg PathSegment) (any, error) {
	switch t := v.(type) {
	case Target:
		// A plain field read against an rpc-target is always an error —
		// targets expose methods via Call, never via property get.
		_ = t
		return nil, fmt.Errorf("%w: %v", ErrNotAMethod, seg)
	case map[string]any:
		name, ok := seg.(string)
		if !ok {
			return nil, fmt.Errorf("capnweb: non-string key %v on object", seg)
		}
		val, ok := t[name]
		if !ok {
			return Undefined, nil
		}
		return val, nil
	case []any:
		idx, ok := toIndex(seg)
		if !ok || idx < 0 || idx >= len(t) {
			return Undefined, nil
		}
		return t[idx], nil
	default:
		return nil, fmt.Errorf("capnweb: cannot index %T with %v", v, seg)
	}
}

func toIndex(seg PathSegment) (int, bool) {
	switch n := seg.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
