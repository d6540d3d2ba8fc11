// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"encoding/base64"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"
)

// rawUndefined is the sentinel ["raw", "undefined"] payload used to carry
// the "undefined" kind, which (unlike every other special kind) has no
// dedicated tag of its own in the wire grammar; it piggybacks on raw
// since both mean "do not traverse this value".
const rawUndefined = "undefined"

// devaluate converts a host value into its wire expression, registering
// any capability it encounters as a fresh export. seen holds the plain
// arrays/objects on the current traversal path, so it detects cycles
// without mistaking a container shared by two branches for one; a cycle
// broken by a capability reference is fine since references do not
// recurse into their target.
func devaluate(sess *Session, v any, seen map[any]bool) (any, error) {
	if v == nil {
		return nil, nil
	}
	if kind, ok := classifyCapability(v); ok {
		return devaluateCapability(sess, kind, v)
	}
	switch t := v.(type) {
	case bool, string:
		return t, nil
	case float64:
		return devaluateFloat(t), nil
	case float32:
		return devaluateFloat(float64(t)), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return []any{tagBigInt, fmt.Sprintf("%d", t)}, nil
	case uint64:
		return []any{tagBigInt, fmt.Sprintf("%d", t)}, nil
	case *big.Int:
		return []any{tagBigInt, t.String()}, nil
	case []byte:
		return []any{tagBytes, base64.StdEncoding.EncodeToString(t)}, nil
	case time.Time:
		return []any{tagDate, float64(t.UnixMilli())}, nil
	case []any:
		if seen[reflect.ValueOf(t).Pointer()] {
			return nil, &classificationError{value: v, err: ErrCyclicValue}
		}
		seen[reflect.ValueOf(t).Pointer()] = true
		defer delete(seen, reflect.ValueOf(t).Pointer())
		out := make([]any, len(t))
		for i, e := range t {
			dv, err := devaluate(sess, e, seen)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	case map[string]any:
		if seen[reflect.ValueOf(t).Pointer()] {
			return nil, &classificationError{value: v, err: ErrCyclicValue}
		}
		seen[reflect.ValueOf(t).Pointer()] = true
		defer delete(seen, reflect.ValueOf(t).Pointer())
		out := make(map[string]any, len(t))
		for k, e := range t {
			dv, err := devaluate(sess, e, seen)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}
		return out, nil
	default:
		return nil, &classificationError{value: v, err: ErrUnsupportedValue}
	}
}

func devaluateFloat(f float64) any {
	switch {
	case math.IsInf(f, 1):
		return []any{tagNumber, "Infinity"}
	case math.IsInf(f, -1):
		return []any{tagNumber, "-Infinity"}
	case math.IsNaN(f):
		return []any{tagNumber, "NaN"}
	default:
		return f
	}
}

func devaluateCapability(sess *Session, kind Kind, v any) (any, error) {
	switch kind {
	case KindUndefined:
		return []any{tagRaw, rawUndefined}, nil
	case KindStub:
		s := v.(*Stub)
		return devaluateStub(sess, s)
	case KindRPCPromise:
		s := v.(*Stub)
		return devaluateStub(sess, s)
	case KindRPCTarget:
		id := sess.exportValue(v)
		return refExpr(tagExport, id, nil), nil
	case KindFunction:
		id := sess.exportValue(v)
		return refExpr(tagExport, id, nil), nil
	case KindRPCThenable:
		f := v.(*Future)
		id, path := sess.exportFuture(f)
		return refExpr(tagExport, id, path), nil
	case KindError:
		// Routed through toRemoteError so an error value nested inside an
		// argument/return tree respects onSendError the same way a
		// top-level reject does; only error-raw bypasses it.
		err := v.(error)
		return remoteErrorToWire(sess.toRemoteError(err)), nil
	case KindErrorRaw:
		re := v.(RawError)
		return []any{tagError, "Error", re.Error()}, nil
	case KindRaw:
		raw := v.(Raw)
		if containsStub(raw.Value) {
			return nil, &classificationError{value: v, err: ErrStubInRawSubtree}
		}
		return []any{tagRaw, raw.Value}, nil
	default:
		return nil, &classificationError{value: v, err: ErrUnsupportedValue}
	}
}

// devaluateStub renders a stub as the tagged reference matching where it
// lives: our own export, the peer's export we're re-exporting (export
// chaining is out of scope here and simply re-shares the import id), or
// a not-yet-settled promise.
func devaluateStub(sess *Session, s *Stub) (any, error) {
	switch s.kind {
	case refExport:
		sess.tables.dupExport(s.id)
		return refExpr(tagExport, s.id, s.path), nil
	case refImport:
		return refExpr(tagImport, s.id, s.path), nil
	case refPromise:
		return refExpr(tagPromise, s.id, s.path), nil
	default:
		return nil, &classificationError{value: s, err: ErrUnsupportedValue}
	}
}

func containsStub(v any) bool {
	switch t := v.(type) {
	case *Stub:
		return true
	case []any:
		for _, e := range t {
			if containsStub(e) {
				return true
			}
		}
	case map[string]any:
		for _, e := range t {
			if containsStub(e) {
				return true
			}
		}
	}
	return false
}
