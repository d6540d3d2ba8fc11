// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

// Kind is the devaluation rule the devaluator applies to a host value.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPrimitive
	KindUndefined
	KindBigInt
	KindDate
	KindBytes
	KindArray
	KindObject
	KindFunction
	KindStub
	KindRPCPromise
	KindRPCTarget
	KindRPCThenable
	KindError
	KindErrorRaw
	KindRaw
	KindRawSubtree
)

func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindPrimitive:
		return "primitive"
	case KindUndefined:
		return "undefined"
	case KindBigInt:
		return "bigint"
	case KindDate:
		return "date"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindStub:
		return "stub"
	case KindRPCPromise:
		return "rpc-promise"
	case KindRPCTarget:
		return "rpc-target"
	case KindRPCThenable:
		return "rpc-thenable"
	case KindError:
		return "error"
	case KindErrorRaw:
		return "error-raw"
	case KindRaw:
		return "raw"
	case KindRawSubtree:
		return "raw-subtree"
	default:
		return "unknown"
	}
}

// undefinedType is the host representation of the "undefined" kind,
// distinct from nil/null. Use the [Undefined] value.
type undefinedType struct{}

// Undefined is the devaluator's "undefined" value; distinct from nil,
// which devaluates to the "null" primitive.
var Undefined = undefinedType{}

// Raw wraps a value so the devaluator passes it through without
// traversal (kinds "raw"/"raw-subtree"). Stubs found inside a Raw value
// are not registered — they are rejected with [ErrStubInRawSubtree].
type Raw struct{ Value any }

// classifyCapability recognizes the capability-carrying kinds. The
// devaluator calls this first and falls back to its own type switch for
// plain data otherwise; codecs do not call it.
func classifyCapability(v any) (Kind, bool) {
	switch vv := v.(type) {
	case nil:
		return 0, false
	case undefinedType:
		return KindUndefined, true
	case *Stub:
		if vv.resolved() {
			return KindStub, true
		}
		return KindRPCPromise, true
	case LocalFunc:
		// Checked before Target: LocalFunc satisfies that interface too,
		// and "function" is the more specific kind.
		return KindFunction, true
	case Target:
		return KindRPCTarget, true
	case *Future:
		return KindRPCThenable, true
	case RawError:
		return KindErrorRaw, true
	case error:
		return KindError, true
	case Raw:
		return KindRaw, true
	default:
		return 0, false
	}
}
