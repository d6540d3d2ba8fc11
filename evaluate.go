// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"fmt"
	"math/big"
)

// evaluate converts a decoded wire expression back into a host value —
// the devaluator's inverse. References are turned into [Stub]s bound to
// sess; "export"/"import" swap roles from the sender's point of view,
// since an id the peer calls an export is, from here, an import.
func evaluate(sess *Session, v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, float64:
		return t, nil
	case []any:
		if len(t) > 0 {
			if tag, ok := t[0].(string); ok {
				if ev, handled, err := evaluateTagged(sess, tag, t); handled {
					return ev, err
				}
			}
		}
		out := make([]any, len(t))
		for i, e := range t {
			ev, err := evaluate(sess, e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ev, err := evaluate(sess, e)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	default:
		return nil, fmt.Errorf("capnweb: cannot evaluate %T", v)
	}
}

func evaluateTagged(sess *Session, tag string, arr []any) (any, bool, error) {
	switch tag {
	case tagExport:
		// The peer's export is our import.
		id, path, ok := parseRefExpr(arr)
		if !ok {
			return nil, true, fmt.Errorf("capnweb: malformed export expression")
		}
		sess.tables.addImport(id)
		return newImportStub(sess, id, path), true, nil
	case tagImport:
		// The peer is handing back one of our own exports.
		id, path, ok := parseRefExpr(arr)
		if !ok {
			return nil, true, fmt.Errorf("capnweb: malformed import expression")
		}
		return newExportStub(sess, id, path), true, nil
	case tagPromise:
		// A "promise" reference always names an earlier push by whoever
		// sent us the message we are evaluating — from here, that is an
		// inbound question we are (or were) responsible for resolving.
		// callers must ensure it is already resolved before evaluating
		// (see collectUnresolvedPromises in pipeline.go and handlePush's
		// defer-until-ready check in dispatch.go); reaching this
		// unresolved is a bug.
		id, path, ok := parseRefExpr(arr)
		if !ok {
			return nil, true, fmt.Errorf("capnweb: malformed promise expression")
		}
		q, ok := sess.tables.getInbound(QuestionID(id))
		if !ok || !q.resolved {
			return nil, true, fmt.Errorf("capnweb: internal: promise %d evaluated before it resolved", id)
		}
		if q.err != nil {
			return nil, true, q.err
		}
		v, err := pathGet(q.val, path)
		return v, true, err
	case tagBigInt:
		if len(arr) < 2 {
			return nil, true, fmt.Errorf("capnweb: malformed bigint expression")
		}
		s, _ := arr[1].(string)
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, true, fmt.Errorf("capnweb: malformed bigint literal %q", s)
		}
		return n, true, nil
	case tagDate:
		if len(arr) < 2 {
			return nil, true, fmt.Errorf("capnweb: malformed date expression")
		}
		ms, _ := arr[1].(float64)
		return epochMillis(ms), true, nil
	case tagBytes:
		if len(arr) < 2 {
			return nil, true, fmt.Errorf("capnweb: malformed bytes expression")
		}
		s, _ := arr[1].(string)
		b, err := decodeBytesB64(s)
		if err != nil {
			return nil, true, err
		}
		return b, true, nil
	case tagError:
		re, err := wireToRemoteError(arr)
		if err != nil {
			return nil, true, err
		}
		return re, true, nil
	case tagRaw:
		if len(arr) < 2 {
			return nil, true, fmt.Errorf("capnweb: malformed raw expression")
		}
		if s, ok := arr[1].(string); ok && s == rawUndefined {
			return Undefined, true, nil
		}
		return arr[1], true, nil
	case tagNumber:
		if len(arr) < 2 {
			return nil, true, fmt.Errorf("capnweb: malformed number expression")
		}
		s, _ := arr[1].(string)
		switch s {
		case "Infinity":
			return infPos, true, nil
		case "-Infinity":
			return infNeg, true, nil
		case "NaN":
			return nanVal, true, nil
		default:
			return nil, true, fmt.Errorf("capnweb: unknown special number %q", s)
		}
	default:
		return nil, false, nil
	}
}
