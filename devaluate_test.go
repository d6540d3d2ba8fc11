// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func newTestSession() *Session {
	return &Session{tables: newTables(), onSendError: defaultOnSendError}
}

func TestDevaluatePrimitives(t *testing.T) {
	sess := newTestSession()
	cases := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "hi", "hi"},
		{"float64", 3.5, 3.5},
		{"int", 7, float64(7)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := devaluate(sess, c.in, make(map[any]bool))
			if err != nil {
				t.Fatalf("devaluate(%v): %v", c.in, err)
			}
			if got != c.want {
				t.Fatalf("devaluate(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestDevaluateSpecialFloats(t *testing.T) {
	sess := newTestSession()
	got, err := devaluate(sess, math.Inf(1), make(map[any]bool))
	if err != nil {
		t.Fatalf("devaluate(Inf): %v", err)
	}
	arr, ok := got.([]any)
	if !ok || arr[0] != tagNumber || arr[1] != "Infinity" {
		t.Fatalf("devaluate(Inf) = %v, want [\"number\",\"Infinity\"]", got)
	}
}

func TestDevaluateBytesAndDate(t *testing.T) {
	sess := newTestSession()
	b, err := devaluate(sess, []byte("ab"), make(map[any]bool))
	if err != nil {
		t.Fatalf("devaluate(bytes): %v", err)
	}
	arr := b.([]any)
	if arr[0] != tagBytes || arr[1] != "YWI=" {
		t.Fatalf("devaluate(bytes) = %v", arr)
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d, err := devaluate(sess, now, make(map[any]bool))
	if err != nil {
		t.Fatalf("devaluate(date): %v", err)
	}
	darr := d.([]any)
	if darr[0] != tagDate || darr[1] != float64(now.UnixMilli()) {
		t.Fatalf("devaluate(date) = %v", darr)
	}
}

func TestDevaluateCyclicArray(t *testing.T) {
	sess := newTestSession()
	a := make([]any, 1)
	a[0] = a
	_, err := devaluate(sess, a, make(map[any]bool))
	if err == nil {
		t.Fatalf("expected cyclic value error")
	}
}

func TestDevaluateUnsupportedValue(t *testing.T) {
	sess := newTestSession()
	_, err := devaluate(sess, struct{ X int }{1}, make(map[any]bool))
	if err == nil {
		t.Fatalf("expected unsupported value error")
	}
}

func TestDevaluateTargetRegistersExport(t *testing.T) {
	sess := newTestSession()
	target := NewFuncTarget().Method("ping", func(ctx context.Context, _ []any) (any, error) {
		return "pong", nil
	})
	got, err := devaluate(sess, target, make(map[any]bool))
	if err != nil {
		t.Fatalf("devaluate(target): %v", err)
	}
	arr := got.([]any)
	if arr[0] != tagExport {
		t.Fatalf("devaluate(target) = %v, want export tag", arr)
	}
	id := uint32(arr[1].(float64))
	v, ok := sess.tables.lookupExport(id)
	if !ok || v.(Target) != target {
		t.Fatalf("target was not registered under id %d", id)
	}
}

func TestDevaluateStubByKind(t *testing.T) {
	sess := newTestSession()
	cases := []struct {
		name string
		s    *Stub
		tag  string
	}{
		{"export", newExportStub(sess, 5, nil), tagExport},
		{"import", newImportStub(sess, 6, nil), tagImport},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.tag == tagExport {
				sess.tables.exports[5] = &exportEntry{value: "x", refCount: 1}
			}
			got, err := devaluateStub(sess, c.s)
			if err != nil {
				t.Fatalf("devaluateStub: %v", err)
			}
			arr := got.([]any)
			if arr[0] != c.tag {
				t.Fatalf("devaluateStub(%s) tag = %v, want %v", c.name, arr[0], c.tag)
			}
		})
	}
}

func TestDevaluateNestedErrorRespectsOnSendError(t *testing.T) {
	sess := newTestSession()
	sess.onSendError = func(err error) *RemoteError {
		return &RemoteError{Name: "Scrubbed", Message: "internal error"}
	}

	got, err := devaluate(sess, map[string]any{"cause": errors.New("stack trace leaked here")}, make(map[any]bool))
	if err != nil {
		t.Fatalf("devaluate: %v", err)
	}
	arr := got.(map[string]any)["cause"].([]any)
	if arr[0] != tagError || arr[1] != "Scrubbed" || arr[2] != "internal error" {
		t.Fatalf("nested error devaluation = %v, want scrubbed error wire", arr)
	}

	raw, err := devaluate(sess, map[string]any{"cause": RawError{Err: errors.New("unscrubbed detail")}}, make(map[any]bool))
	if err != nil {
		t.Fatalf("devaluate(raw error): %v", err)
	}
	rawArr := raw.(map[string]any)["cause"].([]any)
	if rawArr[2] != "unscrubbed detail" {
		t.Fatalf("error-raw devaluation = %v, want unscrubbed message", rawArr)
	}
}

func TestDevaluateRawRejectsStub(t *testing.T) {
	sess := newTestSession()
	s := newImportStub(sess, 1, nil)
	_, err := devaluate(sess, Raw{Value: []any{s}}, make(map[any]bool))
	if err == nil {
		t.Fatalf("expected ErrStubInRawSubtree")
	}
}
