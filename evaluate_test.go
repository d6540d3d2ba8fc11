// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"math/big"
	"testing"
	"time"
)

func TestEvaluatePrimitives(t *testing.T) {
	sess := newTestSession()
	for _, v := range []any{nil, true, "hi", 3.5} {
		got, err := evaluate(sess, v)
		if err != nil {
			t.Fatalf("evaluate(%v): %v", v, err)
		}
		if got != v {
			t.Fatalf("evaluate(%v) = %v", v, got)
		}
	}
}

func TestEvaluateExportBecomesImportStub(t *testing.T) {
	sess := newTestSession()
	got, err := evaluate(sess, []any{tagExport, float64(11)})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	s, ok := got.(*Stub)
	if !ok || s.kind != refImport || s.id != 11 {
		t.Fatalf("evaluate(export) = %#v, want import stub id 11", got)
	}
	if _, ok := sess.tables.imports[11]; !ok {
		t.Fatalf("import table not updated for id 11")
	}
}

func TestEvaluateImportBecomesExportStub(t *testing.T) {
	sess := newTestSession()
	got, err := evaluate(sess, []any{tagImport, float64(3)})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	s, ok := got.(*Stub)
	if !ok || s.kind != refExport || s.id != 3 {
		t.Fatalf("evaluate(import) = %#v, want export stub id 3", got)
	}
}

func TestEvaluatePromiseUnresolvedIsBug(t *testing.T) {
	sess := newTestSession()
	sess.tables.inbound[1] = &inboundQuestion{resolved: false}
	_, err := evaluate(sess, []any{tagPromise, float64(1)})
	if err == nil {
		t.Fatalf("expected error evaluating unresolved promise")
	}
}

func TestEvaluatePromiseResolvedAppliesPath(t *testing.T) {
	sess := newTestSession()
	sess.tables.inbound[1] = &inboundQuestion{
		resolved: true,
		val:      map[string]any{"x": "y"},
	}
	got, err := evaluate(sess, []any{tagPromise, float64(1), []any{"x"}})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != "y" {
		t.Fatalf("evaluate(promise) = %v, want y", got)
	}
}

func TestEvaluateBigIntDateBytes(t *testing.T) {
	sess := newTestSession()

	n, err := evaluate(sess, []any{tagBigInt, "9223372036854775807"})
	if err != nil {
		t.Fatalf("evaluate(bigint): %v", err)
	}
	if got, ok := n.(*big.Int); !ok || got.String() != "9223372036854775807" {
		t.Fatalf("evaluate(bigint) = %v, %v", n, err)
	}

	d, err := evaluate(sess, []any{tagDate, float64(0)})
	if err != nil {
		t.Fatalf("evaluate(date): %v", err)
	}
	if !d.(time.Time).Equal(time.UnixMilli(0).UTC()) {
		t.Fatalf("evaluate(date) = %v", d)
	}

	b, err := evaluate(sess, []any{tagBytes, "YWI="})
	if err != nil {
		t.Fatalf("evaluate(bytes): %v", err)
	}
	if string(b.([]byte)) != "ab" {
		t.Fatalf("evaluate(bytes) = %v", b)
	}
}

func TestBigIntRoundTripsBeyondInt64(t *testing.T) {
	sess := newTestSession()

	want, ok := new(big.Int).SetString("18446744073709551615", 10) // math.MaxUint64
	if !ok {
		t.Fatalf("test setup: could not parse bigint literal")
	}
	wire, err := devaluate(sess, want, make(map[any]bool))
	if err != nil {
		t.Fatalf("devaluate(bigint): %v", err)
	}
	got, err := evaluate(sess, wire)
	if err != nil {
		t.Fatalf("evaluate(bigint): %v", err)
	}
	gotBig, ok := got.(*big.Int)
	if !ok || gotBig.Cmp(want) != 0 {
		t.Fatalf("round trip = %v, want %v", got, want)
	}

	neg, ok := new(big.Int).SetString("-999999999999999999999999999", 10)
	if !ok {
		t.Fatalf("test setup: could not parse negative bigint literal")
	}
	wire, err = devaluate(sess, neg, make(map[any]bool))
	if err != nil {
		t.Fatalf("devaluate(negative bigint): %v", err)
	}
	got, err = evaluate(sess, wire)
	if err != nil {
		t.Fatalf("evaluate(negative bigint): %v", err)
	}
	gotBig, ok = got.(*big.Int)
	if !ok || gotBig.Cmp(neg) != 0 {
		t.Fatalf("round trip = %v, want %v", got, neg)
	}
}

func TestEvaluateRawUndefinedAndPassthrough(t *testing.T) {
	sess := newTestSession()
	got, err := evaluate(sess, []any{tagRaw, rawUndefined})
	if err != nil || got != Undefined {
		t.Fatalf("evaluate(raw undefined) = %v, %v", got, err)
	}
	got, err = evaluate(sess, []any{tagRaw, map[string]any{"a": float64(1)}})
	if err != nil {
		t.Fatalf("evaluate(raw): %v", err)
	}
	if m, ok := got.(map[string]any); !ok || m["a"] != float64(1) {
		t.Fatalf("evaluate(raw passthrough) = %v", got)
	}
}

func TestEvaluateSpecialNumbers(t *testing.T) {
	sess := newTestSession()
	got, err := evaluate(sess, []any{tagNumber, "NaN"})
	if err != nil {
		t.Fatalf("evaluate(NaN): %v", err)
	}
	if got.(float64) == got.(float64) {
		t.Fatalf("expected NaN")
	}
}

func TestEvaluateErrorExpression(t *testing.T) {
	sess := newTestSession()
	got, err := evaluate(sess, []any{tagError, "Error", "boom"})
	if err != nil {
		t.Fatalf("evaluate(error): %v", err)
	}
	re, ok := got.(*RemoteError)
	if !ok || re.Message != "boom" {
		t.Fatalf("evaluate(error) = %#v", got)
	}
}
