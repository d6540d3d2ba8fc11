// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"errors"
	"testing"
)

func TestClassifyCapability(t *testing.T) {
	sess := newTestSession()
	cases := []struct {
		name string
		v    any
		want Kind
	}{
		{"undefined", Undefined, KindUndefined},
		{"resolved stub", newExportStub(sess, 1, nil), KindStub},
		{"pending stub", newPromiseStub(sess, 1, nil), KindRPCPromise},
		{"target", NewFuncTarget(), KindRPCTarget},
		{"raw error", RawError{Err: errors.New("x")}, KindErrorRaw},
		{"plain error", errors.New("x"), KindError},
		{"raw", Raw{Value: 1}, KindRaw},
		{"func", LocalFunc(nil), KindFunction},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := classifyCapability(c.v)
			if !ok || got != c.want {
				t.Fatalf("classifyCapability(%s) = %v, %v, want %v", c.name, got, ok, c.want)
			}
		})
	}
}

func TestClassifyCapabilityNilFalse(t *testing.T) {
	if _, ok := classifyCapability(nil); ok {
		t.Fatalf("classifyCapability(nil) should report false")
	}
	if _, ok := classifyCapability("plain string"); ok {
		t.Fatalf("classifyCapability(string) should report false")
	}
}

func TestKindString(t *testing.T) {
	if KindStub.String() != "stub" {
		t.Fatalf("KindStub.String() = %q", KindStub.String())
	}
	if Kind(999).String() != "unknown" {
		t.Fatalf("Kind(999).String() = %q", Kind(999).String())
	}
}
