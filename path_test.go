// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "testing"

func TestPathGetObjectAndArray(t *testing.T) {
	v := map[string]any{
		"user": map[string]any{
			"tags": []any{"a", "b", "c"},
		},
	}
	got, err := pathGet(v, Path{"user", "tags", 1})
	if err != nil {
		t.Fatalf("pathGet: %v", err)
	}
	if got != "b" {
		t.Fatalf("pathGet = %v, want b", got)
	}
}

func TestPathGetMissingKeyIsUndefined(t *testing.T) {
	v := map[string]any{"x": 1}
	got, err := pathGet(v, Path{"y"})
	if err != nil {
		t.Fatalf("pathGet: %v", err)
	}
	if got != Undefined {
		t.Fatalf("pathGet(missing) = %v, want Undefined", got)
	}
}

func TestPathGetOutOfRangeIsUndefined(t *testing.T) {
	v := []any{"a"}
	got, err := pathGet(v, Path{5})
	if err != nil {
		t.Fatalf("pathGet: %v", err)
	}
	if got != Undefined {
		t.Fatalf("pathGet(oob) = %v, want Undefined", got)
	}
}

func TestPathGetFieldOnTargetErrors(t *testing.T) {
	target := NewFuncTarget().Method("m", nil)
	_, err := pathGet(target, Path{"m"})
	if err == nil {
		t.Fatalf("expected ErrNotAMethod reading a field on a Target")
	}
}

func TestPathAppendNeverAliases(t *testing.T) {
	base := Path{"a"}
	p1 := base.append("b")
	p2 := base.append("c")
	if p1[1] != "b" || p2[1] != "c" {
		t.Fatalf("append aliased: p1=%v p2=%v", p1, p2)
	}
	if len(base) != 1 {
		t.Fatalf("append mutated base: %v", base)
	}
}
