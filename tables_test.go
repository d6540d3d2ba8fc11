// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "testing"

func TestTablesExportLifecycle(t *testing.T) {
	tb := newTables()
	id := tb.addExport("value")
	v, ok := tb.lookupExport(id)
	if !ok || v != "value" {
		t.Fatalf("lookupExport after addExport = %v, %v", v, ok)
	}
	tb.dupExport(id)
	if removed := tb.releaseExport(id); removed {
		t.Fatalf("releaseExport should not remove entry with outstanding dup")
	}
	if removed := tb.releaseExport(id); !removed {
		t.Fatalf("releaseExport should remove entry once refcount hits zero")
	}
	if _, ok := tb.lookupExport(id); ok {
		t.Fatalf("entry still present after final release")
	}
}

func TestTablesImportRefcounting(t *testing.T) {
	tb := newTables()
	tb.addImport(4)
	tb.addImport(4)
	if removed := tb.releaseImport(4); removed {
		t.Fatalf("releaseImport should not remove entry with outstanding reference")
	}
	if removed := tb.releaseImport(4); !removed {
		t.Fatalf("releaseImport should remove entry once refcount hits zero")
	}
}

func TestTablesOutboundQuestion(t *testing.T) {
	tb := newTables()
	id, q := tb.newOutboundQuestion()
	got, ok := tb.getOutboundQuestion(id)
	if !ok || got != q {
		t.Fatalf("getOutboundQuestion = %v, %v", got, ok)
	}
	tb.dropOutbound(id)
	if _, ok := tb.getOutboundQuestion(id); ok {
		t.Fatalf("question still present after dropOutbound")
	}
}

func TestTablesInboundQuestionCreateOnce(t *testing.T) {
	tb := newTables()
	q1 := tb.getOrCreateInbound(2)
	q2 := tb.getOrCreateInbound(2)
	if q1 != q2 {
		t.Fatalf("getOrCreateInbound returned distinct questions for the same id")
	}
	tb.dropInbound(2)
	if _, ok := tb.getInbound(2); ok {
		t.Fatalf("question still present after dropInbound")
	}
}

func TestIDAllocatorStartsAtOne(t *testing.T) {
	var a idAllocator
	if got := a.next(); got != 1 {
		t.Fatalf("first id = %d, want 1", got)
	}
	if got := a.next(); got != 2 {
		t.Fatalf("second id = %d, want 2", got)
	}
}
