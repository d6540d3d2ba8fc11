// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"testing"
)

func allCodecs() map[string]Codec {
	return map[string]Codec{
		"tagged": NewTaggedCodec(),
		"cbor":   NewCBORCodec(),
		"raw":    NewRawCodec(),
	}
}

func TestCodecRoundTripPush(t *testing.T) {
	for name, c := range allCodecs() {
		t.Run(name, func(t *testing.T) {
			m := pushMessage(7, []any{tagPipeline, []any{tagImport, float64(0)}, []any{"hello", float64(42)}})
			f, err := c.Encode(m)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := c.Decode(f)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.kind != msgPush || got.questionID != 7 {
				t.Fatalf("got %+v, want push/7", got)
			}
		})
	}
}

func TestCodecRoundTripResolveReject(t *testing.T) {
	for name, c := range allCodecs() {
		t.Run(name, func(t *testing.T) {
			resolve := resolveMessage(3, "ok")
			f, err := c.Encode(resolve)
			if err != nil {
				t.Fatalf("Encode resolve: %v", err)
			}
			got, err := c.Decode(f)
			if err != nil {
				t.Fatalf("Decode resolve: %v", err)
			}
			if got.kind != msgResolve || got.expr != "ok" {
				t.Fatalf("got %+v, want resolve/ok", got)
			}

			reject := rejectMessage(4, &RemoteError{Name: "Error", Message: "boom"})
			f, err = c.Encode(reject)
			if err != nil {
				t.Fatalf("Encode reject: %v", err)
			}
			got, err = c.Decode(f)
			if err != nil {
				t.Fatalf("Decode reject: %v", err)
			}
			if got.kind != msgReject || got.remoteErr == nil || got.remoteErr.Message != "boom" {
				t.Fatalf("got %+v, want reject/boom", got)
			}
		})
	}
}

func TestCodecRoundTripReleaseAbort(t *testing.T) {
	for name, c := range allCodecs() {
		t.Run(name, func(t *testing.T) {
			rel := releaseMessage(9, 2)
			f, err := c.Encode(rel)
			if err != nil {
				t.Fatalf("Encode release: %v", err)
			}
			got, err := c.Decode(f)
			if err != nil {
				t.Fatalf("Decode release: %v", err)
			}
			if got.kind != msgRelease || got.importID != 9 || got.count != 2 {
				t.Fatalf("got %+v, want release/9/2", got)
			}

			ab := abortMessage(&RemoteError{Name: "Error", Message: "fatal"})
			f, err = c.Encode(ab)
			if err != nil {
				t.Fatalf("Encode abort: %v", err)
			}
			got, err = c.Decode(f)
			if err != nil {
				t.Fatalf("Decode abort: %v", err)
			}
			if got.kind != msgAbort || got.remoteErr.Message != "fatal" {
				t.Fatalf("got %+v, want abort/fatal", got)
			}
		})
	}
}

func TestCodecDecodeMalformedFrame(t *testing.T) {
	for name, c := range allCodecs() {
		t.Run(name, func(t *testing.T) {
			if _, err := c.Decode(Frame(`[]`)); err == nil {
				t.Fatalf("expected error decoding empty frame")
			}
		})
	}
}

func TestNormalizeCBORNumbers(t *testing.T) {
	in := []any{int64(1), map[any]any{"a": uint64(2), 3: "dropped"}}
	out := normalizeCBORNumbers(in).([]any)
	if out[0] != float64(1) {
		t.Fatalf("want float64(1), got %v (%T)", out[0], out[0])
	}
	m := out[1].(map[string]any)
	if m["a"] != float64(2) {
		t.Fatalf("want float64(2), got %v", m["a"])
	}
	if len(m) != 1 {
		t.Fatalf("non-string key should have been dropped, got %v", m)
	}
}
