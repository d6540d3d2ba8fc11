// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "code.hybscloud.com/atomix"

// ExportID names a capability this side has exported to the peer.
// ImportID names a capability the peer exported to us; it is numerically
// the id the exporting side chose.
// QuestionID names a promise this side introduced via push; the id space
// is private to the pusher and carried verbatim in resolve/reject.
type ExportID = uint32
type ImportID = uint32
type QuestionID = uint32

// mainID is the well-known id of each side's main capability: wire id 0
// on the import side always names the peer's main capability and is
// never released.
const mainID = 0

// idAllocator is a monotonically increasing id source. Every table that
// hands out ids to the peer (exports, outbound questions) gets its own
// allocator, since export ids and question ids are independent
// namespaces.
type idAllocator struct {
	counter atomix.Uint32
}

// next returns the next id, starting at 1 — id 0 is reserved for the main
// capability and is never allocated dynamically.
func (a *idAllocator) next() uint32 {
	return a.counter.Add(1)
}
