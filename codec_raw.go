// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "encoding/json"

// rawCodec is the structured-clone-style codec for peers that trust each
// other's Go types and only need the wire grammar, not a compact or
// cross-language encoding. It deliberately uses encoding/json rather
// than go-json: unlike [taggedCodec] and [cborCodec], which are chosen
// for concrete encoding properties (a lower-allocation JSON encoder, or
// CBOR's compactness), this codec's only requirement is "any
// stdlib-shaped marshaler", so pulling in a third-party one buys
// nothing — DESIGN.md records this as the one intentionally-stdlib
// codec.
type rawCodec struct{}

// NewRawCodec returns the identity-ish wire codec used when both peers
// are the same Go binary (in-process or over a pipe) and need no
// interop, compactness, or cross-language guarantees.
func NewRawCodec() Codec { return rawCodec{} }

func (rawCodec) Encode(m message) (Frame, error) {
	b, err := json.Marshal(messageToWire(m))
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}

func (rawCodec) Decode(f Frame) (message, error) {
	var w []any
	if err := json.Unmarshal(f, &w); err != nil {
		return message{}, err
	}
	return wireToMessage(w)
}
