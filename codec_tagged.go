// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "github.com/goccy/go-json"

// taggedCodec is the default wire codec: messages serialize as JSON
// arrays, with nine tagged-array kinds carrying everything JSON itself
// cannot (bigint, Date, bytes, capability references, errors, raw
// passthrough). go-json drops in for encoding/json with the same
// Marshal/Unmarshal signatures at a lower allocation cost.
type taggedCodec struct{}

// NewTaggedCodec returns the JSON wire codec.
func NewTaggedCodec() Codec { return taggedCodec{} }

func (taggedCodec) Encode(m message) (Frame, error) {
	b, err := json.Marshal(messageToWire(m))
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}

func (taggedCodec) Decode(f Frame) (message, error) {
	var w []any
	if err := json.Unmarshal(f, &w); err != nil {
		return message{}, err
	}
	return wireToMessage(w)
}
