// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "github.com/fxamacker/cbor/v2"

// cborCodec serializes the same wire tree as [taggedCodec] but as CBOR.
// The tree is built before the codec sees it, so "bytes" values still
// travel as base64 strings, and decoded integers are normalized to
// float64 like JSON numbers.
type cborCodec struct {
	enc cbor.EncMode
}

// NewCBORCodec returns the binary wire codec.
func NewCBORCodec() Codec {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err) // CanonicalEncOptions() is a fixed, known-valid option set
	}
	return cborCodec{enc: enc}
}

func (c cborCodec) Encode(m message) (Frame, error) {
	b, err := c.enc.Marshal(messageToWire(m))
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}

func (c cborCodec) Decode(f Frame) (message, error) {
	var w []any
	if err := cbor.Unmarshal(f, &w); err != nil {
		return message{}, err
	}
	return wireToMessage(normalizeCBORNumbers(w).([]any))
}

// normalizeCBORNumbers rewrites the integer types cbor.Unmarshal produces
// (int64/uint64, unlike JSON's uniform float64) so [wireToMessage] and
// [taggedForm]'s id/tag extraction can assume float64 regardless of codec.
func normalizeCBORNumbers(v any) any {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeCBORNumbers(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			if ks, ok := k.(string); ok {
				out[ks] = normalizeCBORNumbers(e)
			}
		}
		return out
	default:
		return v
	}
}
