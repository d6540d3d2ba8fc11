// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import "fmt"

// Frame is one encoded wire message, ready to hand to a [Transport] or
// read back from one.
type Frame []byte

// Codec encodes decoded [message] values to and from [Frame]s. The byte
// encoding (JSON, CBOR, or none at all) is orthogonal to the message
// grammar itself, so every codec shares [messageToWire]/[wireToMessage]
// and differs only in how it serializes the resulting []any tree.
type Codec interface {
	Encode(m message) (Frame, error)
	Decode(f Frame) (message, error)
}

// messageToWire renders m as the bare []any the grammar describes,
// ready for a codec to serialize.
func messageToWire(m message) []any {
	switch m.kind {
	case msgPush:
		return []any{string(msgPush), float64(m.questionID), m.expr}
	case msgPull:
		return []any{string(msgPull), float64(m.questionID)}
	case msgResolve:
		return []any{string(msgResolve), float64(m.questionID), m.expr}
	case msgReject:
		return []any{string(msgReject), float64(m.questionID), remoteErrorToWire(m.remoteErr)}
	case msgRelease:
		return []any{string(msgRelease), float64(m.importID), float64(m.count)}
	case msgAbort:
		return []any{string(msgAbort), remoteErrorToWire(m.remoteErr)}
	default:
		return nil
	}
}

func wireToMessage(w []any) (message, error) {
	if len(w) == 0 {
		return message{}, fmt.Errorf("capnweb: empty message frame")
	}
	kind, ok := w[0].(string)
	if !ok {
		return message{}, fmt.Errorf("capnweb: message kind is not a string")
	}
	switch msgKind(kind) {
	case msgPush:
		if len(w) != 3 {
			return message{}, fmt.Errorf("capnweb: malformed push frame")
		}
		id, ok := w[1].(float64)
		if !ok {
			return message{}, fmt.Errorf("capnweb: malformed push id")
		}
		return pushMessage(QuestionID(id), w[2]), nil
	case msgPull:
		if len(w) != 2 {
			return message{}, fmt.Errorf("capnweb: malformed pull frame")
		}
		id, ok := w[1].(float64)
		if !ok {
			return message{}, fmt.Errorf("capnweb: malformed pull id")
		}
		return pullMessage(QuestionID(id)), nil
	case msgResolve:
		if len(w) != 3 {
			return message{}, fmt.Errorf("capnweb: malformed resolve frame")
		}
		id, ok := w[1].(float64)
		if !ok {
			return message{}, fmt.Errorf("capnweb: malformed resolve id")
		}
		return resolveMessage(QuestionID(id), w[2]), nil
	case msgReject:
		if len(w) != 3 {
			return message{}, fmt.Errorf("capnweb: malformed reject frame")
		}
		id, ok := w[1].(float64)
		if !ok {
			return message{}, fmt.Errorf("capnweb: malformed reject id")
		}
		re, err := wireToRemoteError(w[2])
		if err != nil {
			return message{}, err
		}
		return rejectMessage(QuestionID(id), re), nil
	case msgRelease:
		if len(w) != 3 {
			return message{}, fmt.Errorf("capnweb: malformed release frame")
		}
		id, ok := w[1].(float64)
		if !ok {
			return message{}, fmt.Errorf("capnweb: malformed release id")
		}
		count, ok := w[2].(float64)
		if !ok {
			return message{}, fmt.Errorf("capnweb: malformed release count")
		}
		return releaseMessage(ImportID(id), uint32(count)), nil
	case msgAbort:
		if len(w) != 2 {
			return message{}, fmt.Errorf("capnweb: malformed abort frame")
		}
		re, err := wireToRemoteError(w[1])
		if err != nil {
			return message{}, err
		}
		return abortMessage(re), nil
	default:
		return message{}, fmt.Errorf("capnweb: unknown message kind %q", kind)
	}
}

func remoteErrorToWire(re *RemoteError) []any {
	if re == nil {
		re = &RemoteError{Name: "Error"}
	}
	if re.Stack == "" {
		return []any{tagError, re.Name, re.Message}
	}
	return []any{tagError, re.Name, re.Message, re.Stack}
}

func wireToRemoteError(v any) (*RemoteError, error) {
	arr, ok := taggedForm(v, tagError)
	if !ok || len(arr) < 3 {
		return nil, fmt.Errorf("capnweb: malformed error expression")
	}
	name, _ := arr[1].(string)
	msg, _ := arr[2].(string)
	re := &RemoteError{Name: name, Message: msg}
	if len(arr) >= 4 {
		re.Stack, _ = arr[3].(string)
	}
	return re, nil
}
