// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

// msgKind is the first element of every wire message.
type msgKind string

const (
	msgPush    msgKind = "push"
	msgPull    msgKind = "pull"
	msgResolve msgKind = "resolve"
	msgReject  msgKind = "reject"
	msgRelease msgKind = "release"
	msgAbort   msgKind = "abort"
)

// message is the decoded form of one wire frame. Not every field
// applies to every kind; the field comments below say which kinds use
// each field.
type message struct {
	kind msgKind

	// push: a new question, introducing questionID and its expression.
	// resolve/reject: settle questionID with expr or remoteErr.
	questionID QuestionID
	expr       any

	// release: drop count references to importID; release messages may
	// batch multiple drops of the same id.
	importID ImportID
	count    uint32

	remoteErr *RemoteError
}

func pushMessage(id QuestionID, expr any) message {
	return message{kind: msgPush, questionID: id, expr: expr}
}

func pullMessage(id QuestionID) message {
	return message{kind: msgPull, questionID: id}
}

func resolveMessage(id QuestionID, expr any) message {
	return message{kind: msgResolve, questionID: id, expr: expr}
}

func rejectMessage(id QuestionID, remoteErr *RemoteError) message {
	return message{kind: msgReject, questionID: id, remoteErr: remoteErr}
}

func releaseMessage(id ImportID, count uint32) message {
	return message{kind: msgRelease, importID: id, count: count}
}

func abortMessage(remoteErr *RemoteError) message {
	return message{kind: msgAbort, remoteErr: remoteErr}
}
