// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

// collectUnresolvedPromises walks a raw (not yet evaluated) wire
// expression and reports every ["promise", id, ...] reference whose
// inbound question has not resolved yet. handlePush uses this to decide
// whether to evaluate and dispatch a push immediately or park it as a
// [pendingOp] on the promises it is waiting for.
func collectUnresolvedPromises(t *tables, expr any) []QuestionID {
	var out []QuestionID
	var walk func(v any)
	walk = func(v any) {
		if m, ok := v.(map[string]any); ok {
			for _, e := range m {
				walk(e)
			}
			return
		}
		arr, ok := v.([]any)
		if !ok {
			return
		}
		if inner, ok := taggedForm(arr, tagPromise); ok {
			if id, _, ok := parseRefExpr(inner); ok {
				if q, ok := t.getInbound(id); !ok || !q.resolved {
					out = append(out, id)
				}
			}
			return
		}
		for _, e := range arr {
			walk(e)
		}
	}
	walk(expr)
	return out
}

// dedupQuestionIDs removes repeats while preserving first-seen order.
func dedupQuestionIDs(ids []QuestionID) []QuestionID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[QuestionID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
