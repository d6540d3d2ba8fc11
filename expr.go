// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

// Wire expressions are represented directly as the tree of Go values a
// JSON-like decoder would produce: nil, bool, float64, string, []any,
// map[string]any — plus tagged two/three/four-element []any forms for
// the non-JSON kinds. Operating on `any` here (instead of a dedicated
// Expr struct) mirrors how every codec already has to produce such a
// tree (encoding/json-style decode into interface{}); a parallel struct
// would just be a second representation of the same grammar.
const (
	tagExport   = "export"
	tagImport   = "import"
	tagPromise  = "promise"
	tagBigInt   = "bigint"
	tagDate     = "date"
	tagBytes    = "bytes"
	tagError    = "error"
	tagRaw      = "raw"
	tagNumber   = "number"
	tagPipeline = "pipeline"
)

// taggedForm recognizes a wire node of the form [tag, ...] and returns
// its payload elements. Plain arrays whose first element happens to
// collide with a tag string are indistinguishable from a tagged form;
// this is a known ambiguity inherited from using bare arrays as the
// tagging mechanism.
func taggedForm(v any, tag string) ([]any, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	s, ok := arr[0].(string)
	if !ok || s != tag {
		return nil, false
	}
	return arr, true
}

// refExpr builds a ["export"|"import"|"promise", id, path?] wire node.
func refExpr(tag string, id uint32, path Path) []any {
	if len(path) == 0 {
		return []any{tag, float64(id)}
	}
	return []any{tag, float64(id), []any(pathToWire(path))}
}

func pathToWire(path Path) []any {
	out := make([]any, len(path))
	for i, seg := range path {
		switch s := seg.(type) {
		case string:
			out[i] = s
		case int:
			out[i] = float64(s)
		case int64:
			out[i] = float64(s)
		case float64:
			out[i] = s
		}
	}
	return out
}

func wireToPath(v any) Path {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make(Path, len(arr))
	for i, seg := range arr {
		switch s := seg.(type) {
		case float64:
			out[i] = int(s)
		default:
			out[i] = s
		}
	}
	return out
}

// parseRefExpr decodes an ["export"|"import"|"promise", id, path?] node.
func parseRefExpr(arr []any) (id uint32, path Path, ok bool) {
	if len(arr) < 2 {
		return 0, nil, false
	}
	n, ok := arr[1].(float64)
	if !ok {
		return 0, nil, false
	}
	if len(arr) >= 3 {
		path = wireToPath(arr[2])
	}
	return uint32(n), path, true
}

// pipelineExpr builds a ["pipeline", targetRef, args] call node: the
// target reference's own path already names the method, as in chaining
// `getUser(id).address.city` — Get segments locate the callable, Call
// invokes it, and the result is a fresh, empty-path reference for
// further chaining.
func pipelineExpr(target []any, args []any) []any {
	return []any{tagPipeline, target, args}
}
