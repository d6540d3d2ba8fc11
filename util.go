// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package capnweb

import (
	"encoding/base64"
	"math"
	"time"
)

var (
	infPos = math.Inf(1)
	infNeg = math.Inf(-1)
	nanVal = math.NaN()
)

// epochMillis converts a "date" wire value (milliseconds since the Unix
// epoch) into a [time.Time].
func epochMillis(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

func decodeBytesB64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
