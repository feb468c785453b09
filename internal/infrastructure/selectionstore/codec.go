package selectionstore

import (
	"math"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// maxExactID is the largest magnitude a JSON number holds without losing
// integer precision.
const maxExactID = 1 << 53

// ErrMalformed marks stored selection payloads that are not a JSON array.
var ErrMalformed = crerr.New("malformed stored selection")

// EncodeIDs renders ids as a JSON array of integers.
func EncodeIDs(ids []int64) ([]byte, error) {
	if ids == nil {
		ids = []int64{}
	}
	raw, err := sonic.Marshal(ids)
	if err != nil {
		return nil, crerr.Wrap(err, "encode selection")
	}
	return raw, nil
}

// DecodeIDs parses a stored selection. Entries that are not whole numbers
// within ±2^53 are skipped. A payload that is not an array returns ErrMalformed
// with no ids.
func DecodeIDs(raw []byte) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var values []any
	if err := sonic.Unmarshal(raw, &values); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "decode selection"), ErrMalformed)
	}

	out := make([]int64, 0, len(values))
	for _, value := range values {
		n, ok := value.(float64)
		if !ok || math.IsNaN(n) || math.Abs(n) > maxExactID || n != math.Trunc(n) {
			continue
		}
		out = append(out, int64(n))
	}
	return out, nil
}
