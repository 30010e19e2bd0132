package sourcemap

import (
	"strings"

	"github.com/arthur-debert/plugs/pkg/errors"
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	vlqShift        = 5
	vlqContinuation = 1 << vlqShift
	vlqMask         = vlqContinuation - 1
)

var base64Index [256]int8

func init() {
	for i := range base64Index {
		base64Index[i] = -1
	}
	for i := 0; i < len(base64Alphabet); i++ {
		base64Index[base64Alphabet[i]] = int8(i)
	}
}

// writeVLQ appends the base64 VLQ encoding of v.
func writeVLQ(sb *strings.Builder, v int) {
	var n int
	if v < 0 {
		n = (-v << 1) | 1
	} else {
		n = v << 1
	}
	for {
		digit := n & vlqMask
		n >>= vlqShift
		if n > 0 {
			digit |= vlqContinuation
		}
		sb.WriteByte(base64Alphabet[digit])
		if n == 0 {
			return
		}
	}
}

// readVLQ decodes one value starting at s[pos] and returns it with the
// position just past it.
func readVLQ(s string, pos int) (int, int, error) {
	var n, shift int
	for {
		if pos >= len(s) {
			return 0, pos, errors.New(errors.ErrSourceMapParse, "truncated VLQ value in mappings")
		}
		digit := base64Index[s[pos]]
		if digit < 0 {
			return 0, pos, errors.Newf(errors.ErrSourceMapParse, "invalid character %q in mappings", s[pos])
		}
		pos++
		n += int(digit&vlqMask) << shift
		if digit&vlqContinuation == 0 {
			break
		}
		shift += vlqShift
		if shift > 60 {
			return 0, pos, errors.New(errors.ErrSourceMapParse, "VLQ value overflows")
		}
	}
	if n&1 == 1 {
		return -(n >> 1), pos, nil
	}
	return n >> 1, pos, nil
}
