// Package utf8x provides the two UTF-8 helpers the Hessian string codec
// needs: counting Unicode scalar values (Hessian string lengths are
// character counts, not byte counts) and reading a fixed number of
// scalar values out of a buffer.
package utf8x

import (
	"fmt"

	"github.com/enricovianello/pep-go/pkg/buffer"
)

// leadByteWidth returns the number of bytes in the UTF-8 sequence that
// starts with lead, or 0 if lead cannot start a sequence.
func leadByteWidth(lead byte) int {
	switch {
	case lead&0x80 == 0x00:
		return 1
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

// CharCount returns the number of Unicode scalar values encoded by s,
// counting by the lead-byte pattern of each sequence (1/2/3/4 byte
// forms), matching the original C utf8_char_count behaviour.
func CharCount(s []byte) (int, error) {
	count := 0
	i := 0
	for i < len(s) {
		w := leadByteWidth(s[i])
		if w == 0 {
			return 0, fmt.Errorf("utf8x: invalid lead byte 0x%02x at offset %d", s[i], i)
		}
		if i+w > len(s) {
			return 0, fmt.Errorf("utf8x: truncated %d-byte sequence at offset %d", w, i)
		}
		i += w
		count++
	}
	return count, nil
}

// ReadChars reads bytes from buf until n Unicode scalar values have
// been consumed, returning the decoded string. It does not validate
// continuation bytes or surrogate pairs beyond the lead-byte width,
// trading strict UTF-8 validation for tolerance of wire producers that
// are not strictly conformant.
func ReadChars(n int, buf *buffer.Buffer) (string, error) {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		c := buf.Get()
		if c == buffer.EOF {
			return "", fmt.Errorf("utf8x: unexpected EOF after %d/%d chars", i, n)
		}
		lead := byte(c)
		w := leadByteWidth(lead)
		if w == 0 {
			return "", fmt.Errorf("utf8x: invalid lead byte 0x%02x", lead)
		}
		out = append(out, lead)
		for j := 1; j < w; j++ {
			cc := buf.Get()
			if cc == buffer.EOF {
				return "", fmt.Errorf("utf8x: truncated multi-byte char after %d/%d chars", i, n)
			}
			out = append(out, byte(cc))
		}
	}
	return string(out), nil
}
