// Package base64x implements the RFC 1113 base64 codec the wire
// protocol uses to carry Hessian documents over HTTP: a standard
// alphabet, '=' padding, and optional CRLF line wrapping. It operates
// directly on buffer.Buffer so it can sit between the Hessian codec
// and the HTTP transport without an intermediate copy.
package base64x

import "github.com/enricovianello/pep-go/pkg/buffer"

// DefaultLineSize is the PEM/RFC1113 default wrap width.
const DefaultLineSize = 64

// NoLineBreak disables line wrapping entirely when passed as linesize.
const NoLineBreak = -1000

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var decodeTable [256]int8

func init() {
	for i := range decodeTable {
		decodeTable[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		decodeTable[alphabet[i]] = int8(i)
	}
}

func encodeBlock(in [3]byte, inLen int) [4]byte {
	var out [4]byte
	out[0] = alphabet[in[0]>>2]
	out[1] = alphabet[((in[0]&0x03)<<4)|((in[1]&0xf0)>>4)]
	if inLen > 1 {
		out[2] = alphabet[((in[1]&0x0f)<<2)|((in[2]&0xc0)>>6)]
	} else {
		out[2] = '='
	}
	if inLen > 2 {
		out[3] = alphabet[in[2]&0x3f]
	} else {
		out[3] = '='
	}
	return out
}

// Encode base64-encodes in into out without line wrapping.
func Encode(in, out *buffer.Buffer) {
	EncodeLineSize(in, out, NoLineBreak)
}

// EncodeLineSize base64-encodes in into out, emitting CRLF after the
// first whole 4-character block that brings the line to at least
// linesize characters (so lines are linesize rounded up to a multiple
// of 4), and after the final block. Values below 4 (other than NoLineBreak)
// fall back to DefaultLineSize, matching the original C codec.
func EncodeLineSize(in, out *buffer.Buffer, linesize int) {
	if linesize != NoLineBreak && linesize < 4 {
		linesize = DefaultLineSize
	}
	written := 0
	for !in.EOF() {
		var chunk [3]byte
		n := 0
		for i := 0; i < 3; i++ {
			c := in.Get()
			if c == buffer.EOF {
				break
			}
			chunk[i] = byte(c)
			n++
		}
		if n > 0 {
			block := encodeBlock(chunk, n)
			written += out.Write(block[:])
		}
		if linesize != NoLineBreak {
			if written >= linesize || in.EOF() {
				out.Write([]byte("\r\n"))
				written = 0
			}
		}
	}
}

func decodeBlock(in [4]byte) [3]byte {
	var out [3]byte
	out[0] = in[0]<<2 | in[1]>>4
	out[1] = in[1]<<4 | in[2]>>2
	out[2] = (in[2]<<6)&0xc0 | in[3]
	return out
}

// Decode base64-decodes in into out, skipping any byte that isn't part
// of the alphabet (tolerating whitespace and line breaks), and
// truncating the final short group the way encode padded it.
func Decode(in, out *buffer.Buffer) {
	for !in.EOF() {
		var chunk [4]byte
		n := 0
		for n < 4 {
			c := in.Get()
			if c == buffer.EOF {
				break
			}
			idx := decodeTable[byte(c)]
			if idx < 0 {
				continue
			}
			chunk[n] = byte(idx)
			n++
		}
		if n > 0 {
			block := decodeBlock(chunk)
			out.Write(block[:n-1])
		}
	}
}
