package hessian

import (
	"fmt"
	"math"
	"time"

	"github.com/enricovianello/pep-go/pkg/buffer"
	"github.com/enricovianello/pep-go/pkg/utf8x"
)

// Boolean is the Hessian boolean primitive, wire tag 'T' or 'F'.
type Boolean bool

func (Boolean) Tag() byte { return TagBooleanTrue }

func (b Boolean) Encode(out *buffer.Buffer) error {
	if b {
		out.Put(TagBooleanTrue)
	} else {
		out.Put(TagBooleanFalse)
	}
	return nil
}

func decodeBoolean(tag byte, _ *buffer.Buffer) (Value, error) {
	switch tag {
	case TagBooleanTrue:
		return Boolean(true), nil
	case TagBooleanFalse:
		return Boolean(false), nil
	default:
		return nil, fmt.Errorf("hessian: invalid boolean tag 0x%02x", tag)
	}
}

// Integer is the Hessian 32-bit signed integer primitive, big-endian
// on the wire, tag 'I'.
type Integer int32

func (Integer) Tag() byte { return TagInteger }

func (i Integer) Encode(out *buffer.Buffer) error {
	v := int32(i)
	out.Put(TagInteger)
	out.Put(byte(v >> 24))
	out.Put(byte(v >> 16))
	out.Put(byte(v >> 8))
	out.Put(byte(v))
	return nil
}

func readInt32Payload(in *buffer.Buffer, context string) (int32, error) {
	b3, err := readByte(in, context)
	if err != nil {
		return 0, err
	}
	b2, err := readByte(in, context)
	if err != nil {
		return 0, err
	}
	b1, err := readByte(in, context)
	if err != nil {
		return 0, err
	}
	b0, err := readByte(in, context)
	if err != nil {
		return 0, err
	}
	return int32(uint32(b3)<<24 | uint32(b2)<<16 | uint32(b1)<<8 | uint32(b0)), nil
}

func decodeInteger(tag byte, in *buffer.Buffer) (Value, error) {
	if tag != TagInteger {
		return nil, fmt.Errorf("hessian: invalid integer tag 0x%02x", tag)
	}
	v, err := readInt32Payload(in, "integer payload")
	if err != nil {
		return nil, err
	}
	return Integer(v), nil
}

// Ref is a back-reference to an earlier composite in the same
// document. It shares Integer's 4-byte big-endian wire payload but is
// kept as a distinct type rather than an Integer subtype, since the
// two tags are not interchangeable on the wire.
type Ref int32

func (Ref) Tag() byte { return TagRef }

func (r Ref) Encode(out *buffer.Buffer) error {
	v := int32(r)
	out.Put(TagRef)
	out.Put(byte(v >> 24))
	out.Put(byte(v >> 16))
	out.Put(byte(v >> 8))
	out.Put(byte(v))
	return nil
}

func decodeRef(tag byte, in *buffer.Buffer, state *decodeState) (Value, error) {
	if tag != TagRef {
		return nil, fmt.Errorf("hessian: invalid ref tag 0x%02x", tag)
	}
	v, err := readInt32Payload(in, "ref payload")
	if err != nil {
		return nil, err
	}
	resolved, err := state.resolve(int(v))
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// Long is the Hessian 64-bit signed integer primitive, tag 'L'.
type Long int64

func (Long) Tag() byte { return TagLong }

func (l Long) Encode(out *buffer.Buffer) error {
	v := uint64(l)
	out.Put(TagLong)
	for shift := 56; shift >= 0; shift -= 8 {
		out.Put(byte(v >> uint(shift)))
	}
	return nil
}

func decodeLong(tag byte, in *buffer.Buffer) (Value, error) {
	if tag != TagLong {
		return nil, fmt.Errorf("hessian: invalid long tag 0x%02x", tag)
	}
	var v uint64
	for i := 0; i < 8; i++ {
		b, err := readByte(in, "long payload")
		if err != nil {
			return nil, err
		}
		v = v<<8 | uint64(b)
	}
	return Long(int64(v)), nil
}

// Double is the Hessian IEEE-754 64-bit floating point primitive, tag 'D'.
type Double float64

func (Double) Tag() byte { return TagDouble }

func (d Double) Encode(out *buffer.Buffer) error {
	bits := math.Float64bits(float64(d))
	out.Put(TagDouble)
	for shift := 56; shift >= 0; shift -= 8 {
		out.Put(byte(bits >> uint(shift)))
	}
	return nil
}

func decodeDouble(tag byte, in *buffer.Buffer) (Value, error) {
	if tag != TagDouble {
		return nil, fmt.Errorf("hessian: invalid double tag 0x%02x", tag)
	}
	var bits uint64
	for i := 0; i < 8; i++ {
		b, err := readByte(in, "double payload")
		if err != nil {
			return nil, err
		}
		bits = bits<<8 | uint64(b)
	}
	return Double(math.Float64frombits(bits)), nil
}

// Date is the Hessian date primitive: milliseconds since epoch, tag 'd'.
type Date time.Time

func (Date) Tag() byte { return TagDate }

func (d Date) Encode(out *buffer.Buffer) error {
	ms := time.Time(d).UnixMilli()
	out.Put(TagDate)
	for shift := 56; shift >= 0; shift -= 8 {
		out.Put(byte(uint64(ms) >> uint(shift)))
	}
	return nil
}

func decodeDate(tag byte, in *buffer.Buffer) (Value, error) {
	if tag != TagDate {
		return nil, fmt.Errorf("hessian: invalid date tag 0x%02x", tag)
	}
	var v uint64
	for i := 0; i < 8; i++ {
		b, err := readByte(in, "date payload")
		if err != nil {
			return nil, err
		}
		v = v<<8 | uint64(b)
	}
	return Date(time.UnixMilli(int64(v)).UTC()), nil
}

// Null is the Hessian absent-value primitive, tag 'N', used for every
// absent optional field in the XACML mapping.
type Null struct{}

func (Null) Tag() byte { return TagNull }

func (Null) Encode(out *buffer.Buffer) error {
	out.Put(TagNull)
	return nil
}

// Binary is length-prefixed opaque bytes, tag 'B', 16-bit chunk length.
// Documents larger than 65535 bytes are not chunked (not needed by
// this client's XACML payloads) and return an error instead of
// silently truncating.
type Binary []byte

func (Binary) Tag() byte { return TagBinary }

func (b Binary) Encode(out *buffer.Buffer) error {
	if len(b) > 0xFFFF {
		return fmt.Errorf("hessian: binary value of %d bytes exceeds single-chunk limit of 65535", len(b))
	}
	out.Put(TagBinary)
	writeUint16(out, len(b))
	out.Write(b)
	return nil
}

func decodeBinary(tag byte, in *buffer.Buffer) (Value, error) {
	if tag != TagBinary {
		return nil, fmt.Errorf("hessian: invalid binary tag 0x%02x", tag)
	}
	n, err := readUint16(in, "binary length")
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if got := in.Read(buf); got != n {
		return nil, fmt.Errorf("hessian: short read on binary payload: got %d, want %d", got, n)
	}
	return Binary(buf), nil
}

// String is a UTF-8 string whose wire length is a count of Unicode
// scalar values, not bytes, tag 'S'. A single chunk holds at most
// 65535 characters.
type String string

func (String) Tag() byte { return TagString }

func (s String) Encode(out *buffer.Buffer) error {
	n, err := utf8x.CharCount([]byte(s))
	if err != nil {
		return fmt.Errorf("hessian: encoding string: %w", err)
	}
	if n > 0xFFFF {
		return fmt.Errorf("hessian: string of %d characters exceeds single-chunk limit of 65535", n)
	}
	out.Put(TagString)
	writeUint16(out, n)
	out.Write([]byte(s))
	return nil
}

func decodeString(tag byte, in *buffer.Buffer) (Value, error) {
	if tag != TagString {
		return nil, fmt.Errorf("hessian: invalid string tag 0x%02x", tag)
	}
	n, err := readUint16(in, "string length")
	if err != nil {
		return nil, err
	}
	s, err := utf8x.ReadChars(n, in)
	if err != nil {
		return nil, fmt.Errorf("hessian: decoding string: %w", err)
	}
	return String(s), nil
}
