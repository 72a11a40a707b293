// Package hessian implements the subset of the Hessian 1.0 binary
// serialization protocol this PEP client needs: booleans, integers,
// longs, doubles, dates, null, binary, strings, refs, lists, maps and
// remotes. Every wire value is modeled as a discriminated union (the
// Value interface) instead of a class-descriptor/constructor dispatch
// table: type dispatch at decode time is a switch on the first tag
// byte read from the wire.
package hessian

import (
	"fmt"

	"github.com/enricovianello/pep-go/pkg/buffer"
)

// Wire tags, big-endian multi-byte fields throughout.
const (
	TagBooleanTrue  = 'T'
	TagBooleanFalse = 'F'
	TagInteger      = 'I'
	TagLong         = 'L'
	TagDouble       = 'D'
	TagDate         = 'd'
	TagNull         = 'N'
	TagBinary       = 'B'
	TagString       = 'S'
	TagRef          = 'R'
	TagList         = 'V'
	TagMap          = 'M'
	TagRemote       = 'r'
	tagType         = 't'
	tagLengthHint   = 'l'
	tagTerminator   = 'z'
)

// Value is any decoded or to-be-encoded Hessian object.
type Value interface {
	// Tag returns the primary wire tag for this value's type.
	Tag() byte
	// Encode writes the full wire representation (tag plus payload)
	// to out.
	Encode(out *buffer.Buffer) error
}

// decodeState carries the per-document object table Ref values resolve
// against. The reader assigns a table slot to every composite (List,
// Map, Remote) as soon as its header is parsed so that a Ref can point
// back to an object that is still being filled in.
type decodeState struct {
	table []Value
}

func (d *decodeState) reserve(v Value) int {
	d.table = append(d.table, v)
	return len(d.table) - 1
}

func (d *decodeState) resolve(idx int) (Value, error) {
	if idx < 0 || idx >= len(d.table) {
		return nil, fmt.Errorf("hessian: ref index %d out of range (table size %d)", idx, len(d.table))
	}
	return d.table[idx], nil
}

// Marshal encodes v into a fresh buffer sized for typical small XACML
// documents; growth beyond that is handled by buffer.Buffer itself.
func Marshal(v Value) (*buffer.Buffer, error) {
	out := buffer.New(512)
	if err := v.Encode(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Unmarshal decodes a single top-level Value from in, dispatching on
// the first tag byte.
func Unmarshal(in *buffer.Buffer) (Value, error) {
	state := &decodeState{}
	return decodeValue(in, state)
}

func decodeValue(in *buffer.Buffer, state *decodeState) (Value, error) {
	tag := in.Get()
	if tag == buffer.EOF {
		return nil, fmt.Errorf("hessian: unexpected EOF reading tag")
	}
	return decodeTagged(byte(tag), in, state)
}

func decodeTagged(tag byte, in *buffer.Buffer, state *decodeState) (Value, error) {
	switch tag {
	case TagBooleanTrue, TagBooleanFalse:
		return decodeBoolean(tag, in)
	case TagInteger:
		return decodeInteger(tag, in)
	case TagRef:
		return decodeRef(tag, in, state)
	case TagLong:
		return decodeLong(tag, in)
	case TagDouble:
		return decodeDouble(tag, in)
	case TagDate:
		return decodeDate(tag, in)
	case TagNull:
		return Null{}, nil
	case TagBinary:
		return decodeBinary(tag, in)
	case TagString:
		return decodeString(tag, in)
	case TagList:
		return decodeList(tag, in, state)
	case TagMap:
		return decodeMap(tag, in, state)
	case TagRemote:
		return decodeRemote(tag, in, state)
	default:
		return nil, fmt.Errorf("hessian: unknown tag 0x%02x (%q)", tag, string(tag))
	}
}

func readByte(in *buffer.Buffer, context string) (byte, error) {
	c := in.Get()
	if c == buffer.EOF {
		return 0, fmt.Errorf("hessian: unexpected EOF: %s", context)
	}
	return byte(c), nil
}

func readUint16(in *buffer.Buffer, context string) (int, error) {
	b1, err := readByte(in, context)
	if err != nil {
		return 0, err
	}
	b0, err := readByte(in, context)
	if err != nil {
		return 0, err
	}
	return int(b1)<<8 | int(b0), nil
}

func writeUint16(out *buffer.Buffer, v int) {
	out.Put(byte((v >> 8) & 0xFF))
	out.Put(byte(v & 0xFF))
}
