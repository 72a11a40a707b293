package hessian

import (
	"fmt"

	"github.com/enricovianello/pep-go/pkg/buffer"
	"github.com/enricovianello/pep-go/pkg/utf8x"
)

// List is an ordered Hessian sequence: header 'V', optional type name,
// optional length hint, elements, terminator 'z'. Owns its elements in
// the sense that releasing a List in the original C API released all
// of them; Go's GC makes that automatic.
type List struct {
	Type     string // "" means the optional type marker is omitted
	Elements []Value
}

func (*List) Tag() byte { return TagList }

func (l *List) Encode(out *buffer.Buffer) error {
	out.Put(TagList)
	if l.Type != "" {
		if err := writeTypeMarker(out, l.Type); err != nil {
			return err
		}
	}
	out.Put(tagLengthHint)
	n := int32(len(l.Elements))
	out.Put(byte(n >> 24))
	out.Put(byte(n >> 16))
	out.Put(byte(n >> 8))
	out.Put(byte(n))
	for _, e := range l.Elements {
		if err := e.Encode(out); err != nil {
			return fmt.Errorf("hessian: encoding list element: %w", err)
		}
	}
	out.Put(tagTerminator)
	return nil
}

func decodeList(tag byte, in *buffer.Buffer, state *decodeState) (Value, error) {
	if tag != TagList {
		return nil, fmt.Errorf("hessian: invalid list tag 0x%02x", tag)
	}
	list := &List{}
	state.reserve(list)

	c, err := readByte(in, "list header")
	if err != nil {
		return nil, err
	}
	if c == tagType {
		typ, err := readTypeMarkerBody(in)
		if err != nil {
			return nil, err
		}
		list.Type = typ
		c, err = readByte(in, "list header after type")
		if err != nil {
			return nil, err
		}
	}
	if c == tagLengthHint {
		if _, err := readInt32Payload(in, "list length hint"); err != nil {
			return nil, err
		}
		c, err = readByte(in, "list header after length hint")
		if err != nil {
			return nil, err
		}
	}
	for c != tagTerminator {
		elem, err := decodeTagged(c, in, state)
		if err != nil {
			return nil, fmt.Errorf("hessian: decoding list element: %w", err)
		}
		list.Elements = append(list.Elements, elem)
		c, err = readByte(in, "list element or terminator")
		if err != nil {
			return nil, err
		}
	}
	return list, nil
}

// MapEntry is a single key/value pair of a Hessian Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is an ordered Hessian key/value sequence: header 'M', optional
// type name, repeating (key, value) pairs, terminator 'z'.
type Map struct {
	Type    string
	Entries []MapEntry
}

func (*Map) Tag() byte { return TagMap }

func (m *Map) Encode(out *buffer.Buffer) error {
	out.Put(TagMap)
	if m.Type != "" {
		if err := writeTypeMarker(out, m.Type); err != nil {
			return err
		}
	}
	for _, e := range m.Entries {
		if err := e.Key.Encode(out); err != nil {
			return fmt.Errorf("hessian: encoding map key: %w", err)
		}
		if err := e.Value.Encode(out); err != nil {
			return fmt.Errorf("hessian: encoding map value %q: %w", entryKeyString(e.Key), err)
		}
	}
	out.Put(tagTerminator)
	return nil
}

func entryKeyString(k Value) string {
	if s, ok := k.(String); ok {
		return string(s)
	}
	return "?"
}

// Get returns the value associated with the first entry whose key is
// the String key, and whether it was found.
func (m *Map) Get(key string) (Value, bool) {
	for _, e := range m.Entries {
		if s, ok := e.Key.(String); ok && string(s) == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Put appends a (String(key), value) entry.
func (m *Map) Put(key string, value Value) {
	m.Entries = append(m.Entries, MapEntry{Key: String(key), Value: value})
}

func decodeMap(tag byte, in *buffer.Buffer, state *decodeState) (Value, error) {
	if tag != TagMap {
		return nil, fmt.Errorf("hessian: invalid map tag 0x%02x", tag)
	}
	m := &Map{}
	state.reserve(m)

	c, err := readByte(in, "map header")
	if err != nil {
		return nil, err
	}
	if c == tagType {
		typ, err := readTypeMarkerBody(in)
		if err != nil {
			return nil, err
		}
		m.Type = typ
		c, err = readByte(in, "map header after type")
		if err != nil {
			return nil, err
		}
	}
	for c != tagTerminator {
		key, err := decodeTagged(c, in, state)
		if err != nil {
			return nil, fmt.Errorf("hessian: decoding map key: %w", err)
		}
		value, err := decodeValue(in, state)
		if err != nil {
			return nil, fmt.Errorf("hessian: decoding map value: %w", err)
		}
		m.Entries = append(m.Entries, MapEntry{Key: key, Value: value})
		c, err = readByte(in, "map entry or terminator")
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Remote is a Hessian remote reference: header 'r', type name, url.
type Remote struct {
	Type string
	URL  string
}

func (*Remote) Tag() byte { return TagRemote }

func (r *Remote) Encode(out *buffer.Buffer) error {
	out.Put(TagRemote)
	if err := writeTypeMarker(out, r.Type); err != nil {
		return err
	}
	out.Put(TagString)
	n, err := utf8x.CharCount([]byte(r.URL))
	if err != nil {
		return fmt.Errorf("hessian: encoding remote url: %w", err)
	}
	writeUint16(out, n)
	out.Write([]byte(r.URL))
	return nil
}

func decodeRemote(tag byte, in *buffer.Buffer, state *decodeState) (Value, error) {
	if tag != TagRemote {
		return nil, fmt.Errorf("hessian: invalid remote tag 0x%02x", tag)
	}
	remote := &Remote{}
	state.reserve(remote)

	typeTag, err := readByte(in, "remote type tag")
	if err != nil {
		return nil, err
	}
	if typeTag != tagType {
		return nil, fmt.Errorf("hessian: expected remote type tag 't', got 0x%02x", typeTag)
	}
	typ, err := readTypeMarkerBody(in)
	if err != nil {
		return nil, err
	}
	remote.Type = typ

	urlTag, err := readByte(in, "remote url tag")
	if err != nil {
		return nil, err
	}
	if urlTag != TagString {
		return nil, fmt.Errorf("hessian: expected remote url tag 'S', got 0x%02x", urlTag)
	}
	n, err := readUint16(in, "remote url length")
	if err != nil {
		return nil, err
	}
	url, err := utf8x.ReadChars(n, in)
	if err != nil {
		return nil, fmt.Errorf("hessian: decoding remote url: %w", err)
	}
	remote.URL = url
	return remote, nil
}

func writeTypeMarker(out *buffer.Buffer, typ string) error {
	n, err := utf8x.CharCount([]byte(typ))
	if err != nil {
		return fmt.Errorf("hessian: encoding type marker: %w", err)
	}
	out.Put(tagType)
	writeUint16(out, n)
	out.Write([]byte(typ))
	return nil
}

func readTypeMarkerBody(in *buffer.Buffer) (string, error) {
	n, err := readUint16(in, "type marker length")
	if err != nil {
		return "", err
	}
	return utf8x.ReadChars(n, in)
}
