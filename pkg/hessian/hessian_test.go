package hessian

import (
	"math"
	"testing"
	"time"

	"github.com/enricovianello/pep-go/pkg/buffer"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	buf, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal(%v): %v", v, err)
	}
	buf.Rewind()
	got, err := Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return got
}

func TestBooleanRoundTrip(t *testing.T) {
	for _, b := range []Boolean{true, false} {
		got := roundTrip(t, b)
		if got.(Boolean) != b {
			t.Fatalf("got %v, want %v", got, b)
		}
	}
}

func TestIntegerBoundaries(t *testing.T) {
	for _, v := range []Integer{math.MinInt32, math.MaxInt32, 0, -1, 1} {
		got := roundTrip(t, v)
		if got.(Integer) != v {
			t.Fatalf("got %v, want %v", got, v)
		}
	}
}

func TestLongRoundTrip(t *testing.T) {
	v := Long(math.MaxInt64)
	got := roundTrip(t, v)
	if got.(Long) != v {
		t.Fatalf("got %v, want %v", got, v)
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	v := Double(3.14159265358979)
	got := roundTrip(t, v)
	if got.(Double) != v {
		t.Fatalf("got %v, want %v", got, v)
	}
}

func TestDateRoundTrip(t *testing.T) {
	now := Date(time.UnixMilli(1700000000123).UTC())
	got := roundTrip(t, now)
	if time.Time(got.(Date)).UnixMilli() != time.Time(now).UnixMilli() {
		t.Fatalf("got %v, want %v", got, now)
	}
}

func TestNullRoundTrip(t *testing.T) {
	got := roundTrip(t, Null{})
	if _, ok := got.(Null); !ok {
		t.Fatalf("got %T, want Null", got)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	v := Binary([]byte{0, 1, 2, 255, 254, 0})
	got := roundTrip(t, v)
	gb := got.(Binary)
	if string(gb) != string(v) {
		t.Fatalf("got %v, want %v", gb, v)
	}
}

func TestStringRoundTrip(t *testing.T) {
	v := String("hello, 世界 \U0001F600")
	got := roundTrip(t, v)
	if got.(String) != v {
		t.Fatalf("got %q, want %q", got, v)
	}
}

func TestStringMaxChunkLength(t *testing.T) {
	big := make([]byte, 65535)
	for i := range big {
		big[i] = 'a'
	}
	v := String(big)
	got := roundTrip(t, v)
	if len(string(got.(String))) != 65535 {
		t.Fatalf("got length %d, want 65535", len(string(got.(String))))
	}
}

func TestListRoundTrip(t *testing.T) {
	list := &List{
		Type: "my.List",
		Elements: []Value{
			String("a"),
			Integer(42),
			Boolean(true),
			Null{},
		},
	}
	got := roundTrip(t, list)
	gl, ok := got.(*List)
	if !ok {
		t.Fatalf("got %T, want *List", got)
	}
	if gl.Type != list.Type || len(gl.Elements) != len(list.Elements) {
		t.Fatalf("got %+v, want %+v", gl, list)
	}
	if gl.Elements[1].(Integer) != Integer(42) {
		t.Fatalf("element 1 = %v, want 42", gl.Elements[1])
	}
}

func TestMapRoundTrip(t *testing.T) {
	m := &Map{Type: "my.Map"}
	m.Put("id", String("urn:x:sub"))
	m.Put("count", Integer(3))
	got := roundTrip(t, m)
	gm, ok := got.(*Map)
	if !ok {
		t.Fatalf("got %T, want *Map", got)
	}
	if v, ok := gm.Get("id"); !ok || v.(String) != "urn:x:sub" {
		t.Fatalf("Get(id) = %v, %v", v, ok)
	}
	if v, ok := gm.Get("count"); !ok || v.(Integer) != 3 {
		t.Fatalf("Get(count) = %v, %v", v, ok)
	}
}

func TestRemoteRoundTrip(t *testing.T) {
	r := &Remote{Type: "org.example.Service", URL: "http://pdp.example.org/authz"}
	got := roundTrip(t, r)
	gr, ok := got.(*Remote)
	if !ok {
		t.Fatalf("got %T, want *Remote", got)
	}
	if gr.Type != r.Type || gr.URL != r.URL {
		t.Fatalf("got %+v, want %+v", gr, r)
	}
}

func TestRefResolvesToEarlierComposite(t *testing.T) {
	shared := &Map{Type: "shared"}
	shared.Put("k", String("v"))

	doc := buffer.New(64)
	if err := shared.Encode(doc); err != nil {
		t.Fatal(err)
	}
	sharedRefIndex := 0
	ref := Ref(sharedRefIndex)
	if err := ref.Encode(doc); err != nil {
		t.Fatal(err)
	}

	doc.Rewind()
	state := &decodeState{}
	first, err := decodeValue(doc, state)
	if err != nil {
		t.Fatal(err)
	}
	second, err := decodeValue(doc, state)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("ref did not resolve to the same instance: %v vs %v", first, second)
	}
}
