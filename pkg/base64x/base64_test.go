package base64x

import (
	"bytes"
	"testing"

	"github.com/enricovianello/pep-go/pkg/buffer"
)

func roundTrip(t *testing.T, data []byte, linesize int) {
	t.Helper()
	in := buffer.NewFromBytes(data)
	enc := buffer.New(16)
	EncodeLineSize(in, enc, linesize)

	enc.Rewind()
	dec := buffer.New(16)
	Decode(enc, dec)

	if !bytes.Equal(dec.Bytes(), data) {
		t.Fatalf("round trip (linesize=%d) = %q, want %q", linesize, dec.Bytes(), data)
	}
}

func TestRoundTripVariousLineSizes(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog, repeatedly, to pad this out past a few base64 blocks.")
	for _, ls := range []int{NoLineBreak, 4, 8, 16, 64, 76} {
		roundTrip(t, data, ls)
	}
}

func TestEmptyInput(t *testing.T) {
	in := buffer.New(1)
	out := buffer.New(1)
	Encode(in, out)
	if out.Length() != 0 {
		t.Fatalf("encode of empty input produced %d bytes, want 0", out.Length())
	}
}

func TestPaddingOneAndTwoBytes(t *testing.T) {
	in1 := buffer.NewFromBytes([]byte("M"))
	out1 := buffer.New(8)
	Encode(in1, out1)
	if got := string(out1.Bytes()); got[len(got)-2:] != "==" {
		t.Fatalf("1-byte input encoded as %q, want two trailing '='", got)
	}

	in2 := buffer.NewFromBytes([]byte("Ma"))
	out2 := buffer.New(8)
	Encode(in2, out2)
	if got := string(out2.Bytes()); got[len(got)-1:] != "=" || got[len(got)-2:len(got)-1] == "=" {
		t.Fatalf("2-byte input encoded as %q, want one trailing '='", got)
	}
}

func TestDecodeTolerantOfLineBreaks(t *testing.T) {
	in := buffer.NewFromBytes([]byte("SGVs\r\nbG8g\r\nd29ybGQ=")) // "Hello world"
	out := buffer.New(16)
	Decode(in, out)
	if string(out.Bytes()) != "Hello world" {
		t.Fatalf("Decode = %q, want %q", out.Bytes(), "Hello world")
	}
}
