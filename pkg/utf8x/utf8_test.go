package utf8x

import (
	"testing"

	"github.com/enricovianello/pep-go/pkg/buffer"
)

func TestCharCountASCII(t *testing.T) {
	n, err := CharCount([]byte("alice"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("CharCount = %d, want 5", n)
	}
}

func TestCharCountMultibyte(t *testing.T) {
	s := "caféé中\U0001F600" // mixes 1/2/3/4-byte sequences
	n, err := CharCount([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	want := len([]rune(s))
	if n != want {
		t.Fatalf("CharCount = %d, want %d", n, want)
	}
}

func TestReadCharsRoundTrip(t *testing.T) {
	s := "café 中文 \U0001F600"
	n, err := CharCount([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	buf := buffer.NewFromBytes([]byte(s))
	got, err := ReadChars(n, buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Fatalf("ReadChars = %q, want %q", got, s)
	}
	if !buf.EOF() {
		t.Fatalf("expected buffer fully consumed")
	}
}

func TestReadCharsTruncated(t *testing.T) {
	buf := buffer.NewFromBytes([]byte{0xC3}) // half of a 2-byte sequence
	if _, err := ReadChars(1, buf); err == nil {
		t.Fatalf("expected error on truncated sequence")
	}
}
