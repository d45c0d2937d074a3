// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package zkhash

import (
	"bytes"
	"testing"
)

func TestNewHashFromBytesPadding(t *testing.T) {
	h, err := NewHashFromBytes([]byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	want := make([]byte, 32)
	want[31] = 3
	want[30] = 2
	want[29] = 1
	if !bytes.Equal(h[:], want) {
		t.Fatalf("got %x, want %x", h[:], want)
	}
}

func TestNewHashFromBytesTooLong(t *testing.T) {
	_, err := NewHashFromBytes(make([]byte, 33))
	if err == nil {
		t.Fatal("expected error for 33-byte input")
	}
}

func TestNewHashFromBytesNonCanonical(t *testing.T) {
	// The scalar field modulus itself is not a canonical element.
	modulus := []byte{
		0x30, 0x64, 0x4e, 0x72, 0xe1, 0x31, 0xa0, 0x29,
		0xb8, 0x50, 0x45, 0xb6, 0x81, 0x81, 0x58, 0x5d,
		0x28, 0x33, 0xe8, 0x48, 0x79, 0xb9, 0x70, 0x91,
		0x43, 0xe1, 0xf5, 0x93, 0xf0, 0x00, 0x00, 0x01,
	}
	_, err := NewHashFromBytes(modulus)
	if err == nil {
		t.Fatal("expected field modulus to be rejected as non-canonical")
	}
}

func TestHashDeterministic(t *testing.T) {
	a, _ := NewHashFromBytes([]byte{1})
	b, _ := NewHashFromBytes([]byte{2})

	h1, err := Hash(6, [2]ZkHash{a, b})
	if err != nil {
		t.Fatal(err)
	}
	h2, err := Hash(6, [2]ZkHash{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %x != %x", h1, h2)
	}

	h3, err := Hash(7, [2]ZkHash{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h3 {
		t.Fatal("domain separation failed: different kinds produced the same hash")
	}

	h4, err := Hash(6, [2]ZkHash{b, a})
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h4 {
		t.Fatal("hash should not be symmetric in its two inputs")
	}
}

func TestHashBytesShortVsLong(t *testing.T) {
	short, err := HashBytes([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	long, err := HashBytes(bytes.Repeat([]byte{0xaa}, 32))
	if err != nil {
		t.Fatal(err)
	}
	if short == long {
		t.Fatal("short and long inputs collided")
	}
}

func TestHashBytesTooLong(t *testing.T) {
	_, err := HashBytes(make([]byte, 33))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestHashBytesArrayLengths(t *testing.T) {
	for _, n := range []int{1, 24, 25, 256} {
		preimages := make([][32]byte, n)
		for i := range preimages {
			preimages[i][31] = byte(i)
		}
		if _, err := HashBytesArray(preimages, 1); err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
	}
}

func TestHashBytesArrayEmpty(t *testing.T) {
	_, err := HashBytesArray(nil, 0)
	if err != ErrEmptyPreimagesArray {
		t.Fatalf("expected ErrEmptyPreimagesArray, got %v", err)
	}
}

func TestHashBytesArrayCompressFlagsChangeResult(t *testing.T) {
	var p [32]byte
	p[31] = 7
	preimages := [][32]byte{p}

	compressed, err := HashBytesArray(preimages, 1)
	if err != nil {
		t.Fatal(err)
	}
	uncompressed, err := HashBytesArray(preimages, 0)
	if err != nil {
		t.Fatal(err)
	}
	if compressed == uncompressed {
		t.Fatal("compress flag should change the resulting value hash")
	}
}
