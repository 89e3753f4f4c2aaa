// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import (
	"encoding/binary"
	"testing"
)

func TestStringAtZeroIsEmpty(t *testing.T) {
	h := heaps{strings: []byte{0, 'h', 'i', 0}}
	s, err := h.stringAt(0)
	if err != nil || s != "" {
		t.Fatalf("stringAt(0) got (%q, %v), want (\"\", nil)", s, err)
	}
	s, err = h.stringAt(1)
	if err != nil || s != "hi" {
		t.Fatalf("stringAt(1) got (%q, %v), want (\"hi\", nil)", s, err)
	}
}

func TestStringAtRejectsUnterminated(t *testing.T) {
	h := heaps{strings: []byte{0, 'h', 'i'}}
	if _, err := h.stringAt(1); !Is(err, Corrupt) {
		t.Fatalf("got %v, want Corrupt for an unterminated entry", err)
	}
}

func TestStringAtRejectsOutOfRange(t *testing.T) {
	h := heaps{strings: []byte{0}}
	if _, err := h.stringAt(50); !Is(err, Corrupt) {
		t.Fatalf("got %v, want Corrupt for an out-of-range index", err)
	}
}

func TestBlobAtZeroIsEmpty(t *testing.T) {
	h := heaps{blob: []byte{0}}
	b, err := h.blobAt(0)
	if err != nil || len(b) != 0 {
		t.Fatalf("blobAt(0) got (%v, %v), want (empty, nil)", b, err)
	}
}

func TestBlobAtDecodesLengthPrefixedPayload(t *testing.T) {
	h := heaps{blob: []byte{0, 3, 'a', 'b', 'c'}}
	b, err := h.blobAt(1)
	if err != nil {
		t.Fatalf("blobAt failed: %v", err)
	}
	if string(b) != "abc" {
		t.Fatalf("blobAt got %q, want %q", b, "abc")
	}
}

func TestBlobAtRejectsTruncatedPayload(t *testing.T) {
	h := heaps{blob: []byte{0, 10, 'a'}}
	if _, err := h.blobAt(1); !Is(err, Corrupt) {
		t.Fatalf("got %v, want Corrupt for a blob claiming more bytes than the heap has", err)
	}
}

func TestGUIDAtZeroIsZeroValue(t *testing.T) {
	h := heaps{}
	g, err := h.guidAt(0)
	if err != nil || g != (GUID{}) {
		t.Fatalf("guidAt(0) got (%v, %v), want (zero, nil)", g, err)
	}
}

func TestGUIDAtOneBasedIndexing(t *testing.T) {
	g1 := [16]byte{1, 2, 3}
	g2 := [16]byte{4, 5, 6}
	buf := append(append([]byte{}, g1[:]...), g2[:]...)
	h := heaps{guid: buf}

	got, err := h.guidAt(2)
	if err != nil {
		t.Fatalf("guidAt(2) failed: %v", err)
	}
	if GUID(got) != GUID(g2) {
		t.Fatalf("guidAt(2) got %v, want %v", got, g2)
	}
}

func TestDecodeCompressedUintForms(t *testing.T) {
	cases := []struct {
		name    string
		b       []byte
		want    uint32
		wantLen int
	}{
		{"1-byte", []byte{0x03}, 0x03, 1},
		{"1-byte max", []byte{0x7F}, 0x7F, 1},
		{"2-byte min", []byte{0x80, 0x80}, 0x80, 2},
		{"2-byte max", []byte{0xBF, 0xFF}, 0x3FFF, 2},
		{"4-byte min", []byte{0xC0, 0x00, 0x40, 0x00}, 0x4000, 4},
		{"4-byte max", []byte{0xDF, 0xFF, 0xFF, 0xFF}, 0x1FFFFFFF, 4},
	}
	for _, c := range cases {
		got, n, err := decodeCompressedUint(c.b)
		if err != nil {
			t.Fatalf("%s: decodeCompressedUint failed: %v", c.name, err)
		}
		if got != c.want || n != c.wantLen {
			t.Errorf("%s: got (%#x, %d), want (%#x, %d)", c.name, got, n, c.want, c.wantLen)
		}
	}
}

func TestDecodeCompressedUintTruncated(t *testing.T) {
	if _, _, err := decodeCompressedUint([]byte{0x80}); !Is(err, Corrupt) {
		t.Fatalf("got %v, want Corrupt for a truncated 2-byte form", err)
	}
	if _, _, err := decodeCompressedUint(nil); !Is(err, Corrupt) {
		t.Fatalf("got %v, want Corrupt for an empty buffer", err)
	}
}

func TestUserStringAtDropsTerminalByte(t *testing.T) {
	payload := []byte{'h', 0, 'i', 0}
	buf := []byte{0}
	buf = append(buf, byte(len(payload)+1))
	buf = append(buf, payload...)
	buf = append(buf, 0) // terminal byte
	h := heaps{us: buf}

	s, err := h.userStringAt(1)
	if err != nil {
		t.Fatalf("userStringAt failed: %v", err)
	}
	if s != "hi" {
		t.Fatalf("userStringAt got %q, want %q", s, "hi")
	}
}

func TestReadU16LEAndU32LE(t *testing.T) {
	var b16 [2]byte
	binary.LittleEndian.PutUint16(b16[:], 0xBEEF)
	if got := readU16LE(b16[:]); got != 0xBEEF {
		t.Errorf("readU16LE got %#x, want %#x", got, 0xBEEF)
	}
	var b32 [4]byte
	binary.LittleEndian.PutUint32(b32[:], 0xDEADBEEF)
	if got := readU32LE(b32[:]); got != 0xDEADBEEF {
		t.Errorf("readU32LE got %#x, want %#x", got, 0xDEADBEEF)
	}
}
