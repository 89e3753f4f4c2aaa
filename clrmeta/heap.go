// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

// Blob is a borrowed view into the #Blob heap: a byte slice with no
// owned storage of its own (spec.md §3's Blob entity).
type Blob []byte

// GUID is a 16-byte entry copied out of the #GUID heap, laid out in
// its native mixed-endian form (little-endian u32, u16, u16, then 8
// raw bytes), matching how CustomAttribute.GUIDArgument reads one out
// of a blob.
type GUID [16]byte

// heaps holds fixed-offset borrowed views into the four metadata
// heaps (spec.md §4's Heap Readers component). blobAt returns a slice
// into the underlying metadata-root bytes without copying; stringAt,
// userStringAt and guidAt return values copied or decoded from them.
type heaps struct {
	strings []byte
	us      []byte
	guid    []byte
	blob    []byte
}

// stringAt resolves a #Strings heap index to its null-terminated
// UTF-8 value. Index 0 always resolves to the empty string
// (spec.md §8 invariant).
func (h *heaps) stringAt(index uint32) (string, error) {
	if index == 0 {
		return "", nil
	}
	if int(index) >= len(h.strings) {
		return "", errf(Corrupt, "#Strings index %d beyond heap of size %d", index, len(h.strings))
	}
	end := index
	for end < uint32(len(h.strings)) && h.strings[end] != 0 {
		end++
	}
	if end >= uint32(len(h.strings)) {
		return "", errf(Corrupt, "#Strings entry at %d is not null-terminated", index)
	}
	return string(h.strings[index:end]), nil
}

// blobAt resolves a #Blob heap index to its length-prefixed payload.
// The length prefix uses the same compressed-integer encoding as
// signature blobs (spec.md §4.2).
func (h *heaps) blobAt(index uint32) (Blob, error) {
	if index == 0 {
		return Blob{}, nil
	}
	if int(index) >= len(h.blob) {
		return nil, errf(Corrupt, "#Blob index %d beyond heap of size %d", index, len(h.blob))
	}
	length, n, err := decodeCompressedUint(h.blob[index:])
	if err != nil {
		return nil, wrapf(Corrupt, err, "#Blob entry at %d", index)
	}
	start := index + uint32(n)
	end := start + length
	if int(end) > len(h.blob) {
		return nil, errf(Corrupt, "#Blob entry at %d claims length %d beyond heap", index, length)
	}
	return Blob(h.blob[start:end]), nil
}

// guidAt resolves a 1-based #GUID heap index to its 16-byte entry.
// Index 0 resolves to the zero GUID.
func (h *heaps) guidAt(index uint32) (GUID, error) {
	var g GUID
	if index == 0 {
		return g, nil
	}
	offset := (index - 1) * 16
	if int(offset+16) > len(h.guid) {
		return g, errf(Corrupt, "#GUID index %d beyond heap of size %d", index, len(h.guid)/16)
	}
	copy(g[:], h.guid[offset:offset+16])
	return g, nil
}

// userStringAt resolves a #US heap index to its UTF-16 payload,
// decoded to a Go string. #US entries are length-prefixed UTF-16 with
// a trailing single byte indicating whether any character has its
// high bit set; that trailing byte is not part of the string content.
func (h *heaps) userStringAt(index uint32) (string, error) {
	if index == 0 {
		return "", nil
	}
	if int(index) >= len(h.us) {
		return "", errf(Corrupt, "#US index %d beyond heap of size %d", index, len(h.us))
	}
	length, n, err := decodeCompressedUint(h.us[index:])
	if err != nil {
		return "", wrapf(Corrupt, err, "#US entry at %d", index)
	}
	start := index + uint32(n)
	end := start + length
	if int(end) > len(h.us) || length == 0 {
		if length == 0 {
			return "", nil
		}
		return "", errf(Corrupt, "#US entry at %d claims length %d beyond heap", index, length)
	}
	// Drop the trailing terminal byte, which is not UTF-16 content.
	payload := h.us[start : end-1]
	return decodeUTF16LE(payload)
}

// decodeUTF16LE decodes a little-endian UTF-16 byte slice to a Go
// string, the same primitive the PE adapter uses for resource and
// version strings (peloader.DecodeUTF16String), reused here for #US.
func decodeUTF16LE(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := decoder.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decodeCompressedUint decodes a compressed unsigned integer per
// ECMA-335 §II.23.2: 1, 2 or 4 bytes depending on the high bits of the
// first byte. Returns the value and the number of bytes consumed.
func decodeCompressedUint(b []byte) (uint32, int, error) {
	if len(b) == 0 {
		return 0, 0, errf(Corrupt, "compressed integer: no bytes available")
	}
	first := b[0]
	switch {
	case first&0x80 == 0:
		return uint32(first), 1, nil
	case first&0xC0 == 0x80:
		if len(b) < 2 {
			return 0, 0, errf(Corrupt, "compressed integer: truncated 2-byte form")
		}
		return (uint32(first&0x3F) << 8) | uint32(b[1]), 2, nil
	case first&0xE0 == 0xC0:
		if len(b) < 4 {
			return 0, 0, errf(Corrupt, "compressed integer: truncated 4-byte form")
		}
		return (uint32(first&0x1F) << 24) | (uint32(b[1]) << 16) | (uint32(b[2]) << 8) | uint32(b[3]), 4, nil
	default:
		return 0, 0, errf(Corrupt, "compressed integer: invalid lead byte 0x%02x", first)
	}
}

// readU16LE/readU32LE are tiny fixed-width readers shared by the
// Database row decoder and the signature decoder, mirroring the
// adapter's File.ReadUint16/ReadUint32 shape but operating on an
// in-hand byte slice rather than a mapped file.
func readU16LE(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func readU32LE(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
