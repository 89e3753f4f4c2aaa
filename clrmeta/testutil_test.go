// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import (
	"encoding/binary"
)

// heapBuilder accumulates the four metadata heaps byte by byte,
// mirroring the real #Strings/#Blob/#GUID layout (index 0 is always
// the empty/zero entry) so tests can build a minimal metadata root the
// same way buildPE32 builds a minimal PE file in the peloader package.
type heapBuilder struct {
	strings []byte
	blob    []byte
	guid    []byte
}

func newHeapBuilder() *heapBuilder {
	return &heapBuilder{strings: []byte{0}, blob: []byte{0}}
}

func (h *heapBuilder) addString(s string) uint32 {
	off := uint32(len(h.strings))
	h.strings = append(h.strings, []byte(s)...)
	h.strings = append(h.strings, 0)
	return off
}

func (h *heapBuilder) addBlob(b []byte) uint32 {
	off := uint32(len(h.blob))
	h.blob = append(h.blob, encodeTestCompressedUint(len(b))...)
	h.blob = append(h.blob, b...)
	return off
}

func (h *heapBuilder) addGUID(g [16]byte) uint32 {
	idx := uint32(len(h.guid)/16) + 1
	h.guid = append(h.guid, g[:]...)
	return idx
}

// encodeTestCompressedUint encodes n in the 1-byte compressed form,
// sufficient for every fixture this package's tests build (all well
// under 0x80).
func encodeTestCompressedUint(n int) []byte {
	if n >= 0x80 {
		panic("encodeTestCompressedUint: fixture value too large for 1-byte form")
	}
	return []byte{byte(n)}
}

// buildTableStream serializes rows (keyed by TableID, each entry an
// ordered list of raw column values matching that table's schema) into
// a "#~" stream: header, row counts, then row data, in ascending
// TableID order, exactly as parseTableStream expects to read it back.
func buildTableStream(rows map[TableID][][]uint32) []byte {
	var rowCounts [numTables]uint32
	var valid uint64
	for t, rs := range rows {
		if len(rs) == 0 {
			continue
		}
		rowCounts[t] = uint32(len(rs))
		valid |= 1 << uint(t)
	}

	var colWidth [numTables][]uint32
	for t := TableID(0); t < numTables; t++ {
		if valid&(1<<uint(t)) == 0 {
			continue
		}
		schema := schemas[t]
		widths := make([]uint32, len(schema.columns))
		for i, col := range schema.columns {
			switch col.kind {
			case kindU8:
				widths[i] = 1
			case kindU16:
				widths[i] = 2
			case kindU32:
				widths[i] = 4
			case kindHeapString, kindHeapGUID, kindHeapBlob:
				widths[i] = 2
			case kindSimpleIndex:
				if rowCounts[col.target] > 0xFFFF {
					widths[i] = 4
				} else {
					widths[i] = 2
				}
			case kindCodedIndex:
				widths[i] = col.scheme.width(rowCounts)
			}
		}
		colWidth[t] = widths
	}

	buf := make([]byte, 24)
	buf[4] = 2 // MajorVersion
	buf[5] = 0 // MinorVersion
	buf[6] = 0 // HeapSizes: all heap indices are 2 bytes in these fixtures
	buf[7] = 1 // Reserved2, conventionally 1
	binary.LittleEndian.PutUint64(buf[8:16], valid)
	binary.LittleEndian.PutUint64(buf[16:24], 0) // Sorted: not asserted on by these fixtures

	for t := TableID(0); t < numTables; t++ {
		if valid&(1<<uint(t)) == 0 {
			continue
		}
		var n [4]byte
		binary.LittleEndian.PutUint32(n[:], rowCounts[t])
		buf = append(buf, n[:]...)
	}

	for t := TableID(0); t < numTables; t++ {
		if valid&(1<<uint(t)) == 0 {
			continue
		}
		for _, row := range rows[t] {
			for i, v := range row {
				w := colWidth[t][i]
				switch w {
				case 1:
					buf = append(buf, byte(v))
				case 2:
					var b [2]byte
					binary.LittleEndian.PutUint16(b[:], uint16(v))
					buf = append(buf, b[:]...)
				default:
					var b [4]byte
					binary.LittleEndian.PutUint32(b[:], v)
					buf = append(buf, b[:]...)
				}
			}
		}
	}
	return buf
}

type testStream struct {
	name string
	data []byte
}

func pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// buildMetadataRoot assembles a full BSJB metadata root: the fixed
// header, a stream directory, and the streams themselves, following
// ECMA-335 §II.24.2.1's layout.
func buildMetadataRoot(h *heapBuilder, tildeName string, tableRows map[TableID][][]uint32) []byte {
	version := pad4([]byte("v4.0.30319\x00"))
	streams := []testStream{
		{name: "#Strings", data: pad4(append([]byte{}, h.strings...))},
		{name: "#GUID", data: pad4(append([]byte{}, h.guid...))},
		{name: "#Blob", data: pad4(append([]byte{}, h.blob...))},
		{name: tildeName, data: pad4(buildTableStream(tableRows))},
	}

	header := make([]byte, 0, 64)
	header = append(header, []byte("BSJB")...)
	header = append(header, 0, 0, 0, 0)                       // Major/MinorVersion
	header = append(header, 0, 0, 0, 0)                       // Reserved
	var verLen [4]byte
	binary.LittleEndian.PutUint32(verLen[:], uint32(len(version)))
	header = append(header, verLen[:]...)
	header = append(header, version...)
	header = append(header, 0, 0) // Flags
	var streamCount [2]byte
	binary.LittleEndian.PutUint16(streamCount[:], uint16(len(streams)))
	header = append(header, streamCount[:]...)

	// Stream headers come right after the fixed header; stream data
	// follows all of them. Compute offsets in a first pass.
	dirSize := 0
	for _, s := range streams {
		dirSize += 8 + len(pad4(append([]byte(s.name), 0))) // offset+size fields, then padded name
	}
	dataStart := len(header) + dirSize
	offset := dataStart
	var dir []byte
	var data []byte
	for _, s := range streams {
		var entry [8]byte
		binary.LittleEndian.PutUint32(entry[0:4], uint32(offset))
		binary.LittleEndian.PutUint32(entry[4:8], uint32(len(s.data)))
		dir = append(dir, entry[:]...)
		name := pad4(append([]byte(s.name), 0))
		dir = append(dir, name...)
		data = append(data, s.data...)
		offset += len(s.data)
	}

	root := append(header, dir...)
	root = append(root, data...)
	return root
}
