// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import (
	"encoding/binary"

	"github.com/saferwall/clrmeta/log"
)

const metadataSignature = 0x424A5342 // "BSJB"

// Database owns one assembly's parsed metadata root: its heap ranges,
// the table stream's row counts, and the computed column widths and
// row layout needed to decode any row on demand (spec.md §4.1). It
// caches nothing beyond this static layout; lazy, computed-once data
// (flattened method lists, custom-attribute ranges) lives one layer up
// in AssemblyContext.
type Database struct {
	logger *log.Helper

	heaps heaps

	valid  uint64
	sorted uint64

	rowCounts  [numTables]uint32
	rowSize    [numTables]uint32
	tableBase  [numTables]uint32 // offset of table's first row within tablesData
	colOffset  [numTables][]uint32
	colWidth   [numTables][]uint32
	tablesData []byte
}

// streamHeader is one entry of the metadata root's stream directory.
type streamHeader struct {
	offset uint32
	size   uint32
	name   string
}

// NewDatabase parses root — the CLI metadata root byte range a PE
// loader (e.g. this module's peloader adapter) has already located —
// into a Database. root is borrowed, not copied; it must outlive the
// returned Database and everything derived from it.
func NewDatabase(root []byte, opts *Options) (*Database, error) {
	if opts == nil {
		opts = &Options{}
	}
	db := &Database{logger: newLogger(opts)}
	if err := db.parse(root); err != nil {
		db.logger.Errorf("metadata root parse failed: %v", err)
		return nil, err
	}
	return db, nil
}

func (db *Database) parse(root []byte) error {
	if len(root) < 20 {
		return errf(Corrupt, "metadata root shorter than its fixed header (%d bytes)", len(root))
	}
	if readU32LE(root) != metadataSignature {
		return errf(Corrupt, "metadata root missing BSJB signature")
	}
	versionLen := readU32LE(root[12:16])
	off := 16 + versionLen
	// Version string is padded to a 4-byte boundary.
	off = (off + 3) &^ 3
	if int(off)+4 > len(root) {
		return errf(Corrupt, "metadata root truncated before stream directory")
	}
	off += 2 // Flags, reserved
	streamCount := readU16LE(root[off : off+2])
	off += 2

	streams := make([]streamHeader, 0, streamCount)
	for i := uint16(0); i < streamCount; i++ {
		if int(off)+8 > len(root) {
			return errf(Corrupt, "metadata root truncated reading stream header %d", i)
		}
		sh := streamHeader{
			offset: readU32LE(root[off : off+4]),
			size:   readU32LE(root[off+4 : off+8]),
		}
		off += 8
		nameEnd := off
		for int(nameEnd) < len(root) && root[nameEnd] != 0 {
			nameEnd++
		}
		if int(nameEnd) >= len(root) {
			return errf(Corrupt, "metadata root stream header %d name not terminated", i)
		}
		sh.name = string(root[off:nameEnd])
		off = nameEnd + 1
		off = (off + 3) &^ 3
		streams = append(streams, sh)
	}

	var tildeStream streamHeader
	haveTilde := false
	for _, sh := range streams {
		region, err := sliceStream(root, sh)
		if err != nil {
			return err
		}
		switch sh.name {
		case "#Strings":
			db.heaps.strings = region
		case "#US":
			db.heaps.us = region
		case "#GUID":
			db.heaps.guid = region
		case "#Blob":
			db.heaps.blob = region
		case "#~", "#-":
			tildeStream = sh
			haveTilde = true
		}
	}
	if !haveTilde {
		return errf(Corrupt, "metadata root has no #~ table stream")
	}
	tilde, err := sliceStream(root, tildeStream)
	if err != nil {
		return err
	}
	return db.parseTableStream(tilde)
}

func sliceStream(root []byte, sh streamHeader) ([]byte, error) {
	end := uint64(sh.offset) + uint64(sh.size)
	if end > uint64(len(root)) {
		return nil, errf(Corrupt, "stream %q range [%d,%d) beyond metadata root of size %d", sh.name, sh.offset, end, len(root))
	}
	return root[sh.offset:end], nil
}

func (db *Database) parseTableStream(b []byte) error {
	if len(b) < 24 {
		return errf(Corrupt, "#~ stream shorter than its fixed header (%d bytes)", len(b))
	}
	heapSizes := b[6]
	db.valid = binary.LittleEndian.Uint64(b[8:16])
	db.sorted = binary.LittleEndian.Uint64(b[16:24])

	off := uint32(24)
	for t := TableID(0); t < numTables; t++ {
		if db.valid&(1<<uint(t)) == 0 {
			continue
		}
		if !t.valid() {
			return errf(Corrupt, "#~ stream marks reserved table id %d valid", t)
		}
		if int(off)+4 > len(b) {
			return errf(Corrupt, "#~ stream truncated reading row count for table %s", t)
		}
		db.rowCounts[t] = readU32LE(b[off : off+4])
		off += 4
	}

	strW := uint32(2)
	if heapSizes&0x01 != 0 {
		strW = 4
	}
	guidW := uint32(2)
	if heapSizes&0x02 != 0 {
		guidW = 4
	}
	blobW := uint32(2)
	if heapSizes&0x04 != 0 {
		blobW = 4
	}

	for t := TableID(0); t < numTables; t++ {
		if db.rowCounts[t] == 0 && db.valid&(1<<uint(t)) == 0 {
			continue
		}
		schema := schemas[t]
		widths := make([]uint32, len(schema.columns))
		offsets := make([]uint32, len(schema.columns))
		var rowSize uint32
		for i, col := range schema.columns {
			offsets[i] = rowSize
			switch col.kind {
			case kindU8:
				widths[i] = 1
			case kindU16:
				widths[i] = 2
			case kindU32:
				widths[i] = 4
			case kindHeapString:
				widths[i] = strW
			case kindHeapGUID:
				widths[i] = guidW
			case kindHeapBlob:
				widths[i] = blobW
			case kindSimpleIndex:
				if db.rowCounts[col.target] > 0xFFFF {
					widths[i] = 4
				} else {
					widths[i] = 2
				}
			case kindCodedIndex:
				widths[i] = col.scheme.width(db.rowCounts)
			}
			rowSize += widths[i]
		}
		db.colWidth[t] = widths
		db.colOffset[t] = offsets
		db.rowSize[t] = rowSize
	}

	for t := TableID(0); t < numTables; t++ {
		if db.valid&(1<<uint(t)) == 0 {
			continue
		}
		db.tableBase[t] = off
		off += db.rowSize[t] * db.rowCounts[t]
	}
	if int(off) > len(b) {
		return errf(Corrupt, "#~ stream table data truncated: need %d bytes, have %d", off, len(b))
	}
	db.tablesData = b
	return nil
}

// RowCount returns the number of rows table has; 0 for an absent
// table (including reserved/unknown ids).
func (db *Database) RowCount(table TableID) uint32 {
	if !table.valid() {
		return 0
	}
	return db.rowCounts[table]
}

// HasTable reports whether the table stream marks table present (the
// Valid bitmask bit is set), independent of its row count.
func (db *Database) HasTable(table TableID) bool {
	return table.valid() && db.valid&(1<<uint(table)) != 0
}

// Row returns a view over the row at ref. It validates ref's table id
// and 1-based index range (spec.md §3 invariant) but does not decode
// any column; columns decode lazily via Row's accessor methods.
func (db *Database) Row(ref RowRef) (Row, error) {
	if !ref.Table.valid() {
		return Row{}, errf(InvalidArgument, "row reference names reserved/unknown table id %d", ref.Table)
	}
	if ref.Index == 0 {
		return Row{}, errf(InvalidArgument, "row reference to %s is null", ref.Table)
	}
	if ref.Index > db.rowCounts[ref.Table] {
		return Row{}, errf(Corrupt, "%s row index %d exceeds row count %d", ref.Table, ref.Index, db.rowCounts[ref.Table])
	}
	offset := db.tableBase[ref.Table] + (ref.Index-1)*db.rowSize[ref.Table]
	return Row{
		db:     db,
		table:  ref.Table,
		index:  ref.Index,
		bytes:  db.tablesData[offset : offset+db.rowSize[ref.Table]],
	}, nil
}

// MustRow is Row without the error return, for call sites that have
// already validated ref (e.g. iterating [begin,end) ranges the
// Database itself computed). It returns the zero Row on failure.
func (db *Database) MustRow(ref RowRef) Row {
	r, err := db.Row(ref)
	if err != nil {
		return Row{}
	}
	return r
}

// Begin returns the RowRef of the first row of table (index 1), or
// the null RowRef if the table is empty.
func (db *Database) Begin(table TableID) RowRef {
	if !table.valid() || db.rowCounts[table] == 0 {
		return RowRef{Table: table, Index: 0}
	}
	return RowRef{Table: table, Index: 1}
}

// End returns the RowRef one past the last row of table: its row
// count plus 1. This is the canonical exclusive upper bound used by
// every owner-range computation in the logical layer (spec.md §4.6,
// §4.7).
func (db *Database) End(table TableID) RowRef {
	return RowRef{Table: table, Index: db.rowCounts[table] + 1}
}

// String resolves a #Strings heap index.
func (db *Database) String(index uint32) (string, error) { return db.heaps.stringAt(index) }

// Blob resolves a #Blob heap index.
func (db *Database) Blob(index uint32) (Blob, error) { return db.heaps.blobAt(index) }

// GUID resolves a #GUID heap index.
func (db *Database) GUID(index uint32) (GUID, error) { return db.heaps.guidAt(index) }

// UserString resolves a #US heap index.
func (db *Database) UserString(index uint32) (string, error) { return db.heaps.userStringAt(index) }

// sortedRange performs the binary search spec.md §3 and §4.5 require
// for a table with a mandated sort order, returning the half-open
// index range [first,last) (1-based, against table) whose sort key
// equals key. It is the generic machine behind CustomAttribute's
// Parent lookup and every other sorted-table search (InterfaceImpl,
// NestedClass, GenericParam, ...).
func (db *Database) sortedRange(table TableID, key uint64) (first, last uint32, err error) {
	schema := schemas[table]
	if schema.sortKey == nil {
		return 0, 0, errf(InvalidArgument, "table %s has no mandated sort order", table)
	}
	return db.binarySearchRange(table, schema.sortKey, key)
}

// binarySearchRange is sortedRange's generic machine: it finds the
// half-open index range [first,last) of table whose projectKey
// equals key. Passing a projection coarser than the table's full sort
// key (e.g. GenericParam's Owner alone, ignoring Number) is valid
// whenever that coarser key is still a prefix of the table's actual
// ordering, as GenericParam's (Owner, Number) order guarantees.
func (db *Database) binarySearchRange(table TableID, projectKey sortKeyFunc, key uint64) (first, last uint32, err error) {
	schema := schemas[table]
	n := db.rowCounts[table]
	keyAt := func(i uint32) (uint64, error) {
		row, err := db.Row(RowRef{Table: table, Index: i})
		if err != nil {
			return 0, err
		}
		cols := make([]uint32, len(schema.columns))
		for c := range schema.columns {
			cols[c] = row.rawColumn(c)
		}
		return projectKey(cols), nil
	}

	// lowerBound: first index (1-based) whose key >= key.
	lo, hi := uint32(1), n+1
	for lo < hi {
		mid := lo + (hi-lo)/2
		k, kerr := keyAt(mid)
		if kerr != nil {
			return 0, 0, kerr
		}
		if k < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	first = lo

	lo, hi = first, n+1
	for lo < hi {
		mid := lo + (hi-lo)/2
		k, kerr := keyAt(mid)
		if kerr != nil {
			return 0, 0, kerr
		}
		if k <= key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	last = lo
	return first, last, nil
}
