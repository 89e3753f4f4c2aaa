// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// Row is a thin, typed view over one row's raw bytes: a (table,
// index, byte-slice) triple plus the database that produced it. Per
// spec.md §9's design note, this is the one "row" concept shared by
// all tables, indexed through the static schema rather than 45
// hand-written struct-and-parse-function pairs; each column decodes
// on access, never eagerly.
type Row struct {
	db    *Database
	table TableID
	index uint32
	bytes []byte
}

// Ref returns the RowRef this row was read from.
func (r Row) Ref() RowRef { return RowRef{Table: r.table, Index: r.index} }

// rawColumn reads column i as a plain uint32, whatever its kind —
// used internally for sort-key extraction and as the basis of the
// typed accessors below.
func (r Row) rawColumn(i int) uint32 {
	off := r.db.colOffset[r.table][i]
	switch r.db.colWidth[r.table][i] {
	case 1:
		return uint32(r.bytes[off])
	case 2:
		return uint32(readU16LE(r.bytes[off : off+2]))
	default:
		return readU32LE(r.bytes[off : off+4])
	}
}

// Uint8 reads a fixed 1-byte column.
func (r Row) Uint8(col int) uint8 { return uint8(r.rawColumn(col)) }

// Uint16 reads a fixed 2-byte column.
func (r Row) Uint16(col int) uint16 { return uint16(r.rawColumn(col)) }

// Uint32 reads a fixed 4-byte column.
func (r Row) Uint32(col int) uint32 { return r.rawColumn(col) }

// String resolves a heap-string column through the owning database's
// #Strings heap.
func (r Row) String(col int) (string, error) { return r.db.String(r.rawColumn(col)) }

// Blob resolves a heap-blob column through the owning database's
// #Blob heap.
func (r Row) Blob(col int) (Blob, error) { return r.db.Blob(r.rawColumn(col)) }

// GUID resolves a heap-guid column through the owning database's
// #GUID heap.
func (r Row) GUID(col int) (GUID, error) { return r.db.GUID(r.rawColumn(col)) }

// Simple resolves a simple-table-index column to a RowRef in the
// column's declared target table.
func (r Row) Simple(col int) RowRef {
	schema := schemas[r.table]
	return RowRef{Table: schema.columns[col].target, Index: r.rawColumn(col)}
}

// Coded resolves a coded-index column to a RowRef, dispatching on the
// packed tag (spec.md §6's coded-index encodings).
func (r Row) Coded(col int) (RowRef, error) {
	schema := schemas[r.table]
	scheme := schema.columns[col].scheme
	return scheme.decode(r.rawColumn(col))
}
