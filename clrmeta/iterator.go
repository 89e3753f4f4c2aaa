// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// rowIterator is the restartable, finite lazy sequence spec.md §4's
// Iterators component describes: it walks a contiguous [begin,end)
// row-index range of one table, ascending, with no state shared
// between separate iterators over the same range (spec.md §9).
type rowIterator struct {
	db         *Database
	table      TableID
	begin, end uint32
	cur        uint32
}

// newRowIterator returns an iterator over [begin,end) of table.
func newRowIterator(db *Database, table TableID, begin, end uint32) *rowIterator {
	return &rowIterator{db: db, table: table, begin: begin, end: end, cur: begin}
}

// Next returns the next row and true, or the zero Row and false once
// the range is exhausted.
func (it *rowIterator) Next() (Row, bool, error) {
	if it.cur >= it.end {
		return Row{}, false, nil
	}
	row, err := it.db.Row(RowRef{Table: it.table, Index: it.cur})
	if err != nil {
		return Row{}, false, err
	}
	it.cur++
	return row, true, nil
}

// Reset rewinds the iterator to its start, restoring it to the state
// newRowIterator returned.
func (it *rowIterator) Reset() { it.cur = it.begin }

// Len reports the size of [begin,end), the total number of rows the
// iterator covers; it does not shrink as Next advances.
func (it *rowIterator) Len() uint32 {
	if it.end <= it.begin {
		return 0
	}
	return it.end - it.begin
}
