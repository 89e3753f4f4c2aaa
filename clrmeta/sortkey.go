// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// sortKeyFunc extracts the 64-bit sort key a table's mandated ordering
// is defined over (spec.md §3's nine sorted tables), given a row's raw
// column slice already decoded to uint32s. Packing every key into a
// single uint64 lets binarySearchRange (database.go) stay generic across
// tables with a one-column key (simple index, or coded index — whose
// own bit layout already sorts (index, tag) lexicographically) and the
// one table with a two-column key, GenericParam (Owner, Number).
type sortKeyFunc func(cols []uint32) uint64

// simpleSortKey builds a sortKeyFunc for a table whose key is a plain
// simple-table-index or fixed-integer column.
func simpleSortKey(col int) sortKeyFunc {
	return func(cols []uint32) uint64 { return uint64(cols[col]) }
}

// codedSortKey builds a sortKeyFunc for a table whose key is a coded
// index column. The raw column value already IS the packed
// (index << tagBits | tag) integer, which sorts lexicographically by
// (index, tag) as spec.md §4.5 requires — no re-encoding needed.
func codedSortKey(col int, _ *codedIndexScheme) sortKeyFunc {
	return simpleSortKey(col)
}

// genericParamSortKey packs GenericParam's two-column (Owner, Number)
// key into one uint64: Owner's coded value in the high bits, Number
// (a uint16) in the low 16 bits.
func genericParamSortKey(cols []uint32) uint64 {
	owner := uint64(cols[colGenericParamOwner])
	number := uint64(cols[colGenericParamNumber])
	return owner<<16 | (number & 0xffff)
}
