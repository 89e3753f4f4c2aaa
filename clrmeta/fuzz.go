// +build gofuzz

package clrmeta

// Fuzz feeds data to NewDatabase as a candidate CLI metadata root,
// following the same go-fuzz entry-point shape as peloader.Fuzz. It
// exercises the #~ table-stream parser and every column-width rule
// parseTableStream derives from it, independent of any PE container.
func Fuzz(data []byte) int {
	db, err := NewDatabase(data, nil)
	if err != nil {
		return 0
	}
	// Touch every table's row count and, for sorted tables, run a
	// search so a corrupt but "valid-looking" layout surfaces through
	// the binary search path too.
	for t := TableID(0); t < numTables; t++ {
		if !t.valid() {
			continue
		}
		n := db.RowCount(t)
		if n == 0 {
			continue
		}
		if _, err := db.Row(RowRef{Table: t, Index: 1}); err != nil {
			return 0
		}
		if schemas[t].sortKey != nil {
			db.sortedRange(t, 0)
		}
	}
	return 1
}
