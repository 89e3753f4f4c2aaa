// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// nextOwnedEnd computes the exclusive upper bound of an owner row's
// contiguous run into targetTable, per spec.md §4.6/§4.7: the owning
// range is [this.listCol, next_row.listCol), and for the last owner
// row the upper bound is targetTable's row count plus one.
func nextOwnedEnd(db *Database, ownerTable TableID, ownerIndex uint32, listCol int, targetTable TableID) (uint32, error) {
	ownerCount := db.RowCount(ownerTable)
	if ownerIndex < ownerCount {
		next, err := db.Row(RowRef{Table: ownerTable, Index: ownerIndex + 1})
		if err != nil {
			return 0, err
		}
		return next.Simple(listCol).Index, nil
	}
	return db.RowCount(targetTable) + 1, nil
}
