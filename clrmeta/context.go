// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import "sync"

// AssemblyContext is the Loader-owned, per-assembly state spec.md §4.6
// calls out: the path it was loaded from, its parsed Database, and the
// lazy, computed-once caches (method/field ownership, custom-attribute
// ranges) that sit above the Database's static layout. Every logical
// handle carries a *AssemblyContext pointer rather than a reference
// counted handle, matching the weak-by-construction cross-assembly
// edges of spec.md §3.
type AssemblyContext struct {
	loader *Loader
	path   string
	db     *Database
	closer func() error

	mu           sync.Mutex
	methodOwner  []uint32 // 1-based MethodDef index -> owning TypeDef index, lazy
	fieldOwner   []uint32 // 1-based Field index -> owning TypeDef index, lazy
	caRangeCache map[uint64][2]uint32
}

// Database returns the context's parsed metadata database.
func (c *AssemblyContext) Database() *Database { return c.db }

// Path returns the path the assembly was loaded from.
func (c *AssemblyContext) Path() string { return c.path }

// methodOwnerOf returns the TypeDef row index that owns MethodDef row
// methodIndex, building the full attribution table on first use by
// walking TypeDef's MethodList ranges once (spec.md §4.6).
func (c *AssemblyContext) methodOwnerOf(methodIndex uint32) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.methodOwner == nil {
		if err := c.buildOwnerTablesLocked(); err != nil {
			return 0, err
		}
	}
	if methodIndex == 0 || int(methodIndex) >= len(c.methodOwner) {
		return 0, errf(InvalidArgument, "MethodDef index %d out of range", methodIndex)
	}
	return c.methodOwner[methodIndex], nil
}

// fieldOwnerOf is methodOwnerOf's counterpart for Field rows.
func (c *AssemblyContext) fieldOwnerOf(fieldIndex uint32) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fieldOwner == nil {
		if err := c.buildOwnerTablesLocked(); err != nil {
			return 0, err
		}
	}
	if fieldIndex == 0 || int(fieldIndex) >= len(c.fieldOwner) {
		return 0, errf(InvalidArgument, "Field index %d out of range", fieldIndex)
	}
	return c.fieldOwner[fieldIndex], nil
}

// buildOwnerTablesLocked computes, once, the method/field ownership
// attribution arrays by walking every TypeDef's [first,next) ranges
// (spec.md §4.6). Caller must hold c.mu.
func (c *AssemblyContext) buildOwnerTablesLocked() error {
	db := c.db
	typeCount := db.RowCount(TypeDef)
	c.methodOwner = make([]uint32, db.RowCount(MethodDef)+1)
	c.fieldOwner = make([]uint32, db.RowCount(Field)+1)

	for i := uint32(1); i <= typeCount; i++ {
		row, err := db.Row(RowRef{Table: TypeDef, Index: i})
		if err != nil {
			return err
		}
		methodFirst := row.Simple(colTypeDefMethodList).Index
		fieldFirst := row.Simple(colTypeDefFieldList).Index
		var methodNext, fieldNext uint32
		if i < typeCount {
			next, err := db.Row(RowRef{Table: TypeDef, Index: i + 1})
			if err != nil {
				return err
			}
			methodNext = next.Simple(colTypeDefMethodList).Index
			fieldNext = next.Simple(colTypeDefFieldList).Index
		} else {
			methodNext = db.RowCount(MethodDef) + 1
			fieldNext = db.RowCount(Field) + 1
		}
		for m := methodFirst; m < methodNext && m < uint32(len(c.methodOwner)); m++ {
			c.methodOwner[m] = i
		}
		for f := fieldFirst; f < fieldNext && f < uint32(len(c.fieldOwner)); f++ {
			c.fieldOwner[f] = i
		}
	}
	return nil
}

// customAttributeRange returns the half-open [first,last) CustomAttribute
// row-index range for the given owner, computed once per owner via
// binary search and cached (spec.md §4.5).
func (c *AssemblyContext) customAttributeRange(owner RowRef) (uint32, uint32, error) {
	coded, err := hasCustomAttribute.encode(owner.Table, owner.Index)
	if err != nil {
		return 0, 0, err
	}
	key := uint64(coded)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.caRangeCache == nil {
		c.caRangeCache = make(map[uint64][2]uint32)
	}
	if r, ok := c.caRangeCache[key]; ok {
		return r[0], r[1], nil
	}
	first, last, err := c.db.sortedRange(CustomAttribute, key)
	if err != nil {
		return 0, 0, err
	}
	c.caRangeCache[key] = [2]uint32{first, last}
	return first, last, nil
}
