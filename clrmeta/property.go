// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// Semantics bits of a MethodSemantics row (ECMA-335 §II.23.1.12).
const (
	semanticsSetter  = 0x0001
	semanticsGetter  = 0x0002
	semanticsOther   = 0x0004
	semanticsAddOn   = 0x0008
	semanticsRemoveOn = 0x0010
	semanticsFire    = 0x0020
)

// Property is a logical handle to a Property row, reached through its
// owning type's PropertyMap entry (spec.md §4.7).
type Property struct {
	typ Type
	ref RowRef
}

// DeclaringType returns the type that declares the property.
func (p Property) DeclaringType() Type { return p.typ }

func (p Property) row() (Row, error) { return p.typ.assembly.ctx.db.Row(p.ref) }

// Name returns the property's name.
func (p Property) Name() (string, error) {
	row, err := p.row()
	if err != nil {
		return "", err
	}
	return row.String(colPropertyName)
}

// Signature decodes the property's type signature.
func (p Property) Signature() (*PropertySig, error) {
	row, err := p.row()
	if err != nil {
		return nil, err
	}
	blob, err := row.Blob(colPropertyType)
	if err != nil {
		return nil, err
	}
	return DecodePropertySig(blob)
}

// methodWithSemantics returns the method whose MethodSemantics row
// names p as Association and carries the given semantics bit, if any.
func (p Property) methodWithSemantics(bit uint16) (Method, bool, error) {
	db := p.typ.assembly.ctx.db
	coded, err := hasSemantics.encode(Property, p.ref.Index)
	if err != nil {
		return Method{}, false, err
	}
	first, last, err := db.sortedRange(MethodSemantics, uint64(coded))
	if err != nil {
		return Method{}, false, err
	}
	for i := first; i < last; i++ {
		row, err := db.Row(RowRef{Table: MethodSemantics, Index: i})
		if err != nil {
			return Method{}, false, err
		}
		if row.Uint16(colMethodSemanticsSemantics)&bit == 0 {
			continue
		}
		method := row.Simple(colMethodSemanticsMethod)
		return Method{assembly: p.typ.assembly, ref: method}, true, nil
	}
	return Method{}, false, nil
}

// Getter returns the property's get accessor, if it has one.
func (p Property) Getter() (Method, bool, error) { return p.methodWithSemantics(semanticsGetter) }

// Setter returns the property's set accessor, if it has one.
func (p Property) Setter() (Method, bool, error) { return p.methodWithSemantics(semanticsSetter) }

// CustomAttributes returns every CustomAttribute attached to the
// property.
func (p Property) CustomAttributes() ([]CustomAttribute, error) {
	return customAttributesOf(p.typ.assembly.ctx, p.ref)
}

// Properties returns the type's declared properties, found via its
// PropertyMap row's owned range into the Property table (spec.md
// §4.7). A type with no properties has no PropertyMap row at all.
func (t Type) Properties() ([]Property, error) {
	if err := t.requireTypeDef(); err != nil {
		return nil, err
	}
	db := t.assembly.ctx.db
	mapRef, ok, err := findMapRow(db, PropertyMap, colPropertyMapParent, t.ref.Index)
	if err != nil || !ok {
		return nil, err
	}
	mapRow, err := db.Row(mapRef)
	if err != nil {
		return nil, err
	}
	first := mapRow.Simple(colPropertyMapPropertyList).Index
	end, err := nextOwnedEnd(db, PropertyMap, mapRef.Index, colPropertyMapPropertyList, Property)
	if err != nil {
		return nil, err
	}
	out := make([]Property, 0, end-first)
	for i := first; i < end; i++ {
		out = append(out, Property{typ: t, ref: RowRef{Table: Property, Index: i}})
	}
	return out, nil
}

// findMapRow linearly scans an EventMap/PropertyMap-shaped table for
// the row whose Parent column (at parentCol) equals typeIndex. Neither
// table carries a mandated sort order (spec.md §4.1), so an exact scan
// is the only option the physical layer affords.
func findMapRow(db *Database, table TableID, parentCol int, typeIndex uint32) (RowRef, bool, error) {
	n := db.RowCount(table)
	for i := uint32(1); i <= n; i++ {
		ref := RowRef{Table: table, Index: i}
		row, err := db.Row(ref)
		if err != nil {
			return RowRef{}, false, err
		}
		if row.Simple(parentCol).Index == typeIndex {
			return ref, true, nil
		}
	}
	return RowRef{}, false, nil
}
