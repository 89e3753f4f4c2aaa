// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// GenericParamAttributes is a GenericParam row's Flags column
// (ECMA-335 §II.23.1.7).
type GenericParamAttributes uint16

// Variance and special-constraint bits.
const (
	GenericParamVarianceMask     GenericParamAttributes = 0x0003
	GenericParamNonVariant       GenericParamAttributes = 0x0000
	GenericParamCovariant        GenericParamAttributes = 0x0001
	GenericParamContravariant    GenericParamAttributes = 0x0002
	GenericParamReferenceTypeConstraint GenericParamAttributes = 0x0004
	GenericParamNotNullableValueTypeConstraint GenericParamAttributes = 0x0008
	GenericParamDefaultConstructorConstraint   GenericParamAttributes = 0x0010
)

// GenericParam is a logical handle to a GenericParam row: one generic
// parameter of a generic type or method (spec.md §3).
type GenericParam struct {
	ctx *AssemblyContext
	ref RowRef
}

func (g GenericParam) row() (Row, error) { return g.ctx.db.Row(g.ref) }

// Number returns the parameter's zero-based ordinal.
func (g GenericParam) Number() (uint16, error) {
	row, err := g.row()
	if err != nil {
		return 0, err
	}
	return row.Uint16(colGenericParamNumber), nil
}

// Name returns the parameter's declared name.
func (g GenericParam) Name() (string, error) {
	row, err := g.row()
	if err != nil {
		return "", err
	}
	return row.String(colGenericParamName)
}

// Attributes returns the parameter's variance and special-constraint
// flags.
func (g GenericParam) Attributes() (GenericParamAttributes, error) {
	row, err := g.row()
	if err != nil {
		return 0, err
	}
	return GenericParamAttributes(row.Uint16(colGenericParamFlags)), nil
}

// Constraints returns the parameter's declared constraints (interfaces
// or a base class it must satisfy), found via GenericParamConstraint's
// mandated Owner ordering (spec.md §4.5).
func (g GenericParam) Constraints() ([]GenericParamConstraint, error) {
	db := g.ctx.db
	first, last, err := db.sortedRange(GenericParamConstraint, uint64(g.ref.Index))
	if err != nil {
		return nil, err
	}
	out := make([]GenericParamConstraint, 0, last-first)
	for i := first; i < last; i++ {
		out = append(out, GenericParamConstraint{ctx: g.ctx, ref: RowRef{Table: GenericParamConstraint, Index: i}})
	}
	return out, nil
}

// GenericParamConstraint is a logical handle to a
// GenericParamConstraint row.
type GenericParamConstraint struct {
	ctx *AssemblyContext
	ref RowRef
}

// ConstraintType resolves the constraint's named type, following
// cross-assembly resolution for a TypeRef (spec.md §4.3).
func (c GenericParamConstraint) ConstraintType() (FullRef, error) {
	row, err := c.ctx.db.Row(c.ref)
	if err != nil {
		return FullRef{}, err
	}
	ref, err := row.Coded(colGenericParamConstraintConstraint)
	if err != nil {
		return FullRef{}, err
	}
	if ref.Table == TypeRef {
		return c.ctx.loader.ResolveType(FullRef{DB: c.ctx.db, Row: ref})
	}
	return FullRef{DB: c.ctx.db, Row: ref}, nil
}

// genericParamsOwnedBy returns every GenericParam row whose Owner
// coded index equals owner, in Number order, via a prefix search over
// GenericParam's mandated (Owner, Number) ordering: the table is
// sorted primarily by Owner, so searching on Owner alone still finds a
// contiguous range even though the table's full sort key also packs in
// Number (spec.md §4.5).
func genericParamsOwnedBy(ctx *AssemblyContext, owner uint32) ([]GenericParam, error) {
	first, last, err := ctx.db.binarySearchRange(GenericParam, genericParamOwnerOnly, uint64(owner))
	if err != nil {
		return nil, err
	}
	out := make([]GenericParam, 0, last-first)
	for i := first; i < last; i++ {
		out = append(out, GenericParam{ctx: ctx, ref: RowRef{Table: GenericParam, Index: i}})
	}
	return out, nil
}

// genericParamOwnerOnly projects a GenericParam row to just its Owner
// column, ignoring Number, for the coarser prefix search
// genericParamsOwnedBy needs.
func genericParamOwnerOnly(cols []uint32) uint64 {
	return uint64(cols[colGenericParamOwner])
}
