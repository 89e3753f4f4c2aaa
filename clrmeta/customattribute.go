// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// CustomAttribute is a logical handle to a CustomAttribute row
// attached to some owner row (spec.md §3, §4.5).
type CustomAttribute struct {
	ctx *AssemblyContext
	ref RowRef
}

// customAttributesOf returns every CustomAttribute whose Parent coded
// index names owner, found via the sorted-table binary search of
// spec.md §4.5.
func customAttributesOf(ctx *AssemblyContext, owner RowRef) ([]CustomAttribute, error) {
	first, last, err := ctx.customAttributeRange(owner)
	if err != nil {
		return nil, err
	}
	attrs := make([]CustomAttribute, 0, last-first)
	for i := first; i < last; i++ {
		attrs = append(attrs, CustomAttribute{ctx: ctx, ref: RowRef{Table: CustomAttribute, Index: i}})
	}
	return attrs, nil
}

func (c CustomAttribute) row() (Row, error) { return c.ctx.db.Row(c.ref) }

// Constructor resolves the attribute's Type column to the constructor
// method it invokes: either a MethodDef directly, or the MemberRef's
// resolved MethodDef when the constructor is defined in another
// assembly reachable through a TypeRef (spec.md §4.5). A CustomAttributeType
// naming anything else is Unsupported.
func (c CustomAttribute) Constructor() (Method, error) {
	row, err := c.row()
	if err != nil {
		return Method{}, err
	}
	typeRef, err := row.Coded(colCustomAttributeType)
	if err != nil {
		return Method{}, err
	}
	switch typeRef.Table {
	case MethodDef:
		return Method{assembly: Assembly{ctx: c.ctx}, ref: typeRef}, nil
	case MemberRef:
		return c.ctx.loader.resolveMemberRefConstructor(c.ctx, typeRef)
	default:
		return Method{}, errf(Unsupported, "custom attribute constructor type is table %s, want MethodDef or MemberRef", typeRef.Table)
	}
}

// resolveMemberRefConstructor resolves a MemberRef naming a
// constructor to the MethodDef it refers to, following its Class
// coded index (MemberRefParent) when that names a TypeRef.
func (l *Loader) resolveMemberRefConstructor(ctx *AssemblyContext, memberRef RowRef) (Method, error) {
	db := ctx.db
	row, err := db.Row(memberRef)
	if err != nil {
		return Method{}, err
	}
	name, err := row.String(colMemberRefName)
	if err != nil {
		return Method{}, err
	}
	class, err := row.Coded(colMemberRefClass)
	if err != nil {
		return Method{}, err
	}

	var targetDB *Database
	var targetType RowRef
	switch class.Table {
	case TypeDef:
		targetDB, targetType = db, class
	case TypeRef:
		resolved, err := l.ResolveType(FullRef{DB: db, Row: class})
		if err != nil {
			return Method{}, err
		}
		targetDB, targetType = resolved.DB, resolved.Row
	default:
		return Method{}, errf(Unsupported, "custom attribute constructor MemberRef parent is table %s", class.Table)
	}

	targetCtx, err := l.contextFor(targetDB)
	if err != nil {
		return Method{}, err
	}
	typeRow, err := targetDB.Row(targetType)
	if err != nil {
		return Method{}, err
	}
	methodFirst := typeRow.Simple(colTypeDefMethodList).Index
	methodEnd, err := nextOwnedEnd(targetDB, TypeDef, targetType.Index, colTypeDefMethodList, MethodDef)
	if err != nil {
		return Method{}, err
	}
	for m := methodFirst; m < methodEnd; m++ {
		methodRow, err := targetDB.Row(RowRef{Table: MethodDef, Index: m})
		if err != nil {
			return Method{}, err
		}
		methodName, err := methodRow.String(colMethodDefName)
		if err != nil {
			return Method{}, err
		}
		if methodName == name {
			return Method{assembly: Assembly{ctx: targetCtx}, ref: RowRef{Table: MethodDef, Index: m}}, nil
		}
	}
	return Method{}, errf(NotFound, "constructor %s not found on resolved attribute type", name)
}

// SingleStringArgument decodes a custom-attribute blob shaped like a
// single-string-argument constructor call: the 2-byte prolog 0x0001,
// a compressed length, then that many UTF-8 bytes (spec.md §4.5, §8
// scenario 6).
func (c CustomAttribute) SingleStringArgument() (string, error) {
	row, err := c.row()
	if err != nil {
		return "", err
	}
	value, err := row.Blob(colCustomAttributeValue)
	if err != nil {
		return "", err
	}
	r := &sigReader{b: value}
	if err := r.expectProlog(); err != nil {
		return "", err
	}
	length, err := r.compressedUint()
	if err != nil {
		return "", err
	}
	if r.pos+int(length) > len(r.b) {
		return "", errf(Corrupt, "custom attribute string argument claims length %d beyond blob", length)
	}
	s := string(r.b[r.pos : r.pos+int(length)])
	return s, nil
}

// GUIDArgument decodes a custom-attribute blob shaped like a single
// GUID-argument constructor call: the 2-byte prolog, then a 16-byte
// GUID in its native layout (spec.md §4.5).
func (c CustomAttribute) GUIDArgument() (GUID, error) {
	row, err := c.row()
	if err != nil {
		return GUID{}, err
	}
	value, err := row.Blob(colCustomAttributeValue)
	if err != nil {
		return GUID{}, err
	}
	r := &sigReader{b: value}
	if err := r.expectProlog(); err != nil {
		return GUID{}, err
	}
	if r.pos+16 > len(r.b) {
		return GUID{}, errf(Corrupt, "custom attribute GUID argument truncated")
	}
	var g GUID
	copy(g[:], r.b[r.pos:r.pos+16])
	return g, nil
}

// expectProlog consumes the 2-byte custom-attribute blob prolog,
// 0x0001, little-endian (ECMA-335 §II.23.3).
func (r *sigReader) expectProlog() error {
	if len(r.b) < 2 {
		return errf(Corrupt, "custom attribute blob shorter than its 2-byte prolog")
	}
	if r.b[0] != 0x01 || r.b[1] != 0x00 {
		return errf(Corrupt, "custom attribute blob has unexpected prolog 0x%02x%02x", r.b[1], r.b[0])
	}
	r.pos = 2
	return nil
}
