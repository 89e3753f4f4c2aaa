// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// Field is a logical handle to a Field row, reached through the
// declaring Type's owned range (spec.md §4.6).
type Field struct {
	typ Type
	ref RowRef
}

// DeclaringType returns the type that owns the field.
func (f Field) DeclaringType() Type { return f.typ }

func (f Field) row() (Row, error) { return f.typ.assembly.ctx.db.Row(f.ref) }

// Name returns the field's name.
func (f Field) Name() (string, error) {
	row, err := f.row()
	if err != nil {
		return "", err
	}
	return row.String(colFieldName)
}

// Attributes returns the field's Flags.
func (f Field) Attributes() (FieldAttributes, error) {
	row, err := f.row()
	if err != nil {
		return 0, err
	}
	return FieldAttributes(row.Uint16(colFieldFlags)), nil
}

// Signature decodes the field's type signature.
func (f Field) Signature() (*FieldSig, error) {
	row, err := f.row()
	if err != nil {
		return nil, err
	}
	blob, err := row.Blob(colFieldSignature)
	if err != nil {
		return nil, err
	}
	return DecodeFieldSig(blob)
}

// CustomAttributes returns every CustomAttribute attached to the
// field.
func (f Field) CustomAttributes() ([]CustomAttribute, error) {
	return customAttributesOf(f.typ.assembly.ctx, f.ref)
}

// ownFields returns every field in t's own Field range, unfiltered,
// in declaration order. flattenFields uses this at each level of the
// base-type chain.
func ownFields(t Type) ([]Field, error) {
	db := t.assembly.ctx.db
	row, err := t.row()
	if err != nil {
		return nil, err
	}
	first := row.Simple(colTypeDefFieldList).Index
	end, err := nextOwnedEnd(db, TypeDef, t.ref.Index, colTypeDefFieldList, Field)
	if err != nil {
		return nil, err
	}
	out := make([]Field, 0, end-first)
	for i := first; i < end; i++ {
		out = append(out, Field{typ: t, ref: RowRef{Table: Field, Index: i}})
	}
	return out, nil
}

// matches reports whether the field should be included in a
// Type.Fields(binding) result (spec.md §4.6's binding predicate).
func (f Field) matches(binding BindingFlags) (bool, error) {
	attrs, err := f.Attributes()
	if err != nil {
		return false, err
	}
	if attrs.IsStatic() {
		if binding&BindingStatic == 0 {
			return false, nil
		}
	} else if binding&BindingInstance == 0 {
		return false, nil
	}
	if attrs.IsPublic() {
		if binding&BindingPublic == 0 {
			return false, nil
		}
	} else if binding&BindingNonPublic == 0 {
		return false, nil
	}
	return true, nil
}
