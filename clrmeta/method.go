// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// Method is a logical handle to a MethodDef row.
type Method struct {
	assembly Assembly
	ref      RowRef
}

// IsZero reports whether m is the unset Method value.
func (m Method) IsZero() bool { return m.assembly.ctx == nil }

// Ref returns the underlying row reference.
func (m Method) Ref() RowRef { return m.ref }

func (m Method) row() (Row, error) { return m.assembly.ctx.db.Row(m.ref) }

// Name returns the method's name.
func (m Method) Name() (string, error) {
	row, err := m.row()
	if err != nil {
		return "", err
	}
	return row.String(colMethodDefName)
}

// Attributes returns the method's Flags.
func (m Method) Attributes() (MethodAttributes, error) {
	row, err := m.row()
	if err != nil {
		return 0, err
	}
	return MethodAttributes(row.Uint16(colMethodDefFlags)), nil
}

// IsStatic reports whether the method is static.
func (m Method) IsStatic() (bool, error) {
	attrs, err := m.Attributes()
	if err != nil {
		return false, err
	}
	return attrs.IsStatic(), nil
}

// IsPublic reports whether the method is publicly accessible.
func (m Method) IsPublic() (bool, error) {
	attrs, err := m.Attributes()
	if err != nil {
		return false, err
	}
	return attrs.IsPublic(), nil
}

// IsVirtual reports whether the method is virtual.
func (m Method) IsVirtual() (bool, error) {
	attrs, err := m.Attributes()
	if err != nil {
		return false, err
	}
	return attrs.IsVirtual(), nil
}

// IsAbstract reports whether the method is abstract.
func (m Method) IsAbstract() (bool, error) {
	attrs, err := m.Attributes()
	if err != nil {
		return false, err
	}
	return attrs.IsAbstract(), nil
}

// IsGenericMethod reports whether the method is itself generic.
// Generic-method instantiation is a placeholder in the source this
// spec was distilled from (spec.md §9 Open Questions): false is always
// an acceptable answer until that feature is specified further.
func (m Method) IsGenericMethod() (bool, error) {
	sig, err := m.Signature()
	if err != nil {
		return false, err
	}
	return sig.GenericParamCount > 0, nil
}

// CallingConvention returns the method's calling convention, decoded
// from its signature blob.
func (m Method) CallingConvention() (CallingConvention, error) {
	sig, err := m.Signature()
	if err != nil {
		return 0, err
	}
	return sig.CallingConvention, nil
}

// IsConstructor reports whether the method is an instance or static
// constructor: its SpecialName bit is set and its name is ".ctor" or
// ".cctor" (ECMA-335 §II.22.26 partition I rule).
func (m Method) IsConstructor() (bool, error) {
	attrs, err := m.Attributes()
	if err != nil {
		return false, err
	}
	if !attrs.IsSpecialName() {
		return false, nil
	}
	name, err := m.Name()
	if err != nil {
		return false, err
	}
	return name == ".ctor" || name == ".cctor", nil
}

// DeclaringType returns the TypeDef that owns the method, computed
// from the assembly's lazily-built ownership attribution table
// (spec.md §4.6).
func (m Method) DeclaringType() (Type, error) {
	owner, err := m.assembly.ctx.methodOwnerOf(m.ref.Index)
	if err != nil {
		return Type{}, err
	}
	return Type{assembly: m.assembly, ref: RowRef{Table: TypeDef, Index: owner}}, nil
}

// Signature decodes the method's signature.
func (m Method) Signature() (*MethodSig, error) {
	row, err := m.row()
	if err != nil {
		return nil, err
	}
	blob, err := row.Blob(colMethodDefSignature)
	if err != nil {
		return nil, err
	}
	return DecodeMethodSig(blob)
}

// Parameters returns the method's declared parameters, in Sequence
// order, excluding the pseudo-parameter (Sequence 0) some methods
// carry to document their return value (spec.md §4.7).
func (m Method) Parameters() ([]Parameter, error) {
	db := m.assembly.ctx.db
	row, err := m.row()
	if err != nil {
		return nil, err
	}
	first := row.Simple(colMethodDefParamList).Index
	end, err := nextOwnedEnd(db, MethodDef, m.ref.Index, colMethodDefParamList, Param)
	if err != nil {
		return nil, err
	}
	var out []Parameter
	for i := first; i < end; i++ {
		p := Parameter{method: m, ref: RowRef{Table: Param, Index: i}}
		row, err := db.Row(p.ref)
		if err != nil {
			return nil, err
		}
		if row.Uint16(colParamSequence) == 0 {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ReturnParameter returns the method's Sequence-0 Param row, which
// carries the return value's marshaling/attribute metadata, if the
// method declared one.
func (m Method) ReturnParameter() (Parameter, bool, error) {
	db := m.assembly.ctx.db
	row, err := m.row()
	if err != nil {
		return Parameter{}, false, err
	}
	first := row.Simple(colMethodDefParamList).Index
	end, err := nextOwnedEnd(db, MethodDef, m.ref.Index, colMethodDefParamList, Param)
	if err != nil {
		return Parameter{}, false, err
	}
	for i := first; i < end; i++ {
		ref := RowRef{Table: Param, Index: i}
		paramRow, err := db.Row(ref)
		if err != nil {
			return Parameter{}, false, err
		}
		if paramRow.Uint16(colParamSequence) == 0 {
			return Parameter{method: m, ref: ref}, true, nil
		}
	}
	return Parameter{}, false, nil
}

// GenericParameters returns the method's own generic parameters, in
// Number order (spec.md §4.5).
func (m Method) GenericParameters() ([]GenericParam, error) {
	owner, err := typeOrMethodDef.encode(MethodDef, m.ref.Index)
	if err != nil {
		return nil, err
	}
	return genericParamsOwnedBy(m.assembly.ctx, owner)
}

// CustomAttributes returns every CustomAttribute attached to the
// method.
func (m Method) CustomAttributes() ([]CustomAttribute, error) {
	return customAttributesOf(m.assembly.ctx, m.ref)
}

// ownMethods returns every method in t's own MethodDef range,
// unfiltered, in declaration order. flattenMethods uses this at each
// level of the base-type chain.
func ownMethods(t Type) ([]Method, error) {
	db := t.assembly.ctx.db
	row, err := t.row()
	if err != nil {
		return nil, err
	}
	first := row.Simple(colTypeDefMethodList).Index
	end, err := nextOwnedEnd(db, TypeDef, t.ref.Index, colTypeDefMethodList, MethodDef)
	if err != nil {
		return nil, err
	}
	out := make([]Method, 0, end-first)
	for i := first; i < end; i++ {
		out = append(out, Method{assembly: t.assembly, ref: RowRef{Table: MethodDef, Index: i}})
	}
	return out, nil
}

// matches reports whether the method should be included in a
// Type.Methods(binding) result (spec.md §4.6).
func (m Method) matches(binding BindingFlags) (bool, error) {
	attrs, err := m.Attributes()
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
