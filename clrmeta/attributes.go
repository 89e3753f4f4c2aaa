// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// TypeAttributes is a TypeDef row's Flags column (ECMA-335 §II.23.1.15).
type TypeAttributes uint32

// Visibility values (the low 3 bits of TypeAttributes).
const (
	TypeVisibilityMask        TypeAttributes = 0x00000007
	TypeNotPublic             TypeAttributes = 0x00000000
	TypePublic                TypeAttributes = 0x00000001
	TypeNestedPublic          TypeAttributes = 0x00000002
	TypeNestedPrivate         TypeAttributes = 0x00000003
	TypeNestedFamily          TypeAttributes = 0x00000004
	TypeNestedAssembly        TypeAttributes = 0x00000005
	TypeNestedFamANDAssem     TypeAttributes = 0x00000006
	TypeNestedFamORAssem      TypeAttributes = 0x00000007
	TypeClassSemanticsMask    TypeAttributes = 0x00000020
	TypeInterface             TypeAttributes = 0x00000020
	TypeAbstract              TypeAttributes = 0x00000080
	TypeSealed                TypeAttributes = 0x00000100
	TypeSpecialName           TypeAttributes = 0x00000400
	TypeRTSpecialName         TypeAttributes = 0x00000800
	TypeImport                TypeAttributes = 0x00001000
	TypeSerializable          TypeAttributes = 0x00002000
	TypeBeforeFieldInit       TypeAttributes = 0x00100000
)

// Visibility returns the type's visibility sub-field.
func (a TypeAttributes) Visibility() TypeAttributes { return a & TypeVisibilityMask }

// IsPublic reports whether the type is visible outside its assembly
// (either top-level Public, or NestedPublic).
func (a TypeAttributes) IsPublic() bool {
	v := a.Visibility()
	return v == TypePublic || v == TypeNestedPublic
}

// IsInterface reports whether the type is an interface.
func (a TypeAttributes) IsInterface() bool { return a&TypeClassSemanticsMask == TypeInterface }

// IsAbstract reports whether the type is abstract.
func (a TypeAttributes) IsAbstract() bool { return a&TypeAbstract != 0 }

// IsSealed reports whether the type is sealed.
func (a TypeAttributes) IsSealed() bool { return a&TypeSealed != 0 }

// MethodAttributes is a MethodDef row's Flags column (ECMA-335 §II.23.1.10).
type MethodAttributes uint16

// Member-access and modifier bits.
const (
	MethodAccessMask     MethodAttributes = 0x0007
	MethodPrivateScope   MethodAttributes = 0x0000
	MethodPrivate        MethodAttributes = 0x0001
	MethodFamANDAssem    MethodAttributes = 0x0002
	MethodAssembly       MethodAttributes = 0x0003
	MethodFamily         MethodAttributes = 0x0004
	MethodFamORAssem     MethodAttributes = 0x0005
	MethodPublic         MethodAttributes = 0x0006
	MethodStatic         MethodAttributes = 0x0010
	MethodFinal          MethodAttributes = 0x0020
	MethodVirtual        MethodAttributes = 0x0040
	MethodHideBySig      MethodAttributes = 0x0080
	MethodNewSlot        MethodAttributes = 0x0100
	MethodAbstract       MethodAttributes = 0x0400
	MethodSpecialName    MethodAttributes = 0x0800
	MethodRTSpecialName  MethodAttributes = 0x1000
	MethodPinvokeImpl    MethodAttributes = 0x2000
	MethodHasSecurity    MethodAttributes = 0x4000
)

// Access returns the method's member-access sub-field.
func (a MethodAttributes) Access() MethodAttributes { return a & MethodAccessMask }

// IsPublic reports whether the method is publicly accessible.
func (a MethodAttributes) IsPublic() bool { return a.Access() == MethodPublic }

// IsPrivate reports whether the method is private.
func (a MethodAttributes) IsPrivate() bool { return a.Access() == MethodPrivate }

// IsStatic reports whether the method is static.
func (a MethodAttributes) IsStatic() bool { return a&MethodStatic != 0 }

// IsVirtual reports whether the method is virtual.
func (a MethodAttributes) IsVirtual() bool { return a&MethodVirtual != 0 }

// IsAbstract reports whether the method is abstract.
func (a MethodAttributes) IsAbstract() bool { return a&MethodAbstract != 0 }

// IsFinal reports whether the method is sealed against further overriding.
func (a MethodAttributes) IsFinal() bool { return a&MethodFinal != 0 }

// IsSpecialName reports the SpecialName bit (set on constructors,
// operator overloads, property/event accessors).
func (a MethodAttributes) IsSpecialName() bool { return a&MethodSpecialName != 0 }

// IsHideBySig reports whether member hiding considers the signature,
// not just the name (spec.md §4.6).
func (a MethodAttributes) IsHideBySig() bool { return a&MethodHideBySig != 0 }

// FieldAttributes is a Field row's Flags column (ECMA-335 §II.23.1.5).
type FieldAttributes uint16

// Member-access and modifier bits.
const (
	FieldAccessMask    FieldAttributes = 0x0007
	FieldPrivate       FieldAttributes = 0x0001
	FieldFamANDAssem   FieldAttributes = 0x0002
	FieldAssembly      FieldAttributes = 0x0003
	FieldFamily        FieldAttributes = 0x0004
	FieldFamORAssem    FieldAttributes = 0x0005
	FieldPublic        FieldAttributes = 0x0006
	FieldStatic        FieldAttributes = 0x0010
	FieldInitOnly      FieldAttributes = 0x0020
	FieldLiteral       FieldAttributes = 0x0040
	FieldNotSerialized FieldAttributes = 0x0080
	FieldSpecialName   FieldAttributes = 0x0200
	FieldPinvokeImpl   FieldAttributes = 0x2000
	FieldRTSpecialName FieldAttributes = 0x0400
	FieldHasFieldRVA   FieldAttributes = 0x0100
)

// Access returns the field's member-access sub-field.
func (a FieldAttributes) Access() FieldAttributes { return a & FieldAccessMask }

// IsPublic reports whether the field is publicly accessible.
func (a FieldAttributes) IsPublic() bool { return a.Access() == FieldPublic }

// IsStatic reports whether the field is static.
func (a FieldAttributes) IsStatic() bool { return a&FieldStatic != 0 }

// IsLiteral reports whether the field is a compile-time constant.
func (a FieldAttributes) IsLiteral() bool { return a&FieldLiteral != 0 }

// ParamAttributes is a Param row's Flags column (ECMA-335 §II.23.1.13).
type ParamAttributes uint16

// Bits.
const (
	ParamIn             ParamAttributes = 0x0001
	ParamOut            ParamAttributes = 0x0002
	ParamOptional       ParamAttributes = 0x0010
	ParamHasDefault     ParamAttributes = 0x1000
	ParamHasFieldMarshal ParamAttributes = 0x2000
)

// IsIn reports the In bit.
func (a ParamAttributes) IsIn() bool { return a&ParamIn != 0 }

// IsOut reports the Out bit.
func (a ParamAttributes) IsOut() bool { return a&ParamOut != 0 }

// IsOptional reports the Optional bit.
func (a ParamAttributes) IsOptional() bool { return a&ParamOptional != 0 }
