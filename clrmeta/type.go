// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// Type is a logical handle to a TypeDef or TypeSpec row (spec.md §3).
// Most accessors only make sense for a TypeDef; calling them on a
// TypeSpec handle fails with Unsupported, matching how a TypeSpec
// names a constructed type (an array, pointer, or generic
// instantiation) rather than a declaration with its own name.
type Type struct {
	assembly Assembly
	ref      RowRef
}

// IsZero reports whether t is the unset Type value.
func (t Type) IsZero() bool { return t.assembly.ctx == nil }

// Database returns the database t's row lives in.
func (t Type) Database() *Database { return t.assembly.ctx.db }

// Ref returns the underlying row reference.
func (t Type) Ref() RowRef { return t.ref }

func (t Type) row() (Row, error) { return t.assembly.ctx.db.Row(t.ref) }

func (t Type) requireTypeDef() error {
	if t.ref.Table != TypeDef {
		return errf(Unsupported, "operation requires a TypeDef, got %s", t.ref.Table)
	}
	return nil
}

// Name returns the type's simple name (spec.md §3). TypeSpec has none.
func (t Type) Name() (string, error) {
	if err := t.requireTypeDef(); err != nil {
		return "", err
	}
	row, err := t.row()
	if err != nil {
		return "", err
	}
	return row.String(colTypeDefTypeName)
}

// Namespace returns the type's namespace, empty for a nested or
// global type.
func (t Type) Namespace() (string, error) {
	if err := t.requireTypeDef(); err != nil {
		return "", err
	}
	row, err := t.row()
	if err != nil {
		return "", err
	}
	return row.String(colTypeDefTypeNamespace)
}

// FullName returns "Namespace.Name", or bare "Name" with no namespace.
func (t Type) FullName() (string, error) {
	name, err := t.Name()
	if err != nil {
		return "", err
	}
	namespace, err := t.Namespace()
	if err != nil {
		return "", err
	}
	if namespace == "" {
		return name, nil
	}
	return namespace + "." + name, nil
}

// Attributes returns the type's TypeDef Flags.
func (t Type) Attributes() (TypeAttributes, error) {
	if err := t.requireTypeDef(); err != nil {
		return 0, err
	}
	row, err := t.row()
	if err != nil {
		return 0, err
	}
	return TypeAttributes(row.Uint32(colTypeDefFlags)), nil
}

// Signature decodes a TypeSpec's signature blob. Only valid when the
// handle names a TypeSpec.
func (t Type) Signature() (*TypeSig, error) {
	if t.ref.Table != TypeSpec {
		return nil, errf(Unsupported, "Signature requires a TypeSpec, got %s", t.ref.Table)
	}
	row, err := t.row()
	if err != nil {
		return nil, err
	}
	blob, err := row.Blob(colTypeSpecSignature)
	if err != nil {
		return nil, err
	}
	return DecodeTypeSpec(blob)
}

// BaseType resolves the type's Extends coded index to the logical
// Type it names, following cross-assembly TypeRef resolution where
// needed (spec.md §4.3). Returns the zero Type with no error for a
// type with no base (System.Object, or an interface).
func (t Type) BaseType() (Type, error) {
	if err := t.requireTypeDef(); err != nil {
		return Type{}, err
	}
	row, err := t.row()
	if err != nil {
		return Type{}, err
	}
	extends, err := row.Coded(colTypeDefExtends)
	if err != nil {
		return Type{}, err
	}
	if extends.IsNull() {
		return Type{}, nil
	}
	return t.resolve(extends)
}

// Interfaces returns every interface the type directly implements, in
// ascending InterfaceImpl row order, resolved to logical Type handles.
// Found via the binary search InterfaceImpl's mandated Class ordering
// affords (spec.md §4.5).
func (t Type) Interfaces() ([]Type, error) {
	if err := t.requireTypeDef(); err != nil {
		return nil, err
	}
	db := t.assembly.ctx.db
	first, last, err := db.sortedRange(InterfaceImpl, uint64(t.ref.Index))
	if err != nil {
		return nil, err
	}
	out := make([]Type, 0, last-first)
	for i := first; i < last; i++ {
		row, err := db.Row(RowRef{Table: InterfaceImpl, Index: i})
		if err != nil {
			return nil, err
		}
		iface, err := row.Coded(colInterfaceImplInterface)
		if err != nil {
			return nil, err
		}
		resolved, err := t.resolve(iface)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

// resolve turns a TypeDefOrRef-coded RowRef local to t's database into
// a Type, following the Loader's ResolveType for a TypeRef and leaving
// a TypeSpec to describe itself.
func (t Type) resolve(ref RowRef) (Type, error) {
	db := t.assembly.ctx.db
	switch ref.Table {
	case TypeDef:
		return Type{assembly: t.assembly, ref: ref}, nil
	case TypeSpec:
		return Type{assembly: t.assembly, ref: ref}, nil
	case TypeRef:
		full, err := t.assembly.ctx.loader.ResolveType(FullRef{DB: db, Row: ref})
		if err != nil {
			return Type{}, err
		}
		if full.DB == db {
			return Type{assembly: t.assembly, ref: full.Row}, nil
		}
		ctx, err := t.assembly.ctx.loader.contextFor(full.DB)
		if err != nil {
			return Type{}, err
		}
		return Type{assembly: Assembly{ctx: ctx}, ref: full.Row}, nil
	default:
		return Type{}, errf(Unsupported, "cannot resolve type reference against table %s", ref.Table)
	}
}

// IsNested reports whether the type is declared inside another type.
func (t Type) IsNested() (bool, error) {
	attrs, err := t.Attributes()
	if err != nil {
		return false, err
	}
	switch attrs.Visibility() {
	case TypeNestedPublic, TypeNestedPrivate, TypeNestedFamily,
		TypeNestedAssembly, TypeNestedFamANDAssem, TypeNestedFamORAssem:
		return true, nil
	default:
		return false, nil
	}
}

// DeclaringType returns the type enclosing a nested type, found via
// the NestedClass table's mandated NestedClass ordering (spec.md
// §4.5). Fails with NotFound if the type is not nested.
func (t Type) DeclaringType() (Type, error) {
	if err := t.requireTypeDef(); err != nil {
		return Type{}, err
	}
	db := t.assembly.ctx.db
	first, last, err := db.sortedRange(NestedClass, uint64(t.ref.Index))
	if err != nil {
		return Type{}, err
	}
	if first >= last {
		return Type{}, errf(NotFound, "type is not nested")
	}
	row, err := db.Row(RowRef{Table: NestedClass, Index: first})
	if err != nil {
		return Type{}, err
	}
	enclosing := row.Simple(colNestedClassEnclosingClass)
	return Type{assembly: t.assembly, ref: enclosing}, nil
}

// Fields returns the type's fields matching binding, in declaration
// order. Unless binding carries BindingDeclaredOnly, inherited fields
// are walked in from the base-type chain and hidden-by-name the same
// way flattenMethods hides methods (spec.md §4.6).
func (t Type) Fields(binding BindingFlags) ([]Field, error) {
	if err := t.requireTypeDef(); err != nil {
		return nil, err
	}
	return flattenFields(t, binding)
}

// Methods returns the type's methods matching binding, in declaration
// order, most-derived first. Unless binding carries
// BindingDeclaredOnly, inherited methods are walked in from the
// base-type chain, admitted per the inherited-member clause of
// spec.md §4.6, and hidden by name or by signature (when HideBySig is
// set) the way flattenMethods describes.
func (t Type) Methods(binding BindingFlags) ([]Method, error) {
	if err := t.requireTypeDef(); err != nil {
		return nil, err
	}
	return flattenMethods(t, binding)
}

// GenericParameters returns the type's own generic parameters (not
// those of an enclosing type), in Number order, found via
// GenericParam's mandated (Owner, Number) ordering (spec.md §4.5).
func (t Type) GenericParameters() ([]GenericParam, error) {
	if err := t.requireTypeDef(); err != nil {
		return nil, err
	}
	owner, err := typeOrMethodDef.encode(TypeDef, t.ref.Index)
	if err != nil {
		return nil, err
	}
	return genericParamsOwnedBy(t.assembly.ctx, owner)
}

// CustomAttributes returns every CustomAttribute attached to the type.
func (t Type) CustomAttributes() ([]CustomAttribute, error) {
	return customAttributesOf(t.assembly.ctx, t.ref)
}
