// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import "strings"

// Assembly is a logical handle to a loaded CLI assembly. Its identity
// is its owning AssemblyContext's pointer (spec.md §3); it is a thin
// value carrying no state of its own, borrowed with lifetime bounded
// by the Loader that produced it.
type Assembly struct {
	ctx *AssemblyContext
}

// IsZero reports whether a is the unset Assembly value.
func (a Assembly) IsZero() bool { return a.ctx == nil }

// Path returns the path this assembly was loaded from.
func (a Assembly) Path() string { return a.ctx.path }

// Database returns the assembly's parsed metadata database.
func (a Assembly) Database() *Database { return a.ctx.db }

// assemblyRow returns the single Assembly table row (index 1), if
// present. A module without an Assembly row (a netmodule) has none.
func (a Assembly) assemblyRow() (Row, bool, error) {
	if a.ctx.db.RowCount(Assembly) == 0 {
		return Row{}, false, nil
	}
	row, err := a.ctx.db.Row(RowRef{Table: Assembly, Index: 1})
	if err != nil {
		return Row{}, false, err
	}
	return row, true, nil
}

// Name returns the assembly's own identity. Fails with NotFound if the
// module carries no Assembly row.
func (a Assembly) Name() (AssemblyName, error) {
	row, ok, err := a.assemblyRow()
	if err != nil {
		return AssemblyName{}, err
	}
	if !ok {
		return AssemblyName{}, errf(NotFound, "%s has no Assembly table row", a.ctx.path)
	}
	return assemblyNameFromAssemblyRow(a.ctx.db, row)
}

// ReferencedAssemblyNames returns the AssemblyName of every AssemblyRef
// row, in ascending row order (spec.md §5's canonical within-assembly
// iteration order).
func (a Assembly) ReferencedAssemblyNames() ([]AssemblyName, error) {
	db := a.ctx.db
	n := db.RowCount(AssemblyRef)
	names := make([]AssemblyName, 0, n)
	for i := uint32(1); i <= n; i++ {
		row, err := db.Row(RowRef{Table: AssemblyRef, Index: i})
		if err != nil {
			return nil, err
		}
		name, err := assemblyNameFromAssemblyRefRow(db, row)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Files returns the assembly's File table entries, in ascending row
// order.
func (a Assembly) Files() ([]File_, error) {
	db := a.ctx.db
	n := db.RowCount(File)
	files := make([]File_, 0, n)
	for i := uint32(1); i <= n; i++ {
		files = append(files, File_{assembly: a, ref: RowRef{Table: File, Index: i}})
	}
	return files, nil
}

// Types returns every TypeDef in the assembly, in ascending row order,
// including the pseudo "<Module>" type at index 1 if present.
func (a Assembly) Types() ([]Type, error) {
	db := a.ctx.db
	n := db.RowCount(TypeDef)
	types := make([]Type, 0, n)
	for i := uint32(1); i <= n; i++ {
		types = append(types, Type{assembly: a, ref: RowRef{Table: TypeDef, Index: i}})
	}
	return types, nil
}

// GetType looks up a type by its dotted full name ("Namespace.Name"),
// splitting on the last '.'. Lookup is case-insensitive, matching
// spec.md §8 scenario 2.
func (a Assembly) GetType(fullName string) (Type, bool, error) {
	namespace, name := splitFullName(fullName)
	return a.GetTypeIn(namespace, name)
}

// GetTypeIn looks up a type by its separate namespace and name,
// case-insensitively.
func (a Assembly) GetTypeIn(namespace, name string) (Type, bool, error) {
	db := a.ctx.db
	n := db.RowCount(TypeDef)
	for i := uint32(1); i <= n; i++ {
		row, err := db.Row(RowRef{Table: TypeDef, Index: i})
		if err != nil {
			return Type{}, false, err
		}
		rowName, err := row.String(colTypeDefTypeName)
		if err != nil {
			return Type{}, false, err
		}
		if !strings.EqualFold(rowName, name) {
			continue
		}
		rowNamespace, err := row.String(colTypeDefTypeNamespace)
		if err != nil {
			return Type{}, false, err
		}
		if strings.EqualFold(rowNamespace, namespace) {
			return Type{assembly: a, ref: RowRef{Table: TypeDef, Index: i}}, true, nil
		}
	}
	return Type{}, false, nil
}

// splitFullName splits "A.B.C" into namespace "A.B" and name "C". A
// name with no '.' has an empty namespace.
func splitFullName(fullName string) (namespace, name string) {
	idx := strings.LastIndex(fullName, ".")
	if idx < 0 {
		return "", fullName
	}
	return fullName[:idx], fullName[idx+1:]
}

// CustomAttributes returns every CustomAttribute attached to the
// assembly itself (owner = the Assembly table row).
func (a Assembly) CustomAttributes() ([]CustomAttribute, error) {
	_, ok, err := a.assemblyRow()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return customAttributesOf(a.ctx, RowRef{Table: Assembly, Index: 1})
}

// Module is a logical handle to one of an assembly's Module table
// rows (spec.md §3). Every Database this Loader builds covers exactly
// one physical module, so in practice an Assembly has exactly one
// Module, at index 1.
type Module struct {
	assembly Assembly
	ref      RowRef
}

// PrimaryModule returns the assembly's own Module row (index 1).
func (a Assembly) PrimaryModule() (Module, error) {
	if a.ctx.db.RowCount(Module) == 0 {
		return Module{}, errf(Corrupt, "%s has no Module table row", a.ctx.path)
	}
	return Module{assembly: a, ref: RowRef{Table: Module, Index: 1}}, nil
}

// Name returns the module's file name.
func (m Module) Name() (string, error) {
	row, err := m.assembly.ctx.db.Row(m.ref)
	if err != nil {
		return "", err
	}
	return row.String(colModuleName)
}

// MVID returns the module's version identifier GUID.
func (m Module) MVID() (GUID, error) {
	row, err := m.assembly.ctx.db.Row(m.ref)
	if err != nil {
		return GUID{}, err
	}
	return row.GUID(colModuleMvid)
}

// File_ is a logical handle to a File table row (a secondary file of
// a multi-file assembly). Named File_ to avoid colliding with the
// TableID constant File.
type File_ struct {
	assembly Assembly
	ref      RowRef
}

// Name returns the file's declared name.
func (f File_) Name() (string, error) {
	row, err := f.assembly.ctx.db.Row(f.ref)
	if err != nil {
		return "", err
	}
	return row.String(colFileName)
}

// ContainsMetadata reports whether the FileAttributes.ContainsNoMetaData
// bit (0x0001) is clear; a clear bit means the file does contain
// metadata.
func (f File_) ContainsMetadata() (bool, error) {
	row, err := f.assembly.ctx.db.Row(f.ref)
	if err != nil {
		return false, err
	}
	const containsNoMetadata = 0x0001
	return row.Uint32(colFileFlags)&containsNoMetadata == 0, nil
}
