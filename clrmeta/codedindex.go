// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// codedIndexScheme packs a small tag selecting one of several target
// tables together with that table's row index into a single integer:
// coded = (rowIndex << tagBits) | tag, tag = index into tables.
// This mirrors the shape of the teacher's codedidx helper
// (dotnet_helper.go's idxTypeDefOrRef et al.) but lists every target
// table in the exact ECMA-335 §II.24.2.6 order spec.md §6 mandates,
// including the 22-table HasCustomAttribute order the teacher's
// 17-table idxHasCustomAttributes truncates.
type codedIndexScheme struct {
	name    string
	tagBits uint
	tables  []TableID
}

// width returns 2 if every target table's row count fits in 16-tagBits
// bits, else 4 (spec.md §4.1 coded-index column width rule).
func (s *codedIndexScheme) width(rowCounts [numTables]uint32) uint32 {
	limit := uint32(1) << (16 - s.tagBits)
	for _, t := range s.tables {
		if rowCounts[t] >= limit {
			return 4
		}
	}
	return 2
}

// encode packs (table, index) into this scheme's integer form. It
// returns an error if table is not one of the scheme's targets.
func (s *codedIndexScheme) encode(table TableID, index uint32) (uint32, error) {
	for tag, t := range s.tables {
		if t == table {
			return (index << s.tagBits) | uint32(tag), nil
		}
	}
	return 0, errf(InvalidArgument, "table %s is not a target of coded index %s", table, s.name)
}

// decode unpacks a coded integer into a RowRef. An index of 0 decodes
// to a RowRef with Index 0 on the table its tag names, which
// RowRef.IsNull reports as null regardless of tag.
func (s *codedIndexScheme) decode(coded uint32) (RowRef, error) {
	tag := coded & ((1 << s.tagBits) - 1)
	index := coded >> s.tagBits
	if int(tag) >= len(s.tables) {
		return RowRef{}, errf(Corrupt, "coded index %s: tag %d has no target table", s.name, tag)
	}
	return RowRef{Table: s.tables[tag], Index: index}, nil
}

// The coded-index schemes of spec.md §6, table for table.
var (
	typeDefOrRef = &codedIndexScheme{
		name: "TypeDefOrRef", tagBits: 2,
		tables: []TableID{TypeDef, TypeRef, TypeSpec},
	}
	hasConstant = &codedIndexScheme{
		name: "HasConstant", tagBits: 2,
		tables: []TableID{TblField, Param, TblProperty},
	}
	hasCustomAttribute = &codedIndexScheme{
		name: "HasCustomAttribute", tagBits: 5,
		tables: []TableID{
			MethodDef, TblField, TypeRef, TypeDef, Param, InterfaceImpl,
			MemberRef, TblModule, DeclSecurity, TblProperty, TblEvent,
			StandAloneSig, ModuleRef, TypeSpec, TblAssembly, AssemblyRef,
			File, ExportedType, ManifestResource, TblGenericParam,
			TblGenericParamConstraint, MethodSpec,
		},
	}
	hasFieldMarshal = &codedIndexScheme{
		name: "HasFieldMarshal", tagBits: 1,
		tables: []TableID{TblField, Param},
	}
	hasDeclSecurity = &codedIndexScheme{
		name: "HasDeclSecurity", tagBits: 2,
		tables: []TableID{TypeDef, MethodDef, TblAssembly},
	}
	memberRefParent = &codedIndexScheme{
		name: "MemberRefParent", tagBits: 3,
		tables: []TableID{TypeDef, TypeRef, ModuleRef, MethodDef, TypeSpec},
	}
	hasSemantics = &codedIndexScheme{
		name: "HasSemantics", tagBits: 1,
		tables: []TableID{TblEvent, TblProperty},
	}
	methodDefOrRef = &codedIndexScheme{
		name: "MethodDefOrRef", tagBits: 1,
		tables: []TableID{MethodDef, MemberRef},
	}
	memberForwarded = &codedIndexScheme{
		name: "MemberForwarded", tagBits: 1,
		tables: []TableID{TblField, MethodDef},
	}
	implementation = &codedIndexScheme{
		name: "Implementation", tagBits: 2,
		tables: []TableID{File, AssemblyRef, ExportedType},
	}
	customAttributeType = &codedIndexScheme{
		name: "CustomAttributeType", tagBits: 3,
		// Tags 0 and 1 are reserved (Not used, Not used); 2 and 3 are
		// the only ones ECMA-335 assigns. tableReserved03/05 are unused
		// placeholders so tag arithmetic lines up with the spec table.
		tables: []TableID{tableReserved03, tableReserved05, MethodDef, MemberRef},
	}
	resolutionScope = &codedIndexScheme{
		name: "ResolutionScope", tagBits: 2,
		tables: []TableID{TblModule, ModuleRef, AssemblyRef, TypeRef},
	}
	typeOrMethodDef = &codedIndexScheme{
		name: "TypeOrMethodDef", tagBits: 1,
		tables: []TableID{TypeDef, MethodDef},
	}
)
