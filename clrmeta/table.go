// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// TableID identifies one of the metadata tables addressable by a 6-bit
// tag (0..63), per ECMA-335 §II.22. Unused ids are reserved; the
// Database's Valid bitmask says which ids actually have rows in a given
// assembly.
type TableID uint8

// Table ids, matching the bit positions of the table stream's Valid
// mask (ECMA-335 §II.24.2.6, Table 2).
const (
	TblModule TableID = iota
	TypeRef
	TypeDef
	tableReserved03
	TblField
	tableReserved05
	MethodDef
	tableReserved07
	Param
	InterfaceImpl
	MemberRef
	Constant
	TblCustomAttribute
	FieldMarshal
	DeclSecurity
	ClassLayout
	FieldLayout
	StandAloneSig
	EventMap
	tableReserved13
	TblEvent
	PropertyMap
	tableReserved16
	TblProperty
	MethodSemantics
	MethodImpl
	ModuleRef
	TypeSpec
	ImplMap
	FieldRVA
	tableReserved1E
	tableReserved1F
	TblAssembly
	AssemblyProcessor
	AssemblyOS
	AssemblyRef
	AssemblyRefProcessor
	AssemblyRefOS
	File
	ExportedType
	ManifestResource
	NestedClass
	TblGenericParam
	MethodSpec
	TblGenericParamConstraint

	// numTables is one past the highest table id this module knows
	// about. Ids beyond this are always invalid.
	numTables
)

// tableNames gives a display name for each table id, used in error
// messages and the CLI dumper.
var tableNames = [numTables]string{
	TblModule:              "Module",
	TypeRef:                "TypeRef",
	TypeDef:                "TypeDef",
	TblField:               "Field",
	MethodDef:              "MethodDef",
	Param:                  "Param",
	InterfaceImpl:          "InterfaceImpl",
	MemberRef:              "MemberRef",
	Constant:               "Constant",
	TblCustomAttribute:     "CustomAttribute",
	FieldMarshal:           "FieldMarshal",
	DeclSecurity:           "DeclSecurity",
	ClassLayout:            "ClassLayout",
	FieldLayout:            "FieldLayout",
	StandAloneSig:          "StandAloneSig",
	EventMap:               "EventMap",
	TblEvent:               "Event",
	PropertyMap:            "PropertyMap",
	TblProperty:            "Property",
	MethodSemantics:        "MethodSemantics",
	MethodImpl:             "MethodImpl",
	ModuleRef:              "ModuleRef",
	TypeSpec:               "TypeSpec",
	ImplMap:                "ImplMap",
	FieldRVA:               "FieldRVA",
	TblAssembly:            "Assembly",
	AssemblyProcessor:      "AssemblyProcessor",
	AssemblyOS:             "AssemblyOS",
	AssemblyRef:            "AssemblyRef",
	AssemblyRefProcessor:   "AssemblyRefProcessor",
	AssemblyRefOS:          "AssemblyRefOS",
	File:                   "File",
	ExportedType:           "ExportedType",
	ManifestResource:       "ManifestResource",
	NestedClass:            "NestedClass",
	TblGenericParam:        "GenericParam",
	MethodSpec:             "MethodSpec",
	TblGenericParamConstraint: "GenericParamConstraint",
}

// String names the table, or "Reserved(n)"/"Invalid(n)" for ids this
// module doesn't recognize.
func (t TableID) String() string {
	if t < numTables && tableNames[t] != "" {
		return tableNames[t]
	}
	return errf(InvalidArgument, "table id %d is reserved or unknown", uint8(t)).Message
}

// valid reports whether t is a table id this schema describes.
func (t TableID) valid() bool {
	return t < numTables && tableNames[t] != ""
}

// columnKind classifies how a table column is physically encoded.
type columnKind uint8

const (
	kindU8 columnKind = iota
	kindU16
	kindU32
	kindHeapString
	kindHeapGUID
	kindHeapBlob
	kindSimpleIndex
	kindCodedIndex
)

// column describes one column of a table row: its physical kind, and
// for index columns, what it indexes into.
type column struct {
	name   string
	kind   columnKind
	target TableID          // for kindSimpleIndex
	scheme *codedIndexScheme // for kindCodedIndex
}

// tableSchema is the static, compile-time description of one table's
// row layout: an ordered column list. Row sizes and offsets are never
// hard-coded; Database computes them from this plus the live heap-size
// flags and table row counts (spec.md §4.1).
type tableSchema struct {
	id      TableID
	sortKey sortKeyFunc // nil if the table carries no mandated order
	columns []column
}

// RowRef identifies one row in one table: a 1-based index, or 0 for
// "null". Operations that expect a particular table must reject
// mismatched table ids (spec.md §3 invariants).
type RowRef struct {
	Table TableID
	Index uint32
}

// IsNull reports whether r is the null reference (index 0).
func (r RowRef) IsNull() bool { return r.Index == 0 }

// FullRef identifies a row across assemblies: a Database plus a RowRef.
// Equality is by database identity then row reference, matching
// spec.md §3.
type FullRef struct {
	DB  *Database
	Row RowRef
}

// IsNull reports whether f has no database or a null row reference.
func (f FullRef) IsNull() bool { return f.DB == nil || f.Row.IsNull() }

// Equal reports whether f and g identify the same row of the same
// database.
func (f FullRef) Equal(g FullRef) bool {
	return f.DB == g.DB && f.Row == g.Row
}
