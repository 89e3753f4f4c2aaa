// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// This file is the static description of spec.md §4.1's Table Schema
// component: per-table column lists and sort keys. It plays the role
// dotnet_metadata_tables.go plays in the teacher (one block per table,
// grounded on the same ECMA-335 column definitions) but, per spec.md
// §9's design note, as data rather than 38 hand-written per-table
// parse functions: each row is a thin view over a byte slice (row.go)
// indexed through this schema, not a bespoke struct.

func u8(name string) column  { return column{name: name, kind: kindU8} }
func u16(name string) column { return column{name: name, kind: kindU16} }
func u32(name string) column { return column{name: name, kind: kindU32} }
func str(name string) column { return column{name: name, kind: kindHeapString} }
func guidCol(name string) column { return column{name: name, kind: kindHeapGUID} }
func blobCol(name string) column { return column{name: name, kind: kindHeapBlob} }
func simple(name string, target TableID) column {
	return column{name: name, kind: kindSimpleIndex, target: target}
}
func coded(name string, scheme *codedIndexScheme) column {
	return column{name: name, kind: kindCodedIndex, scheme: scheme}
}

// Column indices within each table, named for readability at call
// sites (e.g. db.Row(TypeDef, i).Uint32(colTypeDefFlags)).
const (
	colModuleGeneration = iota
	colModuleName
	colModuleMvid
	colModuleEncID
	colModuleEncBaseID
)

const (
	colTypeRefResolutionScope = iota
	colTypeRefTypeName
	colTypeRefTypeNamespace
)

const (
	colTypeDefFlags = iota
	colTypeDefTypeName
	colTypeDefTypeNamespace
	colTypeDefExtends
	colTypeDefFieldList
	colTypeDefMethodList
)

const (
	colFieldFlags = iota
	colFieldName
	colFieldSignature
)

const (
	colMethodDefRVA = iota
	colMethodDefImplFlags
	colMethodDefFlags
	colMethodDefName
	colMethodDefSignature
	colMethodDefParamList
)

const (
	colParamFlags = iota
	colParamSequence
	colParamName
)

const (
	colInterfaceImplClass = iota
	colInterfaceImplInterface
)

const (
	colMemberRefClass = iota
	colMemberRefName
	colMemberRefSignature
)

const (
	colConstantType = iota
	colConstantPadding
	colConstantParent
	colConstantValue
)

const (
	colCustomAttributeParent = iota
	colCustomAttributeType
	colCustomAttributeValue
)

const (
	colFieldMarshalParent = iota
	colFieldMarshalNativeType
)

const (
	colDeclSecurityAction = iota
	colDeclSecurityParent
	colDeclSecurityPermissionSet
)

const (
	colClassLayoutPackingSize = iota
	colClassLayoutClassSize
	colClassLayoutParent
)

const (
	colFieldLayoutOffset = iota
	colFieldLayoutField
)

const (
	colStandAloneSigSignature = iota
)

const (
	colEventMapParent = iota
	colEventMapEventList
)

const (
	colEventFlags = iota
	colEventName
	colEventType
)

const (
	colPropertyMapParent = iota
	colPropertyMapPropertyList
)

const (
	colPropertyFlags = iota
	colPropertyName
	colPropertyType
)

const (
	colMethodSemanticsSemantics = iota
	colMethodSemanticsMethod
	colMethodSemanticsAssociation
)

const (
	colMethodImplClass = iota
	colMethodImplMethodBody
	colMethodImplMethodDeclaration
)

const (
	colModuleRefName = iota
)

const (
	colTypeSpecSignature = iota
)

const (
	colImplMapMappingFlags = iota
	colImplMapMemberForwarded
	colImplMapImportName
	colImplMapImportScope
)

const (
	colFieldRVARVA = iota
	colFieldRVAField
)

const (
	colAssemblyHashAlgID = iota
	colAssemblyMajorVersion
	colAssemblyMinorVersion
	colAssemblyBuildNumber
	colAssemblyRevisionNumber
	colAssemblyFlags
	colAssemblyPublicKey
	colAssemblyName
	colAssemblyCulture
)

const (
	colAssemblyProcessorProcessor = iota
)

const (
	colAssemblyOSPlatformID = iota
	colAssemblyOSMajorVersion
	colAssemblyOSMinorVersion
)

const (
	colAssemblyRefMajorVersion = iota
	colAssemblyRefMinorVersion
	colAssemblyRefBuildNumber
	colAssemblyRefRevisionNumber
	colAssemblyRefFlags
	colAssemblyRefPublicKeyOrToken
	colAssemblyRefName
	colAssemblyRefCulture
	colAssemblyRefHashValue
)

const (
	colAssemblyRefProcessorProcessor = iota
	colAssemblyRefProcessorAssemblyRef
)

const (
	colAssemblyRefOSPlatformID = iota
	colAssemblyRefOSMajorVersion
	colAssemblyRefOSMinorVersion
	colAssemblyRefOSAssemblyRef
)

const (
	colFileFlags = iota
	colFileName
	colFileHashValue
)

const (
	colExportedTypeFlags = iota
	colExportedTypeTypeDefId
	colExportedTypeTypeName
	colExportedTypeTypeNamespace
	colExportedTypeImplementation
)

const (
	colManifestResourceOffset = iota
	colManifestResourceFlags
	colManifestResourceName
	colManifestResourceImplementation
)

const (
	colNestedClassNestedClass = iota
	colNestedClassEnclosingClass
)

const (
	colGenericParamNumber = iota
	colGenericParamFlags
	colGenericParamOwner
	colGenericParamName
)

const (
	colMethodSpecMethod = iota
	colMethodSpecInstantiation
)

const (
	colGenericParamConstraintOwner = iota
	colGenericParamConstraintConstraint
)

// schemas is the compile-time table of every table's column list and
// sort key, indexed by TableID. Built once at package init.
var schemas = buildSchemas()

func buildSchemas() [numTables]tableSchema {
	var s [numTables]tableSchema

	s[Module] = tableSchema{id: Module, columns: []column{
		u16("Generation"), str("Name"), guidCol("Mvid"), guidCol("EncId"), guidCol("EncBaseId"),
	}}
	s[TypeRef] = tableSchema{id: TypeRef, columns: []column{
		coded("ResolutionScope", resolutionScope), str("TypeName"), str("TypeNamespace"),
	}}
	s[TypeDef] = tableSchema{id: TypeDef, columns: []column{
		u32("Flags"), str("TypeName"), str("TypeNamespace"),
		coded("Extends", typeDefOrRef), simple("FieldList", Field), simple("MethodList", MethodDef),
	}}
	s[Field] = tableSchema{id: Field, columns: []column{
		u16("Flags"), str("Name"), blobCol("Signature"),
	}}
	s[MethodDef] = tableSchema{id: MethodDef, columns: []column{
		u32("RVA"), u16("ImplFlags"), u16("Flags"), str("Name"), blobCol("Signature"), simple("ParamList", Param),
	}}
	s[Param] = tableSchema{id: Param, columns: []column{
		u16("Flags"), u16("Sequence"), str("Name"),
	}}
	s[InterfaceImpl] = tableSchema{id: InterfaceImpl, sortKey: simpleSortKey(colInterfaceImplClass), columns: []column{
		simple("Class", TypeDef), coded("Interface", typeDefOrRef),
	}}
	s[MemberRef] = tableSchema{id: MemberRef, columns: []column{
		coded("Class", memberRefParent), str("Name"), blobCol("Signature"),
	}}
	s[Constant] = tableSchema{id: Constant, columns: []column{
		u8("Type"), u8("Padding"), coded("Parent", hasConstant), blobCol("Value"),
	}}
	s[CustomAttribute] = tableSchema{id: CustomAttribute, sortKey: codedSortKey(colCustomAttributeParent, hasCustomAttribute), columns: []column{
		coded("Parent", hasCustomAttribute), coded("Type", customAttributeType), blobCol("Value"),
	}}
	s[FieldMarshal] = tableSchema{id: FieldMarshal, sortKey: codedSortKey(colFieldMarshalParent, hasFieldMarshal), columns: []column{
		coded("Parent", hasFieldMarshal), blobCol("NativeType"),
	}}
	s[DeclSecurity] = tableSchema{id: DeclSecurity, sortKey: codedSortKey(colDeclSecurityParent, hasDeclSecurity), columns: []column{
		u16("Action"), coded("Parent", hasDeclSecurity), blobCol("PermissionSet"),
	}}
	s[ClassLayout] = tableSchema{id: ClassLayout, sortKey: simpleSortKey(colClassLayoutParent), columns: []column{
		u16("PackingSize"), u32("ClassSize"), simple("Parent", TypeDef),
	}}
	s[FieldLayout] = tableSchema{id: FieldLayout, sortKey: simpleSortKey(colFieldLayoutField), columns: []column{
		u32("Offset"), simple("Field", Field),
	}}
	s[StandAloneSig] = tableSchema{id: StandAloneSig, columns: []column{
		blobCol("Signature"),
	}}
	s[EventMap] = tableSchema{id: EventMap, columns: []column{
		simple("Parent", TypeDef), simple("EventList", Event),
	}}
	s[Event] = tableSchema{id: Event, columns: []column{
		u16("EventFlags"), str("Name"), coded("EventType", typeDefOrRef),
	}}
	s[PropertyMap] = tableSchema{id: PropertyMap, columns: []column{
		simple("Parent", TypeDef), simple("PropertyList", Property),
	}}
	s[Property] = tableSchema{id: Property, columns: []column{
		u16("Flags"), str("Name"), blobCol("Type"),
	}}
	s[MethodSemantics] = tableSchema{id: MethodSemantics, sortKey: codedSortKey(colMethodSemanticsAssociation, hasSemantics), columns: []column{
		u16("Semantics"), simple("Method", MethodDef), coded("Association", hasSemantics),
	}}
	s[MethodImpl] = tableSchema{id: MethodImpl, sortKey: simpleSortKey(colMethodImplClass), columns: []column{
		simple("Class", TypeDef), coded("MethodBody", methodDefOrRef), coded("MethodDeclaration", methodDefOrRef),
	}}
	s[ModuleRef] = tableSchema{id: ModuleRef, columns: []column{
		str("Name"),
	}}
	s[TypeSpec] = tableSchema{id: TypeSpec, columns: []column{
		blobCol("Signature"),
	}}
	s[ImplMap] = tableSchema{id: ImplMap, columns: []column{
		u16("MappingFlags"), coded("MemberForwarded", memberForwarded), str("ImportName"), simple("ImportScope", ModuleRef),
	}}
	s[FieldRVA] = tableSchema{id: FieldRVA, sortKey: simpleSortKey(colFieldRVAField), columns: []column{
		u32("RVA"), simple("Field", Field),
	}}
	s[Assembly] = tableSchema{id: Assembly, columns: []column{
		u32("HashAlgId"), u16("MajorVersion"), u16("MinorVersion"), u16("BuildNumber"), u16("RevisionNumber"),
		u32("Flags"), blobCol("PublicKey"), str("Name"), str("Culture"),
	}}
	s[AssemblyProcessor] = tableSchema{id: AssemblyProcessor, columns: []column{
		u32("Processor"),
	}}
	s[AssemblyOS] = tableSchema{id: AssemblyOS, columns: []column{
		u32("OSPlatformID"), u32("OSMajorVersion"), u32("OSMinorVersion"),
	}}
	s[AssemblyRef] = tableSchema{id: AssemblyRef, columns: []column{
		u16("MajorVersion"), u16("MinorVersion"), u16("BuildNumber"), u16("RevisionNumber"),
		u32("Flags"), blobCol("PublicKeyOrToken"), str("Name"), str("Culture"), blobCol("HashValue"),
	}}
	s[AssemblyRefProcessor] = tableSchema{id: AssemblyRefProcessor, columns: []column{
		u32("Processor"), simple("AssemblyRef", AssemblyRef),
	}}
	s[AssemblyRefOS] = tableSchema{id: AssemblyRefOS, columns: []column{
		u32("OSPlatformID"), u32("OSMajorVersion"), u32("OSMinorVersion"), simple("AssemblyRef", AssemblyRef),
	}}
	s[File] = tableSchema{id: File, columns: []column{
		u32("Flags"), str("Name"), blobCol("HashValue"),
	}}
	s[ExportedType] = tableSchema{id: ExportedType, columns: []column{
		u32("Flags"), u32("TypeDefId"), str("TypeName"), str("TypeNamespace"), coded("Implementation", implementation),
	}}
	s[ManifestResource] = tableSchema{id: ManifestResource, columns: []column{
		u32("Offset"), u32("Flags"), str("Name"), coded("Implementation", implementation),
	}}
	s[NestedClass] = tableSchema{id: NestedClass, sortKey: simpleSortKey(colNestedClassNestedClass), columns: []column{
		simple("NestedClass", TypeDef), simple("EnclosingClass", TypeDef),
	}}
	s[GenericParam] = tableSchema{id: GenericParam, sortKey: genericParamSortKey, columns: []column{
		u16("Number"), u16("Flags"), coded("Owner", typeOrMethodDef), str("Name"),
	}}
	s[MethodSpec] = tableSchema{id: MethodSpec, columns: []column{
		coded("Method", methodDefOrRef), blobCol("Instantiation"),
	}}
	s[GenericParamConstraint] = tableSchema{id: GenericParamConstraint, sortKey: simpleSortKey(colGenericParamConstraintOwner), columns: []column{
		simple("Owner", GenericParam), coded("Constraint", typeDefOrRef),
	}}

	return s
}
