// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import "testing"

func TestNewDatabaseRejectsBadSignature(t *testing.T) {
	_, err := NewDatabase([]byte("not-a-metadata-root-at-all-xx"), nil)
	if !Is(err, Corrupt) {
		t.Fatalf("got %v, want a Corrupt error", err)
	}
}

func TestNewDatabaseRejectsMissingTildeStream(t *testing.T) {
	h := newHeapBuilder()
	// Name the table stream something the parser won't recognize as
	// either "#~" or "#-".
	root := buildMetadataRoot(h, "#bogus", nil)
	if _, err := NewDatabase(root, nil); !Is(err, Corrupt) {
		t.Fatalf("got %v, want Corrupt for a metadata root with no #~ stream", err)
	}
}

func sampleAssemblyRoot(t *testing.T) []byte {
	t.Helper()
	h := newHeapBuilder()

	moduleName := h.addString("Sample.dll")
	mvid := h.addGUID([16]byte{1, 2, 3, 4})

	typeModuleName := h.addString("<Module>")
	typeSampleName := h.addString("Sample")
	typeSampleNS := h.addString("NS")

	fieldName := h.addString("value")
	fieldSig := h.addBlob([]byte{0x06, 0x08}) // FIELD, I4

	methodName := h.addString("DoIt")
	methodSig := h.addBlob([]byte{0x00, 0x00, 0x01}) // default conv, 0 params, VOID return

	asmName := h.addString("TestAsm")

	caValue := h.addBlob([]byte{0x01, 0x00, 0x02, 'H', 'i'}) // prolog + len 2 + "Hi"

	caParent, err := hasCustomAttribute.encode(TypeDef, 2)
	if err != nil {
		t.Fatalf("encode CustomAttribute parent: %v", err)
	}
	caType, err := customAttributeType.encode(MethodDef, 1)
	if err != nil {
		t.Fatalf("encode CustomAttribute type: %v", err)
	}

	rows := map[TableID][][]uint32{
		Module: {
			{0, moduleName, mvid, 0, 0},
		},
		TypeDef: {
			{0, typeModuleName, 0, 0, 1, 1},
			{uint32(TypePublic), typeSampleName, typeSampleNS, 0, 1, 1},
		},
		Field: {
			{uint32(FieldPublic), fieldName, fieldSig},
		},
		MethodDef: {
			{0, 0, uint32(MethodPublic), methodName, methodSig, 1},
		},
		Assembly: {
			{0x8004, 1, 0, 0, 0, 0, 0, asmName, 0},
		},
		CustomAttribute: {
			{caParent, caType, caValue},
		},
	}
	return buildMetadataRoot(h, "#~", rows)
}

func TestDatabaseRowCounts(t *testing.T) {
	db, err := NewDatabase(sampleAssemblyRoot(t), nil)
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	if got := db.RowCount(TypeDef); got != 2 {
		t.Errorf("TypeDef row count got %d, want 2", got)
	}
	if got := db.RowCount(Field); got != 1 {
		t.Errorf("Field row count got %d, want 1", got)
	}
	if !db.HasTable(Module) {
		t.Errorf("expected Module table to be present")
	}
	if db.HasTable(TypeSpec) {
		t.Errorf("expected TypeSpec table to be absent")
	}
}

func TestDatabaseRowDecoding(t *testing.T) {
	db, err := NewDatabase(sampleAssemblyRoot(t), nil)
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	row, err := db.Row(RowRef{Table: TypeDef, Index: 2})
	if err != nil {
		t.Fatalf("Row failed: %v", err)
	}
	name, err := row.String(colTypeDefTypeName)
	if err != nil {
		t.Fatalf("String failed: %v", err)
	}
	if name != "Sample" {
		t.Errorf("TypeName got %q, want %q", name, "Sample")
	}
	if row.Uint32(colTypeDefFlags) != uint32(TypePublic) {
		t.Errorf("Flags got %#x, want %#x", row.Uint32(colTypeDefFlags), uint32(TypePublic))
	}
}

func TestDatabaseRowOutOfRange(t *testing.T) {
	db, err := NewDatabase(sampleAssemblyRoot(t), nil)
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	if _, err := db.Row(RowRef{Table: TypeDef, Index: 99}); !Is(err, Corrupt) {
		t.Fatalf("got %v, want Corrupt for an out-of-range row index", err)
	}
	if _, err := db.Row(RowRef{Table: TypeDef, Index: 0}); !Is(err, InvalidArgument) {
		t.Fatalf("got %v, want InvalidArgument for a null row reference", err)
	}
}

func TestDatabaseSortedRangeFindsCustomAttribute(t *testing.T) {
	db, err := NewDatabase(sampleAssemblyRoot(t), nil)
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	key, err := hasCustomAttribute.encode(TypeDef, 2)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	first, last, err := db.sortedRange(CustomAttribute, uint64(key))
	if err != nil {
		t.Fatalf("sortedRange failed: %v", err)
	}
	if first != 1 || last != 2 {
		t.Errorf("got range [%d,%d), want [1,2)", first, last)
	}

	otherKey, err := hasCustomAttribute.encode(TypeDef, 1)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	first, last, err = db.sortedRange(CustomAttribute, uint64(otherKey))
	if err != nil {
		t.Fatalf("sortedRange failed: %v", err)
	}
	if first != last {
		t.Errorf("got non-empty range [%d,%d) for an owner with no attributes", first, last)
	}
}

func TestHeapIndexZeroIsEmpty(t *testing.T) {
	db, err := NewDatabase(sampleAssemblyRoot(t), nil)
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	s, err := db.String(0)
	if err != nil || s != "" {
		t.Errorf("String(0) got (%q, %v), want (\"\", nil)", s, err)
	}
	b, err := db.Blob(0)
	if err != nil || len(b) != 0 {
		t.Errorf("Blob(0) got (%v, %v), want (empty, nil)", b, err)
	}
	g, err := db.GUID(0)
	if err != nil || g != (GUID{}) {
		t.Errorf("GUID(0) got (%v, %v), want (zero, nil)", g, err)
	}
}
