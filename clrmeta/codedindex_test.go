// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import "testing"

func TestCodedIndexEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		scheme *codedIndexScheme
		table  TableID
		index  uint32
	}{
		{typeDefOrRef, TypeRef, 7},
		{typeDefOrRef, TypeSpec, 1},
		{hasCustomAttribute, MethodDef, 3},
		{hasCustomAttribute, GenericParamConstraint, 9},
		{hasCustomAttribute, MethodSpec, 2},
		{implementation, File, 1},
		{implementation, AssemblyRef, 4},
		{implementation, ExportedType, 100},
		{resolutionScope, AssemblyRef, 2},
		{customAttributeType, MethodDef, 5},
		{customAttributeType, MemberRef, 6},
	}
	for _, c := range cases {
		coded, err := c.scheme.encode(c.table, c.index)
		if err != nil {
			t.Fatalf("encode(%s, %d) failed: %v", c.table, c.index, err)
		}
		ref, err := c.scheme.decode(coded)
		if err != nil {
			t.Fatalf("decode(%#x) failed: %v", coded, err)
		}
		if ref.Table != c.table || ref.Index != c.index {
			t.Errorf("round trip got {%s %d}, want {%s %d}", ref.Table, ref.Index, c.table, c.index)
		}
	}
}

func TestCodedIndexEncodeRejectsForeignTable(t *testing.T) {
	if _, err := typeDefOrRef.encode(MethodDef, 1); !Is(err, InvalidArgument) {
		t.Fatalf("got %v, want InvalidArgument for a table outside the scheme", err)
	}
}

func TestCodedIndexDecodeRejectsOutOfRangeTag(t *testing.T) {
	// customAttributeType reserves 3 tag bits (8 possible tags) but
	// only lists 4 target tables; tag 7 names none of them.
	bogus := uint32(1)<<customAttributeType.tagBits | 7
	if _, err := customAttributeType.decode(bogus); !Is(err, Corrupt) {
		t.Fatalf("got %v, want Corrupt for a tag with no target table", err)
	}
}

func TestCodedIndexWidth(t *testing.T) {
	var small [numTables]uint32
	small[TypeDef] = 10
	small[TypeRef] = 10
	small[TypeSpec] = 10
	if got := typeDefOrRef.width(small); got != 2 {
		t.Errorf("width with small row counts got %d, want 2", got)
	}

	var big [numTables]uint32
	big[TypeDef] = 1 << 20
	if got := typeDefOrRef.width(big); got != 4 {
		t.Errorf("width with a table past the 14-bit limit got %d, want 4", got)
	}
}

func TestHasCustomAttributeOrderMatchesECMA335(t *testing.T) {
	// ECMA-335 II.24.2.6 lists 22 targets for HasCustomAttribute, in a
	// specific order the tag bits are derived from. A prior revision of
	// this package (inherited from the teacher's dotnet_helper.go)
	// truncated this to 17 tables and dropped GenericParam,
	// GenericParamConstraint, and MethodSpec.
	want := []TableID{
		MethodDef, Field, TypeRef, TypeDef, Param, InterfaceImpl,
		MemberRef, Module, DeclSecurity, Property, Event,
		StandAloneSig, ModuleRef, TypeSpec, Assembly, AssemblyRef,
		File, ExportedType, ManifestResource, GenericParam,
		GenericParamConstraint, MethodSpec,
	}
	if len(hasCustomAttribute.tables) != len(want) {
		t.Fatalf("got %d target tables, want %d", len(hasCustomAttribute.tables), len(want))
	}
	for i, tbl := range want {
		if hasCustomAttribute.tables[i] != tbl {
			t.Errorf("tag %d got %s, want %s", i, hasCustomAttribute.tables[i], tbl)
		}
	}
}

func TestImplementationOrderIncludesFile(t *testing.T) {
	want := []TableID{File, AssemblyRef, ExportedType}
	if len(implementation.tables) != len(want) {
		t.Fatalf("got %d target tables, want %d", len(implementation.tables), len(want))
	}
	for i, tbl := range want {
		if implementation.tables[i] != tbl {
			t.Errorf("tag %d got %s, want %s", i, implementation.tables[i], tbl)
		}
	}
}
