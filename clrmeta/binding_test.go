// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import "testing"

// bindingFixtureRoot builds a two-type hierarchy: Base declares an
// instance field X, a static field Count, instance methods Foo and Baz,
// a static method Init, and two Over overloads (one taking I4, one
// taking a string). Derived extends Base and declares its own instance
// field X (hiding Base's by name), an instance method Foo with no
// HideBySig bit (hiding Base's Foo by name, regardless of signature),
// and an Over(I4) method with HideBySig set (hiding only Base's
// Over(I4), leaving Over(string) untouched).
func bindingFixtureRoot(t *testing.T) []byte {
	t.Helper()
	h := newHeapBuilder()

	moduleName := h.addString("<Module>")
	baseName := h.addString("Base")
	derivedName := h.addString("Derived")
	ns := h.addString("NS")

	xName := h.addString("X")
	countName := h.addString("Count")
	intFieldSig := h.addBlob([]byte{0x06, elemI4})

	fooName := h.addString("Foo")
	bazName := h.addString("Baz")
	initName := h.addString("Init")
	overName := h.addString("Over")

	noParamsVoidSig := h.addBlob([]byte{0x00, 0x00, elemVoid})
	i4ParamSig := h.addBlob([]byte{0x00, 0x01, elemVoid, elemI4})
	stringParamSig := h.addBlob([]byte{0x00, 0x01, elemVoid, elemString})

	baseExtends := uint32(0)
	derivedExtends, err := typeDefOrRef.encode(TypeDef, 2)
	if err != nil {
		t.Fatalf("encode Extends: %v", err)
	}

	rows := map[TableID][][]uint32{
		TypeDef: {
			// <Module>, no fields/methods of its own.
			{0, moduleName, 0, 0, 1, 1},
			// Base: fields 1-2 (X, Count), methods 1-5 (Foo, Baz, Init, Over(I4), Over(string)).
			{uint32(TypePublic), baseName, ns, baseExtends, 1, 1},
			// Derived: field 3 (X), methods 6-7 (Foo, Over(I4) HideBySig).
			{uint32(TypePublic), derivedName, ns, derivedExtends, 3, 6},
		},
		Field: {
			{uint32(FieldPublic), xName, intFieldSig},
			{uint32(FieldPublic | FieldStatic), countName, intFieldSig},
			{uint32(FieldPublic), xName, intFieldSig},
		},
		MethodDef: {
			{0, 0, uint32(MethodPublic), fooName, noParamsVoidSig, 1},
			{0, 0, uint32(MethodPublic), bazName, noParamsVoidSig, 1},
			{0, 0, uint32(MethodPublic | MethodStatic), initName, noParamsVoidSig, 1},
			{0, 0, uint32(MethodPublic), overName, i4ParamSig, 1},
			{0, 0, uint32(MethodPublic), overName, stringParamSig, 1},
			{0, 0, uint32(MethodPublic), fooName, noParamsVoidSig, 1},
			{0, 0, uint32(MethodPublic | MethodHideBySig), overName, i4ParamSig, 1},
		},
	}
	return buildMetadataRoot(h, "#~", rows)
}

func bindingFixtureTypes(t *testing.T) (base, derived Type) {
	t.Helper()
	db, err := NewDatabase(bindingFixtureRoot(t), nil)
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	ctx := &AssemblyContext{db: db}
	asm := Assembly{ctx: ctx}
	base = Type{assembly: asm, ref: RowRef{Table: TypeDef, Index: 2}}
	derived = Type{assembly: asm, ref: RowRef{Table: TypeDef, Index: 3}}
	return base, derived
}

func methodNames(t *testing.T, methods []Method) []string {
	t.Helper()
	var out []string
	for _, m := range methods {
		name, err := m.Name()
		if err != nil {
			t.Fatalf("Name failed: %v", err)
		}
		out = append(out, name)
	}
	return out
}

func fieldNames(t *testing.T, fields []Field) []string {
	t.Helper()
	var out []string
	for _, f := range fields {
		name, err := f.Name()
		if err != nil {
			t.Fatalf("Name failed: %v", err)
		}
		out = append(out, name)
	}
	return out
}

func assertNames(t *testing.T, got []string, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMethodsDeclaredOnly(t *testing.T) {
	_, derived := bindingFixtureTypes(t)
	methods, err := derived.Methods(BindingDefault | BindingDeclaredOnly)
	if err != nil {
		t.Fatalf("Methods failed: %v", err)
	}
	assertNames(t, methodNames(t, methods), []string{"Foo", "Over"})
}

func TestMethodsDefaultWalksBaseChainWithoutStatics(t *testing.T) {
	_, derived := bindingFixtureTypes(t)
	methods, err := derived.Methods(BindingDefault)
	if err != nil {
		t.Fatalf("Methods failed: %v", err)
	}
	// Derived's own Foo and Over(I4) come first; Base's Foo is hidden by
	// name, Base's Over(I4) is hidden by signature, Base's static Init
	// is excluded without BindingFlattenHierarchy. Base's Baz and
	// Over(string) survive: neither is hidden.
	assertNames(t, methodNames(t, methods), []string{"Foo", "Over", "Baz", "Over"})
}

func TestMethodsFlattenHierarchyIncludesStatics(t *testing.T) {
	_, derived := bindingFixtureTypes(t)
	methods, err := derived.Methods(BindingDefault | BindingFlattenHierarchy)
	if err != nil {
		t.Fatalf("Methods failed: %v", err)
	}
	assertNames(t, methodNames(t, methods), []string{"Foo", "Over", "Baz", "Init", "Over"})
}

func TestFieldsDeclaredOnly(t *testing.T) {
	_, derived := bindingFixtureTypes(t)
	fields, err := derived.Fields(BindingDefault | BindingDeclaredOnly)
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	assertNames(t, fieldNames(t, fields), []string{"X"})
}

func TestFieldsDefaultHidesBaseFieldByNameAndExcludesStatics(t *testing.T) {
	_, derived := bindingFixtureTypes(t)
	fields, err := derived.Fields(BindingDefault)
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	// Base's X is hidden by Derived's own X; Base's static Count is
	// excluded without BindingFlattenHierarchy.
	assertNames(t, fieldNames(t, fields), []string{"X"})
}

func TestFieldsFlattenHierarchyIncludesStatics(t *testing.T) {
	_, derived := bindingFixtureTypes(t)
	fields, err := derived.Fields(BindingDefault | BindingFlattenHierarchy)
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	assertNames(t, fieldNames(t, fields), []string{"X", "Count"})
}

func TestBaseTypeOwnMembers(t *testing.T) {
	base, _ := bindingFixtureTypes(t)
	methods, err := base.Methods(BindingDefault)
	if err != nil {
		t.Fatalf("Methods failed: %v", err)
	}
	// Base has no base type of its own: walking stops immediately, and
	// since these are all declared (not inherited) members, even the
	// static Init is eligible without BindingFlattenHierarchy.
	assertNames(t, methodNames(t, methods), []string{"Foo", "Baz", "Init", "Over", "Over"})
}
