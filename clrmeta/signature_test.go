// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import "testing"

func TestDecodeFieldSigPrimitive(t *testing.T) {
	sig, err := DecodeFieldSig(Blob{0x06, elemI4})
	if err != nil {
		t.Fatalf("DecodeFieldSig failed: %v", err)
	}
	if sig.Type.Kind != SigPrimitive || sig.Type.Primitive != PrimI4 {
		t.Errorf("got %+v, want a plain I4 primitive", sig.Type)
	}
}

func TestDecodeFieldSigRejectsBadMarker(t *testing.T) {
	if _, err := DecodeFieldSig(Blob{0x07, elemI4}); !Is(err, Corrupt) {
		t.Fatalf("got %v, want Corrupt for a missing 0x06 marker", err)
	}
}

func TestDecodeFieldSigClassReference(t *testing.T) {
	coded, err := typeDefOrRef.encode(TypeRef, 3)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	sig, err := DecodeFieldSig(Blob{0x06, elemClass, byte(coded)})
	if err != nil {
		t.Fatalf("DecodeFieldSig failed: %v", err)
	}
	if sig.Type.Kind != SigClass {
		t.Fatalf("got kind %v, want SigClass", sig.Type.Kind)
	}
	if sig.Type.TypeRef.Table != TypeRef || sig.Type.TypeRef.Index != 3 {
		t.Errorf("got %+v, want {TypeRef 3}", sig.Type.TypeRef)
	}
}

func TestDecodeMethodSigNoParamsVoidReturn(t *testing.T) {
	sig, err := DecodeMethodSig(Blob{0x00, 0x00, elemVoid})
	if err != nil {
		t.Fatalf("DecodeMethodSig failed: %v", err)
	}
	if sig.HasThis {
		t.Errorf("HasThis got true, want false")
	}
	if sig.ReturnType.Kind != SigPrimitive || sig.ReturnType.Primitive != PrimVoid {
		t.Errorf("ReturnType got %+v, want void", sig.ReturnType)
	}
	if len(sig.Params) != 0 {
		t.Errorf("Params got %d entries, want 0", len(sig.Params))
	}
}

func TestDecodeMethodSigHasThisWithParams(t *testing.T) {
	// HASTHIS (0x20), 2 params, return I4, params (STRING, I4).
	sig, err := DecodeMethodSig(Blob{0x20, 0x02, elemI4, elemString, elemI4})
	if err != nil {
		t.Fatalf("DecodeMethodSig failed: %v", err)
	}
	if !sig.HasThis {
		t.Errorf("HasThis got false, want true")
	}
	if len(sig.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(sig.Params))
	}
	if sig.Params[0].Primitive != PrimString {
		t.Errorf("param 0 got %v, want PrimString", sig.Params[0].Primitive)
	}
	if sig.Params[1].Primitive != PrimI4 {
		t.Errorf("param 1 got %v, want PrimI4", sig.Params[1].Primitive)
	}
}

func TestDecodeMethodSigGenericParamCount(t *testing.T) {
	// GENERIC (0x10) flag, 1 generic param, 0 regular params, return VOID.
	sig, err := DecodeMethodSig(Blob{0x10, 0x01, 0x00, elemVoid})
	if err != nil {
		t.Fatalf("DecodeMethodSig failed: %v", err)
	}
	if sig.GenericParamCount != 1 {
		t.Errorf("GenericParamCount got %d, want 1", sig.GenericParamCount)
	}
}

func TestDecodeMethodSigSZArrayParam(t *testing.T) {
	sig, err := DecodeMethodSig(Blob{0x00, 0x01, elemVoid, elemSZArray, elemI4})
	if err != nil {
		t.Fatalf("DecodeMethodSig failed: %v", err)
	}
	if len(sig.Params) != 1 {
		t.Fatalf("got %d params, want 1", len(sig.Params))
	}
	p := sig.Params[0]
	if p.Kind != SigSZArray {
		t.Fatalf("got kind %v, want SigSZArray", p.Kind)
	}
	if p.Element == nil || p.Element.Primitive != PrimI4 {
		t.Errorf("element got %+v, want I4", p.Element)
	}
}

func TestSigReaderCompressedIntSignExtension(t *testing.T) {
	cases := []struct {
		name string
		b    []byte
		want int32
	}{
		{"3 encoded as 1-byte positive", []byte{0x06}, 3},
		{"-3 encoded as 1-byte negative", []byte{0x7B}, -3},
		{"0", []byte{0x00}, 0},
	}
	for _, c := range cases {
		r := &sigReader{b: c.b}
		got, err := r.compressedInt()
		if err != nil {
			t.Fatalf("%s: compressedInt failed: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestDecodeLocalVarSigPinnedAndByRef(t *testing.T) {
	// 0x07 marker, 1 local, PINNED then BYREF then I4.
	sig, err := DecodeLocalVarSig(Blob{0x07, 0x01, elemPinned, elemByRef, elemI4})
	if err != nil {
		t.Fatalf("DecodeLocalVarSig failed: %v", err)
	}
	if len(sig.Locals) != 1 {
		t.Fatalf("got %d locals, want 1", len(sig.Locals))
	}
	lv := sig.Locals[0]
	if !lv.Pinned || !lv.ByRef {
		t.Errorf("got Pinned=%v ByRef=%v, want both true", lv.Pinned, lv.ByRef)
	}
	if lv.Type.Primitive != PrimI4 {
		t.Errorf("Type got %+v, want I4", lv.Type)
	}
}

func TestDecodePropertySigWithThisAndParams(t *testing.T) {
	// HASTHIS|0x08 marker, 1 param, return type I4, param I4.
	sig, err := DecodePropertySig(Blob{0x28, 0x01, elemI4, elemI4})
	if err != nil {
		t.Fatalf("DecodePropertySig failed: %v", err)
	}
	if !sig.HasThis {
		t.Errorf("HasThis got false, want true")
	}
	if len(sig.Params) != 1 || sig.Params[0].Primitive != PrimI4 {
		t.Errorf("Params got %+v, want one I4 param", sig.Params)
	}
}
