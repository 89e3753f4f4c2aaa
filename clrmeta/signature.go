// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

// Element-type tags, ECMA-335 §II.23.1.16.
const (
	elemEnd          = 0x00
	elemVoid         = 0x01
	elemBoolean      = 0x02
	elemChar         = 0x03
	elemI1           = 0x04
	elemU1           = 0x05
	elemI2           = 0x06
	elemU2           = 0x07
	elemI4           = 0x08
	elemU4           = 0x09
	elemI8           = 0x0A
	elemU8           = 0x0B
	elemR4           = 0x0C
	elemR8           = 0x0D
	elemString       = 0x0E
	elemPtr          = 0x0F
	elemByRef        = 0x10
	elemValueType    = 0x11
	elemClass        = 0x12
	elemVar          = 0x13
	elemArray        = 0x14
	elemGenericInst  = 0x15
	elemTypedByRef   = 0x16
	elemI            = 0x18
	elemU            = 0x19
	elemFnPtr        = 0x1B
	elemObject       = 0x1C
	elemSZArray      = 0x1D
	elemMVar         = 0x1E
	elemCModReqd     = 0x1F
	elemCModOpt      = 0x20
	elemInternal     = 0x21
	elemSentinel     = 0x41
	elemPinned       = 0x45
)

// CallingConvention is the low nibble of a signature's leading byte
// (ECMA-335 §II.23.2.3), naming how the call is shaped.
type CallingConvention uint8

// Calling conventions. GENERIC is the 0x10 flag bit, outside the low
// nibble, so a decoded CallingConvention never equals ConvGeneric; a
// generic method signature shows as a non-zero GenericParamCount.
const (
	ConvDefault CallingConvention = 0x0
	ConvVarArg  CallingConvention = 0x5
	ConvGeneric CallingConvention = 0x10
)

// PrimitiveKind names a primitive element type directly encoded in a
// signature (BOOLEAN..R8, STRING, OBJECT, VOID, TYPEDBYREF).
type PrimitiveKind uint8

// Primitive kinds, matching the element-type tags of the same name.
const (
	PrimVoid PrimitiveKind = iota
	PrimBoolean
	PrimChar
	PrimI1
	PrimU1
	PrimI2
	PrimU2
	PrimI4
	PrimU4
	PrimI8
	PrimU8
	PrimR4
	PrimR8
	PrimString
	PrimObject
	PrimTypedByRef
	PrimI
	PrimU
)

// TypeSigKind discriminates a TypeSig's variant.
type TypeSigKind uint8

// Kinds a TypeSig node can take, one per §4.2's Type production.
const (
	SigPrimitive TypeSigKind = iota
	SigValueType
	SigClass
	SigPtr
	SigByRef
	SigArray
	SigSZArray
	SigGenericInst
	SigVar
	SigMVar
	SigFnPtr
)

// CustomMod is one optional modifier (CMOD_REQD or CMOD_OPT) prefixing
// a type in a signature.
type CustomMod struct {
	Required bool
	Type     RowRef // into TypeDef, TypeRef or TypeSpec
}

// ArrayShape is an ARRAY type's dimension descriptor.
type ArrayShape struct {
	Rank     uint32
	Sizes    []uint32
	LoBounds []int32
}

// TypeSig is one node of a decoded signature's type tree. Only the
// fields relevant to Kind are populated; re-decoding the same blob
// bytes always produces a structurally equal tree (spec.md §4.2).
type TypeSig struct {
	Kind         TypeSigKind
	Primitive    PrimitiveKind
	TypeRef      RowRef // ValueType, Class: the named type. GenericInst: the generic type.
	IsValueType  bool   // GenericInst: whether TypeRef names a value type (vs class)
	CustomMods   []CustomMod
	Element      *TypeSig // Ptr, ByRef, Array, SZArray: the pointee/element type
	Array        *ArrayShape
	GenericArgs  []TypeSig
	Number       uint32 // Var, MVar: the generic parameter index
	Method       *MethodSig
}

// MethodSig is a decoded MethodDefSig or MethodRefSig.
type MethodSig struct {
	HasThis           bool
	ExplicitThis      bool
	CallingConvention CallingConvention
	GenericParamCount uint32
	ReturnType        TypeSig
	Params            []TypeSig
	// VarArgParams holds the extra parameter types following the
	// SENTINEL marker in a VARARG call-site signature; empty otherwise.
	VarArgParams []TypeSig
}

// FieldSig is a decoded FieldSig.
type FieldSig struct {
	CustomMods []CustomMod
	Type       TypeSig
}

// PropertySig is a decoded PropertySig.
type PropertySig struct {
	HasThis bool
	Params  []TypeSig
	Type    TypeSig
}

// LocalVarSig is a decoded local-variable signature (from a
// StandAloneSig row referenced by a method body).
type LocalVarSig struct {
	Locals []LocalVar
}

// LocalVar is one entry of a LocalVarSig.
type LocalVar struct {
	CustomMods []CustomMod
	Pinned     bool
	ByRef      bool
	Type       TypeSig
}

// sigReader walks a blob left to right, tracking position for
// Truncated errors.
type sigReader struct {
	b   []byte
	pos int
}

func (r *sigReader) byte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, errf(Corrupt, "signature: truncated reading a byte at offset %d", r.pos)
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

func (r *sigReader) peek() (byte, bool) {
	if r.pos >= len(r.b) {
		return 0, false
	}
	return r.b[r.pos], true
}

func (r *sigReader) compressedUint() (uint32, error) {
	if r.pos >= len(r.b) {
		return 0, errf(Corrupt, "signature: truncated reading a compressed integer at offset %d", r.pos)
	}
	v, n, err := decodeCompressedUint(r.b[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// compressedInt decodes a compressed signed integer (ECMA-335
// §II.23.2.8): the compressed unsigned value, then sign-extended and
// arithmetically shifted right by one, with bit 0 as the sign flag.
func (r *sigReader) compressedInt() (int32, error) {
	u, err := r.compressedUint()
	if err != nil {
		return 0, err
	}
	if u&1 == 0 {
		return int32(u >> 1), nil
	}
	// Sign-extend based on which compressed form held the value.
	switch {
	case u <= 0x7F:
		return int32(u>>1) - 0x40, nil
	case u <= 0x3FFF:
		return int32(u>>1) - 0x2000, nil
	default:
		return int32(u>>1) - 0x10000000, nil
	}
}

// decodeTypeDefOrRef reads a compressed TypeDefOrRef coded index
// (ECMA-335 §II.23.2.8: the same tag-in-low-bits scheme as the table
// stream's coded indices, but compressed, tag width 2).
func (r *sigReader) decodeTypeDefOrRef() (RowRef, error) {
	coded, err := r.compressedUint()
	if err != nil {
		return RowRef{}, err
	}
	ref, err := typeDefOrRef.decode(coded)
	if err != nil {
		return RowRef{}, wrapf(Corrupt, err, "signature: invalid coded index")
	}
	return ref, nil
}

func (r *sigReader) customMods() ([]CustomMod, error) {
	var mods []CustomMod
	for {
		b, ok := r.peek()
		if !ok || (b != elemCModReqd && b != elemCModOpt) {
			return mods, nil
		}
		r.pos++
		ref, err := r.decodeTypeDefOrRef()
		if err != nil {
			return nil, err
		}
		mods = append(mods, CustomMod{Required: b == elemCModReqd, Type: ref})
	}
}

func primitiveFor(tag byte) (PrimitiveKind, bool) {
	switch tag {
	case elemVoid:
		return PrimVoid, true
	case elemBoolean:
		return PrimBoolean, true
	case elemChar:
		return PrimChar, true
	case elemI1:
		return PrimI1, true
	case elemU1:
		return PrimU1, true
	case elemI2:
		return PrimI2, true
	case elemU2:
		return PrimU2, true
	case elemI4:
		return PrimI4, true
	case elemU4:
		return PrimU4, true
	case elemI8:
		return PrimI8, true
	case elemU8:
		return PrimU8, true
	case elemR4:
		return PrimR4, true
	case elemR8:
		return PrimR8, true
	case elemString:
		return PrimString, true
	case elemObject:
		return PrimObject, true
	case elemTypedByRef:
		return PrimTypedByRef, true
	case elemI:
		return PrimI, true
	case elemU:
		return PrimU, true
	}
	return 0, false
}

// decodeType decodes a single Type production (spec.md §4.2).
func (r *sigReader) decodeType() (TypeSig, error) {
	// PINNED is a modifier that may precede a local's type; callers that
	// care (decodeLocalVarSig) peel it off before calling decodeType.
	tag, err := r.byte()
	if err != nil {
		return TypeSig{}, err
	}
	if prim, ok := primitiveFor(tag); ok {
		return TypeSig{Kind: SigPrimitive, Primitive: prim}, nil
	}
	switch tag {
	case elemValueType, elemClass:
		ref, err := r.decodeTypeDefOrRef()
		if err != nil {
			return TypeSig{}, err
		}
		kind := SigClass
		if tag == elemValueType {
			kind = SigValueType
		}
		return TypeSig{Kind: kind, TypeRef: ref}, nil
	case elemPtr, elemByRef:
		mods, err := r.customMods()
		if err != nil {
			return TypeSig{}, err
		}
		elem, err := r.decodeType()
		if err != nil {
			return TypeSig{}, err
		}
		kind := SigPtr
		if tag == elemByRef {
			kind = SigByRef
		}
		return TypeSig{Kind: kind, CustomMods: mods, Element: &elem}, nil
	case elemSZArray:
		mods, err := r.customMods()
		if err != nil {
			return TypeSig{}, err
		}
		elem, err := r.decodeType()
		if err != nil {
			return TypeSig{}, err
		}
		return TypeSig{Kind: SigSZArray, CustomMods: mods, Element: &elem}, nil
	case elemArray:
		elem, err := r.decodeType()
		if err != nil {
			return TypeSig{}, err
		}
		shape, err := r.decodeArrayShape()
		if err != nil {
			return TypeSig{}, err
		}
		return TypeSig{Kind: SigArray, Element: &elem, Array: shape}, nil
	case elemGenericInst:
		inner, err := r.byte()
		if err != nil {
			return TypeSig{}, err
		}
		if inner != elemValueType && inner != elemClass {
			return TypeSig{}, errf(Corrupt, "signature: GENERICINST expected CLASS/VALUETYPE, got 0x%02x", inner)
		}
		ref, err := r.decodeTypeDefOrRef()
		if err != nil {
			return TypeSig{}, err
		}
		argCount, err := r.compressedUint()
		if err != nil {
			return TypeSig{}, err
		}
		args := make([]TypeSig, argCount)
		for i := range args {
			args[i], err = r.decodeType()
			if err != nil {
				return TypeSig{}, err
			}
		}
		return TypeSig{Kind: SigGenericInst, TypeRef: ref, IsValueType: inner == elemValueType, GenericArgs: args}, nil
	case elemVar, elemMVar:
		n, err := r.compressedUint()
		if err != nil {
			return TypeSig{}, err
		}
		kind := SigVar
		if tag == elemMVar {
			kind = SigMVar
		}
		return TypeSig{Kind: kind, Number: n}, nil
	case elemFnPtr:
		sig, err := r.decodeMethodSig()
		if err != nil {
			return TypeSig{}, err
		}
		return TypeSig{Kind: SigFnPtr, Method: sig}, nil
	default:
		return TypeSig{}, errf(Corrupt, "signature: unknown element type 0x%02x", tag)
	}
}

func (r *sigReader) decodeArrayShape() (*ArrayShape, error) {
	rank, err := r.compressedUint()
	if err != nil {
		return nil, err
	}
	numSizes, err := r.compressedUint()
	if err != nil {
		return nil, err
	}
	sizes := make([]uint32, numSizes)
	for i := range sizes {
		if sizes[i], err = r.compressedUint(); err != nil {
			return nil, err
		}
	}
	numLoBounds, err := r.compressedUint()
	if err != nil {
		return nil, err
	}
	loBounds := make([]int32, numLoBounds)
	for i := range loBounds {
		if loBounds[i], err = r.compressedInt(); err != nil {
			return nil, err
		}
	}
	return &ArrayShape{Rank: rank, Sizes: sizes, LoBounds: loBounds}, nil
}

// decodeMethodSig decodes a MethodDefSig or MethodRefSig: calling
// convention byte, [generic param count], param count, return type,
// then that many parameter types (spec.md §4.2).
func (r *sigReader) decodeMethodSig() (*MethodSig, error) {
	flags, err := r.byte()
	if err != nil {
		return nil, err
	}
	sig := &MethodSig{
		HasThis:           flags&0x20 != 0,
		ExplicitThis:      flags&0x40 != 0,
		CallingConvention: CallingConvention(flags & 0x0F),
	}
	if flags&0x10 != 0 {
		sig.GenericParamCount, err = r.compressedUint()
		if err != nil {
			return nil, err
		}
	}
	paramCount, err := r.compressedUint()
	if err != nil {
		return nil, err
	}
	sig.ReturnType, err = r.decodeRetOrParamType()
	if err != nil {
		return nil, err
	}
	sig.Params = make([]TypeSig, 0, paramCount)
	afterSentinel := false
	for uint32(len(sig.Params)+len(sig.VarArgParams)) < paramCount {
		if b, ok := r.peek(); ok && b == elemSentinel {
			r.pos++
			afterSentinel = true
			continue
		}
		t, err := r.decodeRetOrParamType()
		if err != nil {
			return nil, err
		}
		if afterSentinel {
			sig.VarArgParams = append(sig.VarArgParams, t)
		} else {
			sig.Params = append(sig.Params, t)
		}
	}
	return sig, nil
}

// decodeRetOrParamType handles the TYPEDBYREF/VOID/BYREF special
// cases that a return or parameter type may take in addition to a
// plain Type (ECMA-335 §II.23.2.11/12).
func (r *sigReader) decodeRetOrParamType() (TypeSig, error) {
	mods, err := r.customMods()
	if err != nil {
		return TypeSig{}, err
	}
	b, ok := r.peek()
	if ok && b == elemByRef {
		r.pos++
		inner, err := r.decodeType()
		if err != nil {
			return TypeSig{}, err
		}
		return TypeSig{Kind: SigByRef, CustomMods: mods, Element: &inner}, nil
	}
	t, err := r.decodeType()
	if err != nil {
		return TypeSig{}, err
	}
	t.CustomMods = append(mods, t.CustomMods...)
	return t, nil
}

// DecodeMethodSig decodes blob as a MethodDefSig/MethodRefSig.
func DecodeMethodSig(blob Blob) (*MethodSig, error) {
	r := &sigReader{b: blob}
	return r.decodeMethodSig()
}

// DecodeFieldSig decodes blob as a FieldSig: the 0x06 field marker,
// optional custom mods, then a type (spec.md §4.2).
func DecodeFieldSig(blob Blob) (*FieldSig, error) {
	r := &sigReader{b: blob}
	marker, err := r.byte()
	if err != nil {
		return nil, err
	}
	if marker != 0x06 {
		return nil, errf(Corrupt, "field signature missing 0x06 marker, got 0x%02x", marker)
	}
	mods, err := r.customMods()
	if err != nil {
		return nil, err
	}
	t, err := r.decodeType()
	if err != nil {
		return nil, err
	}
	return &FieldSig{CustomMods: mods, Type: t}, nil
}

// DecodePropertySig decodes blob as a PropertySig: a 0x08 (or
// 0x08|HASTHIS) marker, param count, type, then parameter types.
func DecodePropertySig(blob Blob) (*PropertySig, error) {
	r := &sigReader{b: blob}
	marker, err := r.byte()
	if err != nil {
		return nil, err
	}
	if marker&0x0F != 0x08 {
		return nil, errf(Corrupt, "property signature missing 0x08 marker, got 0x%02x", marker)
	}
	paramCount, err := r.compressedUint()
	if err != nil {
		return nil, err
	}
	typ, err := r.decodeRetOrParamType()
	if err != nil {
		return nil, err
	}
	params := make([]TypeSig, paramCount)
	for i := range params {
		if params[i], err = r.decodeRetOrParamType(); err != nil {
			return nil, err
		}
	}
	return &PropertySig{HasThis: marker&0x20 != 0, Params: params, Type: typ}, nil
}

// DecodeLocalVarSig decodes blob as a LocalVarSig: a 0x07 marker,
// local count, then that many (custom-mod*, [PINNED], [BYREF], type)
// entries.
func DecodeLocalVarSig(blob Blob) (*LocalVarSig, error) {
	r := &sigReader{b: blob}
	marker, err := r.byte()
	if err != nil {
		return nil, err
	}
	if marker != 0x07 {
		return nil, errf(Corrupt, "local variable signature missing 0x07 marker, got 0x%02x", marker)
	}
	count, err := r.compressedUint()
	if err != nil {
		return nil, err
	}
	locals := make([]LocalVar, count)
	for i := range locals {
		mods, err := r.customMods()
		if err != nil {
			return nil, err
		}
		lv := LocalVar{CustomMods: mods}
		if b, ok := r.peek(); ok && b == elemPinned {
			r.pos++
			lv.Pinned = true
		}
		if b, ok := r.peek(); ok && b == elemByRef {
			r.pos++
			lv.ByRef = true
		}
		lv.Type, err = r.decodeType()
		if err != nil {
			return nil, err
		}
		locals[i] = lv
	}
	return &LocalVarSig{Locals: locals}, nil
}

// DecodeTypeSpec decodes a TypeSpec row's signature blob to the Type
// it describes.
func DecodeTypeSpec(blob Blob) (*TypeSig, error) {
	r := &sigReader{b: blob}
	t, err := r.decodeType()
	if err != nil {
		return nil, err
	}
	return &t, nil
}
