// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peloader

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"
)

func TestParseCLRHeaderDirectoryWithMetadataRoot(t *testing.T) {
	root := append([]byte("BSJB"), bytes.Repeat([]byte{0}, 12)...)
	data := buildPE32(t, root)

	f, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}

	if err := f.Parse(); err != nil {
		t.Fatalf("Parse failed, reason: %v", err)
	}

	wantCb := uint32(binary.Size(ImageCOR20Header{}))
	if f.CLR.CLRHeader.Cb != wantCb {
		t.Errorf("CLRHeader.Cb got %d, want %d", f.CLR.CLRHeader.Cb, wantCb)
	}
	if f.CLR.CLRHeader.MajorRuntimeVersion != 2 || f.CLR.CLRHeader.MinorRuntimeVersion != 5 {
		t.Errorf("unexpected runtime version: %+v", f.CLR.CLRHeader)
	}
	if !reflect.DeepEqual(f.CLR.MetadataRoot, root) {
		t.Errorf("MetadataRoot got %v, want %v", f.CLR.MetadataRoot, root)
	}
}

func TestParseCLRHeaderDirectoryWithoutMetadataRoot(t *testing.T) {
	data := buildPE32(t, nil)

	f, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}

	if err := f.Parse(); err != nil {
		t.Fatalf("Parse failed, reason: %v", err)
	}

	if f.CLR.MetadataRoot != nil {
		t.Errorf("MetadataRoot got %v, want nil", f.CLR.MetadataRoot)
	}
}

func TestCOMImageFlagsString(t *testing.T) {
	flags := COMImageFlagsType(COMImageFlagsILOnly | COMImageFlagsStrongNameSigned)
	got := flags.String()

	want := map[string]bool{"IL Only": true, "Strong Name Signed": true}
	if len(got) != len(want) {
		t.Fatalf("COMImageFlagsType.String() got %v, want keys %v", got, want)
	}
	for _, v := range got {
		if !want[v] {
			t.Errorf("unexpected flag string %q in %v", v, got)
		}
	}
}
