// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peloader

import "testing"

func TestParseNTHeader(t *testing.T) {
	data := buildPE32(t, []byte("BSJB"))

	file, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	if err := file.Parse(); err != nil {
		t.Fatalf("Parse failed, reason: %v", err)
	}

	if file.NtHeader.Signature != ImageNTSignature {
		t.Errorf("NT signature got %#x, want %#x", file.NtHeader.Signature, ImageNTSignature)
	}
	if file.NtHeader.FileHeader.Machine != ImageFileMachineI386 {
		t.Errorf("machine got %#x, want %#x", file.NtHeader.FileHeader.Machine, ImageFileMachineI386)
	}
	if file.Is64 {
		t.Errorf("Is64 got true, want false for a PE32 image")
	}

	oh, ok := file.NtHeader.OptionalHeader.(ImageOptionalHeader32)
	if !ok {
		t.Fatalf("OptionalHeader got %T, want ImageOptionalHeader32", file.NtHeader.OptionalHeader)
	}
	if oh.Magic != ImageNtOptionalHeader32Magic {
		t.Errorf("optional header magic got %#x, want %#x", oh.Magic, ImageNtOptionalHeader32Magic)
	}
}
