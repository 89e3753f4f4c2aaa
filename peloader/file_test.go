// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peloader

import (
	"os"
	"testing"
)

func TestNewBytesThenParse(t *testing.T) {
	data := buildPE32(t, []byte("BSJB"))

	file, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}

	if err := file.Parse(); err != nil {
		t.Fatalf("Parse failed, reason: %v", err)
	}

	if !file.HasDOSHdr || !file.HasNTHdr || !file.HasSections {
		t.Errorf("expected all header flags set, got %+v", file.FileInfo)
	}
}

func TestNew(t *testing.T) {
	data := buildPE32(t, []byte("BSJB"))

	tmp, err := os.CreateTemp("", "synthetic-*.dll")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmp.Close()

	file, err := New(tmp.Name(), nil)
	if err != nil {
		t.Fatalf("New failed, reason: %v", err)
	}
	defer file.Close()

	if err := file.Parse(); err != nil {
		t.Fatalf("Parse failed, reason: %v", err)
	}
}

func TestChecksumDiffersWithContent(t *testing.T) {
	a, err := NewBytes(buildPE32(t, []byte("BSJB")), nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	if err := a.Parse(); err != nil {
		t.Fatalf("Parse failed, reason: %v", err)
	}

	b, err := NewBytes(buildPE32(t, []byte("BSJBextra")), nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	if err := b.Parse(); err != nil {
		t.Fatalf("Parse failed, reason: %v", err)
	}

	if a.Checksum() == b.Checksum() {
		t.Errorf("expected different checksums for differently-sized images, got %d for both", a.Checksum())
	}
}
