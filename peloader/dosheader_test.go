// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peloader

import (
	"testing"
)

func TestParseDOSHeader(t *testing.T) {
	data := buildPE32(t, []byte("BSJB"))

	ops := Options{Fast: true}
	file, err := NewBytes(data, &ops)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}

	if err := file.ParseDOSHeader(); err != nil {
		t.Fatalf("ParseDOSHeader failed, reason: %v", err)
	}

	got := file.DOSHeader
	if got.Magic != ImageDOSSignature {
		t.Errorf("DOSHeader.Magic got %#x, want %#x", got.Magic, ImageDOSSignature)
	}
	if got.AddressOfNewEXEHeader != 64 {
		t.Errorf("DOSHeader.AddressOfNewEXEHeader got %d, want 64", got.AddressOfNewEXEHeader)
	}
}

func TestParseDOSHeaderRejectsBadMagic(t *testing.T) {
	data := buildPE32(t, []byte("BSJB"))
	data[0] = 'X'
	data[1] = 'Y'

	file, err := NewBytes(data, &Options{Fast: true})
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}

	if err := file.ParseDOSHeader(); err != ErrDOSMagicNotFound {
		t.Errorf("ParseDOSHeader got %v, want %v", err, ErrDOSMagicNotFound)
	}
}

func TestParseDOSHeaderOverlapAnomaly(t *testing.T) {
	data := buildPE32(t, []byte("BSJB"))

	file, err := NewBytes(data, &Options{Fast: true})
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	// ParseDOSHeader reads straight from the buffer; overwrite e_lfanew so
	// it still satisfies >= 4 but now overlaps the DOS header (<= 0x3c).
	data[0x3c] = 0x04
	data[0x3d] = 0x00
	data[0x3e] = 0x00
	data[0x3f] = 0x00

	if err := file.ParseDOSHeader(); err != nil {
		t.Fatalf("ParseDOSHeader failed, reason: %v", err)
	}
	if len(file.Anomalies) != 1 || file.Anomalies[0] != AnoPEHeaderOverlapDOSHeader {
		t.Errorf("Anomalies got %v, want [%s]", file.Anomalies, AnoPEHeaderOverlapDOSHeader)
	}
}
