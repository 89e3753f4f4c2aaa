// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peloader

import (
	"bytes"
	"testing"
)

func TestParseSectionHeaders(t *testing.T) {
	rawData := bytes.Repeat([]byte{0xAA, 0x00, 0x55, 0xFF}, 128)
	characteristics := uint32(ImageScnCntInitializedData | ImageScnMemRead)
	data := buildPE32WithSection(t, ".text", characteristics, rawData)

	file, err := NewBytes(data, &Options{})
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	if err := file.Parse(); err != nil {
		t.Fatalf("Parse failed, reason: %v", err)
	}

	sections := file.Sections
	if len(sections) != 1 {
		t.Fatalf("sections count got %d, want 1", len(sections))
	}

	section := sections[0]
	if name := section.String(); name != ".text" {
		t.Errorf("section name got %q, want %q", name, ".text")
	}
	if section.Header.Characteristics != characteristics {
		t.Errorf("section characteristics got %#x, want %#x", section.Header.Characteristics, characteristics)
	}

	if !section.Contains(section.Header.VirtualAddress, file) {
		t.Errorf("Contains(%#x) got false, want true", section.Header.VirtualAddress)
	}

	got := section.Data(0, 0, file)
	if !bytes.Equal(got, rawData) {
		t.Errorf("Data got %d bytes, want %d", len(got), len(rawData))
	}
}
