// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peloader

import (
	"testing"
)

func TestIsDLL(t *testing.T) {
	data := buildPE32(t, []byte("BSJB"))

	file, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	if err := file.Parse(); err != nil {
		t.Fatalf("Parse failed, reason: %v", err)
	}

	if file.IsDLL() {
		t.Errorf("IsDLL() got true for an image without the DLL characteristic")
	}

	file.NtHeader.FileHeader.Characteristics |= ImageFileDLL
	if !file.IsDLL() {
		t.Errorf("IsDLL() got false after setting the DLL characteristic")
	}
}

func TestIsBitSet(t *testing.T) {
	tests := []struct {
		n   uint64
		pos int
		out bool
	}{
		{0b0001, 0, true},
		{0b0001, 1, false},
		{0b1000, 3, true},
	}

	for _, tt := range tests {
		if got := IsBitSet(tt.n, tt.pos); got != tt.out {
			t.Errorf("IsBitSet(%b, %d) got %v, want %v", tt.n, tt.pos, got, tt.out)
		}
	}
}
