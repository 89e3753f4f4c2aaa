// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import (
	"crypto/sha1"
	"testing"
)

func TestPublicKeyTokenFromFullKeySHA1(t *testing.T) {
	key := []byte("a fake but long enough public key blob")
	sum := sha1.Sum(key)
	var want [8]byte
	for i := 0; i < 8; i++ {
		want[i] = sum[19-i]
	}
	got, err := publicKeyToken(assemblyFlagPublicKey, key)
	if err != nil {
		t.Fatalf("publicKeyToken failed: %v", err)
	}
	if got != want {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestPublicKeyTokenEmptyBlob(t *testing.T) {
	got, err := publicKeyToken(0, nil)
	if err != nil {
		t.Fatalf("publicKeyToken failed: %v", err)
	}
	if got != ([8]byte{}) {
		t.Errorf("got %x, want all-zero", got)
	}
}

func TestPublicKeyTokenDirect8Bytes(t *testing.T) {
	token := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	got, err := publicKeyToken(0, token[:])
	if err != nil {
		t.Fatalf("publicKeyToken failed: %v", err)
	}
	if got != token {
		t.Errorf("got %x, want %x", got, token)
	}
}

func TestPublicKeyTokenRejectsBadSize(t *testing.T) {
	if _, err := publicKeyToken(0, []byte{1, 2, 3}); !Is(err, InvalidArgument) {
		t.Fatalf("got %v, want InvalidArgument for a 3-byte unsigned token", err)
	}
}

func TestAssemblyNameFullNameRoundTrip(t *testing.T) {
	name := AssemblyName{
		Name:           "MyLib",
		Version:        Version{Major: 1, Minor: 2, Build: 3, Revision: 4},
		Culture:        "en-US",
		PublicKeyToken: [8]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04},
	}
	full := name.FullName()
	parsed, err := ParseAssemblyName(full)
	if err != nil {
		t.Fatalf("ParseAssemblyName failed: %v", err)
	}
	if parsed.Name != name.Name || parsed.Version != name.Version || parsed.Culture != name.Culture || parsed.PublicKeyToken != name.PublicKeyToken {
		t.Errorf("round trip got %+v, want %+v", parsed, name)
	}
}

func TestAssemblyNameFullNameNeutralCultureAndNullToken(t *testing.T) {
	name := AssemblyName{Name: "Anon", Version: Version{Major: 1}}
	full := name.FullName()
	if full != "Anon, Version=1.0.0.0, Culture=neutral, PublicKeyToken=null" {
		t.Errorf("got %q", full)
	}
	parsed, err := ParseAssemblyName(full)
	if err != nil {
		t.Fatalf("ParseAssemblyName failed: %v", err)
	}
	if parsed.Culture != "" || parsed.hasPublicKeyToken() {
		t.Errorf("got %+v, want neutral culture and no public key token", parsed)
	}
}

func TestParseAssemblyNameRejectsEmptySimpleName(t *testing.T) {
	if _, err := ParseAssemblyName(", Version=1.0.0.0"); !Is(err, InvalidArgument) {
		t.Fatalf("got %v, want InvalidArgument for a missing simple name", err)
	}
}

func TestParseAssemblyNameRejectsUnknownTerm(t *testing.T) {
	if _, err := ParseAssemblyName("Foo, Bogus=1"); !Is(err, InvalidArgument) {
		t.Fatalf("got %v, want InvalidArgument for an unrecognized term", err)
	}
}

func TestVersionString(t *testing.T) {
	v := Version{Major: 4, Minor: 0, Build: 30319, Revision: 1}
	if got := v.String(); got != "4.0.30319.1" {
		t.Errorf("got %q, want %q", got, "4.0.30319.1")
	}
}
