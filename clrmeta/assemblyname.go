// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package clrmeta

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// assemblyFlagPublicKey is the AssemblyFlags bit (ECMA-335 §II.23.1.2)
// saying the Assembly/AssemblyRef row's key blob is a full public key
// rather than an 8-byte token.
const assemblyFlagPublicKey = 0x0001

// AssemblyName is the parsed identity of an assembly or assembly
// reference: simple name, version, culture and public-key token
// (spec.md §3). The zero value is the anonymous, version-0, neutral,
// unsigned name.
type AssemblyName struct {
	Name           string
	Version        Version
	Culture        string
	PublicKeyToken [8]byte
	Flags          uint32
}

// publicKeyToken derives the 8-byte token from a PublicKey/PublicKeyOrToken
// blob and the owning row's flags, per spec.md §4.4:
//   - PublicKey flag set: token = last 8 bytes of SHA-1(blob), reversed.
//   - flag clear, blob empty: token is all-zero.
//   - flag clear, blob exactly 8 bytes: token is the blob, verbatim.
//   - any other size is an error.
func publicKeyToken(flags uint32, blob Blob) ([8]byte, error) {
	var token [8]byte
	if flags&assemblyFlagPublicKey != 0 {
		sum := sha1.Sum(blob)
		for i := 0; i < 8; i++ {
			token[i] = sum[19-i]
		}
		return token, nil
	}
	switch len(blob) {
	case 0:
		return token, nil
	case 8:
		copy(token[:], blob)
		return token, nil
	default:
		return token, errf(InvalidArgument, "public key/token blob has unexpected length %d (want 0 or 8 when unsigned)", len(blob))
	}
}

// assemblyNameFromAssemblyRow builds an AssemblyName from the
// single-row Assembly table (the defining assembly's own identity).
func assemblyNameFromAssemblyRow(db *Database, row Row) (AssemblyName, error) {
	flags := row.Uint32(colAssemblyFlags)
	name, err := row.String(colAssemblyName)
	if err != nil {
		return AssemblyName{}, err
	}
	culture, err := row.String(colAssemblyCulture)
	if err != nil {
		return AssemblyName{}, err
	}
	keyBlob, err := row.Blob(colAssemblyPublicKey)
	if err != nil {
		return AssemblyName{}, err
	}
	token, err := publicKeyToken(flags, keyBlob)
	if err != nil {
		return AssemblyName{}, err
	}
	return AssemblyName{
		Name:    name,
		Culture: culture,
		Flags:   flags,
		Version: Version{
			Major:    row.Uint16(colAssemblyMajorVersion),
			Minor:    row.Uint16(colAssemblyMinorVersion),
			Build:    row.Uint16(colAssemblyBuildNumber),
			Revision: row.Uint16(colAssemblyRevisionNumber),
		},
		PublicKeyToken: token,
	}, nil
}

// assemblyNameFromAssemblyRefRow builds an AssemblyName from an
// AssemblyRef row naming a dependency of db's assembly.
func assemblyNameFromAssemblyRefRow(db *Database, row Row) (AssemblyName, error) {
	flags := row.Uint32(colAssemblyRefFlags)
	name, err := row.String(colAssemblyRefName)
	if err != nil {
		return AssemblyName{}, err
	}
	culture, err := row.String(colAssemblyRefCulture)
	if err != nil {
		return AssemblyName{}, err
	}
	keyBlob, err := row.Blob(colAssemblyRefPublicKeyOrToken)
	if err != nil {
		return AssemblyName{}, err
	}
	token, err := publicKeyToken(flags, keyBlob)
	if err != nil {
		return AssemblyName{}, err
	}
	return AssemblyName{
		Name:    name,
		Culture: culture,
		Flags:   flags,
		Version: Version{
			Major:    row.Uint16(colAssemblyRefMajorVersion),
			Minor:    row.Uint16(colAssemblyRefMinorVersion),
			Build:    row.Uint16(colAssemblyRefBuildNumber),
			Revision: row.Uint16(colAssemblyRefRevisionNumber),
		},
		PublicKeyToken: token,
	}, nil
}

// hasPublicKeyToken reports whether n carries a non-null token.
func (n AssemblyName) hasPublicKeyToken() bool {
	for _, b := range n.PublicKeyToken {
		if b != 0 {
			return true
		}
	}
	return false
}

// FullName renders n in the canonical
// "Name, Version=M.m.b.r, Culture=c, PublicKeyToken=hex" form
// (spec.md §4.4), the inverse of ParseAssemblyName.
func (n AssemblyName) FullName() string {
	culture := n.Culture
	if culture == "" {
		culture = "neutral"
	}
	token := "null"
	if n.hasPublicKeyToken() {
		token = hex.EncodeToString(n.PublicKeyToken[:])
	}
	return fmt.Sprintf("%s, Version=%s, Culture=%s, PublicKeyToken=%s", n.Name, n.Version, culture, token)
}

// String is an alias for FullName so an AssemblyName prints naturally
// in logs and format strings.
func (n AssemblyName) String() string { return n.FullName() }

// ParseAssemblyName parses the inverse of FullName: a simple name
// followed by comma-separated Key=Value terms in any order, tolerant
// of surrounding whitespace (spec.md §4.4).
func ParseAssemblyName(s string) (AssemblyName, error) {
	parts := strings.Split(s, ",")
	if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
		return AssemblyName{}, errf(InvalidArgument, "assembly name %q has no simple name", s)
	}
	name := AssemblyName{Name: strings.TrimSpace(parts[0])}
	for _, term := range parts[1:] {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		kv := strings.SplitN(term, "=", 2)
		if len(kv) != 2 {
			return AssemblyName{}, errf(InvalidArgument, "assembly name %q has unparsable term %q", s, term)
		}
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		value := strings.TrimSpace(kv[1])
		switch key {
		case "version":
			v, err := parseVersion(value)
			if err != nil {
				return AssemblyName{}, errf(InvalidArgument, "assembly name %q has invalid Version %q: %v", s, value, err)
			}
			name.Version = v
		case "culture":
			if strings.EqualFold(value, "neutral") {
				name.Culture = ""
			} else {
				name.Culture = value
			}
		case "publickeytoken":
			if strings.EqualFold(value, "null") {
				name.PublicKeyToken = [8]byte{}
				continue
			}
			raw, err := hex.DecodeString(value)
			if err != nil || len(raw) != 8 {
				return AssemblyName{}, errf(InvalidArgument, "assembly name %q has invalid PublicKeyToken %q", s, value)
			}
			copy(name.PublicKeyToken[:], raw)
		default:
			return AssemblyName{}, errf(InvalidArgument, "assembly name %q has unknown term %q", s, key)
		}
	}
	return name, nil
}

func parseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return Version{}, fmt.Errorf("want 4 dot-separated components, got %d", len(parts))
	}
	var nums [4]uint16
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 16)
		if err != nil {
			return Version{}, err
		}
		nums[i] = uint16(n)
	}
	return Version{Major: nums[0], Minor: nums[1], Build: nums[2], Revision: nums[3]}, nil
}
