// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peloader

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildPE32 assembles a minimal, section-less 32-bit PE image in memory: a
// DOS header, an NT header with one data directory pointed at a COR20
// header, and the COR20 header itself. When metadataRoot is non-empty, the
// COR20 header's MetaData directory points at it, placed right after the
// COR20 header bytes. No section table exists, so GetOffsetFromRva treats
// every RVA below the file size as its own file offset.
func buildPE32(t *testing.T, metadataRoot []byte) []byte {
	t.Helper()

	var buf bytes.Buffer

	dos := ImageDOSHeader{
		Magic:                 ImageDOSSignature,
		AddressOfNewEXEHeader: 64,
	}
	if err := binary.Write(&buf, binary.LittleEndian, dos); err != nil {
		t.Fatalf("failed to write DOS header: %v", err)
	}

	fileHeader := ImageFileHeader{
		Machine:              ImageFileMachineI386,
		NumberOfSections:     0,
		SizeOfOptionalHeader: uint16(binary.Size(ImageOptionalHeader32{})),
		Characteristics:      ImageFileExecutableImage,
	}

	corHeaderSize := uint32(binary.Size(ImageCOR20Header{}))
	headerLen := uint32(buf.Len()) + 4 + uint32(binary.Size(fileHeader)) + uint32(binary.Size(ImageOptionalHeader32{}))
	corHeaderOffset := headerLen
	metadataOffset := corHeaderOffset + corHeaderSize

	optHeader := ImageOptionalHeader32{
		Magic:               ImageNtOptionalHeader32Magic,
		ImageBase:           0x00400000,
		SectionAlignment:    0x1000,
		FileAlignment:       0x200,
		SizeOfImage:         metadataOffset + uint32(len(metadataRoot)),
		SizeOfHeaders:       headerLen,
		NumberOfRvaAndSizes: 16,
	}
	optHeader.DataDirectory[ImageDirectoryEntryCLR] = DataDirectory{
		VirtualAddress: corHeaderOffset,
		Size:           corHeaderSize,
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(ImageNTSignature)); err != nil {
		t.Fatalf("failed to write NT signature: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, fileHeader); err != nil {
		t.Fatalf("failed to write file header: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, optHeader); err != nil {
		t.Fatalf("failed to write optional header: %v", err)
	}

	corHeader := ImageCOR20Header{
		Cb:                  corHeaderSize,
		MajorRuntimeVersion: 2,
		MinorRuntimeVersion: 5,
	}
	if len(metadataRoot) > 0 {
		corHeader.MetaData = ImageDataDirectory{
			VirtualAddress: metadataOffset,
			Size:           uint32(len(metadataRoot)),
		}
	}
	if err := binary.Write(&buf, binary.LittleEndian, corHeader); err != nil {
		t.Fatalf("failed to write COR20 header: %v", err)
	}

	buf.Write(metadataRoot)

	return buf.Bytes()
}

// buildPE32WithSection assembles a minimal 32-bit PE image carrying a
// single named section with the given characteristics and raw data, file-
// and section-aligned the way a real linker would emit them.
func buildPE32WithSection(t *testing.T, name string, characteristics uint32, rawData []byte) []byte {
	t.Helper()

	const fileAlignment = 0x200
	const sectionAlignment = 0x1000

	var buf bytes.Buffer

	dos := ImageDOSHeader{
		Magic:                 ImageDOSSignature,
		AddressOfNewEXEHeader: 64,
	}
	if err := binary.Write(&buf, binary.LittleEndian, dos); err != nil {
		t.Fatalf("failed to write DOS header: %v", err)
	}

	fileHeader := ImageFileHeader{
		Machine:              ImageFileMachineI386,
		NumberOfSections:     1,
		SizeOfOptionalHeader: uint16(binary.Size(ImageOptionalHeader32{})),
		Characteristics:      ImageFileExecutableImage,
	}

	secHeaderSize := uint32(binary.Size(ImageSectionHeader{}))
	preSectionDataLen := uint32(buf.Len()) + 4 + uint32(binary.Size(fileHeader)) +
		uint32(binary.Size(ImageOptionalHeader32{})) + secHeaderSize
	pointerToRawData := ((preSectionDataLen + fileAlignment - 1) / fileAlignment) * fileAlignment

	optHeader := ImageOptionalHeader32{
		Magic:               ImageNtOptionalHeader32Magic,
		ImageBase:           0x00400000,
		SectionAlignment:    sectionAlignment,
		FileAlignment:       fileAlignment,
		SizeOfImage:         pointerToRawData + uint32(len(rawData)),
		SizeOfHeaders:       preSectionDataLen,
		NumberOfRvaAndSizes: 16,
	}

	var secName [8]uint8
	copy(secName[:], name)

	secHeader := ImageSectionHeader{
		Name:             secName,
		VirtualSize:      uint32(len(rawData)),
		VirtualAddress:   sectionAlignment,
		SizeOfRawData:    uint32(len(rawData)),
		PointerToRawData: pointerToRawData,
		Characteristics:  characteristics,
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(ImageNTSignature)); err != nil {
		t.Fatalf("failed to write NT signature: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, fileHeader); err != nil {
		t.Fatalf("failed to write file header: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, optHeader); err != nil {
		t.Fatalf("failed to write optional header: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, secHeader); err != nil {
		t.Fatalf("failed to write section header: %v", err)
	}

	if pad := int(pointerToRawData) - buf.Len(); pad > 0 {
		buf.Write(make([]byte, pad))
	}
	buf.Write(rawData)

	return buf.Bytes()
}
