// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peloader

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/saferwall/clrmeta/log"
)

// A File represents an open PE/COFF file, parsed only as far as locating
// its CLR (.NET) data directory. It exists to deliver a byte range
// containing the CLI metadata root to clrmeta.NewDatabase; it performs
// none of the metadata-table or signature parsing that is clrmeta's job.
type File struct {
	DOSHeader ImageDOSHeader `json:"dos_header,omitempty"`
	NtHeader  ImageNtHeader  `json:"nt_header,omitempty"`
	Sections  []Section      `json:"sections,omitempty"`
	CLR       CLRData        `json:"clr,omitempty"`
	Header    []byte
	data      mmap.MMap
	FileInfo
	size          uint32
	f             *os.File
	opts          *Options
	logger        *log.Helper
	OverlayOffset int64
	Anomalies     []string
}

// Options for Parsing.
type Options struct {

	// Parse only the DOS/NT/section headers and do not locate the CLR
	// data directory, by default (false).
	Fast bool

	// A custom logger.
	Logger log.Logger
}

func newLogger(opts *Options) *log.Helper {
	if opts.Logger == nil {
		stdLogger := log.NewStdLogger(os.Stdout)
		return log.NewHelper(log.NewFilter(stdLogger, log.FilterLevel(log.LevelError)))
	}
	return log.NewHelper(opts.Logger)
}

// New instantiates a file instance with options given a file name.
func New(name string, opts *Options) (*File, error) {

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	// Memory map the file instead of using read/write.
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}
	file.logger = newLogger(file.opts)

	file.data = data
	file.size = uint32(len(file.data))
	file.f = f
	return &file, nil
}

// NewBytes instantiates a file instance with options given a memory buffer.
func NewBytes(data []byte, opts *Options) (*File, error) {

	file := File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}
	file.logger = newLogger(file.opts)

	file.data = data
	file.size = uint32(len(file.data))
	return &file, nil
}

// Close closes the File.
func (pe *File) Close() error {
	if pe.data != nil {
		_ = pe.data.Unmap()
	}

	if pe.f != nil {
		return pe.f.Close()
	}
	return nil
}

// Parse performs just enough PE parsing to locate the CLR data directory.
func (pe *File) Parse() error {

	// check for the smallest PE size.
	if len(pe.data) < TinyPESize {
		return ErrInvalidPESize
	}

	// Parse the DOS header.
	err := pe.ParseDOSHeader()
	if err != nil {
		return err
	}

	// Parse the NT header.
	err = pe.ParseNTHeader()
	if err != nil {
		return err
	}

	// Parse the Section Header.
	err = pe.ParseSectionHeader()
	if err != nil {
		return err
	}

	if pe.opts.Fast {
		return nil
	}

	// Locate the CLR data directory, if any.
	return pe.parseCLRDataDirectory()
}

// String stringifies the data directory entry.
func (entry ImageDirectoryEntry) String() string {
	dataDirMap := map[ImageDirectoryEntry]string{
		ImageDirectoryEntryCLR:      "CLR",
		ImageDirectoryEntryReserved: "Reserved",
	}

	return dataDirMap[entry]
}

// parseCLRDataDirectory finds the CLR (.NET) data directory entry and
// delegates to parseCLRHeaderDirectory to read the COR20 header and
// slice out the metadata root.
func (pe *File) parseCLRDataDirectory() error {

	oh32 := ImageOptionalHeader32{}
	oh64 := ImageOptionalHeader64{}

	switch pe.Is64 {
	case true:
		oh64 = pe.NtHeader.OptionalHeader.(ImageOptionalHeader64)
	case false:
		oh32 = pe.NtHeader.OptionalHeader.(ImageOptionalHeader32)
	}

	var va, size uint32
	switch pe.Is64 {
	case true:
		dirEntry := oh64.DataDirectory[ImageDirectoryEntryCLR]
		va, size = dirEntry.VirtualAddress, dirEntry.Size
	case false:
		dirEntry := oh32.DataDirectory[ImageDirectoryEntryCLR]
		va, size = dirEntry.VirtualAddress, dirEntry.Size
	}

	if va == 0 {
		return nil
	}

	if err := pe.parseCLRHeaderDirectory(va, size); err != nil {
		pe.logger.Warnf("failed to parse CLR data directory, reason: %v", err)
		return err
	}
	return nil
}
