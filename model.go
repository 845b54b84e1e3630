// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zipstream

package zipstream

import (
	"io"
	"time"

	"github.com/woozymasta/pathrules"
)

// Fixed record sizes shared by the writer and the size predictor.
const (
	localHeaderLen     = 30 // local file header before the name
	dataDescriptorLen  = 16 // data descriptor, signature included
	centralHeaderLen   = 46 // central directory header before the name
	endOfCentralDirLen = 22 // end of central directory record
)

// Record signatures, written little-endian.
const (
	localHeaderSignature     = 0x04034b50
	dataDescriptorSignature  = 0x08074b50
	centralHeaderSignature   = 0x02014b50
	endOfCentralDirSignature = 0x06054b50
)

// Fixed field values for stored streaming entries.
const (
	versionNeeded      = 20     // 2.0, required for the data descriptor
	versionMadeBy      = 0x031e // high byte 3 marks Unix attributes, low byte appnote 3.0
	flagDataDescriptor = 0x0008 // bit 3: CRC and sizes follow in the descriptor
	methodStored       = 0
	// externalAttrRegularFile is a regular file with rw-r--r-- in the Unix high bits.
	externalAttrRegularFile = (0o100000 | 0o644) << 16
)

// Limits of the classic (non-ZIP64) format fields.
const (
	maxNameLen    = 0xffff     // 16-bit name length field
	maxEntryCount = 0xffff     // 16-bit directory count field
	maxUint32     = 0xffffffff // 32-bit size and offset fields
	minDOSYear    = 1980       // 7-bit year field base
	maxDOSYear    = 2107       // 7-bit year field ceiling
)

// Default packer tuning values.
const (
	DefaultWriteBuffer = 256 * 1024
)

// EntryInfo describes one written archive entry. Append returns it and the
// pack flow passes it to OnEntryDone.
type EntryInfo struct {
	// Name is the entry name as written to the archive.
	Name string `json:"name" yaml:"name"`
	// Offset is the byte offset of the entry local header in the output stream.
	Offset uint32 `json:"offset" yaml:"offset"`
	// Size is the stored payload size in bytes; no compression is applied, so
	// compressed and uncompressed sizes are equal.
	Size uint32 `json:"size" yaml:"size"`
	// CRC32 is the IEEE CRC-32 of the payload.
	CRC32 uint32 `json:"crc32" yaml:"crc32"`
	// ModifiedDate is the MS-DOS date code written to headers.
	ModifiedDate uint16 `json:"modified_date,omitempty" yaml:"modified_date,omitempty"`
	// ModifiedTime is the MS-DOS time code written to headers.
	ModifiedTime uint16 `json:"modified_time,omitempty" yaml:"modified_time,omitempty"`
}

// EntrySize is one (name, content length) pair for size prediction.
type EntrySize struct {
	// Name is the entry name as it would be appended.
	Name string `json:"name" yaml:"name"`
	// Size is the content length in bytes.
	Size int64 `json:"size" yaml:"size"`
}

// Input describes one source stream to be packed into an archive entry.
type Input struct {
	// ModTime is optional entry timestamp.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	// Open returns raw source stream for this entry.
	Open func() (io.ReadCloser, error) `json:"-" yaml:"-"`
	// Path is destination path inside the archive.
	Path string `json:"path" yaml:"path"`
	// SizeHint is expected size in bytes (zero when unknown).
	SizeHint int64 `json:"size_hint,omitempty" yaml:"size_hint,omitempty"`
}

// PackOptions configures pack behavior.
type PackOptions struct {
	// OnEntryDone is called after one entry and its descriptor are fully written.
	OnEntryDone func(entry EntryInfo) `json:"-" yaml:"-"`
	// Rules are ordered path rules selecting which inputs become entries.
	// An empty rule set selects every input.
	Rules []pathrules.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
	// RuleMatcherOptions control entry selection rule matching.
	RuleMatcherOptions pathrules.MatcherOptions `json:"rule_matcher_options,omitzero" yaml:"rule_matcher_options,omitzero"`
	// WriterBufferSize is buffered writer size in bytes.
	WriterBufferSize int `json:"writer_buffer_size,omitempty" yaml:"writer_buffer_size,omitempty"`
}

// PackResult contains pack output statistics.
type PackResult struct {
	// WrittenEntries is number of entries written to the archive.
	WrittenEntries int `json:"written_entries" yaml:"written_entries"`
	// SkippedEntries is number of inputs excluded by selection rules.
	SkippedEntries int `json:"skipped_entries,omitempty" yaml:"skipped_entries,omitempty"`
	// DataBytes is total payload bytes written across entries.
	DataBytes int64 `json:"data_bytes" yaml:"data_bytes"`
	// CentralDirSize is total central directory bytes written at finalize.
	CentralDirSize int64 `json:"central_dir_size" yaml:"central_dir_size"`
	// ArchiveSize is total archive bytes written, end record included.
	ArchiveSize int64 `json:"archive_size" yaml:"archive_size"`
	// Duration is end-to-end pack duration.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// applyDefaults fills zero-valued pack options with defaults.
func (opts *PackOptions) applyDefaults() {
	if opts.WriterBufferSize < 4096 {
		opts.WriterBufferSize = DefaultWriteBuffer
	}

	if opts.RuleMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.RuleMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionInclude,
		}
	}

	if opts.RuleMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.RuleMatcherOptions.DefaultAction = pathrules.ActionInclude
	}
}
