// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zipstream

package zipstream

import "errors"

// Sentinel errors for archive write operations. Use errors.Is in callers.
var (
	// ErrNameTooLong means the entry name does not fit the 16-bit length field.
	ErrNameTooLong = errors.New("entry name exceeds 16-bit length field")
	// ErrTooManyEntries means the entry count does not fit the 16-bit directory count field.
	ErrTooManyEntries = errors.New("entry count exceeds 16-bit directory count field")
	// ErrDateTimeOutOfRange means the timestamp is outside the MS-DOS representable range.
	ErrDateTimeOutOfRange = errors.New("timestamp outside MS-DOS representable range")
	// ErrSizeOverflow means a size or offset exceeds the 32-bit classic format limit.
	ErrSizeOverflow = errors.New("size or offset exceeds 32-bit classic format limit")
	// ErrArchiveFinalized means the archive already wrote its end record.
	ErrArchiveFinalized = errors.New("archive already finalized")
	// ErrArchiveUnusable means a previous fatal error left the archive unusable.
	ErrArchiveUnusable = errors.New("archive unusable after previous error")
	// ErrNilWriter means the sink is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrNilReader means the content source is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrEmptyInputs means no inputs provided for pack.
	ErrEmptyInputs = errors.New("no inputs provided for pack")
	// ErrInvalidEntryPath means one of input entry paths is empty or invalid after normalization.
	ErrInvalidEntryPath = errors.New("invalid entry path")
	// ErrDuplicateEntryPath means two inputs resolve to the same path (case-insensitive).
	ErrDuplicateEntryPath = errors.New("duplicate entry path")
	// ErrInvalidRulePattern means one or more entry selection rules are invalid.
	ErrInvalidRulePattern = errors.New("invalid entry selection rules")
	// ErrMissingSizeHint means an input has no usable size hint for prediction.
	ErrMissingSizeHint = errors.New("input size hint is missing")
)
