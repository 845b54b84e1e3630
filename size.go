// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zipstream

package zipstream

import "fmt"

// ArchiveSize returns the exact byte length of an archive holding the given
// entries: per entry the local header, the stored content, the data
// descriptor and the central directory record, plus the end record. No I/O
// is performed, so it is safe to call before any writer exists, typically to
// set a Content-Length header ahead of streaming. The result equals the
// total Finalize reports for the same names and content lengths.
func ArchiveSize(entries []EntrySize) int64 {
	var total int64
	for _, e := range entries {
		total += localHeaderLen + int64(len(e.Name)) + e.Size + dataDescriptorLen
		total += centralHeaderLen + int64(len(e.Name))
	}

	return total + endOfCentralDirLen
}

// PackArchiveSize returns the exact archive size Pack would produce for the
// given inputs and options, applying the same path normalization, duplicate
// validation, and selection rules. Every selected input must carry a
// positive SizeHint; a zero hint is treated as unknown and rejected, so
// inputs of known zero size need ArchiveSize with explicit pairs instead.
func PackArchiveSize(inputs []Input, opts PackOptions) (int64, error) {
	opts.applyDefaults()

	plan, err := preparePackPlan(inputs, opts)
	if err != nil {
		return 0, err
	}

	entries := make([]EntrySize, 0, len(plan.inputs))
	for i := range plan.inputs {
		in := &plan.inputs[i]
		if in.SizeHint <= 0 {
			return 0, fmt.Errorf("%w: input %s", ErrMissingSizeHint, in.Path)
		}

		entries = append(entries, EntrySize{Name: in.Path, Size: in.SizeHint})
	}

	return ArchiveSize(entries), nil
}
