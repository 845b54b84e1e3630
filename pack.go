// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zipstream

package zipstream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// defaultPackWriterPool reuses default-sized bufio writers between Pack calls.
var defaultPackWriterPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(io.Discard, DefaultWriteBuffer)
	},
}

// acquirePackWriter returns a buffered writer and release callback for Pack.
func acquirePackWriter(out io.Writer, size int) (*bufio.Writer, func()) {
	if size == DefaultWriteBuffer {
		w := defaultPackWriterPool.Get().(*bufio.Writer) //nolint:forcetypeassert // pool contains only *bufio.Writer
		w.Reset(out)

		return w, func() {
			w.Reset(io.Discard)
			defaultPackWriterPool.Put(w)
		}
	}

	return bufio.NewWriterSize(out, size), func() {}
}

// packPlan is the normalized, rule-filtered entry order for one Pack call.
type packPlan struct {
	inputs  []Input
	skipped int
}

// preparePackPlan normalizes, sorts, deduplicates, and rule-filters inputs.
func preparePackPlan(inputs []Input, opts PackOptions) (*packPlan, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyInputs
	}

	matcher, err := newEntryMatcher(opts.Rules, opts.RuleMatcherOptions)
	if err != nil {
		return nil, err
	}

	sorted := make([]Input, len(inputs))
	copy(sorted, inputs)

	for i := range sorted {
		normalizedPath, err := normalizeArchiveEntryPath(sorted[i].Path)
		if err != nil {
			return nil, err
		}

		sorted[i].Path = normalizedPath
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	if err := validateUniqueEntryPaths(sorted); err != nil {
		return nil, err
	}

	plan := &packPlan{inputs: make([]Input, 0, len(sorted))}
	for i := range sorted {
		if !matcher.Include(sorted[i].Path) {
			plan.skipped++
			continue
		}

		plan.inputs = append(plan.inputs, sorted[i])
	}

	if len(plan.inputs) > maxEntryCount {
		return nil, fmt.Errorf("%w: %d inputs selected", ErrTooManyEntries, len(plan.inputs))
	}

	return plan, nil
}

// validateUniqueEntryPaths ensures there are no duplicate logical entry paths.
func validateUniqueEntryPaths(inputs []Input) error {
	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		key := strings.ToLower(in.Path)
		if existing, ok := seen[key]; ok {
			return fmt.Errorf("%w: %q conflicts with %q", ErrDuplicateEntryPath, in.Path, existing)
		}

		seen[key] = in.Path
	}

	return nil
}

// Pack writes a complete archive to out from the given inputs.
// Inputs are sorted by path for deterministic output, their paths are
// normalized with NormalizePath, and PackOptions.Rules select which of them
// become entries. The sink is wrapped in a buffered writer that finalize
// flushes; out itself is not closed. Packing zero selected inputs produces
// a valid empty archive.
func Pack(ctx context.Context, out io.Writer, inputs []Input, opts PackOptions) (*PackResult, error) {
	startedAt := time.Now()

	if out == nil {
		return nil, ErrNilWriter
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()

	plan, err := preparePackPlan(inputs, opts)
	if err != nil {
		return nil, err
	}

	w, releaseWriter := acquirePackWriter(out, opts.WriterBufferSize)
	defer releaseWriter()

	arch := New(w)

	var dataBytes int64
	for i := range plan.inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := packOneInput(ctx, arch, &plan.inputs[i])
		if err != nil {
			return nil, err
		}

		dataBytes += int64(info.Size)

		if opts.OnEntryDone != nil {
			opts.OnEntryDone(info)
		}
	}

	directoryStart := arch.Written()
	total, err := arch.Finalize(ctx)
	if err != nil {
		return nil, err
	}

	return &PackResult{
		WrittenEntries: len(plan.inputs),
		SkippedEntries: plan.skipped,
		DataBytes:      dataBytes,
		CentralDirSize: total - directoryStart - endOfCentralDirLen,
		ArchiveSize:    total,
		Duration:       time.Since(startedAt),
	}, nil
}

// PackFile writes a complete archive to outPath.
func PackFile(ctx context.Context, outPath string, inputs []Input, opts PackOptions) (*PackResult, error) {
	f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create archive file: %w", err)
	}
	defer func() {
		if f != nil {
			_ = f.Close()
		}
	}()

	res, err := Pack(ctx, f, inputs, opts)
	if err != nil {
		return nil, err
	}

	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("sync archive file: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close archive file: %w", err)
	}
	f = nil

	return res, nil
}

// InputsFromDir walks dir and returns inputs for every regular file, with
// slash-separated paths relative to dir, mod times, and size hints.
// Symlinks are not followed.
func InputsFromDir(dir string) ([]Input, error) {
	var inputs []Input

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", p, err)
		}

		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}

		inputs = append(inputs, Input{
			Path:     filepath.ToSlash(rel),
			ModTime:  fi.ModTime(),
			SizeHint: fi.Size(),
			Open: func() (io.ReadCloser, error) {
				return os.Open(p)
			},
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return inputs, nil
}

// packOneInput opens one input and appends it as an archive entry.
func packOneInput(ctx context.Context, arch *Archive, in *Input) (EntryInfo, error) {
	rc, err := openInputReader(in)
	if err != nil {
		return EntryInfo{}, err
	}

	info, appendErr := arch.Append(ctx, in.Path, packDateTime(in.ModTime), rc)
	closeErr := rc.Close()
	if appendErr != nil {
		return EntryInfo{}, appendErr
	}
	if closeErr != nil {
		return EntryInfo{}, fmt.Errorf("close input %s: %w", in.Path, closeErr)
	}

	return info, nil
}

// openInputReader opens source stream for one input.
func openInputReader(in *Input) (io.ReadCloser, error) {
	if in.Open == nil {
		return nil, fmt.Errorf("input %s: Open is nil", in.Path)
	}

	rc, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", in.Path, err)
	}
	if rc == nil {
		return nil, fmt.Errorf("input %s: %w", in.Path, ErrNilReader)
	}

	return rc, nil
}

// packDateTime maps a file mod time to the entry timestamp. Times outside
// the MS-DOS range become the zero "no timestamp" value instead of failing
// the whole pack; Append keeps its strict contract for direct callers.
func packDateTime(t time.Time) DateTime {
	if t.IsZero() {
		return DateTime{}
	}

	dt := DateTimeFromTime(t)
	if !dt.inRange() {
		return DateTime{}
	}

	return dt
}
