// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zipstream

/*
Package zipstream builds classic (non-ZIP64) ZIP archives incrementally and
emits them to a non-seekable sink. It is designed for streaming workflows:
entry contents arrive as io.Reader streams of unknown size, every byte is
written exactly once in order, and the exact archive size can be computed
before any write happens.

Entries are written with the stored method (no compression) and general
purpose flag bit 3: the local header carries zero CRC/size fields and the
real values follow the content in a data descriptor. That is what makes
seek-free emission possible; readers that understand the flag (all common
ones) reconstruct entries from the central directory written at finalize.

# Appending

Create an archive around any io.Writer and append entries one by one:

	arch := zipstream.New(out)
	if _, err := arch.Append(ctx, "file1.txt", zipstream.Now(), strings.NewReader("hello\n")); err != nil {
	    return err
	}
	if _, err := arch.Append(ctx, "file2.txt", zipstream.DateTime{}, f); err != nil {
	    return err
	}
	total, err := arch.Finalize(ctx)
	if err != nil {
	    return err
	}
	_ = total

The zero DateTime writes zero timestamp codes. Finalize flushes the sink
when it implements Flush() error and closes it when it implements
io.Closer, so an io.Pipe writer signals EOF to its reader automatically.

# Size prediction

ArchiveSize computes the exact byte length of the archive from (name,
content length) pairs, without any I/O:

	size := zipstream.ArchiveSize([]zipstream.EntrySize{
	    {Name: "file1.txt", Size: 6},
	    {Name: "file2.txt", Size: 6},
	})

The result matches the total Finalize reports for the same entries, which
makes it suitable for a Content-Length header set before streaming begins.

# Packing

Pack builds a whole archive from declarative inputs in one call. Inputs are
sorted by path for deterministic output, paths are normalized, duplicates
are rejected, and selection rules from github.com/woozymasta/pathrules
choose which inputs become entries:

	inputs, err := zipstream.InputsFromDir("site/")
	if err != nil {
	    return err
	}
	res, err := zipstream.PackFile(ctx, "site.zip", inputs, zipstream.PackOptions{
	    Rules: []pathrules.Rule{
	        {Action: pathrules.ActionExclude, Pattern: "*.tmp"},
	        {Action: pathrules.ActionExclude, Pattern: ".git/**"},
	    },
	    OnEntryDone: func(entry zipstream.EntryInfo) {
	        // progress callback per written entry
	    },
	})
	if err != nil {
	    return err
	}
	_ = res.ArchiveSize

An empty rule set selects every input. PackArchiveSize predicts the exact
Pack output size from size hints, applying the same normalization and rules.

# Streaming over HTTP

The predictor plus an io.Pipe stream an archive as a download response
without buffering it:

	size := zipstream.ArchiveSize(entries)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	pr, pw := io.Pipe()
	go func() {
	    arch := zipstream.New(pw)
	    for _, e := range sources {
	        if _, err := arch.Append(ctx, e.Name, zipstream.DateTime{}, e.Body); err != nil {
	            pw.CloseWithError(err)
	            return
	        }
	    }
	    if _, err := arch.Finalize(ctx); err != nil {
	        pw.CloseWithError(err)
	    }
	}()
	_, _ = io.Copy(w, pr)

Errors are sentinel values matched with errors.Is: format limits
(ErrNameTooLong, ErrTooManyEntries, ErrSizeOverflow, ErrDateTimeOutOfRange)
reject an entry before any of its bytes are written, sequencing mistakes
report ErrArchiveFinalized, and after an I/O failure every further call
reports ErrArchiveUnusable.
*/
package zipstream
