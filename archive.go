// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/zipstream

package zipstream

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"sync"
)

const (
	// copyBufferSize is the per-entry temporary buffer used by streaming payload copy.
	copyBufferSize = 64 * 1024
)

// copyBufferPool reuses payload copy buffers between appends.
var copyBufferPool = sync.Pool{
	New: func() any {
		return new([copyBufferSize]byte)
	},
}

// acquireCopyBuffer returns a reusable payload copy buffer and release callback.
func acquireCopyBuffer() ([]byte, func()) {
	arr := copyBufferPool.Get().(*[copyBufferSize]byte) //nolint:forcetypeassert // pool contains only fixed-size buffers
	return arr[:], func() {
		copyBufferPool.Put(arr)
	}
}

// countingWriter forwards writes to the underlying sink and tracks the
// cumulative byte count, so entry offsets are known without seeking.
type countingWriter struct {
	w io.Writer
	n int64
}

// Write forwards p to the underlying sink and advances the running count.
func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}

	return n, err
}

// offset returns the number of bytes forwarded so far.
func (cw *countingWriter) offset() int64 {
	return cw.n
}

// Archive incrementally writes a ZIP to a non-seekable sink. Entries are
// appended one at a time and streamed straight through; Finalize writes the
// central directory and end record. Offsets come from counting emitted
// bytes, and per-entry CRC/sizes are carried by a trailing data descriptor,
// so the sink is never sought or patched. Not safe for concurrent use.
type Archive struct {
	sink      *countingWriter
	entries   []EntryInfo
	err       error
	finalized bool
}

// New returns an Archive writing to sink. The archive owns sink until
// Finalize, which flushes it when it implements Flush() error and closes it
// when it implements io.Closer.
func New(sink io.Writer) *Archive {
	if sink == nil {
		return &Archive{err: ErrNilWriter}
	}

	return &Archive{sink: &countingWriter{w: sink}}
}

// Written returns the number of bytes emitted to the sink so far.
func (a *Archive) Written() int64 {
	if a.sink == nil {
		return 0
	}

	return a.sink.offset()
}

// Append writes one entry: local header, streamed content, data descriptor.
// The name is written verbatim (see NormalizePath for canonical entry
// names); dt encodes into the MS-DOS timestamp fields, with the zero
// DateTime writing zero codes. src is read in bounded chunks, each fully
// forwarded to the sink before the next read, and is exhausted on success.
//
// A format-limit violation (name too long, too many entries, timestamp out
// of range, no 32-bit offset room left) rejects the entry before any byte
// is written and leaves the archive usable. An I/O failure, context
// cancellation, or size overflow discovered mid-copy leaves the archive
// unusable for all further operations.
func (a *Archive) Append(ctx context.Context, name string, dt DateTime, src io.Reader) (EntryInfo, error) {
	if err := a.usable(); err != nil {
		return EntryInfo{}, err
	}
	if src == nil {
		return EntryInfo{}, ErrNilReader
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if len(name) > maxNameLen {
		return EntryInfo{}, fmt.Errorf("%w: name is %d bytes", ErrNameTooLong, len(name))
	}

	if len(a.entries) >= maxEntryCount {
		return EntryInfo{}, fmt.Errorf("%w: classic format caps entries at %d", ErrTooManyEntries, maxEntryCount)
	}

	modDate, modTime, err := dt.encode()
	if err != nil {
		return EntryInfo{}, err
	}

	offset := a.sink.offset()
	limit := int64(maxUint32) - offset - int64(localHeaderLen+len(name)) - dataDescriptorLen
	if offset > maxUint32 || limit < 0 {
		return EntryInfo{}, fmt.Errorf("%w: entry %s at offset %d", ErrSizeOverflow, name, offset)
	}

	if err := a.writeLocalHeader(name, modDate, modTime); err != nil {
		return EntryInfo{}, a.fail(fmt.Errorf("write local header: %w", err))
	}

	buf, releaseBuffer := acquireCopyBuffer()
	defer releaseBuffer()

	size, crc, err := copyPayload(ctx, a.sink, src, limit, buf)
	if err != nil {
		return EntryInfo{}, a.fail(fmt.Errorf("stream entry %s: %w", name, err))
	}

	if err := a.writeDataDescriptor(crc, uint32(size)); err != nil {
		return EntryInfo{}, a.fail(fmt.Errorf("write data descriptor: %w", err))
	}

	info := EntryInfo{
		Name:         name,
		Offset:       uint32(offset),
		Size:         uint32(size),
		CRC32:        crc,
		ModifiedDate: modDate,
		ModifiedTime: modTime,
	}
	a.entries = append(a.entries, info)

	return info, nil
}

// Finalize writes one central directory record per appended entry, in
// append order, then the end record; it flushes the sink when it implements
// Flush() error and closes it when it implements io.Closer. Returns the
// total number of bytes emitted for the whole archive. No operations are
// permitted afterward; a second Finalize reports ErrArchiveFinalized.
func (a *Archive) Finalize(ctx context.Context) (int64, error) {
	if err := a.usable(); err != nil {
		return 0, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if len(a.entries) > maxEntryCount {
		return 0, fmt.Errorf("%w: %d entries", ErrTooManyEntries, len(a.entries))
	}

	cdOffset := a.sink.offset()

	var cdSize int64
	for i := range a.entries {
		cdSize += centralHeaderLen + int64(len(a.entries[i].Name))
	}
	if cdOffset > maxUint32 || cdSize > maxUint32 {
		return 0, fmt.Errorf("%w: central directory at %d spanning %d", ErrSizeOverflow, cdOffset, cdSize)
	}

	for i := range a.entries {
		if err := ctx.Err(); err != nil {
			return a.sink.offset(), a.fail(err)
		}

		if err := a.writeCentralHeader(&a.entries[i]); err != nil {
			return a.sink.offset(), a.fail(fmt.Errorf("write central directory entry %s: %w", a.entries[i].Name, err))
		}
	}

	counted := a.sink.offset() - cdOffset
	count := uint16(len(a.entries))

	if err := a.writeEndOfCentralDir(count, uint32(counted), uint32(cdOffset)); err != nil {
		return a.sink.offset(), a.fail(fmt.Errorf("write end of central directory: %w", err))
	}

	a.finalized = true
	a.entries = nil

	if f, ok := a.sink.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return a.sink.offset(), a.fail(fmt.Errorf("flush sink: %w", err))
		}
	}

	if c, ok := a.sink.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return a.sink.offset(), a.fail(fmt.Errorf("close sink: %w", err))
		}
	}

	return a.sink.offset(), nil
}

// usable reports whether the archive accepts further operations.
func (a *Archive) usable() error {
	if a.err != nil {
		return a.err
	}
	if a.finalized {
		return ErrArchiveFinalized
	}

	return nil
}

// fail records a fatal error; later operations report the archive unusable.
func (a *Archive) fail(err error) error {
	a.err = fmt.Errorf("%w: %w", ErrArchiveUnusable, err)
	return err
}

// writeLocalHeader emits the fixed local file header followed by the name.
// CRC and sizes are zero here; real values follow in the data descriptor.
func (a *Archive) writeLocalHeader(name string, modDate, modTime uint16) error {
	var h [localHeaderLen]byte
	binary.LittleEndian.PutUint32(h[0:4], localHeaderSignature)
	binary.LittleEndian.PutUint16(h[4:6], versionNeeded)
	binary.LittleEndian.PutUint16(h[6:8], flagDataDescriptor)
	binary.LittleEndian.PutUint16(h[8:10], methodStored)
	binary.LittleEndian.PutUint16(h[10:12], modTime)
	binary.LittleEndian.PutUint16(h[12:14], modDate)
	binary.LittleEndian.PutUint32(h[14:18], 0) // CRC-32, in descriptor
	binary.LittleEndian.PutUint32(h[18:22], 0) // compressed size, in descriptor
	binary.LittleEndian.PutUint32(h[22:26], 0) // uncompressed size, in descriptor
	binary.LittleEndian.PutUint16(h[26:28], uint16(len(name)))
	binary.LittleEndian.PutUint16(h[28:30], 0) // extra field length

	if _, err := a.sink.Write(h[:]); err != nil {
		return err
	}

	if _, err := io.WriteString(a.sink, name); err != nil {
		return err
	}

	return nil
}

// writeDataDescriptor emits the trailing descriptor carrying the real CRC
// and sizes. Both size fields are equal for stored entries.
func (a *Archive) writeDataDescriptor(crc, size uint32) error {
	var d [dataDescriptorLen]byte
	binary.LittleEndian.PutUint32(d[0:4], dataDescriptorSignature)
	binary.LittleEndian.PutUint32(d[4:8], crc)
	binary.LittleEndian.PutUint32(d[8:12], size)
	binary.LittleEndian.PutUint32(d[12:16], size)

	_, err := a.sink.Write(d[:])
	return err
}

// writeCentralHeader emits one central directory record for e.
func (a *Archive) writeCentralHeader(e *EntryInfo) error {
	var h [centralHeaderLen]byte
	binary.LittleEndian.PutUint32(h[0:4], centralHeaderSignature)
	binary.LittleEndian.PutUint16(h[4:6], versionMadeBy)
	binary.LittleEndian.PutUint16(h[6:8], versionNeeded)
	binary.LittleEndian.PutUint16(h[8:10], flagDataDescriptor)
	binary.LittleEndian.PutUint16(h[10:12], methodStored)
	binary.LittleEndian.PutUint16(h[12:14], e.ModifiedTime)
	binary.LittleEndian.PutUint16(h[14:16], e.ModifiedDate)
	binary.LittleEndian.PutUint32(h[16:20], e.CRC32)
	binary.LittleEndian.PutUint32(h[20:24], e.Size) // compressed size
	binary.LittleEndian.PutUint32(h[24:28], e.Size) // uncompressed size
	binary.LittleEndian.PutUint16(h[28:30], uint16(len(e.Name)))
	binary.LittleEndian.PutUint16(h[30:32], 0) // extra field length
	binary.LittleEndian.PutUint16(h[32:34], 0) // comment length
	binary.LittleEndian.PutUint16(h[34:36], 0) // disk number start
	binary.LittleEndian.PutUint16(h[36:38], 0) // internal attributes
	binary.LittleEndian.PutUint32(h[38:42], externalAttrRegularFile)
	binary.LittleEndian.PutUint32(h[42:46], e.Offset)

	if _, err := a.sink.Write(h[:]); err != nil {
		return err
	}

	if _, err := io.WriteString(a.sink, e.Name); err != nil {
		return err
	}

	return nil
}

// writeEndOfCentralDir emits the end record closing the archive.
func (a *Archive) writeEndOfCentralDir(count uint16, cdSize, cdOffset uint32) error {
	var h [endOfCentralDirLen]byte
	binary.LittleEndian.PutUint32(h[0:4], endOfCentralDirSignature)
	binary.LittleEndian.PutUint16(h[4:6], 0) // disk number
	binary.LittleEndian.PutUint16(h[6:8], 0) // central directory start disk
	binary.LittleEndian.PutUint16(h[8:10], count)
	binary.LittleEndian.PutUint16(h[10:12], count)
	binary.LittleEndian.PutUint32(h[12:16], cdSize)
	binary.LittleEndian.PutUint32(h[16:20], cdOffset)
	binary.LittleEndian.PutUint16(h[20:22], 0) // comment length

	_, err := a.sink.Write(h[:])
	return err
}

// copyPayload streams src to dst in bounded chunks, folding every byte into
// the CRC-32 accumulator and a running count. Each chunk is fully written
// downstream before the next read, and ctx is observed between chunks. The
// limit is enforced strictly: once it is consumed, one probe byte decides
// between clean end-of-source and overflow.
func copyPayload(ctx context.Context, dst io.Writer, src io.Reader, limit int64, buf []byte) (int64, uint32, error) {
	if len(buf) == 0 {
		buf = make([]byte, 32*1024)
	}

	var written int64
	var crc uint32
	emptyReads := 0
	for written < limit {
		if err := ctx.Err(); err != nil {
			return written, crc, err
		}

		chunkSize := len(buf)
		if remaining := limit - written; int64(chunkSize) > remaining {
			chunkSize = int(remaining)
		}

		n, readErr := src.Read(buf[:chunkSize])
		if n > 0 {
			emptyReads = 0
			nw, writeErr := dst.Write(buf[:n])
			if nw > 0 {
				crc = crc32.Update(crc, crc32.IEEETable, buf[:nw])
				written += int64(nw)
			}

			if writeErr != nil {
				return written, crc, writeErr
			}
			if nw != n {
				return written, crc, io.ErrShortWrite
			}
		}
		if n == 0 && readErr == nil {
			emptyReads++
			if emptyReads > 100 {
				return written, crc, io.ErrNoProgress
			}

			continue
		}

		if readErr != nil {
			if readErr == io.EOF {
				return written, crc, nil
			}

			return written, crc, readErr
		}
	}

	// Consumed exactly the limit: probe one byte to ensure source is not longer.
	var probe [1]byte
	n, err := src.Read(probe[:])
	if n > 0 {
		return written, crc, fmt.Errorf("%w: content does not fit remaining 32-bit offset room", ErrSizeOverflow)
	}
	if err != nil && err != io.EOF {
		return written, crc, err
	}

	return written, crc, nil
}
