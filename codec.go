// Package intcodec implements a family of integer array codecs.
//
// Every codec turns a sequence of 32-bit signed integers into a denser
// sequence of 32-bit words and back, bit-exactly. The family covers fixed
// width bit packing (BinaryPacking), patched frame of reference schemes
// (FastPFOR, NewPFD, OptPFD), word aligned selector schemes (Simple9,
// Simple16), byte oriented schemes (VariableByte, StreamVByte) and the
// glue to chain them (Composition, Compressor).
//
// Codecs operate on caller provided slices. They never grow a destination
// and never retain a slice after returning, so callers size the output
// generously (see MaxCompressedLen) and trim it to the reported count.
// Every operation reports how many words or integers it consumed from the
// source and produced in the destination, so codecs can be chained without
// re-scanning. The package maintains no global mutable state.
package intcodec

import (
	"errors"
	"fmt"
)

// Codec is a self-describing integer codec. Compress writes whatever header
// the codec needs to decode its own output without further information.
//
// A codec may consume fewer integers than offered (block codecs round down
// to their block size); the remainder is left for the caller, typically the
// second stage of a Composition.
type Codec interface {
	// Compress encodes in into out and reports the number of integers read
	// from in and words written to out.
	Compress(in, out []int32) (read, written int, err error)
	// Uncompress decodes in into out and reports the number of words read
	// from in and integers written to out.
	Uncompress(in, out []int32) (read, written int, err error)
}

// HeadlessCodec is a codec variant that does not store the number of
// encoded integers. The caller records the count and hands it back to
// HeadlessUncompress.
type HeadlessCodec interface {
	HeadlessCompress(in, out []int32) (read, written int, err error)
	// HeadlessUncompress decodes num integers (rounded down to the codec's
	// block multiple) from in into out.
	HeadlessUncompress(in, out []int32, num int) (read, written int, err error)
}

var (
	// ErrValueTooLarge is returned when a value exceeds the range a codec
	// can represent, such as the 28-bit payload of Simple9 and Simple16.
	ErrValueTooLarge = errors.New("intcodec: value too large")

	// ErrInvalidBuffer is returned when compressed input is detectably
	// malformed.
	ErrInvalidBuffer = errors.New("intcodec: invalid buffer")

	// ErrUnknownCodec is returned by Lookup for unregistered names.
	ErrUnknownCodec = errors.New("intcodec: unknown codec")
)

// MaxCompressedLen returns a destination size that is large enough for any
// codec of this package to compress n integers, including its headers.
func MaxCompressedLen(n int) int {
	return n + n/2 + 1024
}

// greatestMultiple rounds n down to a multiple of m.
func greatestMultiple(n, m int) int {
	return n - n%m
}

// compressWithCount writes the number of integers body consumes ahead of
// the body itself. Nothing is written when fewer than blockSize integers are
// available.
func compressWithCount(h HeadlessCodec, in, out []int32, blockSize int) (read, written int, err error) {
	n := greatestMultiple(len(in), blockSize)
	if n == 0 {
		return 0, 0, nil
	}
	ensureCapacity(out, 1)
	out[0] = int32(n)
	read, written, err = h.HeadlessCompress(in[:n], out[1:])
	return read, written + 1, err
}

// uncompressWithCount reads the count written by compressWithCount and
// decodes exactly that many integers.
func uncompressWithCount(h HeadlessCodec, in, out []int32) (read, written int, err error) {
	if len(in) == 0 {
		return 0, 0, nil
	}
	n := int(in[0])
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: negative integer count %d", ErrInvalidBuffer, n)
	}
	ensureCapacity(out, n)
	read, written, err = h.HeadlessUncompress(in[1:], out[:n], n)
	if err != nil {
		return read + 1, written, err
	}
	if written != n {
		return read + 1, written, fmt.Errorf("%w: decoded %d integers, header announced %d",
			ErrInvalidBuffer, written, n)
	}
	return read + 1, written, nil
}

// ensureCapacity panics when dst cannot hold n elements. An undersized
// destination is a caller bug, never something to truncate silently.
func ensureCapacity(dst []int32, n int) {
	if len(dst) < n {
		panic(fmt.Sprintf("intcodec: destination too small (need %d, got %d)", n, len(dst)))
	}
}
