package intcodec

import (
	"errors"
	"slices"
)

// ErrNotLoaded is returned when a Reader is used before Load.
var ErrNotLoaded = errors.New("intcodec: reader not loaded")

// ErrPositionOutOfRange is returned when accessing a position beyond the
// loaded values.
var ErrPositionOutOfRange = errors.New("intcodec: position out of range")

// Reader provides random and sequential access to a buffer produced by a
// Compressor. The buffer is decoded once on Load; the Reader keeps its value
// storage across loads.
//
// A Reader is not safe for concurrent use. Create one reader per goroutine
// over the same buffer instead.
type Reader struct {
	comp *Compressor

	// values holds the decoded values.
	values []int32

	// pos is the current position for sequential iteration.
	pos int

	// isSorted reports whether values are non-decreasing.
	isSorted bool

	loaded bool
}

// NewReader creates an empty Reader decoding with comp, or with
// NewCompressor's codec when comp is nil. It must be loaded before use.
func NewReader(comp *Compressor) *Reader {
	if comp == nil {
		comp = NewCompressor()
	}
	return &Reader{comp: comp}
}

// Load decodes a compressed buffer into the reader. It resets all state and
// may be called repeatedly to reuse the reader.
func (r *Reader) Load(buf []int32) error {
	values, err := r.comp.UncompressTo(r.values, buf)
	if err != nil {
		r.loaded = false
		return err
	}
	r.setValues(values)
	return nil
}

// LoadBytes is Load for the byte serialization written by
// Compressor.AppendCompressed.
func (r *Reader) LoadBytes(buf []byte) error {
	values, err := r.comp.UncompressBytes(r.values, buf)
	if err != nil {
		r.loaded = false
		return err
	}
	r.setValues(values)
	return nil
}

func (r *Reader) setValues(values []int32) {
	r.values = values
	r.isSorted = slices.IsSorted(values)
	r.pos = 0
	r.loaded = true
}

// IsLoaded returns whether the reader has been loaded with data.
func (r *Reader) IsLoaded() bool {
	return r.loaded
}

// Len returns the number of loaded values.
func (r *Reader) Len() int {
	if !r.loaded {
		return 0
	}
	return len(r.values)
}

// Pos returns the current position for sequential iteration.
func (r *Reader) Pos() int {
	return r.pos
}

// Reset rewinds sequential iteration to the first value.
func (r *Reader) Reset() {
	r.pos = 0
}

// IsSorted returns whether the loaded values are non-decreasing.
func (r *Reader) IsSorted() bool {
	return r.isSorted
}

// Get returns the value at pos.
func (r *Reader) Get(pos int) (int32, error) {
	if !r.loaded {
		return 0, ErrNotLoaded
	}
	if pos < 0 || pos >= len(r.values) {
		return 0, ErrPositionOutOfRange
	}
	return r.values[pos], nil
}

// GetSafe returns the value at pos and whether pos was valid.
func (r *Reader) GetSafe(pos int) (int32, bool) {
	val, err := r.Get(pos)
	return val, err == nil
}

// Next returns the next value in sequence and its position, or ok == false
// once the values are exhausted.
func (r *Reader) Next() (value int32, pos int, ok bool) {
	if !r.loaded || r.pos >= len(r.values) {
		return 0, 0, false
	}
	value, pos = r.values[r.pos], r.pos
	r.pos++
	return value, pos, true
}

// SkipTo advances to and returns the first value >= req at or after the
// current position. Sorted data is searched by bisection; otherwise the
// values are scanned in order.
func (r *Reader) SkipTo(req int32) (value int32, pos int, ok bool) {
	if !r.loaded || len(r.values) == 0 {
		return 0, 0, false
	}
	if r.isSorted {
		return r.skipToBinarySearch(req)
	}
	return r.skipToLinear(req)
}

func (r *Reader) skipToBinarySearch(req int32) (value int32, pos int, ok bool) {
	idx, _ := slices.BinarySearch(r.values[r.pos:], req)
	abs := r.pos + idx
	if abs >= len(r.values) {
		r.pos = len(r.values)
		return 0, 0, false
	}
	r.pos = abs + 1
	return r.values[abs], abs, true
}

func (r *Reader) skipToLinear(req int32) (value int32, pos int, ok bool) {
	for r.pos < len(r.values) {
		v, p := r.values[r.pos], r.pos
		r.pos++
		if v >= req {
			return v, p, true
		}
	}
	return 0, 0, false
}

// Decode copies all values into dst, allocating when its capacity is
// insufficient. It returns nil if the reader is not loaded.
func (r *Reader) Decode(dst []int32) []int32 {
	if !r.loaded {
		return nil
	}
	if cap(dst) < len(r.values) {
		dst = make([]int32, len(r.values))
	} else {
		dst = dst[:len(r.values)]
	}
	copy(dst, r.values)
	return dst
}
