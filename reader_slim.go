package intcodec

import "fmt"

// SlimReader provides random access to the output of BinaryPacking.Compress
// without decoding it. It keeps a reference to the compressed words and a
// per-group offset index, and extracts single values with bit arithmetic
// when they are accessed.
//
// SlimReader suits many short-lived readers over large, shared buffers.
// Several SlimReaders may read the same buffer concurrently; a single
// SlimReader must not be used from two goroutines.
type SlimReader struct {
	body   []int32
	count  int
	pos    int
	loaded bool

	// groups[g] is the offset in body of the header word of group g (four
	// blocks, or a single block in the trailing run).
	groups []int32
}

// NewSlimReader creates an empty SlimReader that must be loaded before use.
func NewSlimReader() *SlimReader {
	return &SlimReader{}
}

// Load indexes a buffer produced by BinaryPacking.Compress. The buffer must
// remain unmodified while the reader is in use.
func (r *SlimReader) Load(buf []int32) error {
	r.loaded = false
	r.groups = r.groups[:0]
	if len(buf) == 0 {
		r.body, r.count, r.pos, r.loaded = nil, 0, 0, true
		return nil
	}
	count := int(buf[0])
	if count < 0 || count%binaryBlockSize != 0 {
		return fmt.Errorf("%w: invalid element count %d", ErrInvalidBuffer, count)
	}
	body := buf[1:]
	blocks := count / binaryBlockSize
	ip := 0
	for blk := 0; blk < blocks; {
		if ip >= len(body) {
			return fmt.Errorf("%w: missing block header at word %d", ErrInvalidBuffer, ip)
		}
		r.groups = append(r.groups, int32(ip))
		header := uint32(body[ip])
		ip++
		if blocks-blk >= binaryGroupBlocks {
			for k := range binaryGroupBlocks {
				b := int(header >> (8 * (binaryGroupBlocks - 1 - k)) & 0xFF)
				if b > maxBitWidth {
					return fmt.Errorf("%w: bit width %d in block header", ErrInvalidBuffer, b)
				}
				ip += b
			}
			blk += binaryGroupBlocks
		} else {
			if header > maxBitWidth {
				return fmt.Errorf("%w: bit width %d in block header", ErrInvalidBuffer, header)
			}
			ip += int(header)
			blk++
		}
		if ip > len(body) {
			return fmt.Errorf("%w: buffer truncated (need %d words, got %d)", ErrInvalidBuffer, ip, len(body))
		}
	}
	r.body, r.count, r.pos, r.loaded = body, count, 0, true
	return nil
}

// IsLoaded returns whether the reader has been loaded with data.
func (r *SlimReader) IsLoaded() bool {
	return r.loaded
}

// Len returns the number of values in the buffer.
func (r *SlimReader) Len() int {
	return r.count
}

// Pos returns the current position for sequential iteration.
func (r *SlimReader) Pos() int {
	return r.pos
}

// Reset rewinds sequential iteration to the first value.
func (r *SlimReader) Reset() {
	r.pos = 0
}

// Get extracts the value at pos.
func (r *SlimReader) Get(pos int) (int32, error) {
	if !r.loaded {
		return 0, ErrNotLoaded
	}
	if pos < 0 || pos >= r.count {
		return 0, ErrPositionOutOfRange
	}
	return r.extract(pos), nil
}

// GetSafe returns the value at pos and whether pos was valid.
func (r *SlimReader) GetSafe(pos int) (int32, bool) {
	val, err := r.Get(pos)
	return val, err == nil
}

// Next returns the next value in sequence and its position.
func (r *SlimReader) Next() (value int32, pos int, ok bool) {
	if !r.loaded || r.pos >= r.count {
		return 0, 0, false
	}
	pos = r.pos
	r.pos++
	return r.extract(pos), pos, true
}

// Decode decodes all values into dst, allocating when its capacity is
// insufficient. It returns nil if the reader is not loaded.
func (r *SlimReader) Decode(dst []int32) []int32 {
	if !r.loaded {
		return nil
	}
	if cap(dst) < r.count {
		dst = make([]int32, r.count)
	}
	dst = dst[:r.count]
	if _, _, err := (BinaryPacking{}).HeadlessUncompress(r.body, dst, r.count); err != nil {
		return nil
	}
	return dst
}

// extract locates the block holding pos through the group index and reads
// the single value from its packed words.
func (r *SlimReader) extract(pos int) int32 {
	blk := pos / binaryBlockSize
	fullGroups := r.count / (binaryGroupBlocks * binaryBlockSize)
	var g, k int
	if blk < fullGroups*binaryGroupBlocks {
		g, k = blk/binaryGroupBlocks, blk%binaryGroupBlocks
	} else {
		g, k = fullGroups+blk-fullGroups*binaryGroupBlocks, 0
	}
	ip := int(r.groups[g])
	header := uint32(r.body[ip])
	ip++
	var b int
	if g < fullGroups {
		for j := range k {
			ip += int(header >> (8 * (binaryGroupBlocks - 1 - j)) & 0xFF)
		}
		b = int(header >> (8 * (binaryGroupBlocks - 1 - k)) & 0xFF)
	} else {
		b = int(header)
	}
	return extractPacked(r.body[ip:ip+b], b, pos%binaryBlockSize)
}
