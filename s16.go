package intcodec

import "fmt"

// s16Layouts lists the slot widths of the 16 Simple16 selectors. Every
// layout fills exactly 28 bits; mixed layouts let a word adapt to a few
// wider values among narrow ones.
var s16Layouts = [16][]uint8{
	s16Layout(28, 1),
	s16Layout(7, 2, 14, 1),
	s16Layout(7, 1, 7, 2, 7, 1),
	s16Layout(14, 1, 7, 2),
	s16Layout(14, 2),
	s16Layout(1, 4, 8, 3),
	s16Layout(1, 3, 4, 4, 3, 3),
	s16Layout(7, 4),
	s16Layout(4, 5, 2, 4),
	s16Layout(2, 4, 4, 5),
	s16Layout(3, 6, 2, 5),
	s16Layout(2, 5, 3, 6),
	s16Layout(4, 7),
	s16Layout(1, 10, 2, 9),
	s16Layout(2, 14),
	s16Layout(1, 28),
}

// s16Layout expands (count, width) pairs into per-slot widths.
func s16Layout(pairs ...int) []uint8 {
	var slots []uint8
	for i := 0; i < len(pairs); i += 2 {
		for range pairs[i] {
			slots = append(slots, uint8(pairs[i+1]))
		}
	}
	return slots
}

// S16 is the Simple16 word format over an explicit span. Like S9 it stores
// a 4-bit selector and 28 payload bits per word, least significant slot
// first, but chooses among 16 layouts including mixed widths.
type S16 struct{}

func (S16) String() string { return "S16" }

// Compress implements ExceptionCodec.
func (S16) Compress(in, out []int32) (int, error) {
	return s16Encode(in, out)
}

// EstimateSize implements ExceptionCodec.
func (S16) EstimateSize(in []int32) (int, error) {
	return s16Encode(in, nil)
}

// Uncompress implements ExceptionCodec.
func (S16) Uncompress(in, out []int32) (int, error) {
	ip, op := 0, 0
	for op < len(out) {
		if ip >= len(in) {
			return ip, fmt.Errorf("%w: Simple16 stream ends after %d of %d values", ErrInvalidBuffer, op, len(out))
		}
		word := uint32(in[ip])
		ip++
		layout := s16Layouts[word>>selectorShift]
		shift := 0
		for _, b := range layout {
			if op == len(out) {
				break
			}
			out[op] = int32((word >> shift) & laneMask(int(b)))
			shift += int(b)
			op++
		}
	}
	return ip, nil
}

func s16Encode(in, out []int32) (int, error) {
	ip, op := 0, 0
	for ip < len(in) {
		word, n, err := s16Word(in[ip:])
		if err != nil {
			return op, err
		}
		if out != nil {
			ensureCapacity(out[op:], 1)
			out[op] = word
		}
		op++
		ip += n
	}
	return op, nil
}

func s16Word(in []int32) (word int32, n int, err error) {
selectors:
	for sel, layout := range s16Layouts {
		take := min(len(layout), len(in))
		var payload uint32
		shift := 0
		for i, v := range in[:take] {
			b := int(layout[i])
			if uint32(v)>>b != 0 {
				continue selectors
			}
			payload |= uint32(v) << shift
			shift += b
		}
		return int32(uint32(sel)<<selectorShift | payload), take, nil
	}
	return 0, 0, fmt.Errorf("%w: %d needs more than %d bits", ErrValueTooLarge, uint32(in[0]), selectorPayloadBits)
}

// Simple16 is the Simple16 codec over whole arrays: Compress stores the
// integer count ahead of the S16 words.
type Simple16 struct{}

func (Simple16) String() string { return "Simple16" }

// Compress implements Codec.
func (c Simple16) Compress(in, out []int32) (read, written int, err error) {
	return compressWithCount(c, in, out, 1)
}

// Uncompress implements Codec.
func (c Simple16) Uncompress(in, out []int32) (read, written int, err error) {
	return uncompressWithCount(c, in, out)
}

// HeadlessCompress implements HeadlessCodec.
func (Simple16) HeadlessCompress(in, out []int32) (read, written int, err error) {
	written, err = s16Encode(in, out)
	if err != nil {
		return 0, written, err
	}
	return len(in), written, nil
}

// HeadlessUncompress implements HeadlessCodec.
func (Simple16) HeadlessUncompress(in, out []int32, num int) (read, written int, err error) {
	ensureCapacity(out, num)
	read, err = S16{}.Uncompress(in, out[:num])
	if err != nil {
		return read, 0, err
	}
	return read, num, nil
}
