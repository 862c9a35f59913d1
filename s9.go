package intcodec

import "fmt"

// ExceptionCodec is the secondary codec used by NewPFD and OptPFD to store
// a block's exceptions. S9 and S16 implement it.
type ExceptionCodec interface {
	// Compress encodes every value of in into out and returns the number
	// of words written.
	Compress(in, out []int32) (written int, err error)
	// Uncompress decodes len(out) values from in and returns the number of
	// words read.
	Uncompress(in, out []int32) (read int, err error)
	// EstimateSize returns the number of words Compress would write for in,
	// without writing anything.
	EstimateSize(in []int32) (int, error)
}

const (
	// selectorShift places the 4-bit selector in the top of each word.
	selectorShift = 28
	// selectorPayloadBits is the payload left next to the selector.
	selectorPayloadBits = 28
)

// Simple9 layouts, most values per word first: selector s stores
// s9Counts[s] values of s9Widths[s] bits each.
var (
	s9Widths = [...]int{1, 2, 3, 4, 5, 7, 9, 14, 28}
	s9Counts = [...]int{28, 14, 9, 7, 5, 4, 3, 2, 1}
)

// S9 is the Simple9 word format over an explicit span. Each output word
// holds a 4-bit selector and 28 bits of payload; values are stored from the
// least significant bit upwards. The final word may carry unused zero slots,
// so decoding always needs the value count.
type S9 struct{}

func (S9) String() string { return "S9" }

// Compress implements ExceptionCodec.
func (S9) Compress(in, out []int32) (int, error) {
	return s9Encode(in, out)
}

// EstimateSize implements ExceptionCodec.
func (S9) EstimateSize(in []int32) (int, error) {
	return s9Encode(in, nil)
}

// Uncompress implements ExceptionCodec.
func (S9) Uncompress(in, out []int32) (int, error) {
	ip, op := 0, 0
	for op < len(out) {
		if ip >= len(in) {
			return ip, fmt.Errorf("%w: Simple9 stream ends after %d of %d values", ErrInvalidBuffer, op, len(out))
		}
		word := uint32(in[ip])
		ip++
		sel := int(word >> selectorShift)
		if sel >= len(s9Widths) {
			return ip, fmt.Errorf("%w: Simple9 selector %d", ErrInvalidBuffer, sel)
		}
		b := s9Widths[sel]
		mask := laneMask(b)
		n := min(s9Counts[sel], len(out)-op)
		for i := range n {
			out[op+i] = int32((word >> (i * b)) & mask)
		}
		op += n
	}
	return ip, nil
}

// s9Encode greedily emits one word per step using the first selector whose
// slots fit the upcoming values. A nil out only counts words.
func s9Encode(in, out []int32) (int, error) {
	ip, op := 0, 0
	for ip < len(in) {
		word, n, err := s9Word(in[ip:])
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

func s9Word(in []int32) (word int32, n int, err error) {
selectors:
	for sel, count := range s9Counts {
		b := s9Widths[sel]
		take := min(count, len(in))
		var payload uint32
		for i, v := range in[:take] {
			if uint32(v)>>b != 0 {
				continue selectors
			}
			payload |= uint32(v) << (i * b)
		}
		return int32(uint32(sel)<<selectorShift | payload), take, nil
	}
	return 0, 0, fmt.Errorf("%w: %d needs more than %d bits", ErrValueTooLarge, uint32(in[0]), selectorPayloadBits)
}

// Simple9 is the Simple9 codec over whole arrays: Compress stores the
// integer count ahead of the S9 words.
type Simple9 struct{}

func (Simple9) String() string { return "Simple9" }

// Compress implements Codec.
func (c Simple9) Compress(in, out []int32) (read, written int, err error) {
	return compressWithCount(c, in, out, 1)
}

// Uncompress implements Codec.
func (c Simple9) Uncompress(in, out []int32) (read, written int, err error) {
	return uncompressWithCount(c, in, out)
}

// HeadlessCompress implements HeadlessCodec.
func (Simple9) HeadlessCompress(in, out []int32) (read, written int, err error) {
	written, err = s9Encode(in, out)
	if err != nil {
		return 0, written, err
	}
	return len(in), written, nil
}

// HeadlessUncompress implements HeadlessCodec.
func (Simple9) HeadlessUncompress(in, out []int32, num int) (read, written int, err error) {
	ensureCapacity(out, num)
	read, err = S9{}.Uncompress(in, out[:num])
	if err != nil {
		return read, 0, err
	}
	return read, num, nil
}
