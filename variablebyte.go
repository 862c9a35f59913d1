package intcodec

import "fmt"

const (
	// vbContinue marks a byte that is followed by more bytes of the same
	// integer. It is also the padding byte of the last word: a run of
	// padding never completes an integer.
	vbContinue = 0x80
	vbPayload  = 0x7F
	// vbMaxShift is the shift of the fifth and last byte of a 32-bit value.
	vbMaxShift = 28
)

// VariableByte stores every integer in 7-bit groups, least significant
// group first, with the continuation bit set on all but the last byte.
// Bytes are packed four per word, little-endian. Values are treated as
// unsigned, so negative integers take five bytes.
//
// The stream is self-delimiting: Compress writes no count and Uncompress
// decodes every complete integer of its input. VariableByte consumes any
// number of integers, which makes it the usual tail codec of a Composition.
type VariableByte struct{}

func (VariableByte) String() string { return "VariableByte" }

// Compress implements Codec.
func (c VariableByte) Compress(in, out []int32) (read, written int, err error) {
	return c.HeadlessCompress(in, out)
}

// Uncompress implements Codec.
func (VariableByte) Uncompress(in, out []int32) (read, written int, err error) {
	return vbDecode(in, out, -1)
}

// HeadlessCompress implements HeadlessCodec.
func (VariableByte) HeadlessCompress(in, out []int32) (read, written int, err error) {
	w := byteWriter{out: out}
	for _, v := range in {
		u := uint32(v)
		for u > vbPayload {
			w.put(byte(u&vbPayload) | vbContinue)
			u >>= 7
		}
		w.put(byte(u))
	}
	for w.shift != 0 {
		w.put(vbContinue)
	}
	return len(in), w.pos, nil
}

// HeadlessUncompress implements HeadlessCodec.
func (VariableByte) HeadlessUncompress(in, out []int32, num int) (read, written int, err error) {
	ensureCapacity(out, num)
	if num == 0 {
		return 0, 0, nil
	}
	read, written, err = vbDecode(in, out, num)
	if err == nil && written != num {
		err = fmt.Errorf("%w: VariableByte stream holds %d of %d integers", ErrInvalidBuffer, written, num)
	}
	return read, written, err
}

// byteWriter packs bytes into words, filling each word from its least
// significant byte.
type byteWriter struct {
	out   []int32
	pos   int
	cur   uint32
	shift int
}

func (w *byteWriter) put(b byte) {
	w.cur |= uint32(b) << w.shift
	w.shift += 8
	if w.shift == 32 {
		ensureCapacity(w.out[w.pos:], 1)
		w.out[w.pos] = int32(w.cur)
		w.pos++
		w.cur, w.shift = 0, 0
	}
}

// vbDecode decodes integers until num have been produced or, for a
// negative num, until the input is exhausted. It returns the number of words
// touched and integers written.
func vbDecode(in, out []int32, num int) (read, written int, err error) {
	var v uint32
	shift, op := 0, 0
	for ip, word := range in {
		for s := 0; s < 32; s += 8 {
			c := uint32(word) >> s & 0xFF
			if shift > vbMaxShift {
				return ip, op, fmt.Errorf("%w: VariableByte integer longer than 5 bytes at word %d", ErrInvalidBuffer, ip)
			}
			v |= (c & vbPayload) << shift
			if c&vbContinue != 0 {
				shift += 7
				continue
			}
			ensureCapacity(out[op:], 1)
			out[op] = int32(v)
			op++
			v, shift = 0, 0
			if op == num {
				return ip + 1, op, nil
			}
		}
	}
	return len(in), op, nil
}
