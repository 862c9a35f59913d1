package intcodec

import "fmt"

// JustCopy stores integers verbatim. It is the baseline every other codec is
// measured against and a safe second stage for incompressible data.
type JustCopy struct{}

func (JustCopy) String() string { return "JustCopy" }

// Compress implements Codec. The output carries no header, so Uncompress
// copies its whole input.
func (JustCopy) Compress(in, out []int32) (read, written int, err error) {
	ensureCapacity(out, len(in))
	n := copy(out, in)
	return n, n, nil
}

// Uncompress implements Codec.
func (JustCopy) Uncompress(in, out []int32) (read, written int, err error) {
	ensureCapacity(out, len(in))
	n := copy(out, in)
	return n, n, nil
}

// HeadlessCompress implements HeadlessCodec.
func (c JustCopy) HeadlessCompress(in, out []int32) (read, written int, err error) {
	return c.Compress(in, out)
}

// HeadlessUncompress implements HeadlessCodec.
func (JustCopy) HeadlessUncompress(in, out []int32, num int) (read, written int, err error) {
	ensureCapacity(out, num)
	if num > len(in) {
		n := copy(out, in)
		return n, n, fmt.Errorf("%w: %d words hold fewer than %d integers", ErrInvalidBuffer, len(in), num)
	}
	n := copy(out[:num], in)
	return n, n, nil
}
