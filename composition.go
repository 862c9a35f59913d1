package intcodec

import "fmt"

// Composition chains two codecs: First encodes as much as it accepts (a
// whole number of blocks, for a block codec) and Second encodes the rest.
// Second must accept any number of integers; VariableByte and JustCopy do.
//
// When First produces no output, a single zero word takes its place so the
// decoder knows to skip straight to Second. First must therefore never start
// its output with a zero word; codecs writing a count header never do.
type Composition struct {
	First, Second Codec
}

func (c Composition) String() string { return fmt.Sprintf("%v+%v", c.First, c.Second) }

// Compress implements Codec.
func (c Composition) Compress(in, out []int32) (read, written int, err error) {
	if len(in) == 0 {
		return 0, 0, nil
	}
	r1, w1, err := c.First.Compress(in, out)
	if err != nil {
		return r1, w1, err
	}
	if w1 == 0 {
		ensureCapacity(out, 1)
		out[0] = 0
		w1 = 1
	}
	r2, w2, err := c.Second.Compress(in[r1:], out[w1:])
	return r1 + r2, w1 + w2, err
}

// Uncompress implements Codec.
func (c Composition) Uncompress(in, out []int32) (read, written int, err error) {
	if len(in) == 0 {
		return 0, 0, nil
	}
	var r1, w1 int
	if in[0] == 0 {
		r1 = 1
	} else {
		r1, w1, err = c.First.Uncompress(in, out)
		if err != nil {
			return r1, w1, err
		}
	}
	r2, w2, err := c.Second.Uncompress(in[r1:], out[w1:])
	return r1 + r2, w1 + w2, err
}

// HeadlessComposition chains two headless codecs. The caller records the
// total count; First decodes the largest block multiple of it and Second the
// remainder, so no marker word is needed.
type HeadlessComposition struct {
	First, Second HeadlessCodec
}

func (c HeadlessComposition) String() string { return fmt.Sprintf("%v+%v", c.First, c.Second) }

// HeadlessCompress implements HeadlessCodec.
func (c HeadlessComposition) HeadlessCompress(in, out []int32) (read, written int, err error) {
	r1, w1, err := c.First.HeadlessCompress(in, out)
	if err != nil {
		return r1, w1, err
	}
	r2, w2, err := c.Second.HeadlessCompress(in[r1:], out[w1:])
	return r1 + r2, w1 + w2, err
}

// HeadlessUncompress implements HeadlessCodec.
func (c HeadlessComposition) HeadlessUncompress(in, out []int32, num int) (read, written int, err error) {
	ensureCapacity(out, num)
	r1, w1, err := c.First.HeadlessUncompress(in, out, num)
	if err != nil {
		return r1, w1, err
	}
	r2, w2, err := c.Second.HeadlessUncompress(in[r1:], out[w1:], num-w1)
	return r1 + r2, w1 + w2, err
}
