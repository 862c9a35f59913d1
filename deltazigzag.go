package intcodec

import "fmt"

// DeltaZigzagEncoder turns a sequence into zigzag-encoded differences
// between consecutive values. The running previous value is the encoder's
// context; it starts at zero or at the value given to the constructor.
//
// Encoders and decoders are stateful and must not be shared between
// goroutines.
type DeltaZigzagEncoder struct {
	previous int32
}

// NewDeltaZigzagEncoder returns an encoder whose first delta is taken
// against ctx.
func NewDeltaZigzagEncoder(ctx int32) *DeltaZigzagEncoder {
	return &DeltaZigzagEncoder{previous: ctx}
}

// Encode returns zigzag(v - previous) and makes v the new context.
func (e *DeltaZigzagEncoder) Encode(v int32) int32 {
	d := v - e.previous
	e.previous = v
	return int32(zigzagEncode32(d))
}

// EncodeArray encodes src into dst, which must be at least as long. src and
// dst may be the same slice.
func (e *DeltaZigzagEncoder) EncodeArray(src, dst []int32) {
	ensureCapacity(dst, len(src))
	prev := e.previous
	for i, v := range src {
		dst[i] = int32(zigzagEncode32(v - prev))
		prev = v
	}
	e.previous = prev
}

// Context returns the value the next delta is taken against.
func (e *DeltaZigzagEncoder) Context() int32 { return e.previous }

// SetContext replaces the running context.
func (e *DeltaZigzagEncoder) SetContext(ctx int32) { e.previous = ctx }

// DeltaZigzagDecoder reverses DeltaZigzagEncoder. It has to see the values
// in the order they were encoded: its context is the prefix sum so far.
type DeltaZigzagDecoder struct {
	previous int32
}

// NewDeltaZigzagDecoder returns a decoder starting from ctx, which must
// match the context the encoder started from.
func NewDeltaZigzagDecoder(ctx int32) *DeltaZigzagDecoder {
	return &DeltaZigzagDecoder{previous: ctx}
}

// Decode returns previous + unzigzag(v) and makes it the new context.
func (d *DeltaZigzagDecoder) Decode(v int32) int32 {
	d.previous += zigzagDecode32(uint32(v))
	return d.previous
}

// DecodeArray decodes src into dst, which must be at least as long. src and
// dst may be the same slice.
func (d *DeltaZigzagDecoder) DecodeArray(src, dst []int32) {
	ensureCapacity(dst, len(src))
	prev := d.previous
	for i, v := range src {
		prev += zigzagDecode32(uint32(v))
		dst[i] = prev
	}
	d.previous = prev
}

// Context returns the last decoded value.
func (d *DeltaZigzagDecoder) Context() int32 { return d.previous }

// SetContext replaces the running context.
func (d *DeltaZigzagDecoder) SetContext(ctx int32) { d.previous = ctx }

// zigzagEncode32 maps signed integers to unsigned ones so that values of
// small magnitude get small codes: 0, -1, 1, -2 become 0, 1, 2, 3.
func zigzagEncode32(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31)
}

// zigzagDecode32 decodes a zigzag integer back into a 32-bit integer.
func zigzagDecode32(v uint32) int32 {
	return int32((v >> 1) ^ uint32(-(int32(v & 1))))
}

// DeltaZigzag filters the input of Inner through a DeltaZigzagEncoder
// starting at context zero, so that sorted or slowly varying sequences
// reach the inner codec as small non-negative integers.
//
// Compress needs scratch memory for the filtered copy; in is never
// modified. Uncompress filters the output of Inner in place.
type DeltaZigzag struct {
	Inner Codec
}

func (c DeltaZigzag) String() string { return fmt.Sprintf("DeltaZigzag[%v]", c.Inner) }

// Compress implements Codec.
func (c DeltaZigzag) Compress(in, out []int32) (read, written int, err error) {
	if len(in) == 0 {
		return c.Inner.Compress(in, out)
	}
	deltas := make([]int32, len(in))
	NewDeltaZigzagEncoder(0).EncodeArray(in, deltas)
	return c.Inner.Compress(deltas, out)
}

// Uncompress implements Codec.
func (c DeltaZigzag) Uncompress(in, out []int32) (read, written int, err error) {
	read, written, err = c.Inner.Uncompress(in, out)
	if err != nil {
		return read, written, err
	}
	NewDeltaZigzagDecoder(0).DecodeArray(out[:written], out[:written])
	return read, written, nil
}
