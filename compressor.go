package intcodec

import "fmt"

// Compressor turns an integer slice into a self-describing compressed buffer
// and back. The buffer starts with the integer count, followed by the output
// of a HeadlessCodec; unlike the Codec methods, Compressor allocates its
// result and trims it to the exact size.
//
// A Compressor is safe for concurrent use if its codec is; the default one
// is.
type Compressor struct {
	codec HeadlessCodec
}

// NewCompressor returns a Compressor chaining FastPFOR over blocks of 256
// integers with VariableByte for the tail.
func NewCompressor() *Compressor {
	return NewCompressorWith(HeadlessComposition{First: NewFastPFOR256(), Second: VariableByte{}})
}

// NewCompressorWith returns a Compressor over h. h must encode every integer
// it is given; wrap block codecs in a HeadlessComposition.
func NewCompressorWith(h HeadlessCodec) *Compressor {
	return &Compressor{codec: h}
}

func (c *Compressor) String() string { return fmt.Sprint(c.codec) }

// Compress returns the compressed form of in.
func (c *Compressor) Compress(in []int32) ([]int32, error) {
	buf := make([]int32, MaxCompressedLen(len(in)))
	buf[0] = int32(len(in))
	read, written, err := c.codec.HeadlessCompress(in, buf[1:])
	if err != nil {
		return nil, err
	}
	if read != len(in) {
		return nil, fmt.Errorf("%w: %v encoded %d of %d integers", ErrInvalidBuffer, c.codec, read, len(in))
	}
	return buf[:1+written:1+written], nil
}

// Uncompress decodes a buffer produced by Compress.
func (c *Compressor) Uncompress(buf []int32) ([]int32, error) {
	return c.UncompressTo(nil, buf)
}

// UncompressTo decodes a buffer produced by Compress into dst, reusing its
// capacity when it suffices.
func (c *Compressor) UncompressTo(dst, buf []int32) ([]int32, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: missing integer count", ErrInvalidBuffer)
	}
	n := int(buf[0])
	if n < 0 {
		return nil, fmt.Errorf("%w: negative integer count %d", ErrInvalidBuffer, n)
	}
	if cap(dst) < n {
		dst = make([]int32, n)
	}
	dst = dst[:n]
	_, written, err := c.codec.HeadlessUncompress(buf[1:], dst, n)
	if err != nil {
		return nil, err
	}
	if written != n {
		return nil, fmt.Errorf("%w: decoded %d integers, header announced %d", ErrInvalidBuffer, written, n)
	}
	return dst, nil
}

// AppendCompressed appends the little-endian byte serialization of the
// compressed form of in to dst.
func (c *Compressor) AppendCompressed(dst []byte, in []int32) ([]byte, error) {
	words, err := c.Compress(in)
	if err != nil {
		return dst, err
	}
	return AppendBytes(dst, words), nil
}

// UncompressBytes decodes a byte buffer produced by AppendCompressed into
// dst, reusing its capacity when it suffices.
func (c *Compressor) UncompressBytes(dst []int32, buf []byte) ([]int32, error) {
	words, err := DecodeBytes(nil, buf)
	if err != nil {
		return nil, err
	}
	return c.UncompressTo(dst, words)
}
