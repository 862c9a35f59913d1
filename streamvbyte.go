package intcodec

import (
	"fmt"

	"github.com/mhr3/streamvbyte"
)

// StreamVByte adapts the StreamVByte byte-oriented format of Lemire, Kurz
// and Rupp to the word interface. Values are treated as unsigned and take
// one to four bytes each.
//
// Layout: the integer count (Compress only), the encoded length in bytes,
// then the encoded bytes packed four per word, little-endian. The encoded
// bytes start with one control byte per four values (2 bits each, code+1 =
// byte length) followed by the data bytes.
type StreamVByte struct{}

func (StreamVByte) String() string { return "StreamVByte" }

// Compress implements Codec.
func (c StreamVByte) Compress(in, out []int32) (read, written int, err error) {
	return compressWithCount(c, in, out, 1)
}

// Uncompress implements Codec.
func (c StreamVByte) Uncompress(in, out []int32) (read, written int, err error) {
	return uncompressWithCount(c, in, out)
}

// HeadlessCompress implements HeadlessCodec.
func (StreamVByte) HeadlessCompress(in, out []int32) (read, written int, err error) {
	if len(in) == 0 {
		return 0, 0, nil
	}
	encoded := streamvbyte.EncodeUint32(asUint32(in), &streamvbyte.EncodeOptions[uint32]{
		Buffer: make([]byte, streamvbyte.MaxEncodedLen(len(in))),
	})
	ensureCapacity(out, 1)
	out[0] = int32(len(encoded))
	return len(in), 1 + putBytes(out[1:], encoded), nil
}

// HeadlessUncompress implements HeadlessCodec.
func (StreamVByte) HeadlessUncompress(in, out []int32, num int) (read, written int, err error) {
	ensureCapacity(out, num)
	if num == 0 {
		return 0, 0, nil
	}
	n, err := svbEncodedLen(in, num)
	if err != nil {
		return 0, 0, err
	}
	words := (n + 3) / 4
	encoded := getBytes(make([]byte, 0, n), in[1:1+words], n)
	if need := svbEncodedSize(encoded, num); need > n {
		return 0, 0, fmt.Errorf("%w: StreamVByte data needs %d bytes, has %d", ErrInvalidBuffer, need, n)
	}
	dst := asUint32(out[:num])
	decoded := streamvbyte.DecodeUint32(encoded, num, &streamvbyte.DecodeOptions[uint32]{
		Buffer: dst,
	})
	copy(dst, decoded)
	return 1 + words, num, nil
}

// StreamVByteAt decodes the value at index of a headless StreamVByte body
// holding count integers without decoding the others. It panics if index is
// out of range.
func StreamVByteAt(body []int32, count, index int) (int32, error) {
	if index < 0 || index >= count {
		panic(fmt.Sprintf("intcodec: StreamVByte index %d out of range [0,%d)", index, count))
	}
	n, err := svbEncodedLen(body, count)
	if err != nil {
		return 0, err
	}
	data := body[1 : 1+(n+3)/4]
	controlBytes := (count + 3) >> 2

	// Sum the data sizes of all control groups before ours.
	group, lane := index>>2, index&3
	offset := controlBytes
	for i := range group {
		offset += svbControlBlockSize(wordByte(data, i))
	}
	ctrl := wordByte(data, group)
	for i := range lane {
		offset += int(ctrl>>(2*i)&3) + 1
	}
	length := int(ctrl>>(2*lane)&3) + 1
	if offset+length > n {
		return 0, fmt.Errorf("%w: StreamVByte value %d ends past byte %d", ErrInvalidBuffer, index, n)
	}
	var v uint32
	for k := range length {
		v |= uint32(wordByte(data, offset+k)) << (8 * k)
	}
	return int32(v), nil
}

// svbEncodedLen validates the length word of a headless body.
func svbEncodedLen(in []int32, count int) (int, error) {
	if len(in) == 0 {
		return 0, fmt.Errorf("%w: missing StreamVByte length", ErrInvalidBuffer)
	}
	n := int(in[0])
	if n < (count+3)>>2 || (n+3)/4 > len(in)-1 {
		return 0, fmt.Errorf("%w: StreamVByte length %d for %d integers in %d words",
			ErrInvalidBuffer, n, count, len(in)-1)
	}
	return n, nil
}

// svbEncodedSize returns the total length in bytes announced by the control
// bytes of an encoded block of count values.
func svbEncodedSize(encoded []byte, count int) int {
	controlBytes := (count + 3) >> 2
	size := controlBytes
	for _, ctrl := range encoded[:controlBytes] {
		size += svbControlBlockSize(ctrl)
	}
	// The last control byte may describe fewer than four values.
	if rem := count & 3; rem != 0 {
		ctrl := encoded[controlBytes-1]
		for lane := rem; lane < 4; lane++ {
			size -= int(ctrl>>(2*lane)&3) + 1
		}
	}
	return size
}

// svbControlBlockSizeLUT holds, for every control byte, the sum of the byte
// lengths of the four values it describes.
var svbControlBlockSizeLUT [256]uint8

func init() {
	for ctrl := range 256 {
		size := (ctrl & 0x03) + ((ctrl >> 2) & 0x03) + ((ctrl >> 4) & 0x03) + (ctrl >> 6) + 4
		svbControlBlockSizeLUT[ctrl] = uint8(size)
	}
}

func svbControlBlockSize(ctrl byte) int {
	return int(svbControlBlockSizeLUT[ctrl])
}
