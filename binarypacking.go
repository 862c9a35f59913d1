package intcodec

import "fmt"

const (
	// binaryBlockSize is the number of integers sharing one bit width.
	binaryBlockSize = packGroupSize
	// binaryGroupBlocks blocks share one header word, 8 bits of width each.
	binaryGroupBlocks = 4
)

// BinaryPacking packs blocks of 32 integers at the smallest width covering
// each block. The widths of four consecutive blocks are stored in one header
// word (first block in the top byte), followed by the four packed blocks;
// a trailing run of fewer than four blocks gets one header word per block.
//
// Input is rounded down to a multiple of 32; the remainder is not consumed
// and is expected to be handled by another codec (see Composition).
type BinaryPacking struct{}

func (BinaryPacking) String() string { return "BinaryPacking" }

// Compress implements Codec.
func (c BinaryPacking) Compress(in, out []int32) (read, written int, err error) {
	return compressWithCount(c, in, out, binaryBlockSize)
}

// Uncompress implements Codec.
func (c BinaryPacking) Uncompress(in, out []int32) (read, written int, err error) {
	return uncompressWithCount(c, in, out)
}

// HeadlessCompress implements HeadlessCodec.
func (BinaryPacking) HeadlessCompress(in, out []int32) (read, written int, err error) {
	n := greatestMultiple(len(in), binaryBlockSize)
	ip, op := 0, 0
	const groupLen = binaryGroupBlocks * binaryBlockSize
	for ; ip+groupLen <= n; ip += groupLen {
		var widths [binaryGroupBlocks]int
		var header uint32
		for k := range widths {
			widths[k] = MaxBits(in[ip+k*binaryBlockSize : ip+(k+1)*binaryBlockSize])
			header = header<<8 | uint32(widths[k])
		}
		ensureCapacity(out[op:], 1)
		out[op] = int32(header)
		op++
		for k, b := range widths {
			PackBlockWithoutMask(in[ip+k*binaryBlockSize:], out[op:], b)
			op += b
		}
	}
	for ; ip < n; ip += binaryBlockSize {
		b := MaxBits(in[ip : ip+binaryBlockSize])
		ensureCapacity(out[op:], 1)
		out[op] = int32(b)
		op++
		PackBlockWithoutMask(in[ip:], out[op:], b)
		op += b
	}
	return n, op, nil
}

// HeadlessUncompress implements HeadlessCodec.
func (BinaryPacking) HeadlessUncompress(in, out []int32, num int) (read, written int, err error) {
	n := greatestMultiple(num, binaryBlockSize)
	ensureCapacity(out, n)
	ip, op := 0, 0
	const groupLen = binaryGroupBlocks * binaryBlockSize
	for ; op+groupLen <= n; op += groupLen {
		if ip >= len(in) {
			return ip, op, fmt.Errorf("%w: missing block header at word %d", ErrInvalidBuffer, ip)
		}
		header := uint32(in[ip])
		ip++
		for k := range binaryGroupBlocks {
			b := int(header >> (8 * (binaryGroupBlocks - 1 - k)) & 0xFF)
			if b > maxBitWidth {
				return ip, op, fmt.Errorf("%w: bit width %d in block header", ErrInvalidBuffer, b)
			}
			UnpackBlock(in[ip:], out[op+k*binaryBlockSize:], b)
			ip += b
		}
	}
	for ; op < n; op += binaryBlockSize {
		if ip >= len(in) {
			return ip, op, fmt.Errorf("%w: missing block header at word %d", ErrInvalidBuffer, ip)
		}
		b := int(in[ip])
		ip++
		if b < 0 || b > maxBitWidth {
			return ip, op, fmt.Errorf("%w: bit width %d in block header", ErrInvalidBuffer, b)
		}
		UnpackBlock(in[ip:], out[op:], b)
		ip += b
	}
	return ip, n, nil
}
