package intcodec

import (
	"fmt"
	"math/bits"
)

// Bit packing configuration. Every pack/unpack call handles exactly one
// group of 32 integers, so a width of b bits always produces b words.
const (
	// packGroupSize is the number of integers handled by one pack call.
	packGroupSize = 32
	// maxBitWidth is the widest lane; packing at 32 bits is a plain copy.
	maxBitWidth = 32

	// mathMaxUint32 is the maximum uint32, used while constructing bit masks without conversions.
	mathMaxUint32 = ^uint32(0)
)

// PackBlock packs the first 32 integers of in into the first b words of out,
// keeping only the low b bits of every value. Value i occupies bits
// [i*b, i*b+b) of the virtual bit stream formed by the output words, so it
// may straddle two words. Nothing is written for b == 0.
func PackBlock(in, out []int32, b int) {
	validatePackArgs(len(in), len(out), b)
	packGroup(in, out, b, true)
}

// PackBlockWithoutMask is PackBlock for inputs that already fit in b bits.
// Bits above b are not cleared and leak into neighbouring lanes, so callers
// must only use it when MaxBits(in[:32]) <= b.
func PackBlockWithoutMask(in, out []int32, b int) {
	validatePackArgs(len(in), len(out), b)
	packGroup(in, out, b, false)
}

// UnpackBlock reverses PackBlock: it reads b words from in and writes 32
// integers to out. For b == 0 it writes 32 zeros.
func UnpackBlock(in, out []int32, b int) {
	validatePackArgs(len(out), len(in), b)
	unpackGroup(in, out, b)
}

// MaxBits returns the number of bits needed to represent every value of in,
// treating values as unsigned bit patterns.
func MaxBits(in []int32) int {
	var orAll uint32
	for _, v := range in {
		orAll |= uint32(v)
	}
	return bits.Len32(orAll)
}

// BitWidth returns the number of bits needed to represent v as an unsigned
// bit pattern. Negative values need 32 bits.
func BitWidth(v int32) int {
	return bits.Len32(uint32(v))
}

// validatePackArgs panics on calls that would read or write outside the
// provided spans.
func validatePackArgs(values, words, b int) {
	if b < 0 || b > maxBitWidth {
		panic(fmt.Sprintf("intcodec: bit width %d outside [0,32]", b))
	}
	if values < packGroupSize {
		panic(fmt.Sprintf("intcodec: need %d integers for a packed group, got %d", packGroupSize, values))
	}
	if words < b {
		panic(fmt.Sprintf("intcodec: need %d words for a %d-bit group, got %d", b, b, words))
	}
}

func laneMask(b int) uint32 {
	if b >= maxBitWidth {
		return mathMaxUint32
	}
	return uint32(1)<<b - 1
}

func packGroup(in, out []int32, b int, masked bool) {
	switch {
	case b == 0:
		return
	case b == maxBitWidth:
		copy(out[:packGroupSize], in[:packGroupSize])
	case maxBitWidth%b == 0:
		packAligned(in, out, b, masked)
	default:
		packStraddling(in, out, b, masked)
	}
}

// packAligned handles widths dividing 32 (1, 2, 4, 8, 16): no lane ever
// crosses a word boundary, so each word is assembled independently.
func packAligned(in, out []int32, b int, masked bool) {
	perWord := maxBitWidth / b
	mask := mathMaxUint32
	if masked {
		mask = laneMask(b)
	}
	src := in[:packGroupSize]
	for w := range b {
		var word uint32
		for j, v := range src[w*perWord : (w+1)*perWord] {
			word |= (uint32(v) & mask) << (j * b)
		}
		out[w] = int32(word)
	}
}

// packStraddling streams the group through a 64-bit accumulator and flushes
// a word whenever 32 bits are available.
//
// Rough C++ equivalent (FastPFor.cpp::fastpackwithoutmask):
//
//	for(uint32_t i = 0; i < 32; ++i) {
//	  buffer |= (uint64_t)(input[i] & mask) << bitOffset;
//	  bitOffset += bitWidth;
//	  if(bitOffset >= 32) { *out++ = uint32_t(buffer); buffer >>= 32; bitOffset -= 32; }
//	}
func packStraddling(in, out []int32, b int, masked bool) {
	mask := uint64(mathMaxUint32)
	if masked {
		mask = uint64(laneMask(b))
	}
	var acc uint64
	var bitsInAcc, o int
	for _, v := range in[:packGroupSize] {
		acc |= (uint64(uint32(v)) & mask) << bitsInAcc
		bitsInAcc += b
		if bitsInAcc >= maxBitWidth {
			out[o] = int32(uint32(acc))
			o++
			acc >>= 32
			bitsInAcc -= 32
		}
	}
}

func unpackGroup(in, out []int32, b int) {
	switch {
	case b == 0:
		clear(out[:packGroupSize])
	case b == maxBitWidth:
		copy(out[:packGroupSize], in[:packGroupSize])
	case maxBitWidth%b == 0:
		perWord := maxBitWidth / b
		mask := laneMask(b)
		dst := out[:packGroupSize]
		for w := range b {
			word := uint32(in[w])
			for j := range perWord {
				dst[w*perWord+j] = int32((word >> (j * b)) & mask)
			}
		}
	default:
		mask := uint64(laneMask(b))
		var acc uint64
		var bitsInAcc, w int
		for i := range packGroupSize {
			if bitsInAcc < b {
				acc |= uint64(uint32(in[w])) << bitsInAcc
				w++
				bitsInAcc += 32
			}
			out[i] = int32(uint32(acc & mask))
			acc >>= b
			bitsInAcc -= b
		}
	}
}

// packedWords returns the number of words needed to hold n integers of b
// bits, which is what a partial trailing group occupies once trimmed.
func packedWords(n, b int) int {
	return (n*b + 31) / 32
}

// packPartial packs in (at most 32 integers, zero padded when shorter) and
// writes only the words that carry data. It returns the number of words
// written.
func packPartial(in, out []int32, b int) int {
	if len(in) >= packGroupSize {
		PackBlock(in, out, b)
		return b
	}
	var src, tmp [packGroupSize]int32
	copy(src[:], in)
	PackBlock(src[:], tmp[:], b)
	n := packedWords(len(in), b)
	copy(out[:n], tmp[:n])
	return n
}

// unpackPartial reads the words written by packPartial for count integers
// and writes count integers to out. It returns the number of words read.
func unpackPartial(in, out []int32, b, count int) int {
	if count >= packGroupSize {
		UnpackBlock(in, out, b)
		return b
	}
	n := packedWords(count, b)
	if len(in) < n {
		panic(fmt.Sprintf("intcodec: truncated packed group (need %d words, got %d)", n, len(in)))
	}
	var src, tmp [packGroupSize]int32
	copy(src[:], in[:n])
	UnpackBlock(src[:], tmp[:], b)
	copy(out[:count], tmp[:count])
	return n
}

// extractPacked reads value i of a group packed at width b from its b
// words without unpacking the others.
func extractPacked(words []int32, b, i int) int32 {
	if b == 0 {
		return 0
	}
	bitPos := i * b
	w, off := bitPos>>5, bitPos&31
	acc := uint64(uint32(words[w]))
	if off+b > maxBitWidth {
		acc |= uint64(uint32(words[w+1])) << 32
	}
	return int32(uint32(acc>>off) & laneMask(b))
}
