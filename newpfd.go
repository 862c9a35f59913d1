package intcodec

import "fmt"

const (
	// pfdBlockSize is the block length of NewPFD and OptPFD.
	pfdBlockSize = 128

	// -----------------------------------------------------------------------------
	// Block header layout
	// -----------------------------------------------------------------------------
	//
	//	Bits  0-7:   base bit width (0-32)
	//	Bits  8-16:  exception count (0-127)
	//	Bits 17-31:  words of secondary-coded exception data that follow
	pfdWidthMask  = 0xFF
	pfdCountShift = 8
	pfdCountMask  = 0x1FF
	pfdWordsShift = 17

	// pfdMaxHighBits bounds the exception high parts so that the secondary
	// codec (S9/S16, 28-bit payload) can always store them.
	pfdMaxHighBits = selectorPayloadBits
)

// widthSearchFunc chooses the base width of one block. excBuf is scratch of
// at least 2*pfdBlockSize integers.
type widthSearchFunc func(block []int32, h *widthHistogram, maxB, minB int, ec ExceptionCodec, excBuf []int32) (int, error)

// NewPFD is the patched frame of reference codec of Yan, Ding and Suel over
// blocks of 128 integers. Each block is packed at a base width chosen by a
// greedy descent over the patching cost model, and the positions and high
// bits of the values that do not fit are compressed right away with a
// pluggable ExceptionCodec (S16 when Exceptions is nil).
//
// Block layout: a header word (see pfdWidthMask and friends), the
// secondary-coded exceptions (gap-coded positions, then high bits) and
// four groups of 32 integers packed at the base width.
type NewPFD struct {
	Exceptions ExceptionCodec
}

func (c NewPFD) String() string { return fmt.Sprintf("NewPFD[%v]", exceptionCodecOrDefault(c.Exceptions)) }

// Compress implements Codec.
func (c NewPFD) Compress(in, out []int32) (read, written int, err error) {
	return compressWithCount(c, in, out, pfdBlockSize)
}

// Uncompress implements Codec.
func (c NewPFD) Uncompress(in, out []int32) (read, written int, err error) {
	return uncompressWithCount(c, in, out)
}

// HeadlessCompress implements HeadlessCodec.
func (c NewPFD) HeadlessCompress(in, out []int32) (read, written int, err error) {
	return pfdCompress(in, out, exceptionCodecOrDefault(c.Exceptions), greedyPFDWidth)
}

// HeadlessUncompress implements HeadlessCodec.
func (c NewPFD) HeadlessUncompress(in, out []int32, num int) (read, written int, err error) {
	return pfdUncompress(in, out, num, exceptionCodecOrDefault(c.Exceptions))
}

func exceptionCodecOrDefault(ec ExceptionCodec) ExceptionCodec {
	if ec == nil {
		return S16{}
	}
	return ec
}

// greedyPFDWidth applies the shared greedy cost model.
func greedyPFDWidth(_ []int32, h *widthHistogram, maxB, minB int, _ ExceptionCodec, _ []int32) (int, error) {
	b, _ := greedyWidth(h, maxB, minB, pfdBlockSize)
	return b, nil
}

func pfdCompress(in, out []int32, ec ExceptionCodec, search widthSearchFunc) (read, written int, err error) {
	n := greatestMultiple(len(in), pfdBlockSize)
	var h widthHistogram
	var excBuf [2 * pfdBlockSize]int32
	op := 0
	for ip := 0; ip < n; ip += pfdBlockSize {
		block := in[ip : ip+pfdBlockSize]
		maxB := h.fill(block)
		minB := max(0, maxB-pfdMaxHighBits)
		b, err := search(block, &h, maxB, minB, ec, excBuf[:])
		if err != nil {
			return ip, op, err
		}
		w, err := encodePFDBlock(block, out[op:], b, ec, excBuf[:])
		if err != nil {
			return ip, op, err
		}
		op += w
	}
	return n, op, nil
}

func pfdUncompress(in, out []int32, num int, ec ExceptionCodec) (read, written int, err error) {
	n := greatestMultiple(num, pfdBlockSize)
	ensureCapacity(out, n)
	var excBuf [2 * pfdBlockSize]int32
	ip := 0
	for op := 0; op < n; op += pfdBlockSize {
		r, err := decodePFDBlock(in[ip:], out[op:op+pfdBlockSize], ec, excBuf[:])
		if err != nil {
			return ip, op, err
		}
		ip += r
	}
	return ip, n, nil
}

// collectExceptions writes the gap-coded positions of the values of block
// wider than b to buf[:n] and their high parts to buf[n:2n], returning n.
func collectExceptions(block []int32, b int, buf []int32) int {
	n := 0
	for _, v := range block {
		if uint32(v)>>b != 0 {
			n++
		}
	}
	prev, i := -1, 0
	for k, v := range block {
		if high := uint32(v) >> b; high != 0 {
			buf[i] = int32(k - prev - 1)
			buf[n+i] = int32(high)
			prev = k
			i++
		}
	}
	return n
}

func encodePFDBlock(block, out []int32, b int, ec ExceptionCodec, excBuf []int32) (int, error) {
	ensureCapacity(out, 1)
	exc := collectExceptions(block, b, excBuf)
	op := 1
	if exc > 0 {
		w, err := ec.Compress(excBuf[:2*exc], out[op:])
		if err != nil {
			return 0, err
		}
		op += w
	}
	out[0] = int32(uint32(b) | uint32(exc)<<pfdCountShift | uint32(op-1)<<pfdWordsShift)
	for k := 0; k < pfdBlockSize; k += packGroupSize {
		PackBlock(block[k:], out[op:], b)
		op += b
	}
	return op, nil
}

func decodePFDBlock(in, out []int32, ec ExceptionCodec, excBuf []int32) (int, error) {
	if len(in) == 0 {
		return 0, fmt.Errorf("%w: missing block header", ErrInvalidBuffer)
	}
	header := uint32(in[0])
	b := int(header & pfdWidthMask)
	exc := int(header >> pfdCountShift & pfdCountMask)
	words := int(header >> pfdWordsShift)
	if b > maxBitWidth || exc >= pfdBlockSize || 1+words > len(in) {
		return 0, fmt.Errorf("%w: block header %#08x", ErrInvalidBuffer, header)
	}
	ip := 1
	if exc > 0 {
		if _, err := ec.Uncompress(in[ip:ip+words], excBuf[:2*exc]); err != nil {
			return 0, err
		}
	}
	ip += words
	if ip+pfdBlockSize/packGroupSize*b > len(in) {
		return 0, fmt.Errorf("%w: block of width %d truncated", ErrInvalidBuffer, b)
	}
	for k := 0; k < pfdBlockSize; k += packGroupSize {
		UnpackBlock(in[ip:], out[k:], b)
		ip += b
	}
	pos := -1
	for i := range exc {
		pos += int(excBuf[i]) + 1
		if pos < 0 || pos >= pfdBlockSize {
			return 0, fmt.Errorf("%w: exception position %d", ErrInvalidBuffer, pos)
		}
		out[pos] = int32(uint32(out[pos]) | uint32(excBuf[exc+i])<<b)
	}
	return ip, nil
}
