package intcodec

import "fmt"

// OptPFD shares NewPFD's block format but picks each block's base width by
// evaluating every candidate and keeping the global minimum. Exceptions are
// costed with the secondary codec's exact EstimateSize instead of the fixed
// per-exception overhead, which makes compression slower and the output
// smaller.
type OptPFD struct {
	Exceptions ExceptionCodec
}

func (c OptPFD) String() string { return fmt.Sprintf("OptPFD[%v]", exceptionCodecOrDefault(c.Exceptions)) }

// Compress implements Codec.
func (c OptPFD) Compress(in, out []int32) (read, written int, err error) {
	return compressWithCount(c, in, out, pfdBlockSize)
}

// Uncompress implements Codec.
func (c OptPFD) Uncompress(in, out []int32) (read, written int, err error) {
	return uncompressWithCount(c, in, out)
}

// HeadlessCompress implements HeadlessCodec.
func (c OptPFD) HeadlessCompress(in, out []int32) (read, written int, err error) {
	return pfdCompress(in, out, exceptionCodecOrDefault(c.Exceptions), optimalPFDWidth)
}

// HeadlessUncompress implements HeadlessCodec.
func (c OptPFD) HeadlessUncompress(in, out []int32, num int) (read, written int, err error) {
	return pfdUncompress(in, out, num, exceptionCodecOrDefault(c.Exceptions))
}

// optimalPFDWidth scans every width from maxB down to minB. Costs are in
// bits: the packed payload plus 32 bits per secondary-coded word. Ties keep
// the wider candidate, which has fewer exceptions.
func optimalPFDWidth(block []int32, h *widthHistogram, maxB, minB int, ec ExceptionCodec, excBuf []int32) (int, error) {
	bestB := maxB
	bestCost := maxB * pfdBlockSize
	for b := maxB - 1; b >= minB; b-- {
		exc := h.exceptionsAbove(b)
		if exc == pfdBlockSize {
			break
		}
		collectExceptions(block, b, excBuf)
		words, err := ec.EstimateSize(excBuf[:2*exc])
		if err != nil {
			return 0, err
		}
		if cost := b*pfdBlockSize + 32*words; cost < bestCost {
			bestB, bestCost = b, cost
		}
	}
	return bestB, nil
}
