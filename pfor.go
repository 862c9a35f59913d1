package intcodec

import "math/bits"

// exceptionOverhead is the modelled cost in bits of recording one exception
// position.
const exceptionOverhead = 8

// widthHistogram counts how many values of a block need exactly k bits.
type widthHistogram [maxBitWidth + 1]int

// fill builds the histogram of block and returns the block's maximal width.
func (h *widthHistogram) fill(block []int32) int {
	clear(h[:])
	var orAll uint32
	for _, v := range block {
		u := uint32(v)
		h[bits.Len32(u)]++
		orAll |= u
	}
	return bits.Len32(orAll)
}

// patchCost is the modelled size in bits of a block of blockSize values
// packed at width b when exc values need up to maxB bits. When only one bit
// spills over (maxB-b == 1) the high bits need not be stored at all, since
// every exception's high part is exactly 1.
func patchCost(exc, maxB, b, blockSize int) int {
	cost := exc*exceptionOverhead + exc*(maxB-b) + b*blockSize
	if maxB-b == 1 {
		cost -= exc
	}
	return cost
}

// greedyWidth picks the base width of a patched block. It mirrors
// FastPFOR's getBestBFromData cost model, but descends from maxB-1 only
// while each step improves on the best cost so far and stops at the first
// step that does not. Widths below minB are never considered, and the scan
// ends before every value of the block would become an exception.
func greedyWidth(h *widthHistogram, maxB, minB, blockSize int) (bestB, bestExc int) {
	bestB = maxB
	bestCost := maxB * blockSize
	exc := 0
	for b := maxB - 1; b >= minB; b-- {
		exc += h[b+1]
		if exc == blockSize {
			break
		}
		cost := patchCost(exc, maxB, b, blockSize)
		if cost >= bestCost {
			break
		}
		bestCost, bestB, bestExc = cost, b, exc
	}
	return bestB, bestExc
}

// exceptionsAbove counts the values of h needing more than b bits.
func (h *widthHistogram) exceptionsAbove(b int) int {
	n := 0
	for k := b + 1; k <= maxBitWidth; k++ {
		n += h[k]
	}
	return n
}
