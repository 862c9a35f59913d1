package intcodec

import (
	"fmt"
	"slices"
	"sync"
)

// FastPFOR configuration constants.
const (
	// DefaultPageSize bounds the number of integers whose exceptions are
	// gathered before they are flushed to the output.
	DefaultPageSize = 65536

	// -----------------------------------------------------------------------------
	// Page layout
	// -----------------------------------------------------------------------------
	//
	//	word   offset from the page start to the metadata length word
	//	words  packed blocks, blockSize/32 groups of bestB words each
	//	word   metadata length in bytes
	//	words  metadata bytes, four per word, little-endian, zero padded
	//	word   bucket bitmap, bit k-1 set when bucket k (2..32) is present
	//	per present bucket k: a count word, then the count values packed at k bits
	//
	// Metadata bytes per block: bestB, exception count and, when the count is
	// non-zero, maxB followed by one position byte per exception. Exception
	// high parts are bucketed page-wide by maxB-bestB. Bucket 1 stores nothing:
	// its high part is always exactly 1.
	fastPFORMinBucket = 2
)

// FastPFOROption configures a FastPFOR codec.
type FastPFOROption func(*FastPFOR)

// WithPageSize sets the page size in integers. It is rounded down to a
// multiple of the block size, with one block as the minimum.
func WithPageSize(n int) FastPFOROption {
	return func(f *FastPFOR) {
		f.pageSize = n
	}
}

// FastPFOR is the FastPFOR codec of Lemire and Boytsov. Blocks of 128 or
// 256 integers are packed at a per-block base width chosen by the patching
// cost model; the high parts of the exceptions of a whole page are bucketed
// by their width and bit-packed once per page.
//
// Page-wide working memory lives in an Arena. CompressArena and
// UncompressArena use a caller owned Arena; the Codec methods borrow one
// from an internal pool, so a FastPFOR value may be shared between
// goroutines while an Arena may not.
type FastPFOR struct {
	blockSize int
	pageSize  int
	arenas    sync.Pool
}

// NewFastPFOR128 returns a FastPFOR codec over blocks of 128 integers.
func NewFastPFOR128(opts ...FastPFOROption) *FastPFOR {
	return newFastPFOR(128, opts)
}

// NewFastPFOR256 returns a FastPFOR codec over blocks of 256 integers.
func NewFastPFOR256(opts ...FastPFOROption) *FastPFOR {
	return newFastPFOR(256, opts)
}

func newFastPFOR(blockSize int, opts []FastPFOROption) *FastPFOR {
	f := &FastPFOR{blockSize: blockSize, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(f)
	}
	f.pageSize = max(greatestMultiple(f.pageSize, blockSize), blockSize)
	f.arenas.New = func() any { return f.NewArena() }
	return f
}

func (f *FastPFOR) String() string { return fmt.Sprintf("FastPFOR%d", f.blockSize) }

// BlockSize returns the number of integers per block (128 or 256).
func (f *FastPFOR) BlockSize() int { return f.blockSize }

// PageSize returns the number of integers per page.
func (f *FastPFOR) PageSize() int { return f.pageSize }

// Arena holds the page-wide scratch state of FastPFOR: the exception
// buckets, their read cursors, the metadata byte container and the width
// histogram. An Arena must not be used by two calls at the same time.
type Arena struct {
	blockSize int
	buckets   [maxBitWidth + 1][]int32
	pointers  [maxBitWidth + 1]int
	meta      []byte
	freqs     widthHistogram
}

// NewArena returns scratch memory sized for f's page size.
func (f *FastPFOR) NewArena() *Arena {
	return &Arena{
		blockSize: f.blockSize,
		meta:      make([]byte, 0, 3*f.pageSize/f.blockSize+f.pageSize),
	}
}

func (a *Arena) reset() {
	for k := range a.buckets {
		a.buckets[k] = a.buckets[k][:0]
	}
	clear(a.pointers[:])
	a.meta = a.meta[:0]
}

func (f *FastPFOR) checkArena(a *Arena) {
	if a == nil || a.blockSize != f.blockSize {
		panic(fmt.Sprintf("intcodec: arena does not belong to %v", f))
	}
}

// Compress implements Codec.
func (f *FastPFOR) Compress(in, out []int32) (read, written int, err error) {
	return compressWithCount(f, in, out, f.blockSize)
}

// Uncompress implements Codec.
func (f *FastPFOR) Uncompress(in, out []int32) (read, written int, err error) {
	return uncompressWithCount(f, in, out)
}

// HeadlessCompress implements HeadlessCodec.
func (f *FastPFOR) HeadlessCompress(in, out []int32) (read, written int, err error) {
	a := f.arenas.Get().(*Arena)
	defer f.arenas.Put(a)
	return f.CompressArena(a, in, out)
}

// HeadlessUncompress implements HeadlessCodec.
func (f *FastPFOR) HeadlessUncompress(in, out []int32, num int) (read, written int, err error) {
	a := f.arenas.Get().(*Arena)
	defer f.arenas.Put(a)
	return f.UncompressArena(a, in, out, num)
}

// CompressArena is HeadlessCompress with caller owned scratch memory.
func (f *FastPFOR) CompressArena(a *Arena, in, out []int32) (read, written int, err error) {
	f.checkArena(a)
	n := greatestMultiple(len(in), f.blockSize)
	ip, op := 0, 0
	for ip < n {
		size := min(f.pageSize, n-ip)
		op += f.encodePage(a, in[ip:ip+size], out[op:])
		ip += size
	}
	return n, op, nil
}

// UncompressArena is HeadlessUncompress with caller owned scratch memory.
func (f *FastPFOR) UncompressArena(a *Arena, in, out []int32, num int) (read, written int, err error) {
	f.checkArena(a)
	n := greatestMultiple(num, f.blockSize)
	ensureCapacity(out, n)
	ip, op := 0, 0
	for op < n {
		size := min(f.pageSize, n-op)
		r, err := f.decodePage(a, in[ip:], out[op:op+size])
		if err != nil {
			return ip, op, err
		}
		ip += r
		op += size
	}
	return ip, n, nil
}

// encodePage compresses one page (a multiple of the block size) and returns
// the number of words written.
func (f *FastPFOR) encodePage(a *Arena, in, out []int32) int {
	a.reset()
	bs := f.blockSize
	ensureCapacity(out, 1)
	op := 1
	for ip := 0; ip < len(in); ip += bs {
		block := in[ip : ip+bs]
		maxB := a.freqs.fill(block)
		bestB, exc := greedyWidth(&a.freqs, maxB, 0, bs)
		a.meta = append(a.meta, byte(bestB), byte(exc))
		if exc > 0 {
			a.meta = append(a.meta, byte(maxB))
			idx := maxB - bestB
			for k, v := range block {
				if high := uint32(v) >> bestB; high != 0 {
					a.meta = append(a.meta, byte(k))
					a.buckets[idx] = append(a.buckets[idx], int32(high))
				}
			}
		}
		for k := 0; k < bs; k += packGroupSize {
			PackBlock(block[k:], out[op:], bestB)
			op += bestB
		}
	}
	out[0] = int32(op)

	ensureCapacity(out[op:], 1)
	out[op] = int32(len(a.meta))
	op++
	op += putBytes(out[op:], a.meta)

	var bitmap uint32
	for k := fastPFORMinBucket; k <= maxBitWidth; k++ {
		if len(a.buckets[k]) > 0 {
			bitmap |= 1 << (k - 1)
		}
	}
	ensureCapacity(out[op:], 1)
	out[op] = int32(bitmap)
	op++

	for k := fastPFORMinBucket; k <= maxBitWidth; k++ {
		count := len(a.buckets[k])
		if count == 0 {
			continue
		}
		ensureCapacity(out[op:], 1)
		out[op] = int32(count)
		op++
		bucket := a.buckets[k]
		for j := 0; j < count; j += packGroupSize {
			op += packPartial(bucket[j:min(j+packGroupSize, count)], out[op:], k)
		}
	}
	return op
}

// decodePage reverses encodePage for len(out) integers and returns the
// number of words read.
func (f *FastPFOR) decodePage(a *Arena, in, out []int32) (int, error) {
	a.reset()
	if len(in) == 0 {
		return 0, fmt.Errorf("%w: missing page header", ErrInvalidBuffer)
	}
	metaAt := int(in[0])
	if metaAt < 1 || metaAt >= len(in) {
		return 0, fmt.Errorf("%w: page metadata offset %d outside %d words", ErrInvalidBuffer, metaAt, len(in))
	}
	p := metaAt
	byteCount := int(in[p])
	p++
	metaWords := (byteCount + 3) / 4
	if byteCount < 0 || p+metaWords >= len(in) {
		return 0, fmt.Errorf("%w: page metadata length %d", ErrInvalidBuffer, byteCount)
	}
	a.meta = getBytes(a.meta[:0], in[p:p+metaWords], byteCount)
	p += metaWords
	bitmap := uint32(in[p])
	p++
	for k := fastPFORMinBucket; k <= maxBitWidth; k++ {
		if bitmap&(1<<(k-1)) == 0 {
			continue
		}
		if p >= len(in) {
			return 0, fmt.Errorf("%w: missing size of exception bucket %d", ErrInvalidBuffer, k)
		}
		count := int(in[p])
		p++
		if count <= 0 || count > len(out) {
			return 0, fmt.Errorf("%w: exception bucket %d holds %d values", ErrInvalidBuffer, k, count)
		}
		a.buckets[k] = slices.Grow(a.buckets[k][:0], count)[:count]
		bucket := a.buckets[k]
		for j := 0; j < count; j += packGroupSize {
			p += unpackPartial(in[p:], bucket[j:], k, min(packGroupSize, count-j))
		}
	}

	bs := f.blockSize
	meta := a.meta
	ip, mp := 1, 0
	for op := 0; op < len(out); op += bs {
		if mp+2 > len(meta) {
			return 0, fmt.Errorf("%w: page metadata ends at block %d", ErrInvalidBuffer, op/bs)
		}
		b, exc := int(meta[mp]), int(meta[mp+1])
		mp += 2
		if b > maxBitWidth || ip+bs/packGroupSize*b > metaAt {
			return 0, fmt.Errorf("%w: block %d of width %d overruns the packed area", ErrInvalidBuffer, op/bs, b)
		}
		for k := 0; k < bs; k += packGroupSize {
			UnpackBlock(in[ip:], out[op+k:], b)
			ip += b
		}
		if exc == 0 {
			continue
		}
		if mp+1+exc > len(meta) {
			return 0, fmt.Errorf("%w: page metadata ends inside block %d", ErrInvalidBuffer, op/bs)
		}
		maxB := int(meta[mp])
		mp++
		idx := maxB - b
		if idx < 1 || maxB > maxBitWidth {
			return 0, fmt.Errorf("%w: block widths %d/%d", ErrInvalidBuffer, b, maxB)
		}
		block := out[op : op+bs]
		if idx == 1 {
			for _, pos := range meta[mp : mp+exc] {
				block[pos] = int32(uint32(block[pos]) | 1<<b)
			}
		} else {
			if a.pointers[idx]+exc > len(a.buckets[idx]) {
				return 0, fmt.Errorf("%w: exception bucket %d exhausted", ErrInvalidBuffer, idx)
			}
			for _, pos := range meta[mp : mp+exc] {
				high := uint32(a.buckets[idx][a.pointers[idx]])
				a.pointers[idx]++
				block[pos] = int32(uint32(block[pos]) | high<<b)
			}
		}
		mp += exc
	}
	if ip != metaAt {
		return 0, fmt.Errorf("%w: packed blocks end at word %d, metadata starts at %d", ErrInvalidBuffer, ip, metaAt)
	}
	return p, nil
}
