package intcodec

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestFastPFORRoundTrip(t *testing.T) {
	for _, f := range []*FastPFOR{NewFastPFOR128(), NewFastPFOR256()} {
		t.Run(f.String(), func(t *testing.T) {
			assertCodecRoundTrip(t, f, genSequential(4*f.BlockSize()))
			assertCodecRoundTrip(t, f, genMixed(8*f.BlockSize()))
			buf := assertCodecRoundTrip(t, f, genOutliers(16*f.BlockSize(), 11))
			assertCompressionBelowRaw(t, buf, 16*f.BlockSize()/2)
		})
	}
}

func TestFastPFORSingleException(t *testing.T) {
	assert := assert.New(t)
	f := NewFastPFOR256()
	src := make([]int32, 256)
	for i := range src {
		src[i] = int32(i % 8)
	}
	src[17] = 1 << 20

	out := make([]int32, MaxCompressedLen(len(src)))
	read, written, err := f.CompressArena(f.NewArena(), src, out)
	require.NoError(t, err)
	assert.Equal(256, read)
	// offset word, 8 groups at 3 bits, metadata length, 4 metadata bytes,
	// bitmap, one bucket of a single 18-bit value
	assert.Equal(1+8*3+1+1+1+1+1, written)
	assert.Equal(int32(1+8*3), out[0])
	assert.Equal(int32(4), out[25])
	assert.Equal(int32(3|1<<8|21<<16|17<<24), out[26])
	assert.Equal(int32(1<<17), out[27])

	got := make([]int32, len(src))
	r, w, err := f.UncompressArena(f.NewArena(), out[:written], got, len(src))
	require.NoError(t, err)
	assert.Equal(written, r)
	assert.Equal(len(src), w)
	assert.Equal(src, got)
}

func TestFastPFOROneBitExceptionsStoreNoBucket(t *testing.T) {
	assert := assert.New(t)
	f := NewFastPFOR128()
	src := make([]int32, 128)
	for i := range src {
		src[i] = int32(i % 4)
	}
	src[5] = 4
	src[77] = 7

	out := make([]int32, MaxCompressedLen(len(src)))
	_, written, err := f.HeadlessCompress(src, out)
	require.NoError(t, err)
	// bitmap word is the last one and stays empty
	assert.Equal(int32(0), out[written-1])

	got := make([]int32, len(src))
	_, _, err = f.HeadlessUncompress(out[:written], got, len(src))
	require.NoError(t, err)
	assert.Equal(src, got)
}

func TestFastPFORPages(t *testing.T) {
	assert := assert.New(t)
	f := NewFastPFOR128(WithPageSize(1000))
	assert.Equal(896, f.PageSize())
	assert.Equal(128, NewFastPFOR128(WithPageSize(10)).PageSize())
	assert.Equal(DefaultPageSize, NewFastPFOR256().PageSize())

	src := genOutliers(5*896+3*128, 5)
	assertCodecRoundTrip(t, f, src)
}

func TestFastPFORArenaOwnership(t *testing.T) {
	f128, f256 := NewFastPFOR128(), NewFastPFOR256()
	out := make([]int32, MaxCompressedLen(1024))
	assert.Panics(t, func() {
		f128.CompressArena(f256.NewArena(), genSequential(256), out)
	})
	assert.Panics(t, func() {
		f128.CompressArena(nil, genSequential(256), out)
	})

	// An arena is reusable across calls.
	a := f128.NewArena()
	for seed := range int64(3) {
		src := genOutliers(1024, seed)
		_, written, err := f128.CompressArena(a, src, out)
		require.NoError(t, err)
		got := make([]int32, len(src))
		_, _, err = f128.UncompressArena(a, out[:written], got, len(src))
		require.NoError(t, err)
		assert.Equal(t, src, got)
	}
}

func TestFastPFORRejectsMalformedPage(t *testing.T) {
	f := NewFastPFOR256()
	got := make([]int32, 256)
	_, _, err := f.Uncompress([]int32{256, 5}, got)
	assert.ErrorIs(t, err, ErrInvalidBuffer)

	_, _, err = f.Uncompress([]int32{256}, got)
	assert.ErrorIs(t, err, ErrInvalidBuffer)
}

func TestFastPFORConcurrentUse(t *testing.T) {
	f := NewFastPFOR256()
	var g errgroup.Group
	for worker := range 8 {
		g.Go(func() error {
			for round := range 20 {
				src := genOutliers(256*(1+round%5)+round, int64(worker*100+round))
				n := greatestMultiple(len(src), f.BlockSize())
				out := make([]int32, MaxCompressedLen(len(src)))
				_, written, err := f.Compress(src, out)
				if err != nil {
					return err
				}
				got := make([]int32, n)
				_, _, err = f.Uncompress(out[:written], got)
				if err != nil {
					return err
				}
				if !slices.Equal(src[:n], got) {
					return fmt.Errorf("worker %d round %d: round trip mismatch", worker, round)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestGreedyWidth(t *testing.T) {
	assert := assert.New(t)
	block := make([]int32, 128)
	for i := range block {
		block[i] = int32(i % 8)
	}
	block[3] = 1 << 20
	var h widthHistogram
	maxB := h.fill(block)
	assert.Equal(21, maxB)
	b, exc := greedyWidth(&h, maxB, 0, 128)
	assert.Equal(3, b)
	assert.Equal(1, exc)

	// A uniform block keeps its maximal width.
	clear(block)
	for i := range block {
		block[i] = 1 << 10
	}
	maxB = h.fill(block)
	b, exc = greedyWidth(&h, maxB, 0, 128)
	assert.Equal(11, b)
	assert.Zero(exc)

	// The lower bound is honored.
	for i := range block {
		block[i] = int32(i % 2)
	}
	block[0] = -1
	maxB = h.fill(block)
	b, _ = greedyWidth(&h, maxB, maxB-pfdMaxHighBits, 128)
	assert.Equal(4, b)
}

func TestPatchCost(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(3*8+3*5+10*128, patchCost(3, 15, 10, 128))
	// one spilled bit needs no stored high part
	assert.Equal(3*8+10*128, patchCost(3, 11, 10, 128))
}

func BenchmarkFastPFORCompress(b *testing.B) {
	f := NewFastPFOR256()
	a := f.NewArena()
	src := genOutliers(1<<16, 1)
	out := make([]int32, MaxCompressedLen(len(src)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		f.CompressArena(a, src, out)
	}
}

func BenchmarkFastPFORUncompress(b *testing.B) {
	f := NewFastPFOR256()
	a := f.NewArena()
	src := genOutliers(1<<16, 1)
	out := make([]int32, MaxCompressedLen(len(src)))
	_, written, _ := f.CompressArena(a, src, out)
	dst := make([]int32, len(src))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		f.UncompressArena(a, out[:written], dst, len(src))
	}
}

func ExampleFastPFOR() {
	f := NewFastPFOR128()
	src := make([]int32, 256)
	for i := range src {
		src[i] = int32(i % 10)
	}
	src[100] = 1 << 24

	out := make([]int32, MaxCompressedLen(len(src)))
	read, written, err := f.Compress(src, out)
	if err != nil {
		panic(err)
	}
	got := make([]int32, read)
	_, n, err := f.Uncompress(out[:written], got)
	if err != nil {
		panic(err)
	}
	fmt.Println(read, n, got[100], got[101], written < len(src)/4)
	// Output: 256 256 16777216 1 true
}
