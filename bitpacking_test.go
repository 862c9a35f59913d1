package intcodec

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackBitWidthCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for width := 0; width <= 32; width++ {
		t.Run(fmt.Sprintf("width_%d", width), func(t *testing.T) {
			assert := assert.New(t)
			src := genValuesForBitWidth(rng, width)
			assert.Equal(width, MaxBits(src))

			words := make([]int32, 32)
			PackBlock(src, words, width)
			got := make([]int32, 32)
			UnpackBlock(words, got, width)
			assert.Equal(src, got)

			clear(words)
			PackBlockWithoutMask(src, words, width)
			clear(got)
			UnpackBlock(words, got, width)
			assert.Equal(src, got)
		})
	}
}

func TestPackMasksHighBits(t *testing.T) {
	assert := assert.New(t)
	src := make([]int32, 32)
	for i := range src {
		src[i] = int32(0x7E0 | i)
	}
	words := make([]int32, 5)
	PackBlock(src, words, 5)
	got := make([]int32, 32)
	UnpackBlock(words, got, 5)
	for i, v := range got {
		assert.Equal(int32(i&31), v)
	}
}

func TestPackWidth32IsLossless(t *testing.T) {
	src := make([]int32, 32)
	rng := rand.New(rand.NewSource(32))
	for i := range src {
		src[i] = int32(rng.Uint32())
	}
	words := make([]int32, 32)
	PackBlock(src, words, 32)
	assert.Equal(t, src, words)
	got := make([]int32, 32)
	UnpackBlock(words, got, 32)
	assert.Equal(t, src, got)
}

func TestPackWidthZeroWritesNothing(t *testing.T) {
	assert := assert.New(t)
	got := make([]int32, 32)
	for i := range got {
		got[i] = 99
	}
	PackBlock(genSequential(32), nil, 0)
	UnpackBlock(nil, got, 0)
	assert.Equal(make([]int32, 32), got)
}

func TestPackLayoutIsLSBFirst(t *testing.T) {
	assert := assert.New(t)
	src := make([]int32, 32)
	src[0] = 1
	src[1] = 2
	src[2] = 3
	words := make([]int32, 3)
	PackBlock(src, words, 3)
	assert.Equal(int32(1|2<<3|3<<6), words[0])

	// At width 3, value 10 occupies bits 30..32 and straddles two words.
	clear(src)
	src[10] = 7
	clear(words)
	PackBlock(src, words, 3)
	assert.Equal(int32(-1<<30), words[0])
	assert.Equal(int32(1), words[1])
}

func TestPackArgumentValidation(t *testing.T) {
	assert := assert.New(t)
	assert.Panics(func() { PackBlock(make([]int32, 32), make([]int32, 33), 33) })
	assert.Panics(func() { PackBlock(make([]int32, 32), make([]int32, 32), -1) })
	assert.Panics(func() { PackBlock(make([]int32, 31), make([]int32, 32), 4) })
	assert.Panics(func() { PackBlock(make([]int32, 32), make([]int32, 3), 4) })
	assert.Panics(func() { UnpackBlock(make([]int32, 3), make([]int32, 32), 4) })
	assert.Panics(func() { UnpackBlock(make([]int32, 4), make([]int32, 16), 4) })
}

func TestBitWidth(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0, BitWidth(0))
	assert.Equal(1, BitWidth(1))
	assert.Equal(8, BitWidth(255))
	assert.Equal(9, BitWidth(256))
	assert.Equal(31, BitWidth(1<<30))
	assert.Equal(32, BitWidth(-1))
	assert.Equal(0, MaxBits(nil))
	assert.Equal(32, MaxBits([]int32{1, -5, 3}))
}

func TestPackPartial(t *testing.T) {
	for _, count := range []int{1, 5, 17, 31, 32} {
		for _, width := range []int{1, 3, 7, 13, 18, 31, 32} {
			t.Run(fmt.Sprintf("count_%d/width_%d", count, width), func(t *testing.T) {
				assert := assert.New(t)
				rng := rand.New(rand.NewSource(int64(count*100 + width)))
				src := genValuesForBitWidth(rng, width)[:count]
				words := make([]int32, 32)
				n := packPartial(src, words, width)
				assert.Equal(packedWords(count, width), n)

				got := make([]int32, count)
				read := unpackPartial(words[:n], got, width, count)
				assert.Equal(n, read)
				assert.Equal(src, got)
			})
		}
	}
}

func TestExtractPacked(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for width := 0; width <= 32; width++ {
		src := genValuesForBitWidth(rng, width)
		words := make([]int32, 32)
		PackBlock(src, words, width)
		for i, want := range src {
			assert.Equal(t, want, extractPacked(words[:width], width, i), "width %d index %d", width, i)
		}
	}
}

func BenchmarkPackBlock(b *testing.B) {
	src := genSequential(32)
	words := make([]int32, 32)
	for _, width := range []int{5, 8, 13, 32} {
		b.Run(fmt.Sprintf("width_%d", width), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				PackBlock(src, words, width)
			}
		})
	}
}

func BenchmarkUnpackBlock(b *testing.B) {
	words := make([]int32, 32)
	dst := make([]int32, 32)
	for _, width := range []int{5, 8, 13, 32} {
		b.Run(fmt.Sprintf("width_%d", width), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				UnpackBlock(words, dst, width)
			}
		})
	}
}

// genValuesForBitWidth returns 32 random values whose widest one needs
// exactly width bits.
func genValuesForBitWidth(rng *rand.Rand, width int) []int32 {
	out := make([]int32, 32)
	if width == 0 {
		return out
	}
	mask := laneMask(width)
	for i := range out {
		out[i] = int32(rng.Uint32() & mask)
	}
	out[rng.Intn(32)] = int32(mask)
	return out
}
