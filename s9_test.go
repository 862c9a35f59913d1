package intcodec

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exceptionCodecs() []ExceptionCodec {
	return []ExceptionCodec{S9{}, S16{}}
}

func TestSimple9ZerosUseFirstSelector(t *testing.T) {
	assert := assert.New(t)
	src := make([]int32, 28)
	out := make([]int32, 4)
	written, err := S9{}.Compress(src, out)
	require.NoError(t, err)
	assert.Equal(1, written)
	assert.Equal(uint32(0), uint32(out[0])>>selectorShift)

	got := make([]int32, 28)
	for i := range got {
		got[i] = -1
	}
	read, err := S9{}.Uncompress(out[:written], got)
	require.NoError(t, err)
	assert.Equal(1, read)
	assert.Equal(src, got)

	// Simple9 reports all 28 integers consumed and produced.
	buf := make([]int32, 4)
	r, w, err := Simple9{}.Compress(src, buf)
	require.NoError(t, err)
	assert.Equal(28, r)
	assert.Equal(2, w)
	r, w, err = Simple9{}.Uncompress(buf[:w], got)
	require.NoError(t, err)
	assert.Equal(2, r)
	assert.Equal(28, w)
}

func TestSimple9SelectorProgression(t *testing.T) {
	assert := assert.New(t)
	for sel, width := range s9Widths {
		src := make([]int32, s9Counts[sel])
		for i := range src {
			src[i] = int32(laneMask(width))
		}
		out := make([]int32, len(src))
		written, err := S9{}.Compress(src, out)
		require.NoError(t, err)
		assert.Equal(1, written, "selector %d", sel)
		assert.Equal(uint32(sel), uint32(out[0])>>selectorShift)
	}
}

func TestSimple16SelectorLayouts(t *testing.T) {
	assert := assert.New(t)
	for sel, layout := range s16Layouts {
		total := 0
		for _, b := range layout {
			total += int(b)
		}
		assert.Equal(selectorPayloadBits, total, "selector %d", sel)
	}
	// 28 ones fill a single word with selector 0.
	src := make([]int32, 28)
	for i := range src {
		src[i] = 1
	}
	out := make([]int32, 2)
	written, err := S16{}.Compress(src, out)
	require.NoError(t, err)
	assert.Equal(1, written)
	assert.Equal(int32(1<<28-1), out[0])

	// A wide value among narrow ones picks a mixed layout.
	src = []int32{1000, 3, 3, 2, 1, 0, 0}
	out = make([]int32, 4)
	written, err = S16{}.Compress(src, out)
	require.NoError(t, err)
	assert.Equal(2, written)
	assert.Equal(uint32(13), uint32(out[0])>>selectorShift)
	assert.Equal(uint32(1), uint32(out[1])>>selectorShift)
}

func TestExceptionCodecRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(16))
	for _, ec := range exceptionCodecs() {
		for _, maxBits := range []int{1, 4, 9, 15, 20, 28} {
			t.Run(fmt.Sprintf("%v/bits_%d", ec, maxBits), func(t *testing.T) {
				assert := assert.New(t)
				src := make([]int32, 300)
				for i := range src {
					src[i] = int32(rng.Uint32() & laneMask(rng.Intn(maxBits)+1))
				}
				estimate, err := ec.EstimateSize(src)
				require.NoError(t, err)
				out := make([]int32, len(src))
				written, err := ec.Compress(src, out)
				require.NoError(t, err)
				assert.Equal(estimate, written)

				got := make([]int32, len(src))
				read, err := ec.Uncompress(out[:written], got)
				require.NoError(t, err)
				assert.Equal(written, read)
				assert.Equal(src, got)
			})
		}
	}
}

func TestSelectorCodecsRejectLargeValues(t *testing.T) {
	out := make([]int32, 8)
	for _, c := range []Codec{Simple9{}, Simple16{}} {
		_, _, err := c.Compress([]int32{1, 1 << 28}, out)
		assert.ErrorIs(t, err, ErrValueTooLarge, nameOf(c))
		_, _, err = c.Compress([]int32{-1}, out)
		assert.ErrorIs(t, err, ErrValueTooLarge, nameOf(c))
	}
	for _, ec := range exceptionCodecs() {
		_, err := ec.EstimateSize([]int32{1 << 29})
		assert.ErrorIs(t, err, ErrValueTooLarge)
	}
}

func TestSelectorCodecsRejectTruncatedInput(t *testing.T) {
	got := make([]int32, 40)
	_, _, err := Simple9{}.Uncompress([]int32{40, 0}, got)
	assert.ErrorIs(t, err, ErrInvalidBuffer)

	// selector 9 does not exist
	_, _, err = Simple9{}.Uncompress([]int32{1, -7 << 28}, got)
	assert.ErrorIs(t, err, ErrInvalidBuffer)

	_, _, err = Simple16{}.Uncompress([]int32{30}, got)
	assert.ErrorIs(t, err, ErrInvalidBuffer)
}

func BenchmarkSimple16Compress(b *testing.B) {
	src := genOutliers(1<<14, 3)
	out := make([]int32, MaxCompressedLen(len(src)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Simple16{}.Compress(src, out)
	}
}
