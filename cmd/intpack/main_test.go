package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	intcodec "github.com/Akron/intcodec-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestReadIntegers(t *testing.T) {
	assert := assert.New(t)
	values, err := readIntegers(strings.NewReader("1 2\n-3\t2147483647\n\n"))
	require.NoError(t, err)
	assert.Equal([]int32{1, 2, -3, 2147483647}, values)

	_, err = readIntegers(strings.NewReader("1 x"))
	assert.ErrorContains(err, "integer 2")
	_, err = readIntegers(strings.NewReader("4294967296"))
	assert.Error(err)
}

func TestEncodeDecodeWords(t *testing.T) {
	values := make([]int32, 1000)
	for i := range values {
		values[i] = int32(i * i % 9001)
	}
	for _, name := range intcodec.Names() {
		t.Run(name, func(t *testing.T) {
			codec, err := intcodec.Lookup(name)
			require.NoError(t, err)
			words, err := encode(codec, values)
			if err != nil {
				// block-only codecs cannot take 1000 integers
				assert.Contains(t, err.Error(), "compose it with variablebyte")
				return
			}
			assert.Equal(t, int32(len(values)), words[0])
			got, err := decodeWords(codec, words)
			require.NoError(t, err)
			assert.Equal(t, values, got)
		})
	}
}

func TestDecodeWordsRejectsBadHeader(t *testing.T) {
	codec := intcodec.VariableByte{}
	_, err := decodeWords(codec, nil)
	assert.ErrorIs(t, err, intcodec.ErrInvalidBuffer)
	_, err = decodeWords(codec, []int32{-1})
	assert.ErrorIs(t, err, intcodec.ErrInvalidBuffer)
	_, err = decodeWords(codec, []int32{3, 0x01})
	assert.ErrorIs(t, err, intcodec.ErrInvalidBuffer)
}

func TestRunEncodeThenDecode(t *testing.T) {
	assert := assert.New(t)
	codec, err := intcodec.Lookup("fastpfor+variablebyte")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "values.bin")
	require.NoError(t, runEncode(discard, codec, strings.NewReader("5 3 3 100 99 -7"), out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	var buf bytes.Buffer
	require.NoError(t, runDecode(discard, codec, f, &buf))
	assert.Equal("5\n3\n3\n100\n99\n-7\n", buf.String())
}

func TestRunEncodeWithoutOutput(t *testing.T) {
	require.NoError(t, runEncode(discard, intcodec.VariableByte{}, strings.NewReader(""), ""))
}
