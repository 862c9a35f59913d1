package intcodec

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Compressed words are serialized little-endian. On little-endian hosts
// the in-memory representation already matches, so the conversions below
// are switched to plain memory copies at init.
var appendWordBytes func(dst []byte, words []int32) []byte = appendWordBytesPortable

var decodeWordBytes func(dst []int32, buf []byte) = decodeWordBytesPortable

var bo = binary.LittleEndian

func init() {
	initWordSelection()
}

func initWordSelection() {
	if !cpu.IsBigEndian {
		appendWordBytes = appendWordBytesNative
		decodeWordBytes = decodeWordBytesNative
	}
}

// AppendBytes appends the little-endian serialization of words to dst.
func AppendBytes(dst []byte, words []int32) []byte {
	return appendWordBytes(dst, words)
}

// DecodeBytes converts a little-endian byte serialization back into words,
// reusing dst when it has enough capacity.
func DecodeBytes(dst []int32, buf []byte) ([]int32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of words", ErrInvalidBuffer, len(buf))
	}
	n := len(buf) / 4
	if cap(dst) < n {
		dst = make([]int32, n)
	}
	dst = dst[:n]
	decodeWordBytes(dst, buf)
	return dst, nil
}

func appendWordBytesPortable(dst []byte, words []int32) []byte {
	for _, w := range words {
		dst = bo.AppendUint32(dst, uint32(w))
	}
	return dst
}

func decodeWordBytesPortable(dst []int32, buf []byte) {
	for i := range dst {
		dst[i] = int32(bo.Uint32(buf[4*i:]))
	}
}

func appendWordBytesNative(dst []byte, words []int32) []byte {
	if len(words) == 0 {
		return dst
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), 4*len(words))
	return append(dst, raw...)
}

func decodeWordBytesNative(dst []int32, buf []byte) {
	if len(dst) == 0 {
		return
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(dst))), 4*len(dst))
	copy(raw, buf)
}

// putBytes stores b in out, four bytes per word, little-endian, padding the
// last word with zeros. It returns the number of words written.
func putBytes(out []int32, b []byte) int {
	n := (len(b) + 3) / 4
	ensureCapacity(out, n)
	for i := range n {
		var word uint32
		for j := range 4 {
			if k := 4*i + j; k < len(b) {
				word |= uint32(b[k]) << (8 * j)
			}
		}
		out[i] = int32(word)
	}
	return n
}

// getBytes appends the first n bytes stored in words by putBytes to dst.
func getBytes(dst []byte, words []int32, n int) []byte {
	for k := range n {
		dst = append(dst, wordByte(words, k))
	}
	return dst
}

// wordByte returns byte k of the little-endian byte stream held by words.
func wordByte(words []int32, k int) byte {
	return byte(uint32(words[k>>2]) >> (8 * (k & 3)))
}

// asUint32 reinterprets an int32 slice as uint32 without copying.
func asUint32(s []int32) []uint32 {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(unsafe.SliceData(s))), len(s))
}
