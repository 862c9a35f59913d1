// Command intpack compresses a list of integers with one of the intcodec
// codecs and reports how well it did.
//
// Usage:
//
//	intpack -codec fastpfor+variablebyte -in values.txt
//	intpack -codec simple16 -in values.txt -out values.bin
//	intpack -codec simple16 -decode -in values.bin
//	intpack -list
//
// Plain input is whitespace separated decimal integers. The -out file holds
// the integer count followed by the codec output, as little-endian 32-bit
// words; -decode reads such a file back and prints the integers.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"

	intcodec "github.com/Akron/intcodec-go"
)

var (
	codecName = flag.String("codec", "fastpfor+variablebyte", "Codec name (see -list)")
	inputFile = flag.String("in", "", "Input file (default: stdin)")
	outFile   = flag.String("out", "", "Write the compressed words to this file")
	decode    = flag.Bool("decode", false, "Decode a word file written with -out and print the integers")
	list      = flag.Bool("list", false, "List the available codecs and exit")
	jsonLogs  = flag.Bool("json", false, "Log in JSON instead of text")
	verbose   = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	logger := newLogger(*jsonLogs, *verbose)

	if *list {
		for _, name := range intcodec.Names() {
			fmt.Println(name)
		}
		return
	}

	codec, err := intcodec.Lookup(*codecName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	in, err := openInput(*inputFile)
	if err != nil {
		logger.Error("open input", "file", *inputFile, "error", err)
		os.Exit(1)
	}
	defer in.Close()

	if *decode {
		err = runDecode(logger, codec, in, os.Stdout)
	} else {
		err = runEncode(logger, codec, in, *outFile)
	}
	if err != nil {
		logger.Error("intpack failed", "codec", codec, "error", err)
		os.Exit(1)
	}
}

// newLogger builds a stderr logger with a text or JSON handler.
func newLogger(json, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

func runEncode(logger *slog.Logger, codec intcodec.Codec, r io.Reader, out string) error {
	values, err := readIntegers(r)
	if err != nil {
		return err
	}
	logger.Debug("read input", "integers", len(values))

	words, err := encode(codec, values)
	if err != nil {
		return err
	}

	decoded, err := decodeWords(codec, words)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if !slices.Equal(values, decoded) {
		return errors.New("verify: decoded integers differ from the input")
	}

	bitsPerInt := 0.0
	if len(values) > 0 {
		bitsPerInt = float64(32*len(words)) / float64(len(values))
	}
	logger.Info("compressed",
		"codec", codec,
		"integers", len(values),
		"words", len(words),
		"bits_per_int", strconv.FormatFloat(bitsPerInt, 'f', 3, 64))

	if out == "" {
		return nil
	}
	if err := os.WriteFile(out, intcodec.AppendBytes(nil, words), 0o644); err != nil {
		return err
	}
	logger.Debug("wrote output", "file", out, "bytes", 4*len(words))
	return nil
}

func runDecode(logger *slog.Logger, codec intcodec.Codec, r io.Reader, w io.Writer) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	words, err := intcodec.DecodeBytes(nil, raw)
	if err != nil {
		return err
	}
	values, err := decodeWords(codec, words)
	if err != nil {
		return err
	}
	logger.Debug("decoded", "codec", codec, "words", len(words), "integers", len(values))

	bw := bufio.NewWriter(w)
	for _, v := range values {
		bw.WriteString(strconv.FormatInt(int64(v), 10))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// encode writes the integer count followed by the codec output. Codecs that
// stop at a block boundary are reported rather than silently truncated.
func encode(codec intcodec.Codec, values []int32) ([]int32, error) {
	words := make([]int32, 1+intcodec.MaxCompressedLen(len(values)))
	words[0] = int32(len(values))
	read, written, err := codec.Compress(values, words[1:])
	if err != nil {
		return nil, err
	}
	if read != len(values) {
		return nil, fmt.Errorf("%v encoded %d of %d integers; compose it with variablebyte", codec, read, len(values))
	}
	return words[:1+written], nil
}

func decodeWords(codec intcodec.Codec, words []int32) ([]int32, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty input", intcodec.ErrInvalidBuffer)
	}
	n := int(words[0])
	if n < 0 {
		return nil, fmt.Errorf("%w: negative integer count %d", intcodec.ErrInvalidBuffer, n)
	}
	// Some codecs decode a whole word of padding; leave them room.
	values := make([]int32, n+intcodec.MaxCompressedLen(0))
	_, written, err := codec.Uncompress(words[1:], values)
	if err != nil {
		return nil, err
	}
	if written != n {
		return nil, fmt.Errorf("%w: decoded %d integers, expected %d", intcodec.ErrInvalidBuffer, written, n)
	}
	return values[:n], nil
}

func readIntegers(r io.Reader) ([]int32, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	var values []int32
	for sc.Scan() {
		v, err := strconv.ParseInt(sc.Text(), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("integer %d: %w", len(values)+1, err)
		}
		values = append(values, int32(v))
	}
	return values, sc.Err()
}
