package intcodec

import (
	"fmt"
	"slices"
	"strings"
)

// registry maps canonical codec names to constructors. Block codecs are
// also registered composed with VariableByte so that any input length is
// accepted.
var registry = map[string]func() Codec{
	"binarypacking": func() Codec { return BinaryPacking{} },
	"fastpfor128":   func() Codec { return NewFastPFOR128() },
	"fastpfor256":   func() Codec { return NewFastPFOR256() },
	"newpfd":        func() Codec { return NewPFD{Exceptions: S16{}} },
	"newpfd-s9":     func() Codec { return NewPFD{Exceptions: S9{}} },
	"optpfd":        func() Codec { return OptPFD{Exceptions: S16{}} },
	"optpfd-s9":     func() Codec { return OptPFD{Exceptions: S9{}} },
	"simple9":       func() Codec { return Simple9{} },
	"simple16":      func() Codec { return Simple16{} },
	"variablebyte":  func() Codec { return VariableByte{} },
	"streamvbyte":   func() Codec { return StreamVByte{} },
	"justcopy":      func() Codec { return JustCopy{} },

	"fastpfor+variablebyte":      func() Codec { return Composition{NewFastPFOR256(), VariableByte{}} },
	"fastpfor128+variablebyte":   func() Codec { return Composition{NewFastPFOR128(), VariableByte{}} },
	"binarypacking+variablebyte": func() Codec { return Composition{BinaryPacking{}, VariableByte{}} },
	"newpfd+variablebyte":        func() Codec { return Composition{NewPFD{}, VariableByte{}} },
	"optpfd+variablebyte":        func() Codec { return Composition{OptPFD{}, VariableByte{}} },

	"deltazigzag-binarypacking": func() Codec {
		return DeltaZigzag{Inner: Composition{BinaryPacking{}, VariableByte{}}}
	},
	"deltazigzag-fastpfor": func() Codec {
		return DeltaZigzag{Inner: Composition{NewFastPFOR256(), VariableByte{}}}
	},
	"deltazigzag-variablebyte": func() Codec { return DeltaZigzag{Inner: VariableByte{}} },
}

// Lookup returns a new instance of the codec registered under name. Names
// are case insensitive.
func Lookup(name string) (Codec, error) {
	newCodec, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return newCodec(), nil
}

// Names returns the registered codec names in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
