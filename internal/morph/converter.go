// Package morph converts tagger-native morphological tags to Universal
// Dependencies parts of speech and features, and runs the taggers that
// produce those tags.
package morph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Conversion errors.
var (
	ErrUnknownPOS      = errors.New("unknown part of speech")
	ErrUnknownGrammeme = errors.New("unknown grammeme")
)

// ConversionError reports a native tag that the mapping tables cannot express.
type ConversionError struct {
	Err    error
	Tagger string
	Tag    string
	Value  string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s tag %q: %v %q", e.Tagger, e.Tag, e.Err, e.Value)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Features is a set of UD feature name/value pairs.
type Features map[string]string

// String renders features as "Name=Value" pairs sorted by name and joined
// with "|", or "_" when empty.
func (f Features) String() string {
	if len(f) == 0 {
		return "_"
	}

	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}

	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+f[name])
	}

	return strings.Join(pairs, "|")
}

// TagConverter maps a tagger-native tag of type T to UD categories.
type TagConverter[T any] interface {
	ConvertPOS(tag T) (string, error)
	ConvertFeatures(tag T) (Features, error)
}

// table applies a Mapping to an already decomposed tag.
type table struct {
	mapping *Mapping
	name    string
}

func (t table) pos(tag, native string) (string, error) {
	ud, ok := t.mapping.lookupPOS(native)
	if !ok {
		return "", &ConversionError{Tagger: t.name, Tag: tag, Value: native, Err: ErrUnknownPOS}
	}

	return ud, nil
}

// features converts grammemes in order. When two grammemes set the same
// feature the first one wins.
func (t table) features(tag, native string, grammemes []string) (Features, error) {
	if _, ok := t.mapping.lookupPOS(native); !ok {
		return nil, &ConversionError{Tagger: t.name, Tag: tag, Value: native, Err: ErrUnknownPOS}
	}

	out := Features{}

	for name, value := range t.mapping.Implied[native] {
		out[name] = value
	}

	for _, g := range grammemes {
		f, ignored, ok := t.mapping.lookupGrammeme(g)
		if !ok {
			return nil, &ConversionError{Tagger: t.name, Tag: tag, Value: g, Err: ErrUnknownGrammeme}
		}

		if ignored {
			continue
		}

		if _, set := out[f.name]; !set {
			out[f.name] = f.value
		}
	}

	return out, nil
}
