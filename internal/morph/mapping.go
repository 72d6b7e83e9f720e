package morph

import (
	"embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed mappings/*.yaml
var mappingFS embed.FS

// Mapping table errors.
var (
	ErrEmptyMapping      = errors.New("mapping has no part-of-speech entries")
	ErrAmbiguousGrammeme = errors.New("grammeme maps to more than one feature")
	ErrImpliedWithoutPOS = errors.New("implied features for unmapped part of speech")
	ErrIgnoredAndMapped  = errors.New("grammeme is both ignored and mapped")
)

// Mapping is a fixed lookup table from tagger-native categories to
// Universal Dependencies categories.
type Mapping struct {
	POS       map[string]string            `yaml:"pos"`
	Implied   map[string]map[string]string `yaml:"implied"`
	Features  map[string]map[string]string `yaml:"features"`
	Ignore    []string                     `yaml:"ignore"`
	grammemes map[string]feature
	ignored   map[string]struct{}
}

type feature struct {
	name  string
	value string
}

// LoadMapping reads one of the embedded tables, "mystem" or "opencorpora".
func LoadMapping(name string) (*Mapping, error) {
	data, err := mappingFS.ReadFile("mappings/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown mapping %q: %w", name, err)
	}

	return ParseMapping(data)
}

// ParseMapping decodes a mapping table and indexes it by grammeme.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode mapping: %w", err)
	}

	if len(m.POS) == 0 {
		return nil, ErrEmptyMapping
	}

	m.ignored = make(map[string]struct{}, len(m.Ignore))
	for _, g := range m.Ignore {
		m.ignored[g] = struct{}{}
	}

	m.grammemes = make(map[string]feature)

	for name, values := range m.Features {
		for grammeme, value := range values {
			if prev, ok := m.grammemes[grammeme]; ok {
				return nil, fmt.Errorf("%w: %s (%s, %s)", ErrAmbiguousGrammeme, grammeme, prev.name, name)
			}

			if _, ok := m.ignored[grammeme]; ok {
				return nil, fmt.Errorf("%w: %s", ErrIgnoredAndMapped, grammeme)
			}

			m.grammemes[grammeme] = feature{name: name, value: value}
		}
	}

	for pos := range m.Implied {
		if _, ok := m.POS[pos]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrImpliedWithoutPOS, pos)
		}
	}

	return &m, nil
}

func (m *Mapping) lookupPOS(native string) (string, bool) {
	ud, ok := m.POS[native]

	return ud, ok
}

// lookupGrammeme resolves a grammeme. ignored is true for grammemes that
// have no counterpart and must be skipped.
func (m *Mapping) lookupGrammeme(grammeme string) (f feature, ignored, ok bool) {
	if _, skip := m.ignored[grammeme]; skip {
		return feature{}, true, true
	}

	f, ok = m.grammemes[grammeme]

	return f, false, ok
}
