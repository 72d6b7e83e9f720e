package morph

import (
	"strings"
)

// MystemConverter converts Mystem grammar strings such as
// "S,муж,неод=им,ед" or "V,несов=(непрош,ед,изъяв,3-л|прош,ед,изъяв,муж)".
type MystemConverter struct {
	table table
}

// NewMystemConverter creates a converter backed by the embedded Mystem table.
func NewMystemConverter() (*MystemConverter, error) {
	m, err := LoadMapping("mystem")
	if err != nil {
		return nil, err
	}

	return &MystemConverter{table: table{mapping: m, name: "mystem"}}, nil
}

// ConvertPOS returns the UD part of speech of tag.
func (c *MystemConverter) ConvertPOS(tag string) (string, error) {
	pos, _ := splitMystemTag(tag)

	return c.table.pos(tag, pos)
}

// ConvertFeatures returns the UD features of tag. Of several alternative
// inflections only the first is used.
func (c *MystemConverter) ConvertFeatures(tag string) (Features, error) {
	pos, grammemes := splitMystemTag(tag)

	return c.table.features(tag, pos, grammemes)
}

func splitMystemTag(tag string) (string, []string) {
	lexical, inflection, _ := strings.Cut(strings.TrimSpace(tag), "=")

	inflection = strings.TrimPrefix(inflection, "(")
	if alt, _, found := strings.Cut(inflection, "|"); found {
		inflection = alt
	}

	inflection = strings.TrimSuffix(inflection, ")")

	var parts []string

	for _, field := range strings.Split(lexical+","+inflection, ",") {
		if field = strings.TrimSpace(field); field != "" {
			parts = append(parts, field)
		}
	}

	if len(parts) == 0 {
		return "", nil
	}

	return parts[0], parts[1:]
}
