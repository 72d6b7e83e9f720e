package morph

import (
	"strings"
)

// OpenCorporaTag is a structured OpenCorpora tag: a part of speech and its
// grammemes.
type OpenCorporaTag struct {
	POS       string
	Grammemes []string
}

// ParseOpenCorporaTag parses the text form "NOUN,anim,masc sing,nomn".
func ParseOpenCorporaTag(s string) OpenCorporaTag {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	if len(fields) == 0 {
		return OpenCorporaTag{}
	}

	return OpenCorporaTag{POS: fields[0], Grammemes: fields[1:]}
}

// Has reports whether the tag carries grammeme g.
func (t OpenCorporaTag) Has(g string) bool {
	for _, v := range t.Grammemes {
		if v == g {
			return true
		}
	}

	return false
}

func (t OpenCorporaTag) String() string {
	if len(t.Grammemes) == 0 {
		return t.POS
	}

	return t.POS + "," + strings.Join(t.Grammemes, ",")
}

// OpenCorporaConverter converts OpenCorpora tags.
type OpenCorporaConverter struct {
	table table
}

// NewOpenCorporaConverter creates a converter backed by the embedded
// OpenCorpora table.
func NewOpenCorporaConverter() (*OpenCorporaConverter, error) {
	m, err := LoadMapping("opencorpora")
	if err != nil {
		return nil, err
	}

	return &OpenCorporaConverter{table: table{mapping: m, name: "opencorpora"}}, nil
}

// ConvertPOS returns the UD part of speech of tag.
func (c *OpenCorporaConverter) ConvertPOS(tag OpenCorporaTag) (string, error) {
	return c.table.pos(tag.String(), tag.POS)
}

// ConvertFeatures returns the UD features of tag, including those implied by
// its part of speech.
func (c *OpenCorporaConverter) ConvertFeatures(tag OpenCorporaTag) (Features, error) {
	return c.table.features(tag.String(), tag.POS, tag.Grammemes)
}
