package morph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatures_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "_", Features{}.String())
	assert.Equal(t, "_", Features(nil).String())
	assert.Equal(t, "Animacy=Inan|Case=Nom|Gender=Masc|Number=Sing",
		Features{"Number": "Sing", "Case": "Nom", "Gender": "Masc", "Animacy": "Inan"}.String())
}

func TestMystemConverter(t *testing.T) {
	t.Parallel()

	c, err := NewMystemConverter()
	require.NoError(t, err)

	tests := []struct {
		tag      string
		pos      string
		features string
	}{
		{"S,муж,неод=им,ед", "NOUN", "Animacy=Inan|Case=Nom|Gender=Masc|Number=Sing"},
		{"S,жен,неод=(вин,ед|род,ед|им,мн)", "NOUN", "Animacy=Inan|Case=Acc|Gender=Fem|Number=Sing"},
		{"V,несов,пе=непрош,ед,изъяв,3-л", "VERB", "Aspect=Imp|Mood=Ind|Number=Sing|Person=3|Tense=Pres"},
		{"V,сов,пе=прош,мн,прич,кр,страд", "VERB", "Aspect=Perf|Number=Plur|Tense=Past|Variant=Short|VerbForm=Part|Voice=Pass"},
		{"A=им,ед,полн,муж", "ADJ", "Case=Nom|Gender=Masc|Number=Sing"},
		{"PR=", "ADP", "_"},
		{"CONJ=", "CCONJ", "_"},
		{"S,гео,жен,неод=пр,ед", "NOUN", "Animacy=Inan|Case=Loc|Gender=Fem|Number=Sing"},
	}

	for _, tt := range tests {
		pos, err := c.ConvertPOS(tt.tag)
		require.NoError(t, err, tt.tag)
		assert.Equal(t, tt.pos, pos, tt.tag)

		features, err := c.ConvertFeatures(tt.tag)
		require.NoError(t, err, tt.tag)
		assert.Equal(t, tt.features, features.String(), tt.tag)
	}
}

func TestMystemConverter_UnmappedFailsLoudly(t *testing.T) {
	t.Parallel()

	c, err := NewMystemConverter()
	require.NoError(t, err)

	_, err = c.ConvertPOS("ZZZ,муж=им")
	require.ErrorIs(t, err, ErrUnknownPOS)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "mystem", convErr.Tagger)
	assert.Equal(t, "ZZZ", convErr.Value)

	_, err = c.ConvertFeatures("S,муж,неод=им,ед,неведомое")
	require.ErrorIs(t, err, ErrUnknownGrammeme)
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "неведомое", convErr.Value)

	_, err = c.ConvertPOS("")
	assert.ErrorIs(t, err, ErrUnknownPOS)
}

func TestOpenCorporaConverter(t *testing.T) {
	t.Parallel()

	c, err := NewOpenCorporaConverter()
	require.NoError(t, err)

	tests := []struct {
		tag      string
		pos      string
		features string
	}{
		{"NOUN,anim,masc sing,nomn", "NOUN", "Animacy=Anim|Case=Nom|Gender=Masc|Number=Sing"},
		{"INFN,perf,tran", "VERB", "Aspect=Perf|VerbForm=Inf"},
		{"PRTS,perf,past,pssv femn,sing", "VERB", "Aspect=Perf|Gender=Fem|Number=Sing|Tense=Past|Variant=Short|VerbForm=Part|Voice=Pass"},
		{"VERB,impf,intr plur,3per,pres,indc", "VERB", "Aspect=Imp|Mood=Ind|Number=Plur|Person=3|Tense=Pres"},
		{"NOUN,inan,masc,Geox sing,loc2", "NOUN", "Animacy=Inan|Case=Loc|Gender=Masc|Number=Sing"},
		{"PREP", "ADP", "_"},
		{"PNCT", "PUNCT", "_"},
		{"NUMB,intg", "NUM", "_"},
		{"NUMB,real", "NUM", "_"},
		{"NOUN,inan,masc,Coun sing,gent", "NOUN", "Animacy=Inan|Case=Gen|Gender=Masc|Number=Sing"},
		{"NOUN,anim,masc,Name,Hypo sing,nomn", "NOUN", "Animacy=Anim|Case=Nom|Gender=Masc|Number=Sing"},
	}

	for _, tt := range tests {
		tag := ParseOpenCorporaTag(tt.tag)

		pos, err := c.ConvertPOS(tag)
		require.NoError(t, err, tt.tag)
		assert.Equal(t, tt.pos, pos, tt.tag)

		features, err := c.ConvertFeatures(tag)
		require.NoError(t, err, tt.tag)
		assert.Equal(t, tt.features, features.String(), tt.tag)
	}
}

func TestOpenCorporaConverter_UnmappedFailsLoudly(t *testing.T) {
	t.Parallel()

	c, err := NewOpenCorporaConverter()
	require.NoError(t, err)

	_, err = c.ConvertPOS(OpenCorporaTag{POS: "XXXX"})
	assert.ErrorIs(t, err, ErrUnknownPOS)

	_, err = c.ConvertFeatures(OpenCorporaTag{POS: "NOUN", Grammemes: []string{"anim", "zzzz"}})
	assert.ErrorIs(t, err, ErrUnknownGrammeme)
}

func TestConverters_Idempotent(t *testing.T) {
	t.Parallel()

	c, err := NewMystemConverter()
	require.NoError(t, err)

	first, err := c.ConvertFeatures("V,несов,пе=непрош,ед,изъяв,3-л")
	require.NoError(t, err)

	for range 10 {
		again, err := c.ConvertFeatures("V,несов,пе=непрош,ед,изъяв,3-л")
		require.NoError(t, err)
		assert.Equal(t, first.String(), again.String())
	}
}

func TestParseOpenCorporaTag(t *testing.T) {
	t.Parallel()

	tag := ParseOpenCorporaTag("NOUN,anim,masc sing,nomn")
	assert.Equal(t, "NOUN", tag.POS)
	assert.Equal(t, []string{"anim", "masc", "sing", "nomn"}, tag.Grammemes)
	assert.True(t, tag.Has("nomn"))
	assert.False(t, tag.Has("gent"))
	assert.Equal(t, "NOUN,anim,masc,sing,nomn", tag.String())
	assert.Equal(t, OpenCorporaTag{}, ParseOpenCorporaTag("  "))
}

func TestParseMapping_Rejects(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		yaml string
		want error
	}{
		"no pos": {"features: {}\n", ErrEmptyMapping},
		"ambiguous": {
			"pos: {S: NOUN}\nfeatures:\n  Case: {x: Nom}\n  Number: {x: Sing}\n",
			ErrAmbiguousGrammeme,
		},
		"ignored and mapped": {
			"pos: {S: NOUN}\nfeatures:\n  Case: {x: Nom}\nignore: [x]\n",
			ErrIgnoredAndMapped,
		},
		"implied without pos": {
			"pos: {S: NOUN}\nimplied:\n  V: {VerbForm: Inf}\n",
			ErrImpliedWithoutPOS,
		},
	}

	for name, tt := range tests {
		_, err := ParseMapping([]byte(tt.yaml))
		assert.ErrorIs(t, err, tt.want, name)
	}

	_, err := LoadMapping("nope")
	assert.Error(t, err)
}
