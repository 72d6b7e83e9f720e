package morph

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMystem writes a shell script that prints output regardless of input.
func fakeMystem(t *testing.T, output string, exitCode int) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available on windows")
	}

	path := filepath.Join(t.TempDir(), "mystem")
	script := "#!/bin/sh\ncat >/dev/null\ncat <<'JSON'\n" + output + "\nJSON\nexit " + string(rune('0'+exitCode)) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}

func TestMystemTagger_Analyze(t *testing.T) {
	t.Parallel()

	output := strings.Join([]string{
		`{"analysis":[{"lex":"мост","gr":"S,муж,неод=им,ед"}],"text":"мост"}`,
		`{"text":"\n"}`,
		`{"analysis":[],"text":"ыыы"}`,
		`{"text":"\n"}`,
		`{"analysis":[{"lex":"открывать","gr":"V,несов,пе=прош,мн,изъяв"}],"text":"открыли"}`,
	}, "\n")

	tagger := NewMystemTagger(fakeMystem(t, output, 0))
	assert.Equal(t, "mystem", tagger.Name())

	got, err := tagger.Analyze(context.Background(), []string{"мост", "2023", "ыыы", "", "открыли"})
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.Equal(t, Analysis[string]{Word: "мост", Lemma: "мост", Tag: "S,муж,неод=им,ед", Found: true}, got[0])
	assert.Equal(t, Analysis[string]{Word: "2023"}, got[1])
	assert.False(t, got[2].Found)
	assert.False(t, got[3].Found)
	assert.Equal(t, "открывать", got[4].Lemma)
}

func TestMystemTagger_OutOfStep(t *testing.T) {
	t.Parallel()

	output := `{"analysis":[{"lex":"мост","gr":"S,муж,неод=им,ед"}],"text":"мост"}`

	tagger := NewMystemTagger(fakeMystem(t, output, 0))

	_, err := tagger.Analyze(context.Background(), []string{"мост", "река"})
	assert.ErrorIs(t, err, ErrTaggerOutput)
}

func TestMystemTagger_ProcessFailure(t *testing.T) {
	t.Parallel()

	tagger := NewMystemTagger(fakeMystem(t, "", 3))

	_, err := tagger.Analyze(context.Background(), []string{"мост"})
	assert.ErrorIs(t, err, ErrTaggerFailed)

	missing := NewMystemTagger(filepath.Join(t.TempDir(), "absent"))
	_, err = missing.Analyze(context.Background(), []string{"мост"})
	assert.ErrorIs(t, err, ErrTaggerFailed)
}

func TestMystemTagger_NothingToAnalyze(t *testing.T) {
	t.Parallel()

	tagger := NewMystemTagger("/nonexistent/mystem")

	got, err := tagger.Analyze(context.Background(), []string{"2023", ""})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

const testDictionary = `# form	lemma	tag
мост	мост	NOUN,inan,masc sing,nomn
мост	мост	NOUN,inan,masc sing,accs
открыли	открыть	VERB,perf,tran plur,past,indc
`

func TestDictTagger(t *testing.T) {
	t.Parallel()

	tagger, err := NewDictTagger(strings.NewReader(testDictionary))
	require.NoError(t, err)
	assert.Equal(t, 2, tagger.Len())
	assert.Equal(t, "opencorpora", tagger.Name())

	got, err := tagger.Analyze(context.Background(), []string{"Мост", "река", "открыли"})
	require.NoError(t, err)

	assert.True(t, got[0].Found)
	assert.Equal(t, "мост", got[0].Lemma)
	assert.True(t, got[0].Tag.Has("nomn"), "first entry wins")
	assert.False(t, got[1].Found)
	assert.Equal(t, "VERB", got[2].Tag.POS)
}

func TestDictTagger_Load(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dict.tsv")
	require.NoError(t, os.WriteFile(path, []byte(testDictionary), 0o644))

	tagger, err := LoadDictTagger(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tagger.Len())

	_, err = LoadDictTagger(filepath.Join(t.TempDir(), "absent.tsv"))
	assert.Error(t, err)
}

func TestDictTagger_Malformed(t *testing.T) {
	t.Parallel()

	for _, dict := range []string{"мост\tмост\n", "мост\tмост\t\n", "\tмост\tNOUN\n"} {
		_, err := NewDictTagger(strings.NewReader(dict))
		assert.ErrorIs(t, err, ErrBadDictEntry, dict)
	}
}
