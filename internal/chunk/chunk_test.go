package chunk

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/seanblong/repodoc/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func join(chunks []models.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Content)
	}
	return b.String()
}

func mustChunker(t *testing.T, max int, m Measure) *Chunker {
	t.Helper()
	c, err := New(max, m)
	require.NoError(t, err)
	return c
}

func TestSplit_RoundTrip(t *testing.T) {
	inputs := []string{
		"a",
		"a\n",
		"\n",
		"\n\n\n",
		"one\ntwo\nthree",
		"one\ntwo\nthree\n",
		"windows\r\nline\r\nendings\r\n",
		strings.Repeat("x", 100) + "\nshort\n" + strings.Repeat("y", 37),
		"héllo wörld\nüñíçødé\n",
	}
	for _, max := range []int{1, 3, 10, 64, 8000} {
		c := mustChunker(t, max, CharMeasure{})
		for _, in := range inputs {
			assert.Equal(t, in, join(c.Split(in)), "max=%d input=%q", max, in)
		}
	}
}

func TestSplit_RoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []byte("abc \t\n\n{}")
	for i := 0; i < 200; i++ {
		buf := make([]byte, rng.Intn(400))
		for j := range buf {
			buf[j] = alphabet[rng.Intn(len(alphabet))]
		}
		text := string(buf)
		for _, m := range []Measure{CharMeasure{}, LineMeasure{}} {
			c := mustChunker(t, 1+rng.Intn(50), m)
			chunks := c.Split(text)
			require.Equal(t, text, join(chunks))

			// line ranges tile the file with no gaps
			next := 1
			for k, ch := range chunks {
				assert.Equal(t, k, ch.Index)
				assert.Equal(t, next, ch.LineStart)
				assert.GreaterOrEqual(t, ch.LineEnd, ch.LineStart)
				next = ch.LineEnd + 1
			}
		}
	}
}

func TestSplit_UnderBoundIsSingleChunk(t *testing.T) {
	text := strings.Repeat("print('hello')\n", 50)
	c := mustChunker(t, len(text), CharMeasure{})

	chunks := c.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
	assert.Equal(t, 1, chunks[0].LineStart)
	assert.Equal(t, 50, chunks[0].LineEnd)
}

func TestSplit_RespectsBound(t *testing.T) {
	text := strings.Repeat("0123456789\n", 30) // 11 chars per line
	c := mustChunker(t, 50, CharMeasure{})

	chunks := c.Split(text)
	require.Len(t, chunks, 8) // 4 lines (44 chars) per chunk, 2 in the last
	for _, ch := range chunks {
		assert.LessOrEqual(t, CharMeasure{}.Size(ch.Content), 50)
		assert.True(t, strings.HasSuffix(ch.Content, "\n"), "line split across chunks")
	}
	assert.Equal(t, 29, chunks[7].LineStart)
	assert.Equal(t, 30, chunks[7].LineEnd)
}

func TestSplit_OversizedLineStandsAlone(t *testing.T) {
	long := strings.Repeat("z", 120) + "\n"
	text := "a\n" + long + "b\n"
	c := mustChunker(t, 10, CharMeasure{})

	chunks := c.Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, "a\n", chunks[0].Content)
	assert.Equal(t, long, chunks[1].Content)
	assert.Equal(t, 2, chunks[1].LineStart)
	assert.Equal(t, 2, chunks[1].LineEnd)
	assert.Equal(t, "b\n", chunks[2].Content)
}

func TestSplit_Lines(t *testing.T) {
	text := "1\n2\n3\n4\n5\n6\n7"
	c := mustChunker(t, 3, LineMeasure{})

	chunks := c.Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, "1\n2\n3\n", chunks[0].Content)
	assert.Equal(t, "4\n5\n6\n", chunks[1].Content)
	assert.Equal(t, "7", chunks[2].Content)
	assert.Equal(t, 7, chunks[2].LineStart)
}

func TestSplit_Empty(t *testing.T) {
	c := mustChunker(t, 10, CharMeasure{})
	assert.Empty(t, c.Split(""))
}

func TestSplit_CharsCountRunes(t *testing.T) {
	text := "ééééé\n" // 6 runes, 11 bytes
	c := mustChunker(t, 6, CharMeasure{})
	assert.Len(t, c.Split(text), 1)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(0, CharMeasure{})
	assert.Error(t, err)
	_, err = New(-5, nil)
	assert.Error(t, err)

	c, err := New(5, nil)
	require.NoError(t, err)
	assert.Equal(t, "chars", c.Measure.Unit())
}

func TestNewMeasure(t *testing.T) {
	m, err := NewMeasure("chars")
	require.NoError(t, err)
	assert.Equal(t, "chars", m.Unit())

	m, err = NewMeasure("LINES")
	require.NoError(t, err)
	assert.Equal(t, "lines", m.Unit())

	_, err = NewMeasure("pages")
	assert.Error(t, err)
}
