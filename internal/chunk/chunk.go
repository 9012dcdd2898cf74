// Package chunk splits file content into bounded pieces on line boundaries.
package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/seanblong/repodoc/pkg/models"
)

// Measure reports the size of a piece of text in some unit.
type Measure interface {
	Size(s string) int
	Unit() string
}

// CharMeasure counts characters (runes).
type CharMeasure struct{}

func (CharMeasure) Size(s string) int { return utf8.RuneCountInString(s) }
func (CharMeasure) Unit() string      { return "chars" }

// LineMeasure counts each piece as one line.
type LineMeasure struct{}

func (LineMeasure) Size(string) int { return 1 }
func (LineMeasure) Unit() string    { return "lines" }

// TokenMeasure counts cl100k_base tokens. The bound is applied per line, so
// a chunk's real token count can differ slightly at line joins.
type TokenMeasure struct {
	enc *tiktoken.Tiktoken
}

func NewTokenMeasure() (*TokenMeasure, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	return &TokenMeasure{enc: enc}, nil
}

func (m *TokenMeasure) Size(s string) int { return len(m.enc.Encode(s, nil, nil)) }
func (m *TokenMeasure) Unit() string      { return "tokens" }

// NewMeasure resolves a configured unit name.
func NewMeasure(unit string) (Measure, error) {
	switch strings.ToLower(unit) {
	case "", "chars":
		return CharMeasure{}, nil
	case "lines":
		return LineMeasure{}, nil
	case "tokens":
		m, err := NewTokenMeasure()
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported chunk unit: %s", unit)
	}
}

// Chunker packs whole lines into chunks no larger than Max, except that a
// single line larger than Max becomes a chunk on its own.
type Chunker struct {
	Max     int
	Measure Measure
}

func New(max int, m Measure) (*Chunker, error) {
	if max <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", max)
	}
	if m == nil {
		m = CharMeasure{}
	}
	return &Chunker{Max: max, Measure: m}, nil
}

// Split returns chunks whose concatenated Content equals text. Empty text
// yields no chunks.
func (c *Chunker) Split(text string) []models.Chunk {
	if text == "" {
		return nil
	}

	var (
		out     []models.Chunk
		buf     strings.Builder
		size    int
		start   int // first line of the pending chunk
		line    int // last line consumed
		pending bool
	)
	flush := func() {
		out = append(out, models.Chunk{
			Index:     len(out),
			Content:   buf.String(),
			LineStart: start,
			LineEnd:   line,
		})
		buf.Reset()
		size = 0
		pending = false
	}

	for _, l := range strings.SplitAfter(text, "\n") {
		if l == "" {
			// SplitAfter leaves an empty tail when text ends in a newline
			continue
		}
		n := c.Measure.Size(l)
		if pending && size+n > c.Max {
			flush()
		}
		if !pending {
			start = line + 1
			pending = true
		}
		line++
		buf.WriteString(l)
		size += n
	}
	if pending {
		flush()
	}
	return out
}
