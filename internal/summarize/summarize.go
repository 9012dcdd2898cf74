// Package summarize turns the chunks of one file into a single summary.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/seanblong/repodoc/internal/ai"
	"github.com/seanblong/repodoc/pkg/models"
)

// Placeholders stand in for text the model could not provide.
const (
	ChunkPlaceholder  = "[summary unavailable for this section]"
	BinaryPlaceholder = "[binary or non-text file, not summarized]"
	EmptyPlaceholder  = "[empty file]"
	ReadPlaceholder   = "[file could not be read]"
)

const chunkSeparator = "\n\n"

const chunkPromptTemplate = `You are an expert software engineer and technical writer.
Analyze the following code excerpt from the file '%s' (%s, lines %d-%d, part %d of %d) and produce a clear, developer-friendly summary.

For each excerpt, provide the following:
1) One-sentence purpose.
2) Key components.
3) Functionality description.
4) Dependencies.
5) Edge cases or considerations.

Code excerpt:
%s
`

const combinePromptTemplate = `Combine these chunk-level summaries for file %s:
1) File summary
2) Key components
3) Actionable notes

Chunk summaries:

%s
`

// Summarizer asks a model about each chunk, in order, one call at a time.
type Summarizer struct {
	Client ai.Client
	// Combine merges multi-chunk summaries with one more model call.
	Combine bool
	// Timeout bounds each model call; zero means no bound.
	Timeout time.Duration
}

func New(client ai.Client, combine bool, timeout time.Duration) *Summarizer {
	return &Summarizer{Client: client, Combine: combine, Timeout: timeout}
}

// ChunkPrompt renders the fixed prompt for one chunk.
func ChunkPrompt(path, language string, ch models.Chunk, total int) string {
	if language == "" {
		language = "unknown language"
	}
	return fmt.Sprintf(chunkPromptTemplate, path, language, ch.LineStart, ch.LineEnd, ch.Index+1, total, ch.Content)
}

// SummarizeFile never fails: a chunk whose call errors or comes back empty
// contributes ChunkPlaceholder instead.
func (s *Summarizer) SummarizeFile(ctx context.Context, path, language string, chunks []models.Chunk) models.Summary {
	sum := models.Summary{Path: path, Language: language, Chunks: len(chunks)}
	if blank(chunks) {
		sum.Text = EmptyPlaceholder
		return sum
	}

	parts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		text, err := s.generate(ctx, ai.Request{
			Prompt:   ChunkPrompt(path, language, ch, len(chunks)),
			Path:     path,
			Language: language,
			Content:  ch.Content,
		})
		if err != nil || text == "" {
			log.Warn().Err(err).Str("path", path).Int("chunk", ch.Index+1).Msg("chunk summary unavailable, using placeholder")
			sum.FailedChunks++
			text = ChunkPlaceholder
		}
		parts = append(parts, text)
	}
	sum.Text = strings.Join(parts, chunkSeparator)

	if s.Combine && len(chunks) > 1 && sum.FailedChunks < len(chunks) {
		combined, err := s.generate(ctx, ai.Request{
			Prompt:   fmt.Sprintf(combinePromptTemplate, path, strings.Join(parts, "\n\n---\n\n")),
			Path:     path,
			Language: language,
			Content:  sum.Text,
		})
		if err != nil || combined == "" {
			log.Warn().Err(err).Str("path", path).Msg("combine failed, keeping chunk summaries")
		} else {
			sum.Text = combined
		}
	}
	return sum
}

func (s *Summarizer) generate(ctx context.Context, req ai.Request) (string, error) {
	if s.Client == nil {
		return "", errors.New("no inference client")
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	text, err := s.Client.Generate(ctx, req)
	return strings.TrimSpace(text), err
}

func blank(chunks []models.Chunk) bool {
	for _, ch := range chunks {
		if strings.TrimSpace(ch.Content) != "" {
			return false
		}
	}
	return true
}
