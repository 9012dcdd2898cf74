// Package docgen runs the clone, select, summarize and assemble pipeline
// for one repository.
package docgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/go-enry/go-enry/v2"
	"github.com/rs/zerolog/log"
	"github.com/seanblong/repodoc/internal/report"
	"github.com/seanblong/repodoc/internal/selector"
	"github.com/seanblong/repodoc/internal/summarize"
	"github.com/seanblong/repodoc/pkg/models"
)

// State is the position of a run in its lifecycle.
type State string

const (
	StateStart       State = "START"
	StateCloned      State = "CLONED"
	StateScanned     State = "SCANNED"
	StateSummarizing State = "SUMMARIZING"
	StateAssembled   State = "ASSEMBLED"
	StateDone        State = "DONE"
	StateAborted     State = "ABORTED"
	StateEmpty       State = "EMPTY"
)

// Cloner fetches a repository into dest.
type Cloner interface {
	Clone(ctx context.Context, url, dest string) error
}

// FileSelector lists the files under root worth documenting.
type FileSelector interface {
	Select(root string) (selector.Selection, error)
}

// Splitter cuts file text into chunks.
type Splitter interface {
	Split(text string) []models.Chunk
}

// FileSummarizer turns one file's chunks into a summary.
type FileSummarizer interface {
	SummarizeFile(ctx context.Context, path, language string, chunks []models.Chunk) models.Summary
}

// FileReader defines the interface for reading files
type FileReader interface {
	ReadFile(filename string) ([]byte, error)
}

// DefaultFileReader implements FileReader using os
type DefaultFileReader struct{}

func (d *DefaultFileReader) ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}

// Options are the per-run inputs.
type Options struct {
	RepoURL string
	WorkDir string
	Output  string
	// Keep leaves the clone on disk after the run.
	Keep  bool
	Model string
}

// Result describes how a run ended.
type Result struct {
	State  State
	Report models.DocumentReport
	// Output is empty unless a document was written.
	Output     string
	CleanupErr error
}

// Generator handles documenting one repository.
type Generator struct {
	Options    Options
	Cloner     Cloner
	Selector   FileSelector
	Splitter   Splitter
	Summarizer FileSummarizer
	FileReader FileReader
	NewBuilder func(outPath string) (report.Builder, error)
	RemoveAll  func(path string) error
	Now        func() time.Time
}

// New creates a Generator with filesystem defaults.
func New(opts Options, cloner Cloner, sel FileSelector, splitter Splitter, sum FileSummarizer) *Generator {
	return &Generator{
		Options:    opts,
		Cloner:     cloner,
		Selector:   sel,
		Splitter:   splitter,
		Summarizer: sum,
		FileReader: &DefaultFileReader{},
		NewBuilder: report.NewBuilder,
		RemoveAll:  os.RemoveAll,
		Now:        time.Now,
	}
}

// Run executes the pipeline. The returned error is a *CloneError, a
// *WriteError, or a context or selection failure; an EMPTY run is not an
// error.
func (g *Generator) Run(ctx context.Context) (res Result, err error) {
	src := models.RepositorySource{URL: g.Options.RepoURL, Path: g.Options.WorkDir}
	res.State = StateStart

	if err := g.Cloner.Clone(ctx, src.URL, src.Path); err != nil {
		res.State = StateAborted
		return res, &CloneError{URL: src.URL, Err: err}
	}
	res.State = StateCloned
	defer func() {
		res.CleanupErr = g.cleanup(src.Path)
	}()

	sel, err := g.Selector.Select(src.Path)
	if err != nil {
		res.State = StateAborted
		return res, fmt.Errorf("scanning %s: %w", src.Path, err)
	}
	res.State = StateScanned

	res.Report = models.DocumentReport{
		RepositoryURL:   src.URL,
		ScanPath:        src.Path,
		Model:           g.Options.Model,
		DependencyFiles: sel.Dependencies,
	}
	if len(sel.Sources) == 0 {
		res.State = StateEmpty
		log.Warn().Str("path", src.Path).Msg("no matching source files found, no document written")
		return res, nil
	}

	res.State = StateSummarizing
	res.Report.Files = make([]models.Summary, 0, len(sel.Sources))
	for i, f := range sel.Sources {
		if err := ctx.Err(); err != nil {
			res.State = StateAborted
			return res, err
		}
		log.Info().Str("path", f.Path).Int("file", i+1).Int("of", len(sel.Sources)).Msg("summarizing")
		res.Report.Files = append(res.Report.Files, g.summarizeFile(ctx, src.Path, f))
	}
	res.Report.GeneratedAt = g.Now()

	b, err := g.NewBuilder(g.Options.Output)
	if err != nil {
		res.State = StateAborted
		return res, &WriteError{Path: g.Options.Output, Err: err}
	}
	if err := report.Assemble(res.Report, b); err != nil {
		res.State = StateAborted
		return res, &WriteError{Path: g.Options.Output, Err: err}
	}
	res.State = StateAssembled

	if err := b.Save(g.Options.Output); err != nil {
		res.State = StateAborted
		return res, &WriteError{Path: g.Options.Output, Err: err}
	}
	res.Output = g.Options.Output
	res.State = StateDone
	log.Info().Str("output", res.Output).Int("files", len(res.Report.Files)).Msg("document written")
	return res, nil
}

// summarizeFile always yields a summary, substituting a placeholder when the
// file cannot be read or is not text.
func (g *Generator) summarizeFile(ctx context.Context, root string, f models.CandidateFile) models.Summary {
	data, err := g.FileReader.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
	if err != nil {
		log.Warn().Err(err).Str("path", f.Path).Msg("read failed")
		return models.Summary{Path: f.Path, Text: summarize.ReadPlaceholder}
	}
	if enry.IsBinary(data) || !utf8.Valid(data) {
		log.Warn().Str("path", f.Path).Msg("binary content, skipping")
		return models.Summary{Path: f.Path, Text: summarize.BinaryPlaceholder}
	}

	lang := enry.GetLanguage(filepath.Base(f.Path), data)
	chunks := g.Splitter.Split(string(data))
	log.Debug().Str("path", f.Path).Str("language", lang).Int("chunks", len(chunks)).Msg("chunked")
	return g.Summarizer.SummarizeFile(ctx, f.Path, lang, chunks)
}

func (g *Generator) cleanup(dir string) error {
	if g.Options.Keep {
		log.Info().Str("path", dir).Msg("keeping working directory")
		return nil
	}
	if err := g.RemoveAll(dir); err != nil {
		log.Warn().Err(err).Str("path", dir).Msg("cleanup failed")
		return err
	}
	log.Debug().Str("path", dir).Msg("working directory removed")
	return nil
}
