// Package report lays out a DocumentReport and writes it through a Builder.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/seanblong/repodoc/pkg/models"
)

const (
	Title             = "Repository Documentation"
	DependencyHeading = "Dependencies & Top-level Files"
	SummaryHeading    = "File Summaries"
	NoDependencies    = "No dependency files were found."
)

// Builder accumulates headings and paragraphs and writes them out on Save.
// Level 0 is the document title.
type Builder interface {
	Heading(text string, level int) error
	Paragraph(text string) error
	Save(path string) error
}

// NewBuilder picks a builder from the output file extension.
func NewBuilder(outPath string) (Builder, error) {
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".md", ".markdown":
		return NewMarkdownBuilder(), nil
	default:
		return NewDocxBuilder()
	}
}

// Assemble writes r into b in document order. It does not save.
func Assemble(r models.DocumentReport, b Builder) error {
	if err := b.Heading(Title, 0); err != nil {
		return err
	}

	meta := []string{
		"Repository: " + r.RepositoryURL,
		"Scanned path: " + r.ScanPath,
	}
	if r.Model != "" {
		meta = append(meta, "Model: "+r.Model)
	}
	if !r.GeneratedAt.IsZero() {
		meta = append(meta, "Generated: "+r.GeneratedAt.UTC().Format(time.RFC3339))
	}
	for _, line := range meta {
		if err := b.Paragraph(line); err != nil {
			return err
		}
	}

	if err := b.Heading(DependencyHeading, 1); err != nil {
		return err
	}
	if len(r.DependencyFiles) == 0 {
		if err := b.Paragraph(NoDependencies); err != nil {
			return err
		}
	}
	for _, dep := range r.DependencyFiles {
		if err := b.Paragraph(dep.Path); err != nil {
			return err
		}
	}

	if err := b.Heading(SummaryHeading, 1); err != nil {
		return err
	}
	for _, s := range r.Files {
		if err := b.Heading(s.Path, 2); err != nil {
			return fmt.Errorf("heading %s: %w", s.Path, err)
		}
		for _, p := range paragraphs(s.Text) {
			if err := b.Paragraph(p); err != nil {
				return fmt.Errorf("summary %s: %w", s.Path, err)
			}
		}
	}
	return nil
}

// paragraphs splits summary text into its non-blank lines.
func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimRight(line, " \t\r"); strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
