package report

import (
	"fmt"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

// DocxBuilder writes Word documents.
type DocxBuilder struct {
	doc *docx.RootDoc
}

func NewDocxBuilder() (*DocxBuilder, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	return &DocxBuilder{doc: doc}, nil
}

func (d *DocxBuilder) Heading(text string, level int) error {
	if level < 0 {
		level = 0
	}
	if _, err := d.doc.AddHeading(text, uint(level)); err != nil {
		return fmt.Errorf("adding heading: %w", err)
	}
	return nil
}

func (d *DocxBuilder) Paragraph(text string) error {
	d.doc.AddParagraph(text)
	return nil
}

func (d *DocxBuilder) Save(path string) error {
	return d.doc.SaveTo(path)
}
