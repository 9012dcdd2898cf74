package report

import (
	"os"
	"strings"
)

// MarkdownBuilder writes the same layout as plain Markdown.
type MarkdownBuilder struct {
	sb strings.Builder
}

func NewMarkdownBuilder() *MarkdownBuilder {
	return &MarkdownBuilder{}
}

func (m *MarkdownBuilder) Heading(text string, level int) error {
	if level < 0 {
		level = 0
	}
	if m.sb.Len() > 0 {
		m.sb.WriteString("\n")
	}
	m.sb.WriteString(strings.Repeat("#", level+1))
	m.sb.WriteString(" ")
	m.sb.WriteString(text)
	m.sb.WriteString("\n")
	return nil
}

func (m *MarkdownBuilder) Paragraph(text string) error {
	m.sb.WriteString("\n")
	m.sb.WriteString(escapeHeading(text))
	m.sb.WriteString("\n")
	return nil
}

func (m *MarkdownBuilder) String() string {
	return m.sb.String()
}

func (m *MarkdownBuilder) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = f.WriteString(m.sb.String())
	return err
}

// escapeHeading keeps a paragraph that starts with '#' from rendering as a
// heading.
func escapeHeading(text string) string {
	indent := len(text) - len(strings.TrimLeft(text, " "))
	if strings.HasPrefix(text[indent:], "#") {
		return text[:indent] + "\\" + text[indent:]
	}
	return text
}
