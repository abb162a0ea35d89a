// Package export renders a project memorandum as DOCX or PDF.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	FormatDOCX = "docx"
	FormatPDF  = "pdf"
)

// Section is one chapter of the memorandum.
type Section struct {
	Title   string
	Content string
}

// Memorandum is the document being exported.
type Memorandum struct {
	Title    string
	Details  []Detail
	Summary  string
	Sections []Section
}

// Detail is a labelled header line ("Convocatoria: ...").
type Detail struct {
	Label string
	Value string
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// Render writes m to w in the given format.
func Render(w io.Writer, format string, m Memorandum) error {
	switch format {
	case FormatDOCX:
		return WriteDOCX(w, m)
	case FormatPDF:
		return WritePDF(w, m)
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
}

var accents = map[rune]rune{
	'á': 'a', 'é': 'e', 'í': 'i', 'ó': 'o', 'ú': 'u', 'ü': 'u', 'ñ': 'n',
	'Á': 'a', 'É': 'e', 'Í': 'i', 'Ó': 'o', 'Ú': 'u', 'Ü': 'u', 'Ñ': 'n',
}

// FileName builds a download name such as memoria-proyecto-eolico.docx.
func FileName(title, format string) string {
	slug := strings.Map(func(r rune) rune {
		if plain, ok := accents[r]; ok {
			return plain
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(title))
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = time.Now().Format("20060102")
	}
	return "memoria-" + slug + "." + format
}

func paragraphs(content string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
