package rag

import (
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default maximum chunk length in characters.
const DefaultChunkSize = 1000

// sentenceRegex matches a (possibly empty) run of text closed by one or more
// terminators, or the unterminated tail of the text. A bare "..." is a sentence.
var sentenceRegex = regexp.MustCompile(`[^.!?]*[.!?]+|[^.!?]+$`)

// Chunker splits text into sentence-aligned chunks of at most MaxChars
// characters. A single sentence longer than MaxChars is kept whole.
type Chunker struct {
	MaxChars int
}

// NewChunker returns a chunker; maxChars <= 0 selects DefaultChunkSize.
func NewChunker(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}
	return &Chunker{MaxChars: maxChars}
}

// Chunks returns a lazy sequence of chunks. Ranging over it again restarts
// from the beginning of text.
func (c *Chunker) Chunks(text string) iter.Seq[string] {
	maxChars := c.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}
	return func(yield func(string) bool) {
		if strings.TrimSpace(text) == "" {
			return
		}

		var current strings.Builder
		currentLen := 0
		for _, loc := range sentenceRegex.FindAllStringIndex(text, -1) {
			sentence := text[loc[0]:loc[1]]
			sentenceLen := utf8.RuneCountInString(sentence)

			if currentLen > 0 && currentLen+sentenceLen > maxChars {
				if chunk := strings.TrimSpace(current.String()); chunk != "" {
					if !yield(chunk) {
						return
					}
				}
				current.Reset()
				currentLen = 0
			}
			current.WriteString(sentence)
			currentLen += sentenceLen
		}

		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			yield(chunk)
		}
	}
}

// Split collects every chunk of text.
func (c *Chunker) Split(text string) []string {
	var out []string
	for chunk := range c.Chunks(text) {
		out = append(out, chunk)
	}
	return out
}
