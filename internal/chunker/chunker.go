package chunker

import "strings"

// DefaultMaxSize is the chunk size bound used when callers pass 0.
const DefaultMaxSize = 500

// Split breaks text into sentence-aligned chunks of at most maxSize
// characters. Sentences are never split: a single sentence longer than
// maxSize becomes its own oversized chunk rather than being truncated.
// Text already within the bound (including empty text) comes back as a
// single chunk unchanged.
func Split(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if len(text) <= maxSize {
		return []string{text}
	}

	sentences := splitSentences(text)

	var chunks []string
	var buf strings.Builder
	for _, s := range sentences {
		if buf.Len() > 0 && buf.Len()+2+len(s) > maxSize {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteString(". ")
		}
		buf.WriteString(s)
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// splitSentences cuts text on terminator punctuation and drops fragments
// that are empty after trimming.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
