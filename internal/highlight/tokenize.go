package highlight

import (
	"bytes"

	"github.com/tverras/kiln/internal/engine/textutil"
)

// tokenize scans chunk text line by line and produces spans for line
// comments, string and character literals, numbers, and keywords.
// Span offsets are relative to the start of the chunk.
func tokenize(text []byte, keywords map[string]struct{}, commentToken string) []Span {
	var spans []Span
	offset := 0
	for len(text) > 0 {
		line := text
		if i := bytes.IndexByte(text, '\n'); i >= 0 {
			line = text[:i+1]
		}
		spans = tokenizeLine(line, keywords, commentToken, offset, spans)
		offset += len(line)
		text = text[len(line):]
	}
	return spans
}

// tokenizeLine emits spans for one line, newline included. Literal
// and comment bytes are blanked in a scratch copy so the keyword scan
// cannot match inside them.
func tokenizeLine(line []byte, keywords map[string]struct{}, commentToken string, base int, spans []Span) []Span {
	masked := append([]byte(nil), line...)

	i := 0
	for i < len(line) {
		b := line[i]
		switch {
		case commentToken != "" && b == commentToken[0] && bytes.HasPrefix(line[i:], []byte(commentToken)):
			length := len(line) - i
			if line[len(line)-1] == '\n' {
				length--
			}
			if length > 0 {
				spans = append(spans, Span{Start: base + i, Length: length, Kind: KindComment})
			}
			blank(masked[i:])
			i = len(line)

		case b == '"' || b == '\'':
			j := i + 1
			for j < len(line) && line[j] != b && line[j] != '\n' {
				if line[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(line) && line[j] == b {
				j++
			}
			spans = append(spans, Span{Start: base + i, Length: j - i, Kind: KindString})
			blank(masked[i:j])
			i = j

		case b >= '0' && b <= '9':
			j := i
			for j < len(line) && isNumberByte(line[j]) {
				j++
			}
			spans = append(spans, Span{Start: base + i, Length: j - i, Kind: KindNumber})
			blank(masked[i:j])
			i = j

		case textutil.Classify(b) == textutil.ClassWord:
			for i < len(line) && textutil.Classify(line[i]) == textutil.ClassWord {
				i++
			}

		default:
			i++
		}
	}

	textutil.FindKeywords(masked, keywords, func(start, length int) {
		spans = append(spans, Span{Start: base + start, Length: length, Kind: KindKeyword})
	})
	return spans
}

// isNumberByte accepts the characters that can appear inside a
// numeric literal: digits, hex letters and prefixes, separators, and
// a decimal point.
func isNumberByte(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'a' && b <= 'f', b >= 'A' && b <= 'F':
		return true
	case b == 'x', b == 'X', b == 'o', b == 'O', b == '.', b == '_':
		return true
	}
	return false
}

func blank(b []byte) {
	for i := range b {
		b[i] = ' '
	}
}
