// Package textutil provides byte-level text classification helpers used by
// word motions and the fallback keyword highlighter. The engine operates on
// raw bytes with ASCII-oriented semantics.
package textutil

// CharClass categorizes a byte for word-motion purposes.
type CharClass uint8

const (
	// ClassWord covers ASCII alphanumerics and underscore.
	ClassWord CharClass = iota

	// ClassPunctuation covers everything that is neither word nor whitespace.
	ClassPunctuation

	// ClassWhitespace covers ASCII whitespace, including newlines.
	ClassWhitespace
)

// String returns the class name.
func (c CharClass) String() string {
	switch c {
	case ClassWord:
		return "word"
	case ClassPunctuation:
		return "punctuation"
	case ClassWhitespace:
		return "whitespace"
	default:
		return "unknown"
	}
}

// Classify returns the class of a single byte.
func Classify(b byte) CharClass {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '_':
		return ClassWord
	case IsSpace(b):
		return ClassWhitespace
	default:
		return ClassPunctuation
	}
}

// IsSpace reports whether b is ASCII whitespace.
func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// FindKeywords scans a line for words that appear in keywords and calls f
// with the start column and length of every match. Words are maximal runs
// of bytes that are neither punctuation nor whitespace.
func FindKeywords(line []byte, keywords map[string]struct{}, f func(start, length int)) {
	if len(keywords) == 0 {
		return
	}

	wordStart := 0
	inWord := false
	for i, b := range line {
		if Classify(b) == ClassWord {
			if !inWord {
				wordStart = i
				inWord = true
			}
			continue
		}
		if inWord {
			if _, ok := keywords[string(line[wordStart:i])]; ok {
				f(wordStart, i-wordStart)
			}
			inWord = false
		}
	}
	if inWord {
		if _, ok := keywords[string(line[wordStart:])]; ok {
			f(wordStart, len(line)-wordStart)
		}
	}
}
