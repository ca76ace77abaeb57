// Package language holds immutable per-language metadata: keywords,
// comment tokens, file extensions, and the language-server executable.
// The lookup table is built once at init and never mutated.
package language

import "path/filepath"

// Language describes one supported language.
type Language struct {
	Identifier       string
	Extensions       []string
	Keywords         []string
	LineCommentToken string
	ServerExecutable string
}

var rustKeywords = []string{
	"as", "break", "const", "continue", "crate", "else", "enum", "extern", "false", "fn", "for",
	"if", "impl", "in", "let", "loop", "match", "mod", "move", "mut", "pub", "ref", "return",
	"self", "Self", "static", "struct", "super", "trait", "true", "type", "unsafe", "use", "where",
	"while", "async", "await", "dyn",
}

var cppKeywords = []string{
	"alignas", "alignof", "and", "and_eq", "asm", "auto", "bitand", "bitor", "bool", "break",
	"case", "catch", "char", "char8_t", "char16_t", "char32_t", "class", "compl", "concept",
	"const", "consteval", "constexpr", "constinit", "const_cast", "continue", "co_await",
	"co_return", "co_yield", "decltype", "default", "delete", "do", "double", "dynamic_cast",
	"else", "enum", "explicit", "export", "extern", "false", "float", "for", "friend", "goto",
	"if", "inline", "int", "long", "mutable", "namespace", "new", "noexcept", "not", "not_eq",
	"nullptr", "operator", "or", "or_eq", "private", "protected", "public", "register",
	"reinterpret_cast", "requires", "return", "short", "signed", "sizeof", "static",
	"static_assert", "static_cast", "struct", "switch", "template", "this", "thread_local",
	"throw", "true", "try", "typedef", "typeid", "typename", "union", "unsigned", "using",
	"virtual", "void", "volatile", "wchar_t", "while", "xor", "xor_eq",
}

var goKeywords = []string{
	"break", "case", "chan", "const", "continue", "default", "defer", "else", "fallthrough",
	"for", "func", "go", "goto", "if", "import", "interface", "map", "package", "range",
	"return", "select", "struct", "switch", "type", "var",
}

var languages = []*Language{
	{
		Identifier:       "rust",
		Extensions:       []string{"rs"},
		Keywords:         rustKeywords,
		LineCommentToken: "//",
		ServerExecutable: "rust-analyzer",
	},
	{
		Identifier:       "cpp",
		Extensions:       []string{"c", "h", "cpp", "hpp", "cc", "cxx"},
		Keywords:         cppKeywords,
		LineCommentToken: "//",
		ServerExecutable: "clangd",
	},
	{
		Identifier:       "go",
		Extensions:       []string{"go"},
		Keywords:         goKeywords,
		LineCommentToken: "//",
		ServerExecutable: "gopls",
	},
}

var unknown = &Language{Identifier: "plaintext"}

var byExtension = buildIndex()

func buildIndex() map[string]*Language {
	index := make(map[string]*Language)
	for _, lang := range languages {
		for _, ext := range lang.Extensions {
			index[ext] = lang
		}
	}
	return index
}

// FromPath returns the language for a file path's extension, or the
// plaintext fallback when the extension is unknown.
func FromPath(path string) *Language {
	ext := filepath.Ext(path)
	if len(ext) > 1 {
		if lang, ok := byExtension[ext[1:]]; ok {
			return lang
		}
	}
	return unknown
}

// KeywordSet returns the keywords as a set for scanning.
func (l *Language) KeywordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(l.Keywords))
	for _, kw := range l.Keywords {
		set[kw] = struct{}{}
	}
	return set
}

// Known reports whether the language was recognised from its
// extension.
func (l *Language) Known() bool {
	return l != unknown
}
