// Package lexer styles documents for the control layer. Engine uses
// tree-sitter grammars and also reports fold levels; Chroma covers languages
// without a grammar.
package lexer

import (
	"errors"

	"github.com/kobzarvs/sciedit/internal/config"
	"github.com/kobzarvs/sciedit/internal/control"
)

var ErrNoGrammar = errors.New("lexer: no grammar for language")

// Style numbers written into the document. Their names are the keys of the
// [styles] config table.
const (
	StyleDefault byte = iota
	StyleKeyword
	StyleString
	StyleComment
	StyleType
	StyleFunction
	StyleNumber
	StyleConstant
	StyleOperator
	StylePunctuation
	StyleField
	StyleBuiltin
	StyleVariable
	StyleParameter

	styleCount
)

var styleNames = [styleCount]string{
	StyleDefault:     "default",
	StyleKeyword:     "keyword",
	StyleString:      "string",
	StyleComment:     "comment",
	StyleType:        "type",
	StyleFunction:    "function",
	StyleNumber:      "number",
	StyleConstant:    "constant",
	StyleOperator:    "operator",
	StylePunctuation: "punctuation",
	StyleField:       "field",
	StyleBuiltin:     "builtin",
	StyleVariable:    "variable",
	StyleParameter:   "parameter",
}

var stylesByName = func() map[string]byte {
	m := make(map[string]byte, len(styleNames))
	for s, name := range styleNames {
		m[name] = byte(s)
	}
	return m
}()

// StyleName returns the config name of style s, "default" for unknown ones.
func StyleName(s byte) string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return styleNames[StyleDefault]
}

func StyleByName(name string) (byte, bool) {
	s, ok := stylesByName[name]
	return s, ok
}

// StyleCount is the number of style numbers the lexers use.
func StyleCount() int {
	return int(styleCount)
}

// ForLanguage picks the lexer configured for lang. path helps chroma when
// the language name alone is not enough.
func ForLanguage(lang *config.Language, path string) (control.Lexer, error) {
	if lang == nil {
		return nil, ErrNoGrammar
	}
	name := lang.Name
	if lang.Grammar != "" {
		name = lang.Grammar
	}
	switch lang.Lexer {
	case config.LexerChroma:
		return chromaLexer(name, path)
	case config.LexerTreeSitter:
		return engineLexer(name)
	}
	if lx, err := engineLexer(name); err == nil {
		return lx, nil
	}
	return chromaLexer(name, path)
}

func engineLexer(name string) (control.Lexer, error) {
	e, err := NewEngine(name)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func chromaLexer(name, path string) (control.Lexer, error) {
	c, err := NewChroma(name, path)
	if err != nil {
		return nil, err
	}
	return c, nil
}
