package lexer

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/kobzarvs/sciedit/internal/control"
)

// Chroma lexes with a regex lexer from chroma. It does not report fold
// levels.
type Chroma struct {
	name  string
	lexer chroma.Lexer
}

// NewChroma looks the lexer up by name, then by file name.
func NewChroma(name, path string) (*Chroma, error) {
	l := lexers.Get(name)
	if l == nil && path != "" {
		l = lexers.Match(path)
	}
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoGrammar, name)
	}
	return &Chroma{name: name, lexer: chroma.Coalesce(l)}, nil
}

func (c *Chroma) Name() string {
	return c.name
}

// Lex tokenises from the start of the document so that multi-line tokens
// begun before start are seen, and styles only [start, end).
func (c *Chroma) Lex(doc control.Accessor, start, end int) error {
	text := doc.TextRange(0, end)
	it, err := c.lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, text)
	if err != nil {
		return fmt.Errorf("lexer: tokenise %s: %w", c.name, err)
	}
	styles := make([]byte, end-start)
	pos := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		next := min(pos+len(tok.Value), end)
		if next > start {
			style := tokenStyle(tok.Type)
			for i := max(pos, start); i < next; i++ {
				styles[i-start] = style
			}
		}
		pos = next
		if pos >= end {
			break
		}
	}
	doc.SetStylingEx(styles)
	return nil
}

func tokenStyle(t chroma.TokenType) byte {
	switch {
	case t == chroma.KeywordType:
		return StyleType
	case t == chroma.KeywordConstant:
		return StyleConstant
	case t.InCategory(chroma.Keyword):
		return StyleKeyword
	case t == chroma.NameFunction || t == chroma.NameFunctionMagic:
		return StyleFunction
	case t == chroma.NameBuiltin || t == chroma.NameBuiltinPseudo:
		return StyleBuiltin
	case t == chroma.NameClass || t == chroma.NameNamespace:
		return StyleType
	case t == chroma.NameTag || t == chroma.NameAttribute || t == chroma.NameProperty:
		return StyleField
	case t == chroma.NameConstant:
		return StyleConstant
	case t == chroma.NameVariable || t == chroma.NameVariableGlobal || t == chroma.NameVariableInstance:
		return StyleVariable
	case t.InSubCategory(chroma.LiteralString):
		return StyleString
	case t.InSubCategory(chroma.LiteralNumber):
		return StyleNumber
	case t.InCategory(chroma.Comment):
		return StyleComment
	case t.InCategory(chroma.Operator):
		return StyleOperator
	case t.InCategory(chroma.Punctuation):
		return StylePunctuation
	case t == chroma.GenericHeading || t == chroma.GenericSubheading:
		return StyleKeyword
	case t == chroma.GenericEmph || t == chroma.GenericStrong:
		return StyleField
	}
	return StyleDefault
}
