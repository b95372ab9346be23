package lexer

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/yaml"

	"github.com/kobzarvs/sciedit/internal/cellbuffer"
	"github.com/kobzarvs/sciedit/internal/control"
	"github.com/kobzarvs/sciedit/internal/logger"
)

// Engine lexes with a tree-sitter grammar. Styles come from the grammar's
// highlight query; fold levels follow the nesting of nodes that span lines.
type Engine struct {
	name   string
	parser *sitter.Parser
	query  *sitter.Query

	mu   sync.Mutex
	tree *sitter.Tree
	src  []byte
}

type grammar struct {
	lang  func() *sitter.Language
	query string
}

var grammars = map[string]grammar{
	"go":   {golang.GetLanguage, goHighlightQuery},
	"yaml": {yaml.GetLanguage, yamlHighlightQuery},
	"toml": {toml.GetLanguage, tomlHighlightQuery},
	"bash": {bash.GetLanguage, bashHighlightQuery},
}

// HasGrammar reports whether a tree-sitter grammar is compiled in for name.
func HasGrammar(name string) bool {
	_, ok := grammars[name]
	return ok
}

func NewEngine(name string) (*Engine, error) {
	g, ok := grammars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoGrammar, name)
	}
	lang := g.lang()
	query, err := compileQuery(name, g.query, lang)
	if err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Engine{name: name, parser: p, query: query}, nil
}

// compileQuery compiles the patterns of src that the grammar accepts. A
// pattern naming a node type the grammar lacks is logged and dropped.
func compileQuery(name, src string, lang *sitter.Language) (*sitter.Query, error) {
	var kept []string
	for _, pattern := range splitPatterns(src) {
		q, err := sitter.NewQuery([]byte(pattern), lang)
		if err != nil {
			logger.Warn("highlight pattern dropped", "lexer", name, "pattern", pattern, "error", err)
			continue
		}
		q.Close()
		kept = append(kept, pattern)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %s has no usable highlight patterns", ErrNoGrammar, name)
	}
	query, err := sitter.NewQuery([]byte(strings.Join(kept, "\n")), lang)
	if err != nil {
		return nil, fmt.Errorf("lexer: %s highlight query: %w", name, err)
	}
	return query, nil
}

// splitPatterns cuts a query into its top-level patterns. A pattern ends at
// a newline outside brackets and strings.
func splitPatterns(src string) []string {
	var out []string
	depth, begin := 0, 0
	inString, escaped := false, false
	flush := func(end int) {
		if p := strings.TrimSpace(src[begin:end]); p != "" {
			out = append(out, p)
		}
		begin = end
	}
	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
		case ch == '"':
			inString = true
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			depth--
		case ch == '\n' && depth == 0:
			flush(i)
		}
	}
	flush(len(src))
	return out
}

func (e *Engine) Name() string {
	return e.name
}

// Close releases the parser and the last tree.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree != nil {
		e.tree.Close()
		e.tree = nil
	}
	e.query.Close()
	e.parser.Close()
}

// parse returns a tree for src, reusing the last one when the text is
// unchanged.
func (e *Engine) parse(src []byte) (*sitter.Tree, error) {
	if e.tree != nil && bytes.Equal(src, e.src) {
		return e.tree, nil
	}
	tree, err := e.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, err
	}
	if e.tree != nil {
		e.tree.Close()
	}
	e.tree = tree
	e.src = src
	return tree, nil
}

// Lex styles [start, end) and rewrites the fold level of every line.
func (e *Engine) Lex(doc control.Accessor, start, end int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	src := []byte(doc.TextRange(0, doc.Length()))
	tree, err := e.parse(src)
	if err != nil {
		return fmt.Errorf("lexer: parse %s: %w", e.name, err)
	}
	root := tree.RootNode()

	styles := make([]byte, end-start)
	e.highlight(root, src, doc.LineFromPosition(start), doc.LineFromPosition(end), start, styles)
	doc.SetStylingEx(styles)

	setFoldLevels(doc, root)
	return nil
}

// highlight writes capture styles into styles, which covers [start,
// start+len(styles)). A byte takes the style of the earliest pattern in the
// query that captures it.
func (e *Engine) highlight(root *sitter.Node, src []byte, startLine, endLine, start int, styles []byte) {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.SetPointRange(
		sitter.Point{Row: uint32(startLine), Column: 0},
		sitter.Point{Row: uint32(endLine + 1), Column: 0},
	)
	cursor.Exec(e.query, root)

	owner := make([]int, len(styles))
	for i := range owner {
		owner[i] = math.MaxInt
	}
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, src)
		if match == nil {
			continue
		}
		pattern := int(match.PatternIndex)
		for _, capture := range match.Captures {
			style, ok := StyleByName(e.query.CaptureNameForId(capture.Index))
			if !ok {
				continue
			}
			from := max(int(capture.Node.StartByte())-start, 0)
			to := min(int(capture.Node.EndByte())-start, len(styles))
			for i := from; i < to; i++ {
				if pattern < owner[i] {
					styles[i] = style
					owner[i] = pattern
				}
			}
		}
	}
}

// setFoldLevels gives each line LevelBase plus the number of multi-line
// nodes whose body it is in. A line is a header when the next line is
// deeper.
func setFoldLevels(doc control.Accessor, root *sitter.Node) {
	lines := doc.LineCount()
	if lines == 0 {
		return
	}
	// Several nodes often open on the same row (a declaration and its
	// block); they count once, with the furthest end.
	spans := make(map[int]int)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child == nil {
				continue
			}
			s, end := int(child.StartPoint().Row), int(child.EndPoint().Row)
			if end > s && end > spans[s] {
				spans[s] = end
			}
			walk(child)
		}
	}
	walk(root)

	delta := make([]int, lines+1)
	for s, end := range spans {
		if s+1 >= lines {
			continue
		}
		delta[s+1]++
		delta[min(end+1, lines)]--
	}
	depth := make([]int, lines)
	d := 0
	for line := 0; line < lines; line++ {
		d += delta[line]
		depth[line] = d
	}
	for line := 0; line < lines; line++ {
		level := cellbuffer.LevelBase + depth[line]
		if line+1 < lines && depth[line+1] > depth[line] {
			level |= cellbuffer.LevelHeaderFlag
		}
		doc.SetLevel(line, level)
	}
}
