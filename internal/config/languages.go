package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Lexer backends.
const (
	LexerTreeSitter = "tree-sitter"
	LexerChroma     = "chroma"
)

type Language struct {
	Name      string   `toml:"name"`
	FileTypes []string `toml:"file-types"`
	// Lexer is "tree-sitter" or "chroma"; empty picks tree-sitter when a
	// grammar exists.
	Lexer string `toml:"lexer"`
	// Grammar overrides the tree-sitter grammar or chroma lexer name.
	Grammar string `toml:"grammar"`
	Indent  int    `toml:"indent"`
	UseTabs *bool  `toml:"use-tabs"`
}

type Languages struct {
	Languages []Language `toml:"language"`
}

// DefaultLanguages covers the grammars compiled in.
func DefaultLanguages() Languages {
	useTabs := true
	return Languages{Languages: []Language{
		{Name: "go", FileTypes: []string{"go"}, Lexer: LexerTreeSitter, UseTabs: &useTabs},
		{Name: "yaml", FileTypes: []string{"yaml", "yml"}, Lexer: LexerTreeSitter},
		{Name: "toml", FileTypes: []string{"toml"}, Lexer: LexerTreeSitter},
		{Name: "bash", FileTypes: []string{"sh", "bash", ".bashrc"}, Lexer: LexerTreeSitter},
		{Name: "markdown", FileTypes: []string{"md", "markdown"}, Lexer: LexerChroma},
		{Name: "json", FileTypes: []string{"json"}, Lexer: LexerChroma},
	}}
}

func (l Languages) Match(path string) *Language {
	base := filepath.Base(path)
	baseLower := strings.ToLower(base)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	for i := range l.Languages {
		lang := &l.Languages[i]
		for _, ft := range lang.FileTypes {
			ftLower := strings.ToLower(ft)
			if ftLower == ext || ftLower == baseLower {
				return lang
			}
			if strings.HasPrefix(ftLower, ".") && strings.TrimPrefix(ftLower, ".") == ext {
				return lang
			}
		}
	}
	return nil
}

// LoadLanguages reads languages.toml. Entries in the file come first so they
// win over the built-in ones in Match.
func LoadLanguages() (Languages, error) {
	defaults := DefaultLanguages()
	path, err := LanguagesPath()
	if err != nil {
		return defaults, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return defaults, err
	}

	var cfg Languages
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return defaults, err
	}
	cfg.Languages = append(cfg.Languages, defaults.Languages...)
	return cfg, nil
}

func LanguagesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "languages.toml"), nil
}
