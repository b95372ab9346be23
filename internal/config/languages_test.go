package config

import (
	"path/filepath"
	"testing"
)

func TestLanguagesMatch(t *testing.T) {
	cfg := Languages{
		Languages: []Language{
			{Name: "go", FileTypes: []string{"go", "go.mod", ".go"}},
			{Name: "make", FileTypes: []string{".gitignore", "Makefile"}},
		},
	}

	if got := cfg.Match("main.go"); got == nil || got.Name != "go" {
		t.Fatalf("Match main.go = %#v, want go", got)
	}
	if got := cfg.Match("go.mod"); got == nil || got.Name != "go" {
		t.Fatalf("Match go.mod = %#v, want go", got)
	}
	if got := cfg.Match(".gitignore"); got == nil || got.Name != "make" {
		t.Fatalf("Match .gitignore = %#v, want make", got)
	}
	if got := cfg.Match("Makefile"); got == nil || got.Name != "make" {
		t.Fatalf("Match Makefile = %#v, want make", got)
	}
	if got := cfg.Match("unknown.txt"); got != nil {
		t.Fatalf("Match unknown.txt = %#v, want nil", got)
	}
}

func TestLoadLanguagesOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SCIEDIT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "languages.toml"), `
[[language]]
name = "go-chroma"
file-types = ["go"]
lexer = "chroma"
grammar = "go"
`)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	got := cfg.Match("x.go")
	if got == nil || got.Name != "go-chroma" || got.Lexer != LexerChroma {
		t.Fatalf("Match x.go = %#v, want go-chroma", got)
	}
	if yaml := cfg.Match("a.yml"); yaml == nil || yaml.Name != "yaml" {
		t.Fatalf("Match a.yml = %#v, want built-in yaml", yaml)
	}
}

func TestLoadLanguagesMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SCIEDIT_CONFIG_HOME", dir)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	if len(cfg.Languages) != len(DefaultLanguages().Languages) {
		t.Fatalf("Languages len = %d, want the defaults", len(cfg.Languages))
	}
}
