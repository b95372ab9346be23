package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/multierr"
)

var ErrInvalid = errors.New("config: invalid value")

type EditorOptions struct {
	TabWidth                  int      `toml:"tab-width"`
	Indent                    int      `toml:"indent"`
	UseTabs                   bool     `toml:"use-tabs"`
	TabIndents                bool     `toml:"tab-indents"`
	BackspaceUnindents        bool     `toml:"backspace-unindents"`
	VirtualSpace              []string `toml:"virtual-space"`
	AdditionalSelectionTyping bool     `toml:"additional-selection-typing"`
	MultiPaste                string   `toml:"multi-paste"`
	EOLMode                   string   `toml:"eol-mode"`
	Overtype                  bool     `toml:"overtype"`
	ReadOnly                  bool     `toml:"read-only"`
	UndoCollection            bool     `toml:"undo-collection"`
	CaretSticky               bool     `toml:"caret-sticky"`
	LineNumbers               bool     `toml:"line-numbers"`
}

type AutocompleteOptions struct {
	Separator      string `toml:"separator"`
	TypeSeparator  string `toml:"type-separator"`
	ChooseSingle   bool   `toml:"choose-single"`
	AutoHide       bool   `toml:"auto-hide"`
	DropRestOfWord bool   `toml:"drop-rest-of-word"`
	CancelAtStart  bool   `toml:"cancel-at-start"`
	IgnoreCase     bool   `toml:"ignore-case"`
	StopChars      string `toml:"stop-chars"`
	FillUps        string `toml:"fill-ups"`
	MaxHeight      int    `toml:"max-height"`
}

// Style is how one style number is drawn. Colours are #rrggbb.
type Style struct {
	Fg     string `toml:"fg"`
	Bg     string `toml:"bg"`
	Bold   bool   `toml:"bold"`
	Italic bool   `toml:"italic"`
}

type Config struct {
	Editor       EditorOptions       `toml:"editor"`
	Autocomplete AutocompleteOptions `toml:"autocomplete"`
	Theme        string              `toml:"theme"`
	Styles       map[string]Style    `toml:"styles"`
	Keymap       map[string]string   `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			TabWidth:                  4,
			Indent:                    0,
			UseTabs:                   false,
			TabIndents:                true,
			BackspaceUnindents:        false,
			AdditionalSelectionTyping: true,
			MultiPaste:                "each",
			EOLMode:                   "lf",
			UndoCollection:            true,
			LineNumbers:               true,
		},
		Autocomplete: AutocompleteOptions{
			Separator:     " ",
			TypeSeparator: "?",
			AutoHide:      true,
			CancelAtStart: true,
			MaxHeight:     5,
		},
		Styles: map[string]Style{
			"default":      {Fg: "#B3B1AD", Bg: "#0A0E14"},
			"line-number":  {Fg: "#3E4B59", Bg: "#0A0E14"},
			"selection":    {Fg: "#B3B1AD", Bg: "#27425A"},
			"caret-line":   {Bg: "#0F1419"},
			"fold-margin":  {Fg: "#E6B450", Bg: "#0A0E14"},
			"statusline":   {Fg: "#B3B1AD", Bg: "#0F1419"},
			"calltip":      {Fg: "#B3B1AD", Bg: "#1F2430"},
			"autocomplete": {Fg: "#B3B1AD", Bg: "#1F2430"},
			"keyword":      {Fg: "#FFA759"},
			"string":       {Fg: "#BAE67E"},
			"comment":      {Fg: "#5C6773", Italic: true},
			"type":         {Fg: "#5CCFE6"},
			"function":     {Fg: "#FFD173"},
			"number":       {Fg: "#D4BFFF"},
			"constant":     {Fg: "#FFDD8E"},
			"operator":     {Fg: "#F29668"},
			"punctuation":  {Fg: "#C0C0C0"},
			"field":        {Fg: "#E6B673"},
			"builtin":      {Fg: "#73D0FF"},
			"variable":     {Fg: "#B3B1AD"},
			"parameter":    {Fg: "#B3B1AD"},
		},
		Keymap: map[string]string{
			"left":                 "char_left",
			"right":                "char_right",
			"up":                   "line_up",
			"down":                 "line_down",
			"shift+left":           "char_left_extend",
			"shift+right":          "char_right_extend",
			"shift+up":             "line_up_extend",
			"shift+down":           "line_down_extend",
			"alt+shift+left":       "char_left_rect_extend",
			"alt+shift+right":      "char_right_rect_extend",
			"alt+shift+up":         "line_up_rect_extend",
			"alt+shift+down":       "line_down_rect_extend",
			"ctrl+left":            "word_left",
			"ctrl+right":           "word_right",
			"ctrl+shift+left":      "word_left_extend",
			"ctrl+shift+right":     "word_right_extend",
			"home":                 "home",
			"end":                  "line_end",
			"shift+home":           "home_extend",
			"shift+end":            "line_end_extend",
			"alt+shift+home":       "home_rect_extend",
			"alt+shift+end":        "line_end_rect_extend",
			"ctrl+home":            "document_start",
			"ctrl+end":             "document_end",
			"ctrl+shift+home":      "document_start_extend",
			"ctrl+shift+end":       "document_end_extend",
			"pgup":                 "page_up",
			"pgdn":                 "page_down",
			"shift+pgup":           "page_up_extend",
			"shift+pgdn":           "page_down_extend",
			"backspace":            "delete_back",
			"shift+backspace":      "delete_back_not_line",
			"del":                  "clear",
			"ctrl+backspace":       "del_word_left",
			"ctrl+del":             "del_word_right",
			"ctrl+shift+backspace": "del_line_left",
			"ctrl+shift+del":       "del_line_right",
			"enter":                "new_line",
			"tab":                  "tab",
			"shift+tab":            "back_tab",
			"esc":                  "cancel",
			"insert":               "edit_toggle_overtype",
			"ctrl+a":               "select_all",
			"ctrl+c":               "copy",
			"ctrl+x":               "cut",
			"ctrl+v":               "paste",
			"ctrl+z":               "undo",
			"ctrl+y":               "redo",
			"ctrl+shift+z":         "redo",
			"ctrl+l":               "line_cut",
			"ctrl+shift+l":         "line_delete",
			"ctrl+t":               "line_transpose",
			"ctrl+d":               "selection_duplicate",
			"ctrl+u":               "lower_case",
			"ctrl+shift+u":         "upper_case",
			"ctrl+j":               "lines_join",
			"ctrl+k":               "toggle_fold",
			"ctrl+s":               "save",
			"ctrl+q":               "quit",
			"ctrl+space":           "autocomplete",
			"alt+f":                "format",
		},
	}
}

// VirtualSpace options.
const (
	VirtualSpaceUser            = "user"
	VirtualSpaceRectangular     = "rectangular"
	VirtualSpaceNoWrapLineStart = "no-wrap-line-start"
)

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	var userCfg Config
	md, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	mergeEditor(&cfg.Editor, userCfg.Editor, md)
	mergeAutocomplete(&cfg.Autocomplete, userCfg.Autocomplete, md)
	if userCfg.Theme != "" {
		cfg.Theme = userCfg.Theme
	}
	if cfg.Theme != "" {
		theme, err := LoadTheme(cfg.Theme)
		if err != nil {
			return cfg, err
		}
		mergeStyles(cfg.Styles, theme)
	}
	mergeStyles(cfg.Styles, userCfg.Styles)
	for k, v := range userCfg.Keymap {
		cfg.Keymap[k] = v
	}
	return cfg, cfg.Validate()
}

// mergeEditor copies every key the user file sets. Booleans need the metadata
// because false is also a setting.
func mergeEditor(dst *EditorOptions, src EditorOptions, md toml.MetaData) {
	set := func(key string) bool { return md.IsDefined("editor", key) }
	if set("tab-width") {
		dst.TabWidth = src.TabWidth
	}
	if set("indent") {
		dst.Indent = src.Indent
	}
	if set("use-tabs") {
		dst.UseTabs = src.UseTabs
	}
	if set("tab-indents") {
		dst.TabIndents = src.TabIndents
	}
	if set("backspace-unindents") {
		dst.BackspaceUnindents = src.BackspaceUnindents
	}
	if set("virtual-space") {
		dst.VirtualSpace = src.VirtualSpace
	}
	if set("additional-selection-typing") {
		dst.AdditionalSelectionTyping = src.AdditionalSelectionTyping
	}
	if set("multi-paste") {
		dst.MultiPaste = src.MultiPaste
	}
	if set("eol-mode") {
		dst.EOLMode = src.EOLMode
	}
	if set("overtype") {
		dst.Overtype = src.Overtype
	}
	if set("read-only") {
		dst.ReadOnly = src.ReadOnly
	}
	if set("undo-collection") {
		dst.UndoCollection = src.UndoCollection
	}
	if set("caret-sticky") {
		dst.CaretSticky = src.CaretSticky
	}
	if set("line-numbers") {
		dst.LineNumbers = src.LineNumbers
	}
}

func mergeAutocomplete(dst *AutocompleteOptions, src AutocompleteOptions, md toml.MetaData) {
	set := func(key string) bool { return md.IsDefined("autocomplete", key) }
	if set("separator") {
		dst.Separator = src.Separator
	}
	if set("type-separator") {
		dst.TypeSeparator = src.TypeSeparator
	}
	if set("choose-single") {
		dst.ChooseSingle = src.ChooseSingle
	}
	if set("auto-hide") {
		dst.AutoHide = src.AutoHide
	}
	if set("drop-rest-of-word") {
		dst.DropRestOfWord = src.DropRestOfWord
	}
	if set("cancel-at-start") {
		dst.CancelAtStart = src.CancelAtStart
	}
	if set("ignore-case") {
		dst.IgnoreCase = src.IgnoreCase
	}
	if set("stop-chars") {
		dst.StopChars = src.StopChars
	}
	if set("fill-ups") {
		dst.FillUps = src.FillUps
	}
	if set("max-height") {
		dst.MaxHeight = src.MaxHeight
	}
}

// mergeStyles overlays src field by field so a theme can change only a
// foreground.
func mergeStyles(dst, src map[string]Style) {
	for name, s := range src {
		cur := dst[name]
		if s.Fg != "" {
			cur.Fg = s.Fg
		}
		if s.Bg != "" {
			cur.Bg = s.Bg
		}
		if s.Bold {
			cur.Bold = true
		}
		if s.Italic {
			cur.Italic = true
		}
		dst[name] = cur
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var err error
	if c.Editor.TabWidth < 1 {
		err = multierr.Append(err, fmt.Errorf("editor.tab-width %d: %w", c.Editor.TabWidth, ErrInvalid))
	}
	if c.Editor.Indent < 0 {
		err = multierr.Append(err, fmt.Errorf("editor.indent %d: %w", c.Editor.Indent, ErrInvalid))
	}
	for _, vs := range c.Editor.VirtualSpace {
		switch vs {
		case VirtualSpaceUser, VirtualSpaceRectangular, VirtualSpaceNoWrapLineStart:
		default:
			err = multierr.Append(err, fmt.Errorf("editor.virtual-space %q: %w", vs, ErrInvalid))
		}
	}
	switch c.Editor.MultiPaste {
	case "once", "each":
	default:
		err = multierr.Append(err, fmt.Errorf("editor.multi-paste %q: %w", c.Editor.MultiPaste, ErrInvalid))
	}
	switch c.Editor.EOLMode {
	case "crlf", "cr", "lf":
	default:
		err = multierr.Append(err, fmt.Errorf("editor.eol-mode %q: %w", c.Editor.EOLMode, ErrInvalid))
	}
	if len(c.Autocomplete.Separator) != 1 {
		err = multierr.Append(err, fmt.Errorf("autocomplete.separator %q: %w", c.Autocomplete.Separator, ErrInvalid))
	}
	if len(c.Autocomplete.TypeSeparator) > 1 {
		err = multierr.Append(err, fmt.Errorf("autocomplete.type-separator %q: %w", c.Autocomplete.TypeSeparator, ErrInvalid))
	}
	if c.Autocomplete.MaxHeight < 1 {
		err = multierr.Append(err, fmt.Errorf("autocomplete.max-height %d: %w", c.Autocomplete.MaxHeight, ErrInvalid))
	}
	names := make([]string, 0, len(c.Styles))
	for name := range c.Styles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := c.Styles[name]
		for _, col := range []string{s.Fg, s.Bg} {
			if col == "" {
				continue
			}
			if _, cerr := colorful.Hex(col); cerr != nil {
				err = multierr.Append(err, fmt.Errorf("styles.%s colour %q: %w", name, col, ErrInvalid))
			}
		}
	}
	return err
}

// HasVirtualSpace reports whether opt is listed in virtual-space.
func (o EditorOptions) HasVirtualSpace(opt string) bool {
	for _, v := range o.VirtualSpace {
		if v == opt {
			return true
		}
	}
	return false
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

// LoadTheme reads a theme file: a table of styles, either at the top level or
// under [styles].
func LoadTheme(name string) (map[string]Style, error) {
	path, err := ThemePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var wrap struct {
		Styles map[string]Style `toml:"styles"`
	}
	if _, err := toml.Decode(string(data), &wrap); err == nil && len(wrap.Styles) > 0 {
		return wrap.Styles, nil
	}
	var styles map[string]Style
	if _, err := toml.Decode(string(data), &styles); err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	return styles, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("SCIEDIT_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "sciedit"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sciedit"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
