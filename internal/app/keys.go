package app

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/multierr"

	"github.com/kobzarvs/sciedit/internal/editor"
)

// action is a key binding handled by the host rather than the editor.
type action int

const (
	actionNone action = iota
	actionSave
	actionQuit
	actionAutocomplete
	actionFormat
)

var hostActions = map[string]action{
	"save":         actionSave,
	"quit":         actionQuit,
	"autocomplete": actionAutocomplete,
	"format":       actionFormat,
}

type binding struct {
	cmd editor.Command
	p1  int
	act action
}

type keymap map[string]binding

// buildKeymap resolves the [keymap] table. Every unknown command is reported;
// the bindings that did resolve are still returned.
func buildKeymap(names map[string]string) (keymap, error) {
	keys := make([]string, 0, len(names))
	for key := range names {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	km := make(keymap, len(names))
	var err error
	for _, key := range keys {
		name := names[key]
		if act, ok := hostActions[name]; ok {
			km[key] = binding{act: act}
			continue
		}
		cmd, ok := editor.CommandByName(name)
		if !ok {
			err = multierr.Append(err, fmt.Errorf("keymap %s: unknown command %q", key, name))
			continue
		}
		b := binding{cmd: cmd}
		if cmd == editor.CmdToggleFold {
			b.p1 = -1
		}
		km[key] = b
	}
	return km, err
}

var keyNames = map[tcell.Key]string{
	tcell.KeyUp:         "up",
	tcell.KeyDown:       "down",
	tcell.KeyLeft:       "left",
	tcell.KeyRight:      "right",
	tcell.KeyHome:       "home",
	tcell.KeyEnd:        "end",
	tcell.KeyPgUp:       "pgup",
	tcell.KeyPgDn:       "pgdn",
	tcell.KeyInsert:     "insert",
	tcell.KeyDelete:     "del",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyTab:        "tab",
	tcell.KeyEnter:      "enter",
	tcell.KeyEsc:        "esc",
	tcell.KeyF1:         "f1",
	tcell.KeyF2:         "f2",
	tcell.KeyF3:         "f3",
	tcell.KeyF4:         "f4",
	tcell.KeyF5:         "f5",
	tcell.KeyF6:         "f6",
	tcell.KeyF7:         "f7",
	tcell.KeyF8:         "f8",
	tcell.KeyF9:         "f9",
	tcell.KeyF10:        "f10",
	tcell.KeyF11:        "f11",
	tcell.KeyF12:        "f12",
}

// keyName spells ev the way the [keymap] table does, for example
// "ctrl+shift+left". Plain printable runes give "" because they are typed.
func keyName(ev *tcell.EventKey) string {
	mods := ev.Modifiers()
	var base string
	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		if mods&(tcell.ModCtrl|tcell.ModAlt) == 0 {
			return ""
		}
		r := ev.Rune()
		if unicode.IsUpper(r) {
			mods |= tcell.ModShift
		}
		base = string(unicode.ToLower(r))
		if r == ' ' {
			base = "space"
		}
	case k == tcell.KeyBacktab:
		base = "tab"
		mods |= tcell.ModShift
	case k == tcell.KeyNUL:
		base = "space"
		mods |= tcell.ModCtrl
	default:
		name, ok := keyNames[k]
		switch {
		case ok:
			base = name
		case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
			base = string(rune('a' + int(k-tcell.KeyCtrlA)))
			mods |= tcell.ModCtrl
		default:
			return ""
		}
	}
	var b strings.Builder
	if mods&tcell.ModCtrl != 0 {
		b.WriteString("ctrl+")
	}
	if mods&tcell.ModAlt != 0 {
		b.WriteString("alt+")
	}
	if mods&tcell.ModShift != 0 {
		b.WriteString("shift+")
	}
	b.WriteString(base)
	return b.String()
}

func mouseMods(m tcell.ModMask) editor.Modifiers {
	var mods editor.Modifiers
	if m&tcell.ModShift != 0 {
		mods |= editor.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= editor.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= editor.ModAlt
	}
	return mods
}
