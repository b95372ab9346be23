package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/sciedit/internal/config"
	"github.com/kobzarvs/sciedit/internal/control"
	"github.com/kobzarvs/sciedit/internal/editor"
	"github.com/kobzarvs/sciedit/internal/format"
	"github.com/kobzarvs/sciedit/internal/lexer"
	"github.com/kobzarvs/sciedit/internal/logger"
	"github.com/kobzarvs/sciedit/internal/session"
)

// App is the top-level runtime for sciedit.
type App struct {
	args []string

	cfg     config.Config
	keys    keymap
	colors  palette
	screen  tcell.Screen
	ctl     *control.Control
	measure editor.ColumnMeasurer

	path    string
	absPath string
	lang    *config.Language
	lexer   control.Lexer

	sessions *session.Manager
	worker   *format.Worker
	version  int

	dragging  bool
	quitArmed bool
	signature bool
	message   string
}

func New(args []string) *App {
	return &App{args: args}
}

func (a *App) Run() error {
	runtime.LockOSThread()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.colors = newPalette(cfg.Styles)
	a.keys, err = buildKeymap(cfg.Keymap)
	if err != nil {
		logger.Warn("keymap has unknown commands", "error", err)
		a.message = err.Error()
	}

	a.ctl = control.New(cfg)
	a.ctl.SetClipboard(newClipboard())
	a.ctl.SetNotificationSink(a.notify)
	a.measure = editor.ColumnMeasurer{TabWidth: a.ctl.TabWidth()}

	if sm, err := session.NewManager(); err != nil {
		logger.Warn("session disabled", "error", err)
	} else {
		a.sessions = sm
		defer func() {
			if err := sm.Close(); err != nil {
				logger.Warn("session save failed", "error", err)
			}
		}()
	}

	if len(a.args) > 0 {
		if err := a.open(a.args[0], langs); err != nil {
			return err
		}
	}
	defer a.closeLexer()

	a.worker = format.Start()
	defer func() { _ = a.worker.Stop() }()

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()
	a.screen = s

	go func() {
		for res := range a.worker.Results() {
			_ = s.PostEvent(tcell.NewEventInterrupt(res))
		}
	}()

	a.restore()
	a.draw()
	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			if a.handleKey(ev) {
				a.remember()
				return nil
			}
		case *tcell.EventMouse:
			a.handleMouse(ev)
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventInterrupt:
			if res, ok := ev.Data().(format.Result); ok {
				a.applyFormat(res)
			}
		case nil:
			return nil
		}
		a.draw()
	}
}

// open loads path, picks its language and lexer and applies per-language
// indentation. A missing file starts an empty document with that name.
func (a *App) open(path string, langs config.Languages) error {
	a.path = path
	if abs, err := filepath.Abs(path); err == nil {
		a.absPath = abs
	} else {
		a.absPath = path
	}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	a.ctl.LoadText(string(data))

	a.lang = langs.Match(path)
	if a.lang == nil {
		return nil
	}
	if a.lang.Indent > 0 {
		a.ctl.SetIndent(a.lang.Indent)
	}
	if a.lang.UseTabs != nil {
		a.ctl.SetUseTabs(*a.lang.UseTabs)
	}
	lx, err := lexer.ForLanguage(a.lang, path)
	if err != nil {
		logger.Info("no lexer", "language", a.lang.Name, "error", err)
		return nil
	}
	a.lexer = lx
	a.ctl.SetLexer(lx)
	return nil
}

func (a *App) closeLexer() {
	if c, ok := a.lexer.(interface{ Close() }); ok {
		c.Close()
	}
}

// restore puts the selection, scroll position and folds back the way they
// were when the file was last closed.
func (a *App) restore() {
	a.resize()
	if a.sessions == nil || a.absPath == "" {
		return
	}
	state, ok := a.sessions.Get(a.absPath)
	if !ok {
		return
	}
	if len(state.Folded) > 0 {
		a.ctl.Colourise(0, -1)
	}
	a.ctl.RestoreState(state.View())
}

func (a *App) remember() {
	if a.sessions == nil || a.absPath == "" {
		return
	}
	a.sessions.Set(a.absPath, session.FromView(a.ctl.SaveState()))
}

func (a *App) notify(n editor.Notification) {
	switch n.Kind {
	case editor.NotifyTextInserted, editor.NotifyTextDeleted:
		a.version++
	case editor.NotifyModifyAttempt:
		a.message = "read-only"
	case editor.NotifyCharAdded:
		a.signature = n.Ch == '('
	}
}

// afterKey runs host reactions that must wait until the command finished.
func (a *App) afterKey() {
	if a.signature {
		a.signature = false
		a.showSignature()
	}
	a.ctl.EnsureCaretVisible()
}

// handleKey runs the binding for ev and reports whether the app should exit.
func (a *App) handleKey(ev *tcell.EventKey) bool {
	name := keyName(ev)
	if name == "" {
		if ev.Key() == tcell.KeyRune {
			a.quitArmed = false
			a.ctl.AddChar(ev.Rune())
			a.afterKey()
		}
		return false
	}
	b, ok := a.keys[name]
	if !ok {
		return false
	}
	if b.act != actionQuit {
		a.quitArmed = false
	}
	switch b.act {
	case actionQuit:
		if a.ctl.Modified() && !a.quitArmed {
			a.quitArmed = true
			a.message = "unsaved changes, quit again to discard them"
			return false
		}
		return true
	case actionSave:
		a.save()
	case actionAutocomplete:
		a.autocomplete()
	case actionFormat:
		a.format()
	default:
		a.message = ""
		a.ctl.Execute(b.cmd, b.p1, 0)
		a.afterKey()
	}
	return false
}

func (a *App) save() {
	if a.path == "" {
		a.message = "no file name"
		return
	}
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(a.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(a.path, []byte(a.ctl.Text()), mode); err != nil {
		logger.Error("save failed", "path", a.path, "error", err)
		a.message = err.Error()
		return
	}
	a.ctl.SetSavePoint()
	a.remember()
	a.message = fmt.Sprintf("wrote %s", a.path)
}

// autocomplete offers the words of the document that extend the word before
// the caret.
func (a *App) autocomplete() {
	c := a.ctl
	caret := c.CurrentPos()
	line := c.LineFromPosition(caret)
	start := c.LineStart(line)
	word := wordBefore(c.TextRange(start, c.LineEnd(line)), caret-start)
	sep := a.cfg.Autocomplete.Separator
	if sep == "" {
		sep = " "
	}
	list := wordList(c.Text(), word, sep[0], 0)
	if list == "" {
		a.message = "no completions"
		return
	}
	c.AutoComplete().Order = control.OrderPerformSort
	c.AutoCStart(len(word), list)
}

// showSignature shows a call tip for the function named before the '(' that
// was just typed, when the document declares it.
func (a *App) showSignature() {
	c := a.ctl
	caret := c.CurrentPos()
	line := c.LineFromPosition(caret)
	start := c.LineStart(line)
	name := wordBefore(c.TextRange(start, caret-1), caret-1-start)
	if name == "" {
		return
	}
	if sig := signatureFor(c.Text(), name); sig != "" {
		c.CallTipShow(caret-1-len(name), sig)
		if open := strings.IndexByte(sig, '('); open >= 0 {
			if end := strings.IndexAny(sig[open:], ",)"); end > 0 {
				c.CallTip().SetHighlight(open+1, open+end)
			}
		}
	}
}

// format sends the document to the worker. Only JSON is understood.
func (a *App) format() {
	if a.lang == nil || a.lang.Name != "json" {
		a.message = "format: JSON only"
		return
	}
	indent := strings.Repeat(" ", max(a.ctl.TabWidth(), 1))
	if a.lang.UseTabs != nil && *a.lang.UseTabs {
		indent = "\t"
	}
	job := format.Job{ID: a.version, Input: []byte(a.ctl.Text()), Indent: indent}
	a.message = "formatting"
	go a.worker.Submit(job)
}

// applyFormat replaces the document with a formatted copy unless the
// document changed after the job was sent.
func (a *App) applyFormat(res format.Result) {
	switch {
	case res.Err != nil:
		a.message = res.Err.Error()
	case res.ID != a.version:
		a.message = "format: document changed, result dropped"
	case res.Text == a.ctl.Text():
		a.message = "already formatted"
	default:
		caret := a.ctl.CurrentPos()
		a.ctl.SetText(res.Text)
		a.ctl.GotoPos(min(caret, a.ctl.Length()))
		a.message = "formatted"
	}
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	mx, my := ev.Position()
	c := a.ctl
	gutter := a.gutterWidth()
	display := c.TopLine() + my
	x := mx - gutter + c.XOffset()
	switch btn := ev.Buttons(); {
	case btn&tcell.WheelUp != 0:
		c.SetTopLine(c.TopLine() - 3)
	case btn&tcell.WheelDown != 0:
		c.SetTopLine(c.TopLine() + 3)
	case btn&tcell.Button1 != 0:
		if a.dragging {
			c.ButtonMove(display, x)
			return
		}
		if mx == gutter-2 && display < c.Contraction().LinesDisplayed() {
			line := c.Contraction().DocFromDisplay(display)
			if c.Document().IsHeader(line) {
				c.Execute(editor.CmdToggleFold, line, 0)
				return
			}
		}
		a.dragging = true
		c.ButtonDown(display, x, mouseMods(ev.Modifiers()))
	default:
		if a.dragging {
			a.dragging = false
			c.ButtonUp(display, x)
		}
	}
}
