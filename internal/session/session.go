// Package session remembers where the user was in each file: the selection,
// the scroll position and which folds were closed.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kobzarvs/sciedit/internal/editor"
	"github.com/kobzarvs/sciedit/internal/logger"
	"github.com/kobzarvs/sciedit/internal/selection"
)

const autosaveInterval = 15 * time.Second

// RangeState is one selection range. Virtual columns are omitted when zero.
type RangeState struct {
	Caret         int `json:"caret"`
	CaretVirtual  int `json:"caret_virtual,omitempty"`
	Anchor        int `json:"anchor"`
	AnchorVirtual int `json:"anchor_virtual,omitempty"`
}

// FileState stores the view of a single file
type FileState struct {
	Ranges        []RangeState `json:"ranges"`
	Main          int          `json:"main,omitempty"`
	SelectionType string       `json:"selection_type,omitempty"` // "stream", "rectangle", "lines", "thin"
	TopLine       int          `json:"top_line,omitempty"`
	XOffset       int          `json:"x_offset,omitempty"`
	Folded        []int        `json:"folded,omitempty"`
}

// FromView converts the editor's view of a file.
func FromView(v editor.ViewState) FileState {
	fs := FileState{
		Ranges:        make([]RangeState, 0, len(v.Ranges)),
		Main:          v.Main,
		SelectionType: v.Type.String(),
		TopLine:       v.TopLine,
		XOffset:       v.XOffset,
		Folded:        append([]int(nil), v.Folded...),
	}
	for _, r := range v.Ranges {
		fs.Ranges = append(fs.Ranges, RangeState{
			Caret:         r.Caret.Pos,
			CaretVirtual:  r.Caret.Virtual,
			Anchor:        r.Anchor.Pos,
			AnchorVirtual: r.Anchor.Virtual,
		})
	}
	return fs
}

// View converts fs back for Editor.RestoreState. An unknown selection type
// reads as a stream selection.
func (fs FileState) View() editor.ViewState {
	v := editor.ViewState{
		Main:    fs.Main,
		Type:    parseType(fs.SelectionType),
		TopLine: fs.TopLine,
		XOffset: fs.XOffset,
		Folded:  append([]int(nil), fs.Folded...),
	}
	for _, r := range fs.Ranges {
		v.Ranges = append(v.Ranges, selection.Range{
			Caret:  selection.Position{Pos: r.Caret, Virtual: r.CaretVirtual},
			Anchor: selection.Position{Pos: r.Anchor, Virtual: r.AnchorVirtual},
		})
	}
	if len(v.Ranges) == 0 {
		v.Ranges = []selection.Range{selection.Caret(0)}
	}
	if v.Main < 0 || v.Main >= len(v.Ranges) {
		v.Main = 0
	}
	return v
}

func parseType(s string) selection.Type {
	for _, t := range []selection.Type{selection.Stream, selection.Rectangle, selection.Lines, selection.Thin} {
		if t.String() == s {
			return t
		}
	}
	return selection.Stream
}

// Session stores the complete editor session state
type Session struct {
	Files      map[string]FileState `json:"files"`
	ActiveFile string               `json:"active_file,omitempty"`
	LastSaved  time.Time            `json:"last_saved"`
}

// Manager handles session persistence
type Manager struct {
	mu      sync.RWMutex
	session Session
	path    string
	dirty   bool

	stop chan struct{}
	done chan struct{}
}

// NewManager loads the session from the state directory and starts saving it
// in the background.
func NewManager() (*Manager, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return Open(path, autosaveInterval)
}

// Open loads the session stored at path. A missing or unreadable file starts
// an empty session. If interval is positive the session is saved that often
// until Close.
func Open(path string, interval time.Duration) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	m := &Manager{
		session: Session{Files: make(map[string]FileState)},
		path:    path,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	m.load()
	if interval > 0 {
		go m.autosaveLoop(interval)
	} else {
		close(m.done)
	}
	return m, nil
}

// Path is $XDG_STATE_HOME/sciedit/session.json, with the XDG default when the
// variable is unset.
func Path() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("session: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "sciedit", "session.json"), nil
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("session unreadable", "path", m.path, "error", err)
		}
		return
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		logger.Warn("session corrupt, starting fresh", "path", m.path, "error", err)
		return
	}
	if s.Files == nil {
		s.Files = make(map[string]FileState)
	}
	m.session = s
}

// Save writes the session if anything changed since the last save.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}

	m.session.LastSaved = time.Now()
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	m.dirty = false
	return nil
}

// Get returns the saved state for a file
func (m *Manager) Get(absPath string) (FileState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.session.Files[absPath]
	return state, ok
}

// Set records the state of a file and makes it the active one.
func (m *Manager) Set(absPath string, state FileState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Files[absPath] = state
	m.session.ActiveFile = absPath
	m.dirty = true
}

// Forget drops a file, for example after it was deleted.
func (m *Manager) Forget(absPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.session.Files[absPath]; !ok {
		return
	}
	delete(m.session.Files, absPath)
	if m.session.ActiveFile == absPath {
		m.session.ActiveFile = ""
	}
	m.dirty = true
}

func (m *Manager) ActiveFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.ActiveFile
}

func (m *Manager) autosaveLoop(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.Save(); err != nil {
				logger.Warn("session autosave failed", "error", err)
			}
		case <-m.stop:
			return
		}
	}
}

// Close stops the autosave loop and saves the final state.
func (m *Manager) Close() error {
	select {
	case <-m.stop:
		return nil
	default:
		close(m.stop)
	}
	<-m.done
	return m.Save()
}
