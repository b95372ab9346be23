package app

import (
	"github.com/atotto/clipboard"

	"github.com/kobzarvs/sciedit/internal/editor"
	"github.com/kobzarvs/sciedit/internal/logger"
)

// systemClipboard uses the desktop clipboard and keeps a local copy for when
// the desktop one stops answering, as happens over ssh.
type systemClipboard struct {
	local editor.Clipboard
}

func newClipboard() editor.Clipboard {
	if clipboard.Unsupported {
		logger.Info("system clipboard unavailable, using a local one")
		return editor.NewMemoryClipboard()
	}
	return &systemClipboard{local: editor.NewMemoryClipboard()}
}

func (c *systemClipboard) Get() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		logger.Debug("clipboard read failed, using local copy", "error", err)
		return c.local.Get()
	}
	return text, nil
}

func (c *systemClipboard) Set(text string) error {
	_ = c.local.Set(text)
	if err := clipboard.WriteAll(text); err != nil {
		logger.Debug("clipboard write failed, kept local copy", "error", err)
	}
	return nil
}
