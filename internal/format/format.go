// Package format prepares reformatted text off the editing goroutine. Jobs
// carry a copy of the text; results are plain strings for the host to insert.
package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/tomb.v2"

	"github.com/kobzarvs/sciedit/internal/logger"
)

// ErrStopped is returned for a job abandoned because the worker stopped.
var ErrStopped = errors.New("format: worker stopped")

type Job struct {
	ID     int
	Input  []byte
	Indent string
}

type Result struct {
	ID   int
	Text string
	Err  error
}

// Worker formats one job at a time in a background goroutine.
type Worker struct {
	t       tomb.Tomb
	jobs    chan Job
	results chan Result
}

func Start() *Worker {
	w := &Worker{
		jobs:    make(chan Job),
		results: make(chan Result, 1),
	}
	w.t.Go(w.loop)
	return w
}

func (w *Worker) loop() error {
	for {
		select {
		case <-w.t.Dying():
			return nil
		case job := <-w.jobs:
			text, err := Pretty(w.t.Dying(), job.Input, job.Indent)
			if errors.Is(err, ErrStopped) {
				return nil
			}
			if err != nil {
				logger.Debug("format failed", "job", job.ID, "error", err)
			}
			select {
			case w.results <- Result{ID: job.ID, Text: text, Err: err}:
			case <-w.t.Dying():
				return nil
			}
		}
	}
}

// Submit hands job to the worker. It blocks while a previous job is running
// and returns false once the worker is stopping.
func (w *Worker) Submit(job Job) bool {
	select {
	case w.jobs <- job:
		return true
	case <-w.t.Dying():
		return false
	}
}

func (w *Worker) Results() <-chan Result {
	return w.results
}

// Stop abandons the current job and waits for the goroutine to exit.
func (w *Worker) Stop() error {
	w.t.Kill(nil)
	return w.t.Wait()
}

type frame struct {
	object bool
	n      int
}

// Pretty re-indents a stream of JSON values, one value per line at the top
// level. It gives up with ErrStopped as soon as dying is closed.
func Pretty(dying <-chan struct{}, input []byte, indent string) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()

	var b strings.Builder
	var stack []frame
	afterKey := false
	values := 0

	newline := func() {
		b.WriteByte('\n')
		for range stack {
			b.WriteString(indent)
		}
	}
	// element starts a value, or a key when the enclosing frame is an
	// object waiting for one. It reports whether a key was started.
	element := func() bool {
		if len(stack) == 0 {
			if values > 0 {
				b.WriteByte('\n')
			}
			values++
			return false
		}
		if afterKey {
			afterKey = false
			return false
		}
		top := &stack[len(stack)-1]
		if top.n > 0 {
			b.WriteByte(',')
		}
		top.n++
		newline()
		return top.object
	}

	for {
		select {
		case <-dying:
			return "", ErrStopped
		default:
		}
		tok, err := dec.Token()
		if err == io.EOF {
			if len(stack) > 0 || afterKey {
				return "", fmt.Errorf("format: %w", io.ErrUnexpectedEOF)
			}
			break
		}
		if err != nil {
			return "", fmt.Errorf("format: %w", err)
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				element()
				b.WriteByte(byte(d))
				stack = append(stack, frame{object: d == '{'})
			case '}', ']':
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.n > 0 {
					newline()
				}
				b.WriteByte(byte(d))
			}
			continue
		}
		isKey := element()
		if err := writeScalar(&b, tok); err != nil {
			return "", err
		}
		if isKey {
			b.WriteString(": ")
			afterKey = true
		}
	}
	if values > 0 {
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func writeScalar(b *strings.Builder, tok json.Token) error {
	switch v := tok.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case json.Number:
		b.WriteString(v.String())
	case string:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("format: %w", err)
		}
		b.Write(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}))
	default:
		return fmt.Errorf("format: unexpected token %T", tok)
	}
	return nil
}
