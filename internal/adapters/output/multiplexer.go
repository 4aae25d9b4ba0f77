// Package output prefixes and colourizes each task's streamed command
// output so a parallel run's interleaved lines stay attributable to the
// (project, task) pair that produced them.
package output

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.nabs.build/nabs/internal/core/domain"
)

// palette cycles a fixed 12-colour set across tasks by index, the same
// bounded-palette-by-index idea fredrikaverpil/pocket and EmundoT/git-vendor
// pull in fatih/color for, generalized here to drive per-task prefix colour
// instead of a single static accent.
var palette = []color.Attribute{
	color.FgCyan, color.FgMagenta, color.FgYellow, color.FgGreen,
	color.FgBlue, color.FgRed, color.FgHiCyan, color.FgHiMagenta,
	color.FgHiYellow, color.FgHiGreen, color.FgHiBlue, color.FgHiRed,
}

// Multiplexer hands out a prefixing io.Writer per task, all funnelling into
// one destination under a shared lock so interleaved writes from concurrent
// tasks never tear a line in half.
type Multiplexer struct {
	dest io.Writer
	mu   sync.Mutex

	width int
	color bool
}

// NewMultiplexer creates a Multiplexer writing to dest. refs is every task
// that may write this run, used to compute one fixed prefix width up front
// (mirrors the teacher's compute-width-once-per-run pattern for CLI table
// rendering, generalized from task names alone to "<project> | <task> "
// pairs). Colour is auto-disabled when dest is not a terminal.
func NewMultiplexer(dest io.Writer, refs []domain.TaskRef) *Multiplexer {
	width := 0
	for _, ref := range refs {
		if w := len(prefixText(ref)); w > width {
			width = w
		}
	}

	return &Multiplexer{
		dest:  dest,
		width: width,
		color: isTerminal(dest),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func prefixText(ref domain.TaskRef) string {
	return fmt.Sprintf("%s | %s ", ref.Project.String(), ref.Name)
}

// Writer returns the writer task index's commands should stream into.
// Callers must Close it once the command finishes so any trailing,
// non-newline-terminated output still reaches the destination.
func (m *Multiplexer) Writer(ref domain.TaskRef, index int) io.WriteCloser {
	prefix := prefixText(ref)
	for len(prefix) < m.width {
		prefix += " "
	}

	if m.color {
		attr := palette[index%len(palette)]
		prefix = color.New(attr).Sprint(prefix)
	}

	return &lineWriter{mux: m, prefix: prefix}
}

// lineWriter prefixes every line of a single task's output, carrying a
// partial trailing line across Write calls (the teacher's shell.logWriter
// line-splitting idea, generalized from "split on \n, forward whole lines"
// to "prefix each line and track partial-line state").
type lineWriter struct {
	mux     *Multiplexer
	prefix  string
	pending []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mux.mu.Lock()
	defer w.mux.mu.Unlock()

	w.pending = append(w.pending, p...)

	for {
		idx := bytes.IndexByte(w.pending, '\n')
		if idx < 0 {
			break
		}
		line := w.pending[:idx+1]
		if _, err := fmt.Fprint(w.mux.dest, w.prefix, string(line)); err != nil {
			return 0, err
		}
		w.pending = w.pending[idx+1:]
	}

	return len(p), nil
}

// Close flushes any buffered partial line that never ended in '\n', the
// same last-buffer flush the teacher's logWriter.Close does on command exit.
func (w *lineWriter) Close() error {
	w.mux.mu.Lock()
	defer w.mux.mu.Unlock()

	if len(w.pending) == 0 {
		return nil
	}
	_, err := fmt.Fprint(w.mux.dest, w.prefix, string(w.pending))
	w.pending = nil
	return err
}
