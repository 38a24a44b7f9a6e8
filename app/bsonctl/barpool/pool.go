// Package barpool provides access to the global
// pool of progress bars, so they could be rendered
// altogether.
package barpool

import (
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"
)

var (
	pool     = pb.NewPool()
	disabled bool
)

// Disable disables progress bars.
//
// Must be called before adding bars.
func Disable() { disabled = true }

// DisableIfNotTerminal disables progress bars if stderr isn't a terminal,
// e.g. when the output is redirected to a file.
func DisableIfNotTerminal() {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		Disable()
	}
}

// IsDisabled returns true if progress bars are disabled.
func IsDisabled() bool { return disabled }

// Start starts the global pool
// Must be called after all progress bars were added
func Start() error {
	if disabled {
		return nil
	}
	return pool.Start()
}

// Stop stops the global pool
func Stop() {
	if disabled {
		return
	}
	_ = pool.Stop()
}

// Bar is a progress bar, which does nothing if progress bars are disabled.
type Bar struct {
	pb *pb.ProgressBar
}

// Add adds n to the bar value.
func (b *Bar) Add(n int) {
	if b.pb != nil {
		b.pb.Add(n)
	}
}

// AddWithTemplate adds bar with the given template
// to the global pool
func AddWithTemplate(format string, total int) *Bar {
	if disabled {
		return &Bar{}
	}
	bar := pb.ProgressBarTemplate(format).New(total)
	pool.Add(bar)
	return &Bar{
		pb: bar,
	}
}
