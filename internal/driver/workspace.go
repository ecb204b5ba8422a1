package driver

import (
	"errors"
	"os"
	"sync"

	"github.com/tebeka/atexit"
)

// Workspace owns the intermediate files of a build. Close removes them unless
// Keep is set; the same cleanup runs from atexit.Exit if the process leaves
// early.
type Workspace struct {
	Keep bool

	mu     sync.Mutex
	files  []string
	closed bool
	hook   atexit.HandlerID
}

func NewWorkspace(keep bool) *Workspace {
	w := &Workspace{Keep: keep}
	w.hook = atexit.Register(func() { _ = w.cleanup() })
	return w
}

// Track registers path for removal and returns it.
func (w *Workspace) Track(path string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = append(w.files, path)
	return path
}

// Files lists the tracked paths in registration order.
func (w *Workspace) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.files...)
}

func (w *Workspace) Close() error {
	err := w.cleanup()
	if cerr := w.hook.Cancel(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (w *Workspace) cleanup() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.Keep {
		return nil
	}
	var errs []error
	for _, f := range w.files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
