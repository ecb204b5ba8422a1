package diagfmt

import (
	"path/filepath"

	"lorax/internal/source"
)

// autoBasenameOver is the length above which PathModeAuto shortens an
// absolute path to its basename.
const autoBasenameOver = 40

func displayPath(f *source.File, mode PathMode, base string) string {
	switch mode {
	case PathModeAbsolute:
		if f.Flags&source.FileVirtual != 0 {
			return f.Path
		}
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative:
		return f.DisplayPath(base)
	case PathModeBasename:
		return filepath.Base(f.Path)
	}
	p := f.DisplayPath(base)
	if filepath.IsAbs(p) && len(p) > autoBasenameOver {
		return filepath.Base(p)
	}
	return p
}
