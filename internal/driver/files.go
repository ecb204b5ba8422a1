package driver

import (
	"path/filepath"
	"strings"
)

// FileKind classifies a file by the stage of the build that produces it.
type FileKind uint8

const (
	KindBinary FileKind = iota
	KindSource
	KindPreprocessed
	KindAssembly
)

func (k FileKind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindPreprocessed:
		return "preprocessed"
	case KindAssembly:
		return "assembly"
	default:
		return "binary"
	}
}

// Ext returns the file extension of the kind, dot included. Binaries have none.
func (k FileKind) Ext() string {
	switch k {
	case KindSource:
		return ".c"
	case KindPreprocessed:
		return ".i"
	case KindAssembly:
		return ".S"
	default:
		return ""
	}
}

// KindOf classifies path by extension: .c, .i and .S; anything else is a binary.
func KindOf(path string) FileKind {
	switch filepath.Ext(path) {
	case ".c":
		return KindSource
	case ".i":
		return KindPreprocessed
	case ".S":
		return KindAssembly
	default:
		return KindBinary
	}
}

// ProcFile is a file flowing through the build. Each stage derives the next
// file from the previous one by changing its kind.
type ProcFile struct {
	Dir  string
	Stem string
	Kind FileKind
}

// NewProcFile splits path into directory, stem and kind.
func NewProcFile(path string) ProcFile {
	kind := KindOf(path)
	base := filepath.Base(path)
	if kind != KindBinary {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return ProcFile{Dir: filepath.Dir(path), Stem: base, Kind: kind}
}

func (f ProcFile) Path() string {
	return filepath.Join(f.Dir, f.Stem+f.Kind.Ext())
}

// WithKind returns the same file as it looks after a stage producing k.
func (f ProcFile) WithKind(k FileKind) ProcFile {
	f.Kind = k
	return f
}
