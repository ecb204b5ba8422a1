package driver

import (
	"errors"

	"lorax/internal/ast"
	"lorax/internal/diag"
	"lorax/internal/parser"
	"lorax/internal/source"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Program *ast.Program
	Bag     *diag.Bag
}

// Parse loads and parses path. A syntax error is not returned as an error:
// it lands in Bag and Program is nil. The error is reserved for I/O failures.
func Parse(path string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, diag.WithCode(diag.IOLoadFileError, err)
	}
	return parseLoaded(fs, fs.Get(fileID), maxDiagnostics)
}

// newReporter feeds bag through a DedupReporter so repeated reports do not
// count against --max-diagnostics.
func newReporter(bag *diag.Bag) diag.Reporter {
	return diag.NewDedupReporter(diag.BagReporter{Bag: bag})
}

func parseLoaded(fs *source.FileSet, file *source.File, maxDiagnostics int) (*ParseResult, error) {
	bag := diag.NewBag(maxDiagnostics)
	prog, err := parser.ParseFile(file, parser.Options{Reporter: newReporter(bag)})
	if err != nil && !errors.Is(err, parser.ErrSyntax) {
		return nil, err
	}
	return &ParseResult{
		FileSet: fs,
		File:    file,
		Program: prog,
		Bag:     bag,
	}, nil
}
