package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexInfo        Code = 1000
	LexUnknownChar Code = 1001
	LexBadNumber   Code = 1004

	// syntax
	SynInfo            Code = 2000
	SynUnexpectedToken Code = 2001
	SynExpectSemicolon Code = 2012
	SynUnexpectedEOF   Code = 2013
	SynTrailingTokens  Code = 2014
	SynConstantRange   Code = 2015

	// IR construction and lowering
	IRInfo        Code = 3000
	IRInvariant   Code = 3001
	IRLeftoverOp  Code = 3002
	IRUnknownPass Code = 3003

	// I/O and external tools
	IOLoadFileError Code = 4001
	IOToolchain     Code = 4002

	// project manifest
	ProjInfo            Code = 5000
	ProjInvalidManifest Code = 5001
	ProjNoSources       Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:         "Unknown error",
	LexInfo:             "Lexical information",
	LexUnknownChar:      "Unknown character",
	LexBadNumber:        "Bad number",
	SynInfo:             "Syntax information",
	SynUnexpectedToken:  "Unexpected token",
	SynExpectSemicolon:  "Expected semicolon",
	SynUnexpectedEOF:    "Unexpected end of file",
	SynTrailingTokens:   "Unexpected input after the last function",
	SynConstantRange:    "Constant does not fit in 32 bits",
	IRInfo:              "IR information",
	IRInvariant:         "IR invariant violated",
	IRLeftoverOp:        "Operation was not lowered",
	IRUnknownPass:       "Unknown lowering pass",
	IOLoadFileError:     "I/O load file error",
	IOToolchain:         "External toolchain failed",
	ProjInfo:            "Project information",
	ProjInvalidManifest: "Invalid lorax.toml",
	ProjNoSources:       "No sources to build",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// CodeError tags a failure that has no source location with a code.
type CodeError struct {
	Code Code
	Err  error
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%v [%s]", e.Err, e.Code.ID())
}

func (e *CodeError) Unwrap() error { return e.Err }

// WithCode returns nil for a nil err.
func WithCode(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &CodeError{Code: code, Err: err}
}
