package lexer

import (
	"lorax/internal/diag"
	"lorax/internal/source"
)

type Options struct {
	Reporter diag.Reporter // may be nil: errors are dropped, lexing continues
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
	}
}

func (lx *Lexer) reportFix(code diag.Code, sp source.Span, msg, title string, edits ...diag.FixEdit) {
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, msg).WithFix(title, edits...).Emit()
	}
}
