package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lorax/internal/diag"
	"lorax/internal/source"
)

const tabWidth = 4

type palette struct {
	sev    map[diag.Severity]*color.Color
	caret  *color.Color
	gutter *color.Color
	note   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		caret:  color.New(color.FgGreen, color.Bold),
		gutter: color.New(color.FgBlue),
		note:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.caret, p.gutter, p.note, p.sev[diag.SevError], p.sev[diag.SevWarning], p.sev[diag.SevInfo]} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes the diagnostics of bag in human readable form, in bag order
// (call bag.Sort first). Each diagnostic is
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	   3 |     return 1x;
//	     |            ^~
//
// followed by its notes and fixes when enabled.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			displayPath(f, opts.PathMode, opts.BaseDir), start.Line, start.Col,
			p.sev[d.Severity].Sprint(d.Severity.String()), d.Code.ID(), d.Message)
		snippet(w, fs, d.Primary, p)

		if opts.ShowNotes {
			for _, n := range d.Notes {
				nf := fs.Get(n.Span.File)
				ns, _ := fs.Resolve(n.Span)
				fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
					displayPath(nf, opts.PathMode, opts.BaseDir), ns.Line, ns.Col, n.Msg)
			}
		}
		if opts.ShowFixes {
			for _, fx := range d.Fixes {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("fix:"), fx.Title)
				for _, e := range fx.Edits {
					es, _ := fs.Resolve(e.Span)
					fmt.Fprintf(w, "    %d:%d: replace with %q\n", es.Line, es.Col, e.NewText)
				}
			}
		}
	}
}

// snippet prints the source line of sp with a caret underline. Columns are
// measured in display cells so wide runes and tabs line up.
func snippet(w io.Writer, fs *source.FileSet, sp source.Span, p palette) {
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	line := f.GetLine(start.Line)
	if line == "" && start.Col > 1 {
		return
	}

	from := min(int(start.Col-1), len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(int(end.Col-1), len(line))
	}
	pad := width(line[:from])
	n := max(width(line[from:max(to, from)]), 1)

	num := strconv.FormatUint(uint64(start.Line), 10)
	gutter := strings.Repeat(" ", len(num)+2)
	fmt.Fprintf(w, "%s %s %s\n", p.gutter.Sprint(gutter[len(num):]+num), p.gutter.Sprint("|"), expandTabs(line))
	fmt.Fprintf(w, "%s %s %s%s\n", gutter, p.gutter.Sprint("|"),
		strings.Repeat(" ", pad), p.caret.Sprint("^"+strings.Repeat("~", n-1)))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func width(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}
