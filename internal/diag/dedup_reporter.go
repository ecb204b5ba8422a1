package diag

import "lorax/internal/source"

// identity is what makes two diagnostics the same report. Bag.Dedup and
// DedupReporter share it.
type identity struct {
	code Code
	span source.Span
	msg  string
}

func identityOf(code Code, sp source.Span, msg string) identity {
	return identity{code: code, span: sp, msg: msg}
}

// DedupReporter forwards each distinct diagnostic once. Filtering at report
// time keeps repeats from using up the limit of the Bag behind it.
type DedupReporter struct {
	next       Reporter
	seen       map[identity]struct{}
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[identity]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix) {
	if r == nil || r.next == nil {
		return
	}
	id := identityOf(code, primary, msg)
	if _, dup := r.seen[id]; dup {
		r.suppressed++
		return
	}
	r.seen[id] = struct{}{}
	r.next.Report(code, sev, primary, msg, notes, fixes)
}

// Suppressed counts the repeats that were not forwarded.
func (r *DedupReporter) Suppressed() int {
	if r == nil {
		return 0
	}
	return r.suppressed
}
