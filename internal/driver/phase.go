package driver

import (
	"context"
	"time"

	"lorax/internal/observ"
	"lorax/internal/trace"
)

// Phase names reported to observers, in pipeline order.
const (
	PhasePreprocess = "preprocess"
	PhaseParse      = "parse"
	PhaseLower      = "lower"
	PhaseEmit       = "emit"
	PhaseAssemble   = "assemble"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary of one file.
type PhaseEvent struct {
	File    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Err     error
}

// PhaseObserver receives phase events. Calls for one file are sequential;
// calls for different files may be concurrent.
type PhaseObserver func(PhaseEvent)

// phases runs the stages of one file, reporting each to a tracer span, the
// timer and the observer.
type phases struct {
	file     string
	timer    *observ.Timer
	observer PhaseObserver
}

func (p phases) run(ctx context.Context, name string, fn func(context.Context) error) error {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePass, name, trace.CurrentSpan(ctx).SpanID)
	inner := trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})
	p.emit(PhaseEvent{File: p.file, Name: name, Status: PhaseStart})

	start := time.Now()
	err := p.timer.Track(p.timerName(name), func() error { return fn(inner) })
	elapsed := time.Since(start)

	detail := ""
	if err != nil {
		detail = err.Error()
	}
	span.End(detail)
	p.emit(PhaseEvent{File: p.file, Name: name, Status: PhaseEnd, Elapsed: elapsed, Err: err})
	return err
}

func (p phases) timerName(name string) string {
	if p.file == "" {
		return name
	}
	return name + " " + p.file
}

func (p phases) emit(ev PhaseEvent) {
	if p.observer != nil {
		p.observer(ev)
	}
}
