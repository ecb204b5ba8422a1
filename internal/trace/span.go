package trace

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
	openSpans   atomic.Int64
)

// NextSeq returns the next global sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// OpenSpans is the number of spans begun and not yet ended.
func OpenSpans() int64 { return openSpans.Load() }

// goid parses the goroutine number out of the "goroutine N [...]" header
// that runtime.Stack writes first.
func goid() uint64 {
	var buf [64]byte
	hdr := string(buf[:runtime.Stack(buf[:], false)])
	hdr, ok := strings.CutPrefix(hdr, "goroutine ")
	if !ok {
		return 0
	}
	num, _, _ := strings.Cut(hdr, " ")
	id, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Span is an open begin/end pair. The zero Span and a Span created while the
// scope is filtered out are inert: End and WithExtra do nothing.
type Span struct {
	tracer  Tracer
	begin   Event
	extra   map[string]string
	started time.Time
	ended   bool
}

// Begin emits the begin event of a span under parent (0 for a root).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	now := time.Now()
	s := &Span{
		tracer:  t,
		started: now,
		begin: Event{
			Time:     now,
			Kind:     KindSpanBegin,
			Scope:    scope,
			SpanID:   spanCounter.Add(1),
			ParentID: parent,
			GID:      goid(),
			Name:     name,
		},
	}
	openSpans.Add(1)
	ev := s.begin
	t.Emit(&ev)
	return s
}

// End emits the end event carrying detail and any extras, and returns the
// span's duration. Only the first call has an effect.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil || s.ended {
		return 0
	}
	s.ended = true
	openSpans.Add(-1)
	ev := s.begin
	ev.Time = time.Now()
	ev.Kind = KindSpanEnd
	ev.Detail = detail
	ev.Extra = s.extra
	s.tracer.Emit(&ev)
	return ev.Time.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID is 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.begin.SpanID
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name string, parent uint64, detail string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		GID:      goid(),
		Name:     name,
		Detail:   detail,
	})
}
