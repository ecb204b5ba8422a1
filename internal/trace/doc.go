// Package trace follows a compilation through the driver, the front end and
// every rewrite pass.
//
// Spans are opened with Begin and closed with End; Point records an instant.
// Each event has a Scope, and the tracer's Level decides which scopes are
// kept:
//
//	off     nothing
//	error   driver and pass events, held in a ring and dumped if the run fails
//	phase   driver and pass events
//	detail  plus per-module events
//	debug   plus every operation a rewrite rule touches
//
// Where events go is the StorageMode: a StreamTracer writes text or NDJSON as
// events arrive, a RingTracer keeps the last N in memory, and ModeBoth does
// both through a MultiTracer.
//
// The tracer and the enclosing span travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "lower", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
package trace
