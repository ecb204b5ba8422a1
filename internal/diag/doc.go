// Package diag defines the diagnostic model shared by all pipeline phases.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//   - Fixes – optional Fix records (title + text edits).
//
// # Emitting diagnostics
//
// Phases report through a diag.Reporter so that emission stays decoupled from
// storage. The parser builds diagnostics with ReportError / ReportWarning and
// chains WithNote before calling Emit. BagReporter collects into a Bag, which
// enforces a limit and supports sorting and deduplication.
//
// Package diag does no formatting or IO; rendering lives in internal/diagfmt.
package diag
