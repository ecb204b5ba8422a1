package lexer

import (
	"testing"

	"lorax/internal/source"
)

func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte(content))
	return fs.Get(id)
}

func TestCursor_SequentialReading(t *testing.T) {
	cursor := NewCursor(createFile("a\nb"))
	for _, want := range []byte{'a', '\n', 'b'} {
		if cursor.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := cursor.Peek(); got != want {
			t.Fatalf("Peek = %q, want %q", got, want)
		}
		if got := cursor.Bump(); got != want {
			t.Fatalf("Bump = %q, want %q", got, want)
		}
	}
	if !cursor.EOF() {
		t.Fatal("expected EOF at end")
	}
	if cursor.Peek() != 0 || cursor.Bump() != 0 {
		t.Fatal("Peek/Bump at EOF must return 0")
	}
}

func TestCursor_Peek2(t *testing.T) {
	cursor := NewCursor(createFile("--"))
	b0, b1, ok := cursor.Peek2()
	if !ok || b0 != '-' || b1 != '-' {
		t.Fatalf("Peek2 = %q %q %v", b0, b1, ok)
	}
	cursor.Bump()
	if _, _, ok := cursor.Peek2(); ok {
		t.Fatal("Peek2 must fail with a single byte left")
	}
}

func TestCursor_MarkSpanReset(t *testing.T) {
	cursor := NewCursor(createFile("return 0;"))
	m := cursor.Mark()
	for range 6 {
		cursor.Bump()
	}
	sp := cursor.SpanFrom(m)
	if sp.Start != 0 || sp.End != 6 {
		t.Fatalf("SpanFrom = %v, want 0..6", sp)
	}
	cursor.Reset(m)
	if cursor.Off != 0 {
		t.Fatalf("Reset left Off = %d", cursor.Off)
	}
	if cursor.Eat('x') || !cursor.Eat('r') {
		t.Fatal("Eat must only consume a matching byte")
	}
}

func TestCursor_Limit(t *testing.T) {
	cursor := NewCursor(createFile("int"))
	cursor.Limit = 2
	cursor.Bump()
	cursor.Bump()
	if !cursor.EOF() {
		t.Fatal("Limit must bound the cursor")
	}
}
