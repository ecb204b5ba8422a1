package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"lorax/internal/diag"
	"lorax/internal/lexer"
	"lorax/internal/source"
	"lorax/internal/token"
)

// testReporter collects every diagnostic the lexer reports.
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
		Fixes:    fixes,
	})
}

func (r *testReporter) ErrorMessages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return messages
}

func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.c", []byte(input))
	reporter := &testReporter{}
	return lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter}), reporter
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// expectTokens checks the kinds of all tokens before EOF.
func expectTokens(t *testing.T, input string, expected []token.Kind) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := lx.All()
	tokens = tokens[:len(tokens)-1]

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d\nInput: %q\nTokens: %v\nErrors: %v",
			len(expected), len(tokens), input, tokensToString(tokens), reporter.ErrorMessages())
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("Token %d: expected %v, got %v (text: %q)", i, expected[i], tok.Kind, tok.Text)
		}
	}
}

func expectSingleToken(t *testing.T, input string, expectedKind token.Kind, expectedText string) {
	t.Helper()
	lx, _ := makeTestLexer(input)
	tok := lx.Next()
	if tok.Kind != expectedKind {
		t.Errorf("Expected kind %v, got %v", expectedKind, tok.Kind)
	}
	if tok.Text != expectedText {
		t.Errorf("Expected text %q, got %q", expectedText, tok.Text)
	}
}

func TestIdentifiers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"foo", token.Ident},
		{"_bar", token.Ident},
		{"x123", token.Ident},
		{"main", token.Ident},
		{"int", token.KwInt},
		{"void", token.KwVoid},
		{"return", token.KwReturn},
		{"Return", token.Ident},
		{"integer", token.Ident},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.input)
		})
	}
}

func TestConstants(t *testing.T) {
	for _, in := range []string{"0", "2", "1234567890", "4294967296"} {
		expectSingleToken(t, in, token.Constant, in)
	}
}

func TestPunctuation(t *testing.T) {
	expectTokens(t, "(){};~-", []token.Kind{
		token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.Semicolon, token.Tilde, token.Minus,
	})
	expectTokens(t, "--2 - -2 ---", []token.Kind{
		token.MinusMinus, token.Constant, token.Minus, token.Minus, token.Constant,
		token.MinusMinus, token.Minus,
	})
}

func TestReturnZero(t *testing.T) {
	src := "int main(void) {\n    return 0;\n}\n"
	lx, reporter := makeTestLexer(src)
	tokens := lx.All()
	want := []struct {
		kind  token.Kind
		text  string
		start uint32
	}{
		{token.KwInt, "int", 0},
		{token.Ident, "main", 4},
		{token.LParen, "(", 8},
		{token.KwVoid, "void", 9},
		{token.RParen, ")", 13},
		{token.LBrace, "{", 15},
		{token.KwReturn, "return", 21},
		{token.Constant, "0", 28},
		{token.Semicolon, ";", 29},
		{token.RBrace, "}", 31},
		{token.EOF, "", 33},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %s", tokensToString(tokens))
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.Kind != w.kind || tok.Text != w.text || tok.Span.Start != w.start {
			t.Errorf("token %d = %v(%q)@%d, want %v(%q)@%d", i, tok.Kind, tok.Text, tok.Span.Start, w.kind, w.text, w.start)
		}
		if int(tok.Span.Len()) != len(tok.Text) {
			t.Errorf("token %d: span %v does not match text %q", i, tok.Span, tok.Text)
		}
	}
	if len(reporter.diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", reporter.ErrorMessages())
	}
}

func TestErrors_RecoverAtWordBoundary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kinds   []token.Kind
		invalid string
		code    diag.Code
	}{
		{
			name:    "bad number",
			input:   "return 123abc;",
			kinds:   []token.Kind{token.KwReturn, token.Invalid, token.Semicolon},
			invalid: "123abc",
			code:    diag.LexBadNumber,
		},
		{
			name:    "unknown char",
			input:   "return @;",
			kinds:   []token.Kind{token.KwReturn, token.Invalid, token.Semicolon},
			invalid: "@",
			code:    diag.LexUnknownChar,
		},
		{
			name:    "unknown run swallows word",
			input:   "x $foo bar",
			kinds:   []token.Kind{token.Ident, token.Invalid, token.Ident},
			invalid: "$foo",
			code:    diag.LexUnknownChar,
		},
		{
			name:    "multibyte",
			input:   "é)",
			kinds:   []token.Kind{token.Invalid, token.RParen},
			invalid: "é",
			code:    diag.LexUnknownChar,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectTokens(t, tt.input, tt.kinds)

			lx, reporter := makeTestLexer(tt.input)
			var bad token.Token
			for _, tok := range lx.All() {
				if tok.Kind == token.Invalid {
					bad = tok
				}
			}
			if bad.Text != tt.invalid {
				t.Errorf("invalid token text = %q, want %q", bad.Text, tt.invalid)
			}
			if len(reporter.diagnostics) != 1 {
				t.Fatalf("want 1 diagnostic, got %v", reporter.ErrorMessages())
			}
			d := reporter.diagnostics[0]
			if d.Code != tt.code || d.Severity != diag.SevError || d.Primary != bad.Span {
				t.Errorf("diagnostic = %+v", d)
			}
		})
	}
}

func TestErrors_AllReported(t *testing.T) {
	lx, reporter := makeTestLexer("1a # 2b")
	lx.All()
	if got := len(reporter.diagnostics); got != 3 {
		t.Fatalf("want 3 diagnostics, got %v", reporter.ErrorMessages())
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("int x")
	if p := lx.Peek(); p.Kind != token.KwInt {
		t.Fatalf("Peek = %v", p.Kind)
	}
	if p := lx.Peek(); p.Kind != token.KwInt {
		t.Fatalf("second Peek = %v", p.Kind)
	}
	if n := lx.Next(); n.Kind != token.KwInt {
		t.Fatalf("Next after Peek = %v", n.Kind)
	}
	if n := lx.Next(); n.Kind != token.Ident {
		t.Fatalf("Next = %v", n.Kind)
	}
	for range 3 {
		if n := lx.Next(); n.Kind != token.EOF {
			t.Fatalf("after end = %v", n.Kind)
		}
	}
}

func TestNilReporter(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("x.c", []byte("@@ 1x"))
	toks := lexer.New(fs.Get(id), lexer.Options{}).All()
	if len(toks) != 3 || toks[0].Kind != token.Invalid || toks[1].Kind != token.Invalid {
		t.Fatalf("got %s", tokensToString(toks))
	}
}

func TestConstant_EndsAtNonAlnum(t *testing.T) {
	tests := []struct {
		input string
		kinds []token.Kind
		texts []string
		code  diag.Code
	}{
		{"1+2", []token.Kind{token.Constant, token.Invalid}, []string{"1", "+2"}, diag.LexUnknownChar},
		{"7$", []token.Kind{token.Constant, token.Invalid}, []string{"7", "$"}, diag.LexUnknownChar},
		{"3é", []token.Kind{token.Invalid}, []string{"3é"}, diag.LexBadNumber},
		{"4_x", []token.Kind{token.Invalid}, []string{"4_x"}, diag.LexBadNumber},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lx, reporter := makeTestLexer(tt.input)
			tokens := lx.All()
			tokens = tokens[:len(tokens)-1]
			if len(tokens) != len(tt.kinds) {
				t.Fatalf("got %s", tokensToString(tokens))
			}
			for i, tok := range tokens {
				if tok.Kind != tt.kinds[i] || tok.Text != tt.texts[i] {
					t.Errorf("token %d = %v(%q), want %v(%q)", i, tok.Kind, tok.Text, tt.kinds[i], tt.texts[i])
				}
			}
			if len(reporter.diagnostics) != 1 || reporter.diagnostics[0].Code != tt.code {
				t.Fatalf("diagnostics = %v", reporter.ErrorMessages())
			}
		})
	}
}

func TestBadNumber_SuggestsDroppingSuffix(t *testing.T) {
	lx, reporter := makeTestLexer("return 123abc;")
	lx.All()
	if len(reporter.diagnostics) != 1 {
		t.Fatalf("diagnostics = %v", reporter.ErrorMessages())
	}
	fixes := reporter.diagnostics[0].Fixes
	if len(fixes) != 1 || len(fixes[0].Edits) != 1 {
		t.Fatalf("fixes = %+v", fixes)
	}
	if fixes[0].Title != `remove the suffix "abc"` {
		t.Errorf("title = %q", fixes[0].Title)
	}
	edit := fixes[0].Edits[0]
	if edit.Span.Start != 10 || edit.Span.End != 13 || edit.NewText != "" {
		t.Errorf("edit = %+v", edit)
	}
}
