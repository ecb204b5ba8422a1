package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// Constant is a decimal integer literal.
	Constant

	KwInt    // int
	KwVoid   // void
	KwReturn // return

	LParen     // (
	RParen     // )
	LBrace     // {
	RBrace     // }
	Semicolon  // ;
	Tilde      // ~
	Minus      // -
	MinusMinus // --
)

var kindNames = [...]string{
	Invalid:    "Invalid",
	EOF:        "EOF",
	Ident:      "Ident",
	Constant:   "Constant",
	KwInt:      "KwInt",
	KwVoid:     "KwVoid",
	KwReturn:   "KwReturn",
	LParen:     "LParen",
	RParen:     "RParen",
	LBrace:     "LBrace",
	RBrace:     "RBrace",
	Semicolon:  "Semicolon",
	Tilde:      "Tilde",
	Minus:      "Minus",
	MinusMinus: "MinusMinus",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

var kindSpellings = map[Kind]string{
	KwInt:      "int",
	KwVoid:     "void",
	KwReturn:   "return",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	Semicolon:  ";",
	Tilde:      "~",
	Minus:      "-",
	MinusMinus: "--",
}

// Spelling returns the fixed source text of keywords and punctuation, or a
// descriptive name for the other kinds. Parser messages use it.
func (k Kind) Spelling() string {
	if s, ok := kindSpellings[k]; ok {
		return "'" + s + "'"
	}
	switch k {
	case Ident:
		return "identifier"
	case Constant:
		return "constant"
	case EOF:
		return "end of file"
	}
	return "invalid token"
}
