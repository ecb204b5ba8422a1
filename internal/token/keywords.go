package token

var keywords = map[string]Kind{
	"int":    KwInt,
	"void":   KwVoid,
	"return": KwReturn,
}

// LookupKeyword returns the keyword kind for ident. Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
