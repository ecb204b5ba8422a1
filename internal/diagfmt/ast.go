package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"lorax/internal/ast"
	"lorax/internal/source"
)

type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// FormatASTPretty prints prog as a tree:
//
//	Program (span: 1:1-3:2)
//	└─ Func main (span: 1:1-3:2)
//	   └─ Return (span: 2:5-2:14)
//	      └─ Unary - (span: 2:12-2:14)
//	         └─ Constant 2 (span: 2:13-2:14)
func FormatASTPretty(w io.Writer, prog *ast.Program, fs *source.FileSet) error {
	if prog == nil {
		return fmt.Errorf("nil program")
	}
	return printNode(w, buildNode(prog), fs, "", "")
}

// FormatASTJSON writes prog as nested JSON nodes.
func FormatASTJSON(w io.Writer, prog *ast.Program) error {
	if prog == nil {
		return fmt.Errorf("nil program")
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildNode(prog))
}

func buildNode(prog *ast.Program) ASTNodeOutput {
	root := ASTNodeOutput{Type: "Program", Span: prog.Span}
	for _, fn := range prog.Funcs {
		node := ASTNodeOutput{Type: "Func", Span: fn.Span, Text: fn.Name}
		if fn.Body != nil {
			ret := ASTNodeOutput{Type: "Return", Span: fn.Body.Span}
			if fn.Body.Value != nil {
				ret.Children = append(ret.Children, exprNode(fn.Body.Value))
			}
			node.Children = append(node.Children, ret)
		}
		root.Children = append(root.Children, node)
	}
	return root
}

func exprNode(e ast.Expr) ASTNodeOutput {
	switch e := e.(type) {
	case *ast.Constant:
		return ASTNodeOutput{Type: "Constant", Span: e.Span, Text: fmt.Sprint(e.Value)}
	case *ast.Unary:
		return ASTNodeOutput{
			Type:     "Unary",
			Span:     e.Span,
			Text:     e.Op.String(),
			Children: []ASTNodeOutput{exprNode(e.X)},
		}
	}
	return ASTNodeOutput{Type: fmt.Sprintf("%T", e)}
}

func printNode(w io.Writer, n ASTNodeOutput, fs *source.FileSet, lead, prefix string) error {
	label := n.Type
	if n.Text != "" {
		label += " " + n.Text
	}
	if _, err := fmt.Fprintf(w, "%s%s (span: %s)\n", lead, label, formatSpan(n.Span, fs)); err != nil {
		return err
	}
	for i, c := range n.Children {
		branch, next := "├─ ", "│  "
		if i == len(n.Children)-1 {
			branch, next = "└─ ", "   "
		}
		if err := printNode(w, c, fs, prefix+branch, prefix+next); err != nil {
			return err
		}
	}
	return nil
}

func formatSpan(sp source.Span, fs *source.FileSet) string {
	if fs == nil {
		return sp.String()
	}
	start, end := fs.Resolve(sp)
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
}
