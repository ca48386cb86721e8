package main

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/pkg/jitzu"
)

func (d *document) hover(pos protocol.Position) *protocol.Hover {
	ref, ok := d.refAt(pos)
	if !ok {
		return nil
	}
	text := describe(ref)
	if text == "" {
		return nil
	}
	r := tokenRange(ref.tok)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
		Range: &r,
	}
}

// describe renders the hover text of a reference: the signature of a
// callable, otherwise the static type and where the value is stored.
func describe(ref symbolRef) string {
	var b strings.Builder
	switch {
	case ref.callable != nil:
		fmt.Fprintf(&b, "```jitzu\nfun %s%s\n```", ref.callable.CallableName(), ref.callable.Signature())
	case ref.field:
		if ref.typ == nil {
			return ""
		}
		fmt.Fprintf(&b, "```jitzu\n(field) %s: %s\n```", ref.tok.Lexeme, ref.typ)
	case ref.binding != nil:
		typ := "?"
		if ref.typ != nil {
			typ = ref.typ.String()
		}
		fmt.Fprintf(&b, "```jitzu\n%s: %s\n```", ref.binding.Name, typ)
	default:
		return ""
	}
	if ref.binding != nil {
		b.WriteString("\n\n" + slotText(ref.binding))
	}
	return b.String()
}

func slotText(bnd *ast.Binding) string {
	s := fmt.Sprintf("%s slot %d", bnd.Scope, bnd.Index)
	if bnd.Captured {
		s += ", captured"
	}
	return s
}

// definition locates the declaration of the binding under pos. Bindings
// without a source position (builtins, host modules) have none.
func (d *document) definition(pos protocol.Position) *protocol.Location {
	ref, ok := d.refAt(pos)
	if !ok {
		return nil
	}
	var decl ast.Node
	switch {
	case ref.binding != nil && ref.binding.Token.Line > 0:
		return &protocol.Location{URI: d.uri, Range: tokenRange(ref.binding.Token)}
	case ref.callable != nil:
		decl = declOf(ref.callable)
	}
	if decl == nil {
		return nil
	}
	return &protocol.Location{URI: d.uri, Range: tokenRange(decl.GetToken())}
}

// declOf returns the declaring function of a user callable.
func declOf(c ast.Callable) ast.Node {
	if u, ok := c.(*symbols.UserFunction); ok && u.Decl != nil {
		return u.Decl.Name
	}
	return nil
}

// formatEdits replaces the whole document with its canonical layout.
// Documents with comments or syntax errors are left alone.
func (d *document) formatEdits() []protocol.TextEdit {
	if strings.Contains(d.text, "//") {
		return nil
	}
	formatted, err := jitzu.Format(d.text, d.path)
	if err != nil || formatted == d.text {
		return nil
	}
	lines := strings.Split(d.text, "\n")
	last := lines[len(lines)-1]
	return []protocol.TextEdit{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End: protocol.Position{
				Line:      protocol.UInteger(len(lines) - 1),
				Character: protocol.UInteger(len([]rune(last))),
			},
		},
		NewText: formatted,
	}}
}

func convertDiagnostics(errs []*diagnostics.DiagnosticError) []protocol.Diagnostic {
	result := make([]protocol.Diagnostic, 0, len(errs))
	severity := protocol.DiagnosticSeverityError
	source := lsName
	for _, err := range errs {
		result = append(result, protocol.Diagnostic{
			Range:    tokenRange(err.Token),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: string(err.Code)},
			Source:   &source,
			Message:  fmt.Sprintf("%s: %s", err.Category(), err.Message),
		})
	}
	return result
}
