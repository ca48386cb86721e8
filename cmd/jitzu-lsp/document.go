package main

import (
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/token"
	"github.com/simon-curtis/jitzu/internal/typesystem"
	"github.com/simon-curtis/jitzu/pkg/jitzu"
)

// document is one analysed version of an open file.
type document struct {
	uri  protocol.DocumentUri
	path string
	text string

	program *ast.Program // nil when analysis failed
	errors  []*diagnostics.DiagnosticError
	refs    []symbolRef
}

// symbolRef ties a source token to what it names.
type symbolRef struct {
	tok      token.Token
	binding  *ast.Binding
	callable ast.Callable
	typ      typesystem.Type
	field    bool
}

// analyze checks text with a fresh engine configured from the config
// nearest to the file.
func analyze(uri protocol.DocumentUri, text string) *document {
	doc := &document{uri: uri, path: uriToPath(uri), text: text}

	cfg, err := config.FindAndLoad(filepath.Dir(doc.path))
	if err != nil {
		log.Warningf("%s: %s; using defaults", doc.path, err)
		cfg = config.Default()
	}
	e, err := jitzu.New(cfg)
	if err != nil {
		log.Warningf("%s: %s; using defaults", doc.path, err)
		if e, err = jitzu.New(nil); err != nil {
			log.Errorf("%s", err)
			return doc
		}
	}
	e.SetOutput(io.Discard)

	prog, err := e.Check(text, doc.path)
	var compileErr *jitzu.CompileError
	switch {
	case errors.As(err, &compileErr):
		doc.errors = compileErr.Errors
	case err != nil:
		log.Errorf("%s: %s", doc.path, err)
	default:
		doc.program = prog
		doc.refs = indexSymbols(prog)
	}
	return doc
}

func uriToPath(uri protocol.DocumentUri) string {
	s := string(uri)
	if !strings.HasPrefix(s, "file://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return strings.TrimPrefix(s, "file://")
	}
	return filepath.FromSlash(u.Path)
}

// indexSymbols lists every declaration and use the passes resolved, in
// source order. A call through a member records the resolved method
// before the member itself.
func indexSymbols(prog *ast.Program) []symbolRef {
	var refs []symbolRef
	add := func(id *ast.Identifier, b *ast.Binding) {
		if id != nil && b != nil && !b.Hidden {
			refs = append(refs, symbolRef{tok: id.Token, binding: b, typ: b.Type})
		}
	}
	ast.Walk(prog, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.LetStatement:
			add(n.Name, n.Binding)
		case *ast.ForStatement:
			add(n.Variable, n.VarBinding)
		case *ast.BindingPattern:
			add(n.Name, n.Binding)
		case *ast.FunctionStatement:
			if n.Callable != nil {
				refs = append(refs, symbolRef{tok: n.Name.Token, binding: n.Binding, callable: n.Callable})
			}
			for _, p := range n.Parameters {
				add(p.Name, p.Binding)
			}
		case *ast.SlotExpression:
			if n.Binding != nil && !n.Binding.Hidden {
				refs = append(refs, symbolRef{tok: n.Token, binding: n.Binding, callable: n.Binding.Callable, typ: n.StaticType()})
			}
		case *ast.CallExpression:
			if me, ok := n.Function.(*ast.MemberExpression); ok && n.Target != nil {
				refs = append(refs, symbolRef{tok: me.Member.Token, callable: n.Target})
			}
		case *ast.MemberExpression:
			refs = append(refs, symbolRef{tok: n.Member.Token, typ: n.StaticType(), field: true})
		}
		return true
	})
	return refs
}

// refAt returns the first reference whose token covers the 0-based
// position.
func (d *document) refAt(pos protocol.Position) (symbolRef, bool) {
	line := int(pos.Line) + 1
	col := int(pos.Character) + 1
	for _, r := range d.refs {
		if r.tok.Line != line {
			continue
		}
		width := len([]rune(r.tok.Lexeme))
		if width == 0 {
			width = 1
		}
		if col >= r.tok.Column && col < r.tok.Column+width {
			return r, true
		}
	}
	return symbolRef{}, false
}

// tokenRange converts a token to an LSP range on its line.
func tokenRange(tok token.Token) protocol.Range {
	line := protocol.UInteger(max(tok.Line-1, 0))
	start := max(tok.Column-1, 0)
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: protocol.UInteger(start)},
		End:   protocol.Position{Line: line, Character: protocol.UInteger(start + len([]rune(tok.Lexeme)))},
	}
}
