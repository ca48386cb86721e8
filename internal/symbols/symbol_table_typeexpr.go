package symbols

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

// ResolveType converts a type annotation. params are the generic
// parameter names in scope; they resolve to type variables.
func (p *Program) ResolveType(t ast.Type, params []string) (typesystem.Type, *diagnostics.DiagnosticError) {
	switch tt := t.(type) {
	case *ast.ArrayType:
		elem, err := p.ResolveType(tt.Element, params)
		if err != nil {
			return nil, err
		}
		return typesystem.ArrayOf(elem), nil

	case *ast.NamedType:
		name := tt.Name()
		if len(tt.Parts) == 1 && len(tt.Args) == 0 {
			for _, param := range params {
				if param == name {
					return typesystem.TVar{Name: name}, nil
				}
			}
		}
		def, found, err := p.ResolveTypeName(name)
		if err != nil {
			return nil, diagnostics.NewError(diagnostics.ErrB002, tt.Token, err.Error())
		}
		if !found {
			return nil, diagnostics.Errorf(diagnostics.ErrB001, tt.Token, "unknown type %s", name)
		}
		if len(tt.Args) != len(def.TypeParams) {
			return nil, diagnostics.Errorf(diagnostics.ErrT002, tt.Token,
				"type %s expects %d type arguments, got %d", def.FullName, len(def.TypeParams), len(tt.Args))
		}
		if len(tt.Args) == 0 {
			return def.Con(), nil
		}
		args := make([]typesystem.Type, len(tt.Args))
		for i, a := range tt.Args {
			at, err := p.ResolveType(a, params)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		if def.FullName == config.ArrayTypeName {
			return typesystem.ArrayOf(args[0]), nil
		}
		return typesystem.TApp{Constructor: def.Con(), Args: args}, nil
	}
	return typesystem.Any, nil
}
