package resolver

import (
	"strings"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/symbols"
)

// hoist registers the batch's top-level declarations before any body is
// visited: modules first, then type names, then field types and variant
// constructors, then impl methods and functions in source order.
func (r *Resolver) hoist(stmts []ast.Statement) {
	for _, stmt := range stmts {
		if use, ok := stmt.(*ast.UseStatement); ok {
			r.useModule(use)
		}
	}

	type pending struct {
		def  *symbols.TypeDef
		stmt ast.Statement
	}
	var types []pending
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.TypeStatement:
			if def := r.declareType(s.Name, symbols.RecordType); def != nil {
				types = append(types, pending{def, s})
			}
		case *ast.UnionStatement:
			if def := r.declareType(s.Name, symbols.UnionType); def != nil {
				types = append(types, pending{def, s})
			}
		}
	}
	for _, t := range types {
		switch s := t.stmt.(type) {
		case *ast.TypeStatement:
			t.def.Fields = r.fields(s.Fields)
		case *ast.UnionStatement:
			r.defineUnion(t.def, s)
		}
	}

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.ImplStatement:
			r.declareImpl(s)
		case *ast.FunctionStatement:
			r.declareFunction(s)
		}
	}
}

func (r *Resolver) useModule(use *ast.UseStatement) {
	name := strings.Join(use.Path, ".")
	if err := r.program.UseModule(name); err != nil {
		r.errorf(diagnostics.ErrB001, use.Token, "cannot use module %s: %v", name, err)
	}
}

func (r *Resolver) declareType(name *ast.Identifier, kind symbols.TypeKind) *symbols.TypeDef {
	def := symbols.NewTypeDef(name.Value, kind)
	if err := r.program.AddType(def); err != nil {
		r.errorf(diagnostics.ErrB003, name.Token, "%v", err)
		return nil
	}
	return def
}

func (r *Resolver) fields(decls []*ast.FieldDecl) []symbols.Field {
	fields := make([]symbols.Field, 0, len(decls))
	seen := make(map[string]bool)
	for _, f := range decls {
		if seen[f.Name] {
			r.errorf(diagnostics.ErrB003, f.Token, "duplicate field %s", f.Name)
			continue
		}
		seen[f.Name] = true
		t, err := r.program.ResolveType(f.Type, nil)
		if err != nil {
			r.addError(err)
			continue
		}
		fields = append(fields, symbols.Field{Name: f.Name, Type: t})
	}
	return fields
}

func (r *Resolver) defineUnion(def *symbols.TypeDef, s *ast.UnionStatement) {
	seen := make(map[string]bool)
	for _, vd := range s.Variants {
		if seen[vd.Name] {
			r.errorf(diagnostics.ErrB003, vd.Token, "duplicate variant %s in union %s", vd.Name, def.FullName)
			return
		}
		seen[vd.Name] = true
		def.Variants = append(def.Variants, &symbols.Variant{Tag: vd.Name, Fields: r.fields(vd.Fields)})
	}
	bindings := r.program.BindVariants(def, s.Name.Token)
	for i, vd := range s.Variants {
		vd.Binding = bindings[i]
	}
}

func (r *Resolver) declareImpl(s *ast.ImplStatement) {
	def, found, err := r.program.ResolveTypeName(s.TypeName.Value)
	if err != nil {
		r.errorf(diagnostics.ErrB002, s.TypeName.Token, "%v", err)
		return
	}
	if !found {
		r.errorf(diagnostics.ErrB001, s.TypeName.Token, "unknown type %s", s.TypeName.Value)
		return
	}
	if def.Kind != symbols.RecordType && def.Kind != symbols.UnionType {
		r.errorf(diagnostics.ErrB003, s.TypeName.Token, "cannot add methods to %s type %s", def.Kind, def.FullName)
		return
	}
	for _, m := range s.Methods {
		fn := symbols.NewUserFunction(m)
		m.Callable = fn
		m.Owner = def.FullName
		r.program.AddMethod(def, fn)
	}
}

// declareFunction hoists a top-level function into the next global slot.
func (r *Resolver) declareFunction(s *ast.FunctionStatement) {
	fn := symbols.NewUserFunction(s)
	s.Callable = fn
	b := r.program.DeclareGlobal(s.Name.Value, s.Name.Token)
	b.Callable = fn
	s.Binding = b
	r.program.AddFunction(fn)
	r.program.AddInit(b)
}
