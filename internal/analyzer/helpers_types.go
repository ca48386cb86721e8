package analyzer

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/token"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

func (w *walker) errorAt(tok token.Token, code diagnostics.ErrorCode, format string, args ...interface{}) {
	w.addError(diagnostics.Errorf(code, tok, format, args...))
}

func (w *walker) assignable(target, value typesystem.Type) bool {
	return typesystem.Assignable(target, value, w.program.Bases)
}

// join unifies two types without widening. Any stands for a value whose
// type is only known at run time: at the top it absorbs the other side,
// as a type argument it yields to it, so Option<Int> and the Option<Any>
// of a bare None join to Option<Int>.
func join(a, b typesystem.Type) (typesystem.Type, bool) {
	if typesystem.Equal(a, b) {
		return a, true
	}
	if typesystem.IsAny(a) || typesystem.IsAny(b) {
		return typesystem.Any, true
	}
	x, ok1 := a.(typesystem.TApp)
	y, ok2 := b.(typesystem.TApp)
	if !ok1 || !ok2 || x.Constructor.Name != y.Constructor.Name || len(x.Args) != len(y.Args) {
		return nil, false
	}
	args := make([]typesystem.Type, len(x.Args))
	for i := range x.Args {
		switch {
		case typesystem.IsAny(x.Args[i]):
			args[i] = y.Args[i]
		case typesystem.IsAny(y.Args[i]):
			args[i] = x.Args[i]
		default:
			j, ok := join(x.Args[i], y.Args[i])
			if !ok {
				return nil, false
			}
			args[i] = j
		}
	}
	return typesystem.TApp{Constructor: x.Constructor, Args: args}, true
}

// closeOver replaces type parameters nothing inferred with Any.
func closeOver(t typesystem.Type) typesystem.Type {
	if t == nil {
		return typesystem.Any
	}
	free := t.FreeTypeVariables()
	if len(free) == 0 {
		return t
	}
	s := make(typesystem.Subst, len(free))
	for _, v := range free {
		s[v.Name] = typesystem.Any
	}
	return t.Apply(s)
}

func isIntLike(t typesystem.Type) bool {
	return typesystem.Equal(t, typesystem.Int) || typesystem.IsAny(t)
}

func isType(t, want typesystem.Type) bool {
	return typesystem.Equal(t, want)
}

func isGlobalFunction(se *ast.SlotExpression) bool {
	if se.Binding == nil || se.Scope != ast.ScopeGlobal {
		return false
	}
	switch c := se.Binding.Callable.(type) {
	case nil:
		return false
	case *symbols.Constructor:
		return !c.Nullary()
	}
	return true
}
