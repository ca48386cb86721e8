package typesystem

import "fmt"

// Binding is the outcome of matching call arguments against a possibly
// generic signature.
type Binding struct {
	Subst       Subst
	Params      []Type // parameter types after substitution
	ReturnType  Type
	Specificity int
}

// Bind matches argument types against sig, whose free type parameters are
// named by typeParams. Each type parameter is inferred from the first
// argument position where it appears; a later position that would bind the
// same parameter to a different concrete type rejects the candidate.
// Variadic signatures accept any number of trailing arguments of the last
// parameter type.
func Bind(sig TFunc, typeParams []string, args []Type, bases BaseResolver) (*Binding, error) {
	params := expandParams(sig, len(args))
	if params == nil {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(sig.Params), len(args))
	}

	generic := make(map[string]bool, len(typeParams))
	for _, tp := range typeParams {
		generic[tp] = true
	}

	s := Subst{}
	for i, p := range params {
		if err := infer(p, args[i], generic, s, bases); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
	}

	b := &Binding{Subst: s, Params: make([]Type, len(params))}
	for i, p := range params {
		bound := p.Apply(s)
		if !Assignable(bound, args[i], bases) {
			return nil, fmt.Errorf("argument %d: cannot use %s as %s", i+1, args[i], bound)
		}
		b.Params[i] = bound
		b.Specificity += positionScore(p, bound, args[i], generic)
	}
	if sig.ReturnType != nil {
		b.ReturnType = sig.ReturnType.Apply(s)
	}
	return b, nil
}

func expandParams(sig TFunc, n int) []Type {
	if !sig.IsVariadic {
		if len(sig.Params) != n {
			return nil
		}
		return sig.Params
	}
	fixed := len(sig.Params) - 1
	if n < fixed {
		return nil
	}
	out := make([]Type, 0, n)
	out = append(out, sig.Params[:fixed]...)
	for len(out) < n {
		out = append(out, sig.Params[fixed])
	}
	return out
}

// infer records bindings for the type parameters appearing in param.
// Bindings already present in s are left alone: the first position wins and
// conflicts surface when the substituted parameter is checked.
func infer(param, arg Type, generic map[string]bool, s Subst, bases BaseResolver) error {
	switch p := param.(type) {
	case TVar:
		if !generic[p.Name] {
			return nil
		}
		prev, ok := s[p.Name]
		if !ok {
			s[p.Name] = arg
			return nil
		}
		if !Equal(prev, arg) && !IsAny(arg) && !IsAny(prev) {
			return fmt.Errorf("type parameter %s bound to both %s and %s", p.Name, prev, arg)
		}
		return nil
	case TApp:
		a, ok := matchingApp(p.Constructor, arg, bases)
		if !ok || len(a.Args) != len(p.Args) {
			return nil
		}
		for i := range p.Args {
			if err := infer(p.Args[i], a.Args[i], generic, s, bases); err != nil {
				return err
			}
		}
	case TFunc:
		a, ok := arg.(TFunc)
		if !ok || len(a.Params) != len(p.Params) {
			return nil
		}
		for i := range p.Params {
			if err := infer(p.Params[i], a.Params[i], generic, s, bases); err != nil {
				return err
			}
		}
		return infer(p.ReturnType, a.ReturnType, generic, s, bases)
	}
	return nil
}

// matchingApp finds arg itself or one of its bases applied to ctor.
func matchingApp(ctor TCon, arg Type, bases BaseResolver) (TApp, bool) {
	if a, ok := arg.(TApp); ok && a.Constructor.Name == ctor.Name {
		return a, true
	}
	for _, b := range AllBases(arg, bases) {
		if a, ok := b.(TApp); ok && a.Constructor.Name == ctor.Name {
			return a, true
		}
	}
	return TApp{}, false
}

// positionScore ranks how closely a declared parameter fits its argument:
// an exact concrete match beats a base match, which beats a bare type
// parameter, which beats Any.
func positionScore(declared, bound, arg Type, generic map[string]bool) int {
	if v, ok := declared.(TVar); ok && generic[v.Name] {
		return 1
	}
	if IsAny(declared) {
		return 0
	}
	if len(declared.FreeTypeVariables()) > 0 {
		if Equal(bound, arg) {
			return 2
		}
		return 1
	}
	if Equal(bound, arg) {
		return 3
	}
	return 2
}
