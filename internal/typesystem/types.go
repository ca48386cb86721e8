package typesystem

import (
	"sort"
	"strings"
)

// Type is the interface for all types in our system.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// TVar represents a type variable (e.g. a generic parameter 'T' or an
// inference placeholder 't3').
type TVar struct {
	Name string
}

func (t TVar) String() string { return t.Name }

func (t TVar) Apply(s Subst) Type {
	return applyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TVar) FreeTypeVariables() []TVar { return []TVar{t} }

// TCon represents a nominal type: a primitive, a user record or union, or a
// host type. Name is the fully-qualified name; ID is the stable identifier
// the program's type table assigned on registration.
type TCon struct {
	Name string
	ID   int
}

func (t TCon) String() string { return t.Name }

func (t TCon) Apply(s Subst) Type { return t }

func (t TCon) FreeTypeVariables() []TVar { return nil }

// SimpleName returns the last dotted segment of the type name.
func (t TCon) SimpleName() string {
	if i := strings.LastIndex(t.Name, "."); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

// TApp represents a type application (e.g. Array<Int>, Option<String>).
type TApp struct {
	Constructor TCon
	Args        []Type
}

func (t TApp) String() string {
	if t.Constructor.Name == arrayName && len(t.Args) == 1 {
		return t.Args[0].String() + "[]"
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = typeString(a)
	}
	return t.Constructor.Name + "<" + strings.Join(parts, ", ") + ">"
}

func (t TApp) Apply(s Subst) Type {
	return applyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TApp) FreeTypeVariables() []TVar {
	var vars []TVar
	for _, a := range t.Args {
		vars = append(vars, a.FreeTypeVariables()...)
	}
	return uniqueVars(vars)
}

// TFunc represents a function type.
type TFunc struct {
	Params     []Type
	ReturnType Type
	IsVariadic bool // Last parameter accepts any number of arguments
}

func (t TFunc) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = typeString(p)
		if t.IsVariadic && i == len(t.Params)-1 {
			parts[i] = "..." + parts[i]
		}
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + typeString(t.ReturnType)
}

func (t TFunc) Apply(s Subst) Type {
	return applyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TFunc) FreeTypeVariables() []TVar {
	var vars []TVar
	for _, p := range t.Params {
		vars = append(vars, p.FreeTypeVariables()...)
	}
	if t.ReturnType != nil {
		vars = append(vars, t.ReturnType.FreeTypeVariables()...)
	}
	return uniqueVars(vars)
}

// TType is the type of an expression that names a type, e.g. the receiver
// of a static call `Math.Sqrt(x)`.
type TType struct {
	Type Type
}

func (t TType) String() string { return "Type<" + typeString(t.Type) + ">" }

func (t TType) Apply(s Subst) Type {
	return TType{Type: applyWithCycleCheck(t.Type, s, make(map[string]bool))}
}

func (t TType) FreeTypeVariables() []TVar { return t.Type.FreeTypeVariables() }

func typeString(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

func applyWithCycleCheck(t Type, s Subst, visited map[string]bool) Type {
	if t == nil {
		return nil
	}

	switch typ := t.(type) {
	case TVar:
		if visited[typ.Name] {
			return typ
		}
		if replacement, ok := s[typ.Name]; ok {
			if tv, ok := replacement.(TVar); ok && tv.Name == typ.Name {
				return typ
			}
			visited[typ.Name] = true
			res := applyWithCycleCheck(replacement, s, visited)
			delete(visited, typ.Name)
			return res
		}
		return typ

	case TApp:
		newArgs := make([]Type, len(typ.Args))
		for i, arg := range typ.Args {
			newArgs[i] = applyWithCycleCheck(arg, s, visited)
		}
		return TApp{Constructor: typ.Constructor, Args: newArgs}

	case TFunc:
		newParams := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			newParams[i] = applyWithCycleCheck(p, s, visited)
		}
		return TFunc{
			Params:     newParams,
			ReturnType: applyWithCycleCheck(typ.ReturnType, s, visited),
			IsVariadic: typ.IsVariadic,
		}

	case TType:
		return TType{Type: applyWithCycleCheck(typ.Type, s, visited)}

	default:
		return t
	}
}

func uniqueVars(vars []TVar) []TVar {
	if len(vars) < 2 {
		return vars
	}
	seen := make(map[string]bool, len(vars))
	out := vars[:0:0]
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v)
		}
	}
	return out
}

// Subst maps type variable names to types.
type Subst map[string]Type

func (s Subst) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " := " + typeString(s[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
