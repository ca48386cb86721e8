package typesystem

// BaseResolver returns the declared base types (interfaces, generic bases)
// of a nominal type, with the type's own arguments substituted in. It is
// supplied by the program's type table.
type BaseResolver func(t Type) []Type

// Equal reports whether two types are structurally identical.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case TVar:
		y, ok := b.(TVar)
		return ok && x.Name == y.Name
	case TCon:
		y, ok := b.(TCon)
		return ok && x.Name == y.Name
	case TApp:
		y, ok := b.(TApp)
		if !ok || x.Constructor.Name != y.Constructor.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case TFunc:
		y, ok := b.(TFunc)
		if !ok || len(x.Params) != len(y.Params) || x.IsVariadic != y.IsVariadic {
			return false
		}
		for i := range x.Params {
			if !Equal(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return Equal(x.ReturnType, y.ReturnType)
	case TType:
		y, ok := b.(TType)
		return ok && Equal(x.Type, y.Type)
	}
	return false
}

// Assignable reports whether a value of type value may be stored where
// target is expected. Any is accepted in both directions; otherwise the
// types must be equal or target must be one of value's (transitive) bases.
func Assignable(target, value Type, bases BaseResolver) bool {
	if target == nil || value == nil {
		return false
	}
	if IsAny(target) || IsAny(value) {
		return true
	}
	if Equal(target, value) {
		return true
	}
	if ta, ok := target.(TApp); ok {
		if va, ok := value.(TApp); ok && ta.Constructor.Name == va.Constructor.Name && len(ta.Args) == len(va.Args) {
			// Any[] accepts Int[] and friends; element types are otherwise invariant.
			all := true
			for i := range ta.Args {
				if !IsAny(ta.Args[i]) && !IsAny(va.Args[i]) && !Equal(ta.Args[i], va.Args[i]) {
					all = false
					break
				}
			}
			if all {
				return true
			}
		}
	}
	if bases == nil {
		return false
	}
	for _, b := range AllBases(value, bases) {
		if Equal(target, b) {
			return true
		}
	}
	return false
}

// AllBases returns the transitive bases of t in breadth-first order.
func AllBases(t Type, bases BaseResolver) []Type {
	if bases == nil {
		return nil
	}
	var out []Type
	queue := bases(t)
	seen := make(map[string]bool)
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		key := b.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
		queue = append(queue, bases(b)...)
	}
	return out
}
