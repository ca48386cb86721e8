package symbols

import (
	"fmt"
	"strings"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

// Callable is a resolved call target that also knows the runtime object
// the emitter loads as the callee constant.
type Callable interface {
	ast.Callable
	Object() object.Object
}

// UserFunction is a function or method declared in source. The resolver
// creates it with an empty bytecode.Function; the analyzer patches the
// return type and the emitter the body.
type UserFunction struct {
	Name       string
	ParamNames []string
	Params     []typesystem.Type // nil entries until pass 1 resolves them

	// ReturnType is nil until known. Declared is set when the source
	// annotated it.
	ReturnType typesystem.Type
	Declared   bool

	Owner   *TypeDef // impl type for methods
	HasSelf bool

	Decl *ast.FunctionStatement
	Fn   *bytecode.Function
}

func NewUserFunction(decl *ast.FunctionStatement) *UserFunction {
	u := &UserFunction{Name: decl.Name.Value, Decl: decl, HasSelf: decl.HasSelf}
	for _, p := range decl.Parameters {
		u.ParamNames = append(u.ParamNames, p.Name.Value)
	}
	u.Params = make([]typesystem.Type, len(decl.Parameters))
	arity := len(decl.Parameters)
	if decl.HasSelf {
		arity++
	}
	u.Fn = &bytecode.Function{Name: u.Name, Arity: arity}
	return u
}

func (u *UserFunction) CallableName() string {
	if u.Owner != nil {
		return u.Owner.FullName + "." + u.Name
	}
	return u.Name
}

// Signature includes the receiver as the first parameter for methods.
func (u *UserFunction) Signature() typesystem.TFunc {
	params := u.Params
	if u.HasSelf && u.Owner != nil {
		params = append([]typesystem.Type{u.Owner.Type()}, u.Params...)
	}
	return typesystem.TFunc{Params: params, ReturnType: u.ReturnType}
}

func (u *UserFunction) Object() object.Object { return u.Fn }

// HostFunction is a function implemented in Go: a static function of a
// host type, an instance method (Receiver set) or an extension function.
type HostFunction struct {
	Name string
	// Key identifies the implementation; it is unique across a registry and
	// is how serialized bundles find the function again.
	Key        string
	Owner      string
	Receiver   typesystem.Type
	Params     []typesystem.Type
	ReturnType typesystem.Type
	TypeParams []string
	Variadic   bool
	Impl       object.BuiltinFunction

	builtin *object.Builtin
}

func (h *HostFunction) CallableName() string {
	if h.Owner != "" {
		return h.Owner + "." + h.Name
	}
	return h.Name
}

// Signature includes the receiver as the first parameter.
func (h *HostFunction) Signature() typesystem.TFunc {
	params := h.Params
	if h.Receiver != nil {
		params = append([]typesystem.Type{h.Receiver}, h.Params...)
	}
	return typesystem.TFunc{Params: params, ReturnType: h.ReturnType, IsVariadic: h.Variadic}
}

func (h *HostFunction) Object() object.Object {
	if h.builtin == nil {
		impl := h.Impl
		if impl == nil {
			key := h.Key
			impl = func(args ...object.Object) (object.Object, error) {
				return nil, fmt.Errorf("host function %s has no implementation", key)
			}
		}
		h.builtin = &object.Builtin{Name: h.Key, Fn: impl}
	}
	return h.builtin
}

// String renders the declaration for diagnostics: Max<T>(T, T): T.
func (h *HostFunction) String() string {
	var sb strings.Builder
	sb.WriteString(h.CallableName())
	if len(h.TypeParams) > 0 {
		sb.WriteString("<" + strings.Join(h.TypeParams, ", ") + ">")
	}
	sb.WriteString(typeList(h.Signature().Params, h.Variadic))
	if h.ReturnType != nil {
		sb.WriteString(": " + h.ReturnType.String())
	}
	return sb.String()
}

// BuiltinFunction is one of the fixed library functions occupying the
// lowest global slots.
type BuiltinFunction struct {
	Name       string
	Params     []typesystem.Type
	ReturnType typesystem.Type
	Variadic   bool
	Impl       object.BuiltinFunction

	builtin *object.Builtin
}

func (b *BuiltinFunction) CallableName() string { return b.Name }

func (b *BuiltinFunction) Signature() typesystem.TFunc {
	return typesystem.TFunc{Params: b.Params, ReturnType: b.ReturnType, IsVariadic: b.Variadic}
}

func (b *BuiltinFunction) Object() object.Object {
	if b.builtin == nil {
		b.builtin = &object.Builtin{Name: b.Name, Fn: b.Impl}
	}
	return b.builtin
}

// Constructor builds one union variant.
type Constructor struct {
	Def     *TypeDef
	Variant *Variant
	// Binding is the global slot holding the constructor (or the
	// singleton, for nullary variants).
	Binding *ast.Binding

	ctor      *object.Constructor
	singleton *object.Instance
}

func (c *Constructor) CallableName() string { return c.Variant.Tag }

// Signature takes the variant's fields and returns the union type,
// generic over the union's type parameters.
func (c *Constructor) Signature() typesystem.TFunc {
	params := make([]typesystem.Type, len(c.Variant.Fields))
	for i, f := range c.Variant.Fields {
		params[i] = f.Type
	}
	return typesystem.TFunc{Params: params, ReturnType: c.Def.Type()}
}

// TypeParams are the union's type parameters.
func (c *Constructor) TypeParams() []string { return c.Def.TypeParams }

// Nullary reports whether the variant has no fields; its binding then
// holds the single instance instead of the constructor.
func (c *Constructor) Nullary() bool { return len(c.Variant.Fields) == 0 }

// Tag is the runtime tag tested by CHECK_TYPE: Shape.Circle.
func (c *Constructor) Tag() string { return c.Def.FullName + "." + c.Variant.Tag }

func (c *Constructor) FieldNames() []string {
	names := make([]string, len(c.Variant.Fields))
	for i, f := range c.Variant.Fields {
		names[i] = f.Name
	}
	return names
}

func (c *Constructor) Object() object.Object {
	if c.Nullary() {
		if c.singleton == nil {
			c.singleton = &object.Instance{TypeName: c.Def.FullName, Tag: c.Variant.Tag}
		}
		return c.singleton
	}
	if c.ctor == nil {
		c.ctor = &object.Constructor{TypeName: c.Def.FullName, Tag: c.Variant.Tag, FieldNames: c.FieldNames()}
	}
	return c.ctor
}

func typeList(types []typesystem.Type, variadic bool) string {
	parts := make([]string, len(types))
	for i, t := range types {
		if t == nil {
			parts[i] = "?"
		} else {
			parts[i] = t.String()
		}
	}
	if variadic && len(parts) > 0 {
		parts[len(parts)-1] += "..."
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// TypeList renders argument types for diagnostics: (Int, String).
func TypeList(types []typesystem.Type) string { return typeList(types, false) }
