package symbols

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/token"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

func (p *Program) initBuiltins() {
	for _, con := range typesystem.Primitives {
		def := newTypeDef(con.Name, PrimitiveType)
		def.ID = con.ID
		p.mustAddType(def)
	}

	array := newTypeDef(config.ArrayTypeName, GenericType)
	array.ID = typesystem.Array.ID
	array.TypeParams = []string{"T"}
	p.mustAddType(array)

	t := typesystem.TVar{Name: "T"}
	e := typesystem.TVar{Name: "E"}

	option := newTypeDef(config.OptionTypeName, UnionType)
	option.ID = typesystem.Option.ID
	option.TypeParams = []string{"T"}
	option.Variants = []*Variant{
		{Tag: config.SomeCtorName, Fields: []Field{{Name: "value", Type: t}}},
		{Tag: config.NoneCtorName},
	}
	p.mustAddType(option)

	result := newTypeDef(config.ResultTypeName, UnionType)
	result.ID = typesystem.Result.ID
	result.TypeParams = []string{"T", "E"}
	result.Variants = []*Variant{
		{Tag: config.OkCtorName, Fields: []Field{{Name: "value", Type: t}}},
		{Tag: config.ErrCtorName, Fields: []Field{{Name: "error", Type: e}}},
	}
	p.mustAddType(result)

	anyT := typesystem.Any
	for _, b := range []*BuiltinFunction{
		{Name: config.PrintFuncName, Params: []typesystem.Type{anyT}, ReturnType: typesystem.Unit, Variadic: true, Impl: p.builtinPrint},
		{Name: config.ConcatFuncName, Params: []typesystem.Type{anyT}, ReturnType: typesystem.String, Variadic: true, Impl: builtinConcat},
		{Name: config.ToStringFuncName, Params: []typesystem.Type{anyT}, ReturnType: typesystem.String, Impl: builtinToString},
		{Name: config.LenFuncName, Params: []typesystem.Type{anyT}, ReturnType: typesystem.Int, Impl: builtinLen},
		{Name: config.PanicFuncName, Params: []typesystem.Type{typesystem.String}, ReturnType: typesystem.Unit, Impl: builtinPanic},
	} {
		p.builtins = append(p.builtins, b)
		p.builtinByID[b.Name] = b
		binding := p.DeclareGlobal(b.Name, token.Token{})
		binding.Callable = b
		binding.Type = b.Signature()
		p.AddInit(binding)
	}

	for _, b := range []*BuiltinFunction{
		{Name: config.AdapterEquals, Params: []typesystem.Type{anyT, anyT}, ReturnType: typesystem.Bool, Impl: builtinEquals},
		{Name: config.AdapterTypeName, Params: []typesystem.Type{anyT}, ReturnType: typesystem.String, Impl: builtinTypeName},
	} {
		p.adapters[b.Name] = b
		p.builtinByID[b.Name] = b
	}
	p.adapters[config.AdapterToString] = p.builtinByID[config.ToStringFuncName]

	for _, def := range []*TypeDef{option, result} {
		p.bindVariants(def, token.Token{})
	}
	option.Variants[1].Ctor.singleton = object.NONE
}

func (p *Program) mustAddType(def *TypeDef) {
	if err := p.AddType(def); err != nil {
		panic(err)
	}
}

// bindVariants creates the constructors of a union and binds each variant
// name as a global.
func (p *Program) bindVariants(def *TypeDef, tok token.Token) []*ast.Binding {
	var bindings []*ast.Binding
	for _, v := range def.Variants {
		v.Ctor = &Constructor{Def: def, Variant: v}
		b := p.DeclareGlobal(v.Tag, tok)
		b.Callable = v.Ctor
		v.Ctor.Binding = b
		if v.Ctor.Nullary() {
			b.Type = def.Type()
		} else {
			b.Type = v.Ctor.Signature()
		}
		p.AddInit(b)
		bindings = append(bindings, b)
	}
	return bindings
}

// BindVariants registers a user union's constructors as globals.
func (p *Program) BindVariants(def *TypeDef, tok token.Token) []*ast.Binding {
	return p.bindVariants(def, tok)
}

// Adapter returns the function behind an adapter method (toString, equals,
// typeName). Adapters take the receiver as their first argument.
func (p *Program) Adapter(name string) (*BuiltinFunction, bool) {
	b, ok := p.adapters[name]
	return b, ok
}

// Builtin returns a builtin or adapter function by name.
func (p *Program) Builtin(name string) (*BuiltinFunction, bool) {
	b, ok := p.builtinByID[name]
	return b, ok
}

// Builtins returns the builtin functions in slot order.
func (p *Program) Builtins() []*BuiltinFunction { return p.builtins }

// LinkBuiltin finds a builtin or loaded host function by its runtime name.
func (p *Program) LinkBuiltin(name string) (*object.Builtin, bool) {
	if b, ok := p.builtinByID[name]; ok {
		return b.Object().(*object.Builtin), true
	}
	if h, ok := p.hostByKey[name]; ok {
		return h.Object().(*object.Builtin), true
	}
	return nil, false
}

func (p *Program) builtinPrint(args ...object.Object) (object.Object, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = object.ToText(a)
	}
	if _, err := fmt.Fprintln(p.output, strings.Join(parts, " ")); err != nil {
		return nil, err
	}
	return object.UNIT, nil
}

func builtinConcat(args ...object.Object) (object.Object, error) {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(object.ToText(a))
	}
	return &object.String{Value: sb.String()}, nil
}

func builtinToString(args ...object.Object) (object.Object, error) {
	return &object.String{Value: object.ToText(args[0])}, nil
}

func builtinEquals(args ...object.Object) (object.Object, error) {
	return object.NativeBool(object.Equals(args[0], args[1])), nil
}

func builtinTypeName(args ...object.Object) (object.Object, error) {
	return &object.String{Value: args[0].RuntimeType().String()}, nil
}

func builtinLen(args ...object.Object) (object.Object, error) {
	switch v := args[0].(type) {
	case *object.String:
		return &object.Integer{Value: int64(utf8.RuneCountInString(v.Value))}, nil
	case *object.Array:
		return &object.Integer{Value: int64(len(v.Elements))}, nil
	}
	return nil, fmt.Errorf("len: unsupported argument %s", args[0].Type())
}

func builtinPanic(args ...object.Object) (object.Object, error) {
	return nil, fmt.Errorf("panic: %s", object.ToText(args[0]))
}
