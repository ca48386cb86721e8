package host

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/parser"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/typesystem"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jitzu.host")

// Registry holds module declarations and the Go implementations their
// functions are bound to. It satisfies symbols.ModuleLoader; every load
// produces fresh type table entries so one registry can serve several
// programs.
type Registry struct {
	modules map[string]ModuleDecl
	impls   map[string]object.BuiltinFunction
	stubs   map[string]*object.Builtin
	out     io.Writer
}

func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]ModuleDecl),
		impls:   make(map[string]object.BuiltinFunction),
		stubs:   make(map[string]*object.Builtin),
		out:     os.Stdout,
	}
}

// Register binds an implementation key to a Go function.
func (r *Registry) Register(key string, fn object.BuiltinFunction) {
	r.impls[key] = fn
}

// AddManifest makes the manifest's modules loadable.
func (r *Registry) AddManifest(m *Manifest) error {
	for _, mod := range m.Modules {
		if _, exists := r.modules[mod.Name]; exists {
			return fmt.Errorf("module %s is already registered", mod.Name)
		}
	}
	for _, mod := range m.Modules {
		r.modules[mod.Name] = mod
	}
	log.Debugf("registered modules %s", strings.Join(m.ModuleNames(), ", "))
	return nil
}

// AddManifestFile loads a manifest file into the registry.
func (r *Registry) AddManifestFile(path string) error {
	m, err := LoadManifest(path)
	if err != nil {
		return err
	}
	return r.AddManifest(m)
}

// Modules returns the registered module names, sorted.
func (r *Registry) Modules() []string {
	names := make([]string, 0, len(r.modules))
	for n := range r.modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves an implementation key for bundle linking. Declared keys
// without an implementation resolve to a failing stub.
func (r *Registry) Lookup(key string) (*object.Builtin, bool) {
	if fn, ok := r.impls[key]; ok {
		return &object.Builtin{Name: key, Fn: fn}, true
	}
	if !r.declares(key) {
		return nil, false
	}
	if stub, ok := r.stubs[key]; ok {
		return stub, true
	}
	stub := &object.Builtin{Name: key, Fn: missingImpl(key)}
	r.stubs[key] = stub
	return stub, true
}

func (r *Registry) declares(key string) bool {
	for _, mod := range r.modules {
		for _, t := range mod.Types {
			for _, fn := range t.Methods {
				if fn.Impl == key {
					return true
				}
			}
		}
		for _, set := range mod.Methods {
			for _, fn := range set.Methods {
				if fn.Impl == key {
					return true
				}
			}
		}
		for _, fn := range mod.Extensions {
			if fn.Impl == key {
				return true
			}
		}
	}
	return false
}

func missingImpl(key string) object.BuiltinFunction {
	return func(args ...object.Object) (object.Object, error) {
		return nil, fmt.Errorf("host function %s has no implementation", key)
	}
}

// LoadModule materializes a module for one program.
func (r *Registry) LoadModule(name string) (*symbols.HostModule, error) {
	decl, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("unknown module %s", name)
	}
	mod := &symbols.HostModule{Name: decl.Name, Methods: make(map[string][]*symbols.HostFunction)}

	for _, td := range decl.Types {
		def := symbols.NewTypeDef(td.Name, symbols.HostType)
		def.TypeParams = td.TypeParams
		def.Static = td.Static
		if len(td.TypeParams) > 0 {
			def.Kind = symbols.GenericType
		}
		params := paramSet(td.TypeParams)
		for _, b := range td.Bases {
			bt, err := convertTypeString(b, params)
			if err != nil {
				return nil, fmt.Errorf("module %s: type %s: base %s: %w", name, td.Name, b, err)
			}
			def.Bases = append(def.Bases, bt)
		}
		for _, fd := range td.Methods {
			fn, err := r.function(fd, td.Name, def.Type(), td.TypeParams)
			if err != nil {
				return nil, fmt.Errorf("module %s: %w", name, err)
			}
			def.AddHostMethod(fn)
		}
		mod.Types = append(mod.Types, def)
	}

	for _, set := range decl.Methods {
		receiverText := set.Type
		if len(set.TypeParams) > 0 {
			receiverText += "<" + strings.Join(set.TypeParams, ", ") + ">"
		}
		receiver, err := convertTypeString(receiverText, paramSet(set.TypeParams))
		if err != nil {
			return nil, fmt.Errorf("module %s: methods of %s: %w", name, set.Type, err)
		}
		for _, fd := range set.Methods {
			fn, err := r.function(fd, set.Type, receiver, set.TypeParams)
			if err != nil {
				return nil, fmt.Errorf("module %s: %w", name, err)
			}
			mod.Methods[set.Type] = append(mod.Methods[set.Type], fn)
		}
	}

	for _, fd := range decl.Extensions {
		fd.Static = true
		fn, err := r.function(fd, decl.Name, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", name, err)
		}
		mod.Extensions = append(mod.Extensions, fn)
	}
	return mod, nil
}

// function builds one host function. Instance methods get receiver as
// their first parameter and inherit the owner's type parameters.
func (r *Registry) function(fd FuncDecl, owner string, receiver typesystem.Type, ownerParams []string) (*symbols.HostFunction, error) {
	fn := &symbols.HostFunction{
		Name:     fd.Name,
		Key:      fd.Impl,
		Owner:    owner,
		Variadic: fd.Variadic,
		Impl:     r.impls[fd.Impl],
	}
	if !fd.Static {
		fn.Receiver = receiver
		fn.TypeParams = append(fn.TypeParams, ownerParams...)
	}
	fn.TypeParams = append(fn.TypeParams, fd.TypeParams...)
	params := paramSet(fn.TypeParams)
	for _, p := range fd.Params {
		t, err := convertTypeString(p, params)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: parameter %s: %w", owner, fd.Name, p, err)
		}
		fn.Params = append(fn.Params, t)
	}
	ret, err := convertTypeString(fd.Returns, params)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: return type %s: %w", owner, fd.Name, fd.Returns, err)
	}
	fn.ReturnType = ret
	if fn.Impl == nil {
		log.Debugf("%s has no implementation for key %s", fn.CallableName(), fd.Impl)
	}
	return fn, nil
}

func paramSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

var builtinTypes = map[string]typesystem.TCon{
	config.IntTypeName:    typesystem.Int,
	config.DoubleTypeName: typesystem.Double,
	config.StringTypeName: typesystem.String,
	config.BoolTypeName:   typesystem.Bool,
	config.CharTypeName:   typesystem.Char,
	config.UnitTypeName:   typesystem.Unit,
	config.AnyTypeName:    typesystem.Any,
	config.ArrayTypeName:  typesystem.Array,
	config.OptionTypeName: typesystem.Option,
	config.ResultTypeName: typesystem.Result,
}

func convertTypeString(src string, params map[string]bool) (typesystem.Type, error) {
	t, err := parser.ParseType(src)
	if err != nil {
		return nil, err
	}
	return convertType(t, params), nil
}

// convertType maps a parsed type to the type system. Names other than type
// parameters and built-in types are taken as fully-qualified host types.
func convertType(t ast.Type, params map[string]bool) typesystem.Type {
	switch tt := t.(type) {
	case *ast.ArrayType:
		return typesystem.ArrayOf(convertType(tt.Element, params))
	case *ast.NamedType:
		name := tt.Name()
		if len(tt.Args) == 0 && params[name] {
			return typesystem.TVar{Name: name}
		}
		con, ok := builtinTypes[name]
		if !ok {
			con = typesystem.TCon{Name: name}
		}
		if len(tt.Args) == 0 {
			return con
		}
		args := make([]typesystem.Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = convertType(a, params)
		}
		return typesystem.TApp{Constructor: con, Args: args}
	}
	return typesystem.Any
}
