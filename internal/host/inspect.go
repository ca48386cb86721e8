package host

import (
	"fmt"
	"go/types"
	"os"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// GoModulePrefix prefixes the module name of every inspected Go package.
const GoModulePrefix = "Go."

// Inspector derives host manifests from Go packages.
type Inspector struct {
	// Dir is the directory packages are resolved from; empty means the
	// current directory.
	Dir string
}

// Inspect loads a Go package and returns the manifest of its exported
// API. Functions bind to "go:" implementation keys that nothing registers
// by default, so calls fail until an embedder provides them.
func (ins *Inspector) Inspect(pattern string) (*Manifest, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedImports,
		Dir:  ins.Dir,
		Env:  append(os.Environ(), "GOWORK=off"),
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("pattern %s matched %d packages, want 1", pattern, len(pkgs))
	}
	pkg := pkgs[0]
	var errs []string
	for _, e := range pkg.Errors {
		errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}
	log.Debugf("inspecting %s", pkg.PkgPath)
	return ManifestFromTypes(pkg.Types), nil
}

// ManifestFromTypes builds a manifest with one module for the package.
// Package-level functions become static methods of a type named like the
// module; exported named types become host types with their methods.
func ManifestFromTypes(pkg *types.Package) *Manifest {
	g := &generator{pkg: pkg, module: GoModulePrefix + ucFirst(pkg.Name())}
	mod := ModuleDecl{Name: g.module}
	funcs := TypeDecl{Name: g.module, Static: true}

	scope := pkg.Scope()
	names := scope.Names()
	sort.Strings(names)
	for _, name := range names {
		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}
		switch obj := obj.(type) {
		case *types.Func:
			sig := obj.Type().(*types.Signature)
			fd := g.function(name, sig, g.key(name))
			fd.Static = true
			funcs.Methods = append(funcs.Methods, fd)
		case *types.TypeName:
			if td, ok := g.typeDecl(obj); ok {
				mod.Types = append(mod.Types, td)
			}
		}
	}
	mod.Types = append([]TypeDecl{funcs}, mod.Types...)

	m := &Manifest{Modules: []ModuleDecl{mod}}
	m.setDefaults()
	return m
}

type generator struct {
	pkg    *types.Package
	module string
}

func (g *generator) key(parts ...string) string {
	return "go:" + g.pkg.Path() + "." + strings.Join(parts, ".")
}

func (g *generator) typeName(name string) string {
	return g.module + "." + name
}

func (g *generator) typeDecl(obj *types.TypeName) (TypeDecl, bool) {
	if obj.IsAlias() {
		return TypeDecl{}, false
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return TypeDecl{}, false
	}
	switch named.Underlying().(type) {
	case *types.Struct, *types.Interface:
	default:
		return TypeDecl{}, false
	}

	td := TypeDecl{Name: g.typeName(obj.Name())}
	if tparams := named.TypeParams(); tparams != nil {
		for i := 0; i < tparams.Len(); i++ {
			td.TypeParams = append(td.TypeParams, tparams.At(i).Obj().Name())
		}
	}

	mset := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < mset.Len(); i++ {
		method := mset.At(i).Obj().(*types.Func)
		if !method.Exported() {
			continue
		}
		sig := method.Type().(*types.Signature)
		td.Methods = append(td.Methods, g.function(method.Name(), sig, g.key(obj.Name(), method.Name())))
	}
	sort.SliceStable(td.Methods, func(i, j int) bool { return td.Methods[i].Name < td.Methods[j].Name })
	return td, true
}

func (g *generator) function(name string, sig *types.Signature, key string) FuncDecl {
	fd := FuncDecl{Name: name, Impl: key, Variadic: sig.Variadic()}
	if tparams := sig.TypeParams(); tparams != nil {
		for i := 0; i < tparams.Len(); i++ {
			fd.TypeParams = append(fd.TypeParams, tparams.At(i).Obj().Name())
		}
	}
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		t := params.At(i).Type()
		if fd.Variadic && i == params.Len()-1 {
			if s, ok := t.(*types.Slice); ok {
				t = s.Elem()
			}
		}
		fd.Params = append(fd.Params, g.scriptType(t))
	}
	fd.Returns = g.results(sig.Results())
	return fd
}

// results maps a result tuple. A trailing error is dropped; failures
// surface as runtime errors from the implementation.
func (g *generator) results(res *types.Tuple) string {
	n := res.Len()
	if n > 0 && isError(res.At(n-1).Type()) {
		n--
	}
	switch n {
	case 0:
		return "Unit"
	case 1:
		return g.scriptType(res.At(0).Type())
	}
	return "Any"
}

// scriptType renders a Go type as a script type string.
func (g *generator) scriptType(t types.Type) string {
	switch t := t.(type) {
	case *types.Basic:
		return basicType(t)
	case *types.Pointer:
		return g.scriptType(t.Elem())
	case *types.Slice:
		return g.scriptType(t.Elem()) + "[]"
	case *types.Array:
		return g.scriptType(t.Elem()) + "[]"
	case *types.TypeParam:
		return t.Obj().Name()
	case *types.Named:
		if isError(t) {
			return "String"
		}
		obj := t.Obj()
		if obj.Pkg() == nil || obj.Pkg() != g.pkg || !obj.Exported() {
			return "Any"
		}
		if _, ok := t.Underlying().(*types.Basic); ok {
			return g.scriptType(t.Underlying())
		}
		name := g.typeName(obj.Name())
		if args := t.TypeArgs(); args != nil && args.Len() > 0 {
			parts := make([]string, args.Len())
			for i := 0; i < args.Len(); i++ {
				parts[i] = g.scriptType(args.At(i))
			}
			name += "<" + strings.Join(parts, ", ") + ">"
		}
		return name
	}
	return "Any"
}

func basicType(t *types.Basic) string {
	info := t.Info()
	switch {
	case info&types.IsBoolean != 0:
		return "Bool"
	case info&types.IsInteger != 0:
		return "Int"
	case info&types.IsFloat != 0:
		return "Double"
	case info&types.IsString != 0:
		return "String"
	}
	return "Any"
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

func ucFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
