package symbols

import (
	"fmt"
	"sort"
	"strings"

	"github.com/simon-curtis/jitzu/internal/typesystem"
)

// HostModule is the unit `use` loads: host types with their methods,
// methods attached to types that already exist (String, Array) and
// extension functions.
type HostModule struct {
	Name       string
	Types      []*TypeDef
	Methods    map[string][]*HostFunction // by full name of an existing type
	Extensions []*HostFunction
}

// ModuleLoader produces fresh host modules by name.
type ModuleLoader interface {
	LoadModule(name string) (*HostModule, error)
}

// AmbiguousTypeError reports a simple type name matching several types.
type AmbiguousTypeError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousTypeError) Error() string {
	return fmt.Sprintf("type name %s is ambiguous: %s", e.Name, strings.Join(e.Candidates, ", "))
}

// UseModule loads a host module into the program. Loading a module twice
// is a no-op.
func (p *Program) UseModule(name string) error {
	if p.modules[name] {
		return nil
	}
	if p.loader == nil {
		return fmt.Errorf("unknown module %s", name)
	}
	mod, err := p.loader.LoadModule(name)
	if err != nil {
		return err
	}
	for _, def := range mod.Types {
		def.Module = mod.Name
		if err := p.AddType(def); err != nil {
			return fmt.Errorf("module %s: %w", name, err)
		}
		for _, list := range def.HostMethods {
			for _, fn := range list {
				p.registerHostKey(fn)
			}
		}
	}
	typeNames := make([]string, 0, len(mod.Methods))
	for typeName := range mod.Methods {
		typeNames = append(typeNames, typeName)
	}
	sort.Strings(typeNames)
	for _, typeName := range typeNames {
		def, ok := p.types[typeName]
		if !ok {
			return fmt.Errorf("module %s: methods for unknown type %s", name, typeName)
		}
		for _, fn := range mod.Methods[typeName] {
			p.addHostMethod(def, fn)
		}
	}
	for _, fn := range mod.Extensions {
		p.registerHostKey(fn)
		p.extensions = append(p.extensions, fn)
		p.onRollback(func() { p.removeExtension(fn) })
	}
	p.modules[name] = true
	p.onRollback(func() { delete(p.modules, name) })
	log.Debugf("loaded host module %s: %d types, %d extensions", name, len(mod.Types), len(mod.Extensions))
	return nil
}

func (p *Program) addHostMethod(def *TypeDef, fn *HostFunction) {
	def.AddHostMethod(fn)
	p.registerHostKey(fn)
	p.onRollback(func() {
		key := strings.ToLower(fn.Name)
		list := def.HostMethods[key]
		for i, m := range list {
			if m == fn {
				def.HostMethods[key] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	})
}

func (p *Program) registerHostKey(fn *HostFunction) {
	if _, exists := p.hostByKey[fn.Key]; exists {
		return
	}
	p.hostByKey[fn.Key] = fn
	p.onRollback(func() { delete(p.hostByKey, fn.Key) })
}

func (p *Program) removeExtension(fn *HostFunction) {
	for i, e := range p.extensions {
		if e == fn {
			p.extensions = append(p.extensions[:i:i], p.extensions[i+1:]...)
			return
		}
	}
}

// ModuleLoaded reports whether `use name` has run.
func (p *Program) ModuleLoaded(name string) bool { return p.modules[name] }

// Modules returns the loaded module names, sorted.
func (p *Program) Modules() []string {
	names := make([]string, 0, len(p.modules))
	for n := range p.modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupType finds a type by its fully-qualified name.
func (p *Program) LookupType(fullName string) (*TypeDef, bool) {
	def, ok := p.types[fullName]
	return def, ok
}

// TypesNamed returns every type whose simple name is name.
func (p *Program) TypesNamed(name string) []*TypeDef {
	return p.typesByName[name]
}

// ResolveTypeName resolves a qualified or simple type name. A simple name
// matching more than one type is an *AmbiguousTypeError. The bool result is
// false when nothing matches.
func (p *Program) ResolveTypeName(name string) (*TypeDef, bool, error) {
	if strings.Contains(name, ".") {
		def, ok := p.types[name]
		return def, ok, nil
	}
	candidates := p.typesByName[name]
	switch len(candidates) {
	case 0:
		return nil, false, nil
	case 1:
		return candidates[0], true, nil
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.FullName
	}
	sort.Strings(names)
	return nil, true, &AmbiguousTypeError{Name: name, Candidates: names}
}

// DefOf returns the table entry of a nominal type or type application.
func (p *Program) DefOf(t typesystem.Type) (*TypeDef, bool) {
	con, ok := typesystem.Constructor(t)
	if !ok {
		return nil, false
	}
	if con.ID != 0 {
		if def, ok := p.typesByID[con.ID]; ok {
			return def, true
		}
	}
	def, ok := p.types[con.Name]
	return def, ok
}

// Bases returns the declared bases of t with t's type arguments
// substituted. It is the program's typesystem.BaseResolver.
func (p *Program) Bases(t typesystem.Type) []typesystem.Type {
	def, ok := p.DefOf(t)
	if !ok || len(def.Bases) == 0 {
		return nil
	}
	var args []typesystem.Type
	if app, ok := t.(typesystem.TApp); ok {
		args = app.Args
	}
	out := make([]typesystem.Type, len(def.Bases))
	for i, b := range def.Bases {
		out[i] = def.instantiate(b, args)
	}
	return out
}

// FieldType returns the type of a record field or union payload field of t.
func (p *Program) FieldType(t typesystem.Type, name string) (typesystem.Type, bool) {
	def, ok := p.DefOf(t)
	if !ok {
		return nil, false
	}
	var args []typesystem.Type
	if app, ok := t.(typesystem.TApp); ok {
		args = app.Args
	}
	if f, _, ok := def.Field(name); ok {
		return def.instantiate(f.Type, args), true
	}
	return nil, false
}

// Instantiate substitutes the arguments of t into a type written in terms
// of def's parameters.
func (p *Program) Instantiate(def *TypeDef, t typesystem.Type, of typesystem.Type) typesystem.Type {
	var args []typesystem.Type
	if app, ok := of.(typesystem.TApp); ok {
		args = app.Args
	}
	return def.instantiate(t, args)
}

// Extensions returns the host extension functions named name, ignoring case.
func (p *Program) Extensions(name string) []*HostFunction {
	var out []*HostFunction
	for _, e := range p.extensions {
		if strings.EqualFold(e.Name, name) {
			out = append(out, e)
		}
	}
	return out
}
