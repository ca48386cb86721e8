// Package host implements the static host registry: the built-in System
// library, host modules declared in YAML manifests, and manifest
// generation from Go packages.
//
// A manifest declares modules. Each module carries host types (with their
// type parameters, bases and methods), methods attached to types that
// already exist, and extension functions. Every function names an
// implementation key; keys without a registered Go implementation bind a
// stub that fails when called.
package host

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the top-level document of a host manifest file.
type Manifest struct {
	Modules []ModuleDecl `yaml:"modules"`
}

// ModuleDecl declares one module loadable with `use`.
type ModuleDecl struct {
	// Name is the dotted module name (e.g. "System.Collections").
	Name string `yaml:"name"`

	// Types are host types, named by full name.
	Types []TypeDecl `yaml:"types,omitempty"`

	// Methods attach instance methods to types that exist before the
	// module loads (e.g. String, Array).
	Methods []MethodSet `yaml:"methods,omitempty"`

	// Extensions are free functions usable as methods of their first
	// parameter's type.
	Extensions []FuncDecl `yaml:"extensions,omitempty"`
}

// TypeDecl declares a host type.
type TypeDecl struct {
	// Name is the fully-qualified type name (e.g. "System.Collections.List").
	Name string `yaml:"name"`

	// TypeParams names the generic parameters (e.g. [T]).
	TypeParams []string `yaml:"type_params,omitempty"`

	// Bases are interfaces and generic bases, written with TypeParams
	// (e.g. "System.Collections.IEnumerable<T>").
	Bases []string `yaml:"bases,omitempty"`

	// Static types only hold static functions.
	Static bool `yaml:"static,omitempty"`

	Methods []FuncDecl `yaml:"methods,omitempty"`
}

// MethodSet attaches methods to an existing type.
type MethodSet struct {
	Type       string     `yaml:"type"`
	TypeParams []string   `yaml:"type_params,omitempty"`
	Methods    []FuncDecl `yaml:"methods"`
}

// FuncDecl declares a host function or method.
type FuncDecl struct {
	Name string `yaml:"name"`

	// TypeParams are the function's own generic parameters.
	TypeParams []string `yaml:"type_params,omitempty"`

	Params  []string `yaml:"params,omitempty"`
	Returns string   `yaml:"returns,omitempty"`

	// Static methods take no receiver.
	Static   bool `yaml:"static,omitempty"`
	Variadic bool `yaml:"variadic,omitempty"`

	// Impl is the implementation key.
	Impl string `yaml:"impl"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseManifest(data, path)
}

// ParseManifest parses manifest content from bytes.
// The path argument is used only for error messages.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.validate(path); err != nil {
		return nil, err
	}
	m.setDefaults()
	return &m, nil
}

// Marshal renders the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}

// validate checks the manifest for semantic errors.
func (m *Manifest) validate(path string) error {
	if len(m.Modules) == 0 {
		return fmt.Errorf("%s: no modules defined", path)
	}
	seenModules := make(map[string]bool)
	seenTypes := make(map[string]string)
	for i, mod := range m.Modules {
		if mod.Name == "" {
			return fmt.Errorf("%s: modules[%d]: name is required", path, i)
		}
		if seenModules[mod.Name] {
			return fmt.Errorf("%s: modules[%d]: duplicate module %s", path, i, mod.Name)
		}
		seenModules[mod.Name] = true

		for j, t := range mod.Types {
			where := fmt.Sprintf("%s: modules[%d].types[%d]", path, i, j)
			if t.Name == "" {
				return fmt.Errorf("%s: name is required", where)
			}
			if prev, ok := seenTypes[t.Name]; ok {
				return fmt.Errorf("%s (%s): type already declared by module %s", where, t.Name, prev)
			}
			seenTypes[t.Name] = mod.Name
			for k, fn := range t.Methods {
				if err := fn.validate(fmt.Sprintf("%s.methods[%d]", where, k)); err != nil {
					return err
				}
				if t.Static && !fn.Static {
					return fmt.Errorf("%s.methods[%d] (%s): static type %s cannot have instance methods", where, k, fn.Name, t.Name)
				}
			}
		}
		for j, set := range mod.Methods {
			where := fmt.Sprintf("%s: modules[%d].methods[%d]", path, i, j)
			if set.Type == "" {
				return fmt.Errorf("%s: type is required", where)
			}
			for k, fn := range set.Methods {
				if err := fn.validate(fmt.Sprintf("%s.methods[%d]", where, k)); err != nil {
					return err
				}
			}
		}
		for j, fn := range mod.Extensions {
			where := fmt.Sprintf("%s: modules[%d].extensions[%d]", path, i, j)
			if err := fn.validate(where); err != nil {
				return err
			}
			if len(fn.Params) == 0 {
				return fmt.Errorf("%s (%s): extension functions need a receiver parameter", where, fn.Name)
			}
		}
	}
	return nil
}

func (fn *FuncDecl) validate(where string) error {
	if fn.Name == "" {
		return fmt.Errorf("%s: name is required", where)
	}
	if fn.Variadic && len(fn.Params) == 0 {
		return fmt.Errorf("%s (%s): variadic functions need at least one parameter", where, fn.Name)
	}
	seen := make(map[string]bool)
	for _, tp := range fn.TypeParams {
		if seen[tp] {
			return fmt.Errorf("%s (%s): duplicate type parameter %s", where, fn.Name, tp)
		}
		seen[tp] = true
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (m *Manifest) setDefaults() {
	for i := range m.Modules {
		mod := &m.Modules[i]
		for j := range mod.Types {
			t := &mod.Types[j]
			for k := range t.Methods {
				t.Methods[k].setDefaults(t.Name)
			}
		}
		for j := range mod.Methods {
			set := &mod.Methods[j]
			for k := range set.Methods {
				set.Methods[k].setDefaults(set.Type)
			}
		}
		for j := range mod.Extensions {
			mod.Extensions[j].setDefaults(mod.Name)
		}
	}
}

func (fn *FuncDecl) setDefaults(owner string) {
	if fn.Returns == "" {
		fn.Returns = "Unit"
	}
	if fn.Impl == "" {
		fn.Impl = owner + "." + fn.Name + "(" + strings.Join(fn.Params, ",") + ")"
	}
}

// ModuleNames lists the modules the manifest declares.
func (m *Manifest) ModuleNames() []string {
	names := make([]string, len(m.Modules))
	for i, mod := range m.Modules {
		names[i] = mod.Name
	}
	return names
}
