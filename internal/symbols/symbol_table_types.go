package symbols

import (
	"strings"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

type TypeKind int

const (
	PrimitiveType TypeKind = iota
	RecordType
	UnionType
	HostType
	GenericType
)

func (k TypeKind) String() string {
	switch k {
	case PrimitiveType:
		return "primitive"
	case RecordType:
		return "record"
	case UnionType:
		return "union"
	case HostType:
		return "host"
	case GenericType:
		return "generic"
	}
	return "?"
}

type Field struct {
	Name string
	Type typesystem.Type
}

// Variant is one case of a union. Fields are in declaration order.
type Variant struct {
	Tag    string
	Fields []Field
	Ctor   *Constructor
}

// TypeDef is one entry of the program's type table. Fields and variants
// are fixed when the type is created.
type TypeDef struct {
	ID       int
	FullName string
	Name     string // last segment of FullName
	Module   string // host module the type came from, "" for user and built-in types
	Kind     TypeKind

	TypeParams []string
	Fields     []Field
	Variants   []*Variant

	// Methods holds impl methods by name; HostMethods holds host methods
	// keyed by lower-cased name (host lookup is case-insensitive).
	Methods     map[string][]*UserFunction
	HostMethods map[string][]*HostFunction

	// Bases are interfaces and generic bases, written in terms of
	// TypeParams.
	Bases []typesystem.Type

	// Static types only carry static host functions (System.Math).
	Static bool

	// Binding is the synthetic global holding the type as a value,
	// allocated the first time source code reads the type name.
	Binding *ast.Binding
}

func newTypeDef(fullName string, kind TypeKind) *TypeDef {
	name := fullName
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		name = fullName[i+1:]
	}
	return &TypeDef{
		FullName:    fullName,
		Name:        name,
		Kind:        kind,
		Methods:     make(map[string][]*UserFunction),
		HostMethods: make(map[string][]*HostFunction),
	}
}

// NewTypeDef creates a type table entry; the program assigns its ID when
// the type is added.
func NewTypeDef(fullName string, kind TypeKind) *TypeDef {
	return newTypeDef(fullName, kind)
}

// Con is the nominal constructor of the type.
func (d *TypeDef) Con() typesystem.TCon {
	return typesystem.TCon{Name: d.FullName, ID: d.ID}
}

// Type is the type with its own parameters as variables: List<T>.
func (d *TypeDef) Type() typesystem.Type {
	if len(d.TypeParams) == 0 {
		return d.Con()
	}
	args := make([]typesystem.Type, len(d.TypeParams))
	for i, p := range d.TypeParams {
		args[i] = typesystem.TVar{Name: p}
	}
	return typesystem.TApp{Constructor: d.Con(), Args: args}
}

// Field looks up a record field by name.
func (d *TypeDef) Field(name string) (Field, int, bool) {
	for i, f := range d.Fields {
		if f.Name == name {
			return f, i, true
		}
	}
	return Field{}, -1, false
}

// Variant looks up a union case by tag.
func (d *TypeDef) Variant(tag string) (*Variant, bool) {
	for _, v := range d.Variants {
		if v.Tag == tag {
			return v, true
		}
	}
	return nil, false
}

// FieldNames returns the record field names in declaration order.
func (d *TypeDef) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

func (d *TypeDef) AddMethod(fn *UserFunction) {
	d.Methods[fn.Name] = append(d.Methods[fn.Name], fn)
}

func (d *TypeDef) removeMethod(fn *UserFunction) {
	list := d.Methods[fn.Name]
	for i, m := range list {
		if m == fn {
			d.Methods[fn.Name] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(d.Methods[fn.Name]) == 0 {
		delete(d.Methods, fn.Name)
	}
}

func (d *TypeDef) AddHostMethod(fn *HostFunction) {
	key := strings.ToLower(fn.Name)
	d.HostMethods[key] = append(d.HostMethods[key], fn)
}

// FindHostMethods returns host methods named name, ignoring case.
func (d *TypeDef) FindHostMethods(name string) []*HostFunction {
	return d.HostMethods[strings.ToLower(name)]
}

// instantiate substitutes args for the type's parameters in t.
func (d *TypeDef) instantiate(t typesystem.Type, args []typesystem.Type) typesystem.Type {
	if len(d.TypeParams) == 0 || len(args) != len(d.TypeParams) {
		return t
	}
	s := make(typesystem.Subst, len(args))
	for i, p := range d.TypeParams {
		s[p] = args[i]
	}
	return t.Apply(s)
}
