package object

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/simon-curtis/jitzu/internal/typesystem"
)

// Array is a mutable, growable sequence.
type Array struct {
	Elements []Object
	ElemType typesystem.Type
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = inspectQuoted(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (a *Array) RuntimeType() typesystem.Type {
	elem := a.ElemType
	if elem == nil {
		elem = typesystem.Any
	}
	return typesystem.ArrayOf(elem)
}
func (a *Array) Hash() uint32 { return uint32(uintptr(unsafe.Pointer(a))) }

// Instance is a record value or a union variant value. Records have an
// empty Tag; variants carry the variant name.
type Instance struct {
	TypeName   string
	Tag        string
	FieldNames []string
	Fields     []Object
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }

func (i *Instance) Inspect() string {
	name := i.TypeName
	if i.Tag != "" {
		name = i.Tag
	}
	if len(i.Fields) == 0 {
		return name
	}
	parts := make([]string, len(i.Fields))
	for idx, f := range i.Fields {
		if i.Tag != "" || idx >= len(i.FieldNames) {
			parts[idx] = inspectQuoted(f)
			continue
		}
		parts[idx] = i.FieldNames[idx] + " = " + inspectQuoted(f)
	}
	if i.Tag != "" {
		return name + "(" + strings.Join(parts, ", ") + ")"
	}
	return name + " { " + strings.Join(parts, ", ") + " }"
}

func (i *Instance) RuntimeType() typesystem.Type { return typesystem.TCon{Name: i.TypeName} }
func (i *Instance) Hash() uint32                 { return uint32(uintptr(unsafe.Pointer(i))) }

// FieldIndex returns the position of a named field, or -1.
func (i *Instance) FieldIndex(name string) int {
	for idx, n := range i.FieldNames {
		if n == name {
			return idx
		}
	}
	return -1
}

// TypeObject is a type used as a value, e.g. the receiver of a static call.
type TypeObject struct {
	Value typesystem.Type
}

func (t *TypeObject) Type() ObjectType             { return TYPE_OBJ }
func (t *TypeObject) Inspect() string              { return "<type " + t.Value.String() + ">" }
func (t *TypeObject) RuntimeType() typesystem.Type { return typesystem.TType{Type: t.Value} }
func (t *TypeObject) Hash() uint32                 { return hashString(t.Value.String()) }

// BuiltinFunction is the Go implementation behind a builtin or host callable.
type BuiltinFunction func(args ...Object) (Object, error)

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType             { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string              { return "<builtin " + b.Name + ">" }
func (b *Builtin) RuntimeType() typesystem.Type { return typesystem.TCon{Name: "Function"} }
func (b *Builtin) Hash() uint32                 { return uint32(uintptr(unsafe.Pointer(b))) }

// Constructor builds an instance from positional arguments: a union variant
// when Tag is set, otherwise a record (the template NEW refers to).
type Constructor struct {
	TypeName   string
	Tag        string
	FieldNames []string
}

func (c *Constructor) Type() ObjectType { return CONSTRUCTOR_OBJ }
func (c *Constructor) Inspect() string {
	if c.Tag == "" {
		return "<constructor " + c.TypeName + ">"
	}
	return "<constructor " + c.TypeName + "." + c.Tag + ">"
}
func (c *Constructor) RuntimeType() typesystem.Type {
	return typesystem.TCon{Name: "Function"}
}
func (c *Constructor) Hash() uint32 { return uint32(uintptr(unsafe.Pointer(c))) }

func (c *Constructor) Construct(args []Object) (*Instance, error) {
	if len(args) != len(c.FieldNames) {
		name := c.Tag
		if name == "" {
			name = c.TypeName
		}
		return nil, fmt.Errorf("%s expects %d arguments, got %d", name, len(c.FieldNames), len(args))
	}
	fields := make([]Object, len(args))
	copy(fields, args)
	return &Instance{TypeName: c.TypeName, Tag: c.Tag, FieldNames: c.FieldNames, Fields: fields}, nil
}

// HostValue wraps a Go value owned by a host type.
type HostValue struct {
	TypeName string
	Args     []typesystem.Type
	Value    interface{}
}

func (h *HostValue) Type() ObjectType { return HOST_OBJ }
func (h *HostValue) Inspect() string  { return fmt.Sprintf("%v", h.Value) }
func (h *HostValue) RuntimeType() typesystem.Type {
	con := typesystem.TCon{Name: h.TypeName}
	if len(h.Args) == 0 {
		return con
	}
	return typesystem.TApp{Constructor: con, Args: h.Args}
}
func (h *HostValue) Hash() uint32 { return uint32(uintptr(unsafe.Pointer(h))) }

func inspectQuoted(o Object) string {
	switch v := o.(type) {
	case *String:
		return fmt.Sprintf("%q", v.Value)
	case *Char:
		return fmt.Sprintf("'%c'", v.Value)
	}
	return inspect(o)
}
