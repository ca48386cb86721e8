package object

import (
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

// Equals is the runtime equality used by EQ/NE and pattern literals.
// Scalars compare by value (Int and Double compare numerically); other
// objects compare structurally for instances and arrays.
func Equals(a, b Object) bool {
	switch x := a.(type) {
	case *Integer:
		switch y := b.(type) {
		case *Integer:
			return x.Value == y.Value
		case *Float:
			return float64(x.Value) == y.Value
		}
		return false
	case *Float:
		switch y := b.(type) {
		case *Float:
			return x.Value == y.Value
		case *Integer:
			return x.Value == float64(y.Value)
		}
		return false
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Value == y.Value
	case *Char:
		y, ok := b.(*Char)
		return ok && x.Value == y.Value
	case *Unit:
		_, ok := b.(*Unit)
		return ok
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equals(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Instance:
		y, ok := b.(*Instance)
		if !ok || x.TypeName != y.TypeName || x.Tag != y.Tag || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !Equals(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	case *TypeObject:
		y, ok := b.(*TypeObject)
		return ok && typesystem.Equal(x.Value, y.Value)
	}
	return a == b
}

// MatchesTag reports whether o is an instance of the runtime tag: a type
// name ("Point", "Int") or a qualified variant ("Shape.Circle").
func MatchesTag(o Object, tag string) bool {
	if tag == config.AnyTypeName {
		return true
	}
	if inst, ok := o.(*Instance); ok {
		if inst.Tag != "" && tag == inst.TypeName+"."+inst.Tag {
			return true
		}
		return tag == inst.TypeName
	}
	if h, ok := o.(*HostValue); ok {
		return tag == h.TypeName
	}
	if _, ok := o.(*Array); ok {
		return tag == config.ArrayTypeName
	}
	if con, ok := typesystem.Constructor(o.RuntimeType()); ok {
		return con.Name == tag
	}
	return false
}

// ToText renders a value the way string interpolation and print do.
func ToText(o Object) string {
	return inspect(o)
}

// Truthy is the condition test used by conditional jumps.
func Truthy(o Object) bool {
	switch v := o.(type) {
	case *Boolean:
		return v.Value
	case *Unit:
		return false
	case nil:
		return false
	}
	return true
}

// Variant helpers for the built-in Option and Result unions.

var optionFields = []string{"value"}
var resultErrFields = []string{"error"}

var NONE = &Instance{TypeName: config.OptionTypeName, Tag: config.NoneCtorName}

func Some(v Object) *Instance {
	return &Instance{TypeName: config.OptionTypeName, Tag: config.SomeCtorName, FieldNames: optionFields, Fields: []Object{v}}
}

func Ok(v Object) *Instance {
	return &Instance{TypeName: config.ResultTypeName, Tag: config.OkCtorName, FieldNames: optionFields, Fields: []Object{v}}
}

func Err(v Object) *Instance {
	return &Instance{TypeName: config.ResultTypeName, Tag: config.ErrCtorName, FieldNames: resultErrFields, Fields: []Object{v}}
}

// Unwrap splits an Option or Result value into its payload and whether the
// value is the success case.
func Unwrap(o Object) (Object, bool) {
	inst, ok := o.(*Instance)
	if !ok {
		return o, true
	}
	switch inst.Tag {
	case config.SomeCtorName, config.OkCtorName:
		return inst.Fields[0], true
	case config.NoneCtorName, config.ErrCtorName:
		return inst, false
	}
	return o, true
}
