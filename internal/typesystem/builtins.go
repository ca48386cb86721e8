package typesystem

import "github.com/simon-curtis/jitzu/internal/config"

const arrayName = config.ArrayTypeName

// Built-in nominal types. Their IDs are fixed so that every Program agrees
// on them; user and host types are numbered after BuiltinTypeCount.
var (
	Int    = TCon{Name: config.IntTypeName, ID: 1}
	Double = TCon{Name: config.DoubleTypeName, ID: 2}
	String = TCon{Name: config.StringTypeName, ID: 3}
	Bool   = TCon{Name: config.BoolTypeName, ID: 4}
	Char   = TCon{Name: config.CharTypeName, ID: 5}
	Unit   = TCon{Name: config.UnitTypeName, ID: 6}
	Any    = TCon{Name: config.AnyTypeName, ID: 7}
	Array  = TCon{Name: config.ArrayTypeName, ID: 8}
	Option = TCon{Name: config.OptionTypeName, ID: 9}
	Result = TCon{Name: config.ResultTypeName, ID: 10}
)

// BuiltinTypeCount is the highest ID used by a built-in type.
const BuiltinTypeCount = 10

// Primitives lists the non-generic built-in types in ID order.
var Primitives = []TCon{Int, Double, String, Bool, Char, Unit, Any}

func ArrayOf(elem Type) TApp {
	return TApp{Constructor: Array, Args: []Type{elem}}
}

func OptionOf(elem Type) TApp {
	return TApp{Constructor: Option, Args: []Type{elem}}
}

func ResultOf(ok, err Type) TApp {
	return TApp{Constructor: Result, Args: []Type{ok, err}}
}

// ElementType returns the element type of an array type.
func ElementType(t Type) (Type, bool) {
	if app, ok := t.(TApp); ok && app.Constructor.Name == arrayName && len(app.Args) == 1 {
		return app.Args[0], true
	}
	return nil, false
}

// IsArray reports whether t is an Array<T> application.
func IsArray(t Type) bool {
	_, ok := ElementType(t)
	return ok
}

// IsUnit reports whether t is the unit type.
func IsUnit(t Type) bool {
	c, ok := t.(TCon)
	return ok && c.Name == Unit.Name
}

// IsAny reports whether t is the dynamic Any type.
func IsAny(t Type) bool {
	c, ok := t.(TCon)
	return ok && c.Name == Any.Name
}

// IsNumeric reports whether t is Int or Double.
func IsNumeric(t Type) bool {
	c, ok := t.(TCon)
	return ok && (c.Name == Int.Name || c.Name == Double.Name)
}

// Constructor returns the nominal head of a type: the TCon itself, or the
// constructor of a TApp.
func Constructor(t Type) (TCon, bool) {
	switch tt := t.(type) {
	case TCon:
		return tt, true
	case TApp:
		return tt.Constructor, true
	}
	return TCon{}, false
}
