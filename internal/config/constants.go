package config

const SourceFileExt = ".jz"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".jz", ".jitzu"}

// BundleFileExt is the extension of serialized bytecode bundles.
const BundleFileExt = ".jzb"

// Built-in function names, in global slot order
const (
	PrintFuncName    = "print"
	ConcatFuncName   = "concat"
	ToStringFuncName = "toString"
	LenFuncName      = "len"
	PanicFuncName    = "panic"
)

// BuiltinFuncNames lists the builtins in the order they occupy the lowest
// global slots. Variant constructors of Option/Result follow them.
var BuiltinFuncNames = []string{
	PrintFuncName,
	ConcatFuncName,
	ToStringFuncName,
	LenFuncName,
	PanicFuncName,
}

// Built-in type names
const (
	IntTypeName    = "Int"
	DoubleTypeName = "Double"
	StringTypeName = "String"
	BoolTypeName   = "Bool"
	CharTypeName   = "Char"
	UnitTypeName   = "Unit"
	AnyTypeName    = "Any"
	ArrayTypeName  = "Array"
	OptionTypeName = "Option"
	ResultTypeName = "Result"
	TypeTypeName   = "Type"
	SomeCtorName   = "Some"
	NoneCtorName   = "None"
	OkCtorName     = "Ok"
	ErrCtorName    = "Err"
)

// Adapter methods are available on every receiver before any method table
// lookup.
const (
	AdapterToString = "toString"
	AdapterEquals   = "equals"
	AdapterTypeName = "typeName"
)

// Reserved binding names. They start with '$' so source code cannot
// refer to them.
const (
	SelfName         = "self"
	MatchSubjectName = "$match"
	LoopEndName      = "$end"
	LoopArrayName    = "$array"
	LoopIndexName    = "$index"
	TypeBindingName  = "$type:"
)
