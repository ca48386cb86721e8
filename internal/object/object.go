package object

import (
	"hash/fnv"

	"github.com/simon-curtis/jitzu/internal/typesystem"
)

type ObjectType string

const (
	INTEGER_OBJ     = "INTEGER"
	FLOAT_OBJ       = "FLOAT"
	STRING_OBJ      = "STRING"
	BOOLEAN_OBJ     = "BOOLEAN"
	CHAR_OBJ        = "CHAR"
	UNIT_OBJ        = "UNIT"
	ARRAY_OBJ       = "ARRAY"
	INSTANCE_OBJ    = "INSTANCE"
	TYPE_OBJ        = "TYPE"
	BUILTIN_OBJ     = "BUILTIN"
	CONSTRUCTOR_OBJ = "CONSTRUCTOR"
	CELL_OBJ        = "CELL"
	HOST_OBJ        = "HOST"
	FUNCTION_OBJ    = "FUNCTION"
	CLOSURE_OBJ     = "CLOSURE"
)

// Object is a runtime value. Constants in a chunk's pool, slot contents and
// stack entries are all Objects.
type Object interface {
	Type() ObjectType
	Inspect() string
	RuntimeType() typesystem.Type
	Hash() uint32
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
