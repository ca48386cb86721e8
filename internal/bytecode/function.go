package bytecode

import (
	"fmt"
	"unsafe"

	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

// Function is the runtime object for a user function. It is created empty
// when the function is declared so that call sites can reference it as a
// constant before its body has been emitted; the emitter fills in Chunk
// and LocalCount later.
type Function struct {
	Name       string
	Arity      int
	LocalCount int
	FreeCount  int
	Chunk      *Chunk
	Signature  typesystem.Type
}

func (f *Function) Type() object.ObjectType { return object.FUNCTION_OBJ }
func (f *Function) Inspect() string         { return fmt.Sprintf("<fn %s>", f.Name) }
func (f *Function) RuntimeType() typesystem.Type {
	if f.Signature != nil {
		return f.Signature
	}
	return typesystem.TCon{Name: "Function"}
}
func (f *Function) Hash() uint32 { return uint32(uintptr(unsafe.Pointer(f))) }

// Closure pairs a function with the cells it captured.
type Closure struct {
	Fn   *Function
	Free []*object.Cell
}

func (c *Closure) Type() object.ObjectType      { return object.CLOSURE_OBJ }
func (c *Closure) Inspect() string              { return fmt.Sprintf("<closure %s>", c.Fn.Name) }
func (c *Closure) RuntimeType() typesystem.Type { return c.Fn.RuntimeType() }
func (c *Closure) Hash() uint32                 { return uint32(uintptr(unsafe.Pointer(c))) }
