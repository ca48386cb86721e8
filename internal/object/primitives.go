package object

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unsafe"

	"github.com/simon-curtis/jitzu/internal/typesystem"
)

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType             { return INTEGER_OBJ }
func (i *Integer) Inspect() string              { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) RuntimeType() typesystem.Type { return typesystem.Int }
func (i *Integer) Hash() uint32                 { return uint32(i.Value ^ (i.Value >> 32)) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string {
	s := strconv.FormatFloat(f.Value, 'g', -1, 64)
	if f.Value == math.Trunc(f.Value) && !math.IsInf(f.Value, 0) && !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
func (f *Float) RuntimeType() typesystem.Type { return typesystem.Double }
func (f *Float) Hash() uint32 {
	bits := math.Float64bits(f.Value)
	return uint32(bits ^ (bits >> 32))
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType             { return STRING_OBJ }
func (s *String) Inspect() string              { return s.Value }
func (s *String) RuntimeType() typesystem.Type { return typesystem.String }
func (s *String) Hash() uint32                 { return hashString(s.Value) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType             { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string              { return strconv.FormatBool(b.Value) }
func (b *Boolean) RuntimeType() typesystem.Type { return typesystem.Bool }
func (b *Boolean) Hash() uint32 {
	if b.Value {
		return 1
	}
	return 0
}

type Char struct {
	Value rune
}

func (c *Char) Type() ObjectType             { return CHAR_OBJ }
func (c *Char) Inspect() string              { return string(c.Value) }
func (c *Char) RuntimeType() typesystem.Type { return typesystem.Char }
func (c *Char) Hash() uint32                 { return uint32(c.Value) }

// Unit is the value of expressions that produce nothing.
type Unit struct{}

func (u *Unit) Type() ObjectType             { return UNIT_OBJ }
func (u *Unit) Inspect() string              { return "()" }
func (u *Unit) RuntimeType() typesystem.Type { return typesystem.Unit }
func (u *Unit) Hash() uint32                 { return 0 }

var (
	UNIT  = &Unit{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// Cell holds a captured local. Every closure sharing the binding holds the
// same *Cell, so writes through any of them are visible to all.
type Cell struct {
	Value Object
}

func (c *Cell) Type() ObjectType             { return CELL_OBJ }
func (c *Cell) Inspect() string              { return fmt.Sprintf("<cell %s>", inspect(c.Value)) }
func (c *Cell) RuntimeType() typesystem.Type { return typesystem.Any }
func (c *Cell) Hash() uint32                 { return uint32(uintptr(unsafe.Pointer(c))) }

func inspect(o Object) string {
	if o == nil {
		return "<nil>"
	}
	return o.Inspect()
}
