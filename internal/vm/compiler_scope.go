package vm

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/bytecode"
)

// Storage follows the binding: globals address the program's global
// slots, locals the frame's slots, and locals captured by a nested
// function hold a cell in their slot. Free slots index the running
// closure's cells.

// emitLoad pushes the value a slot expression reads.
func (c *Compiler) emitLoad(se *ast.SlotExpression) {
	line := se.Token.Line
	switch se.Scope {
	case ast.ScopeGlobal:
		c.emitU16(bytecode.OP_GET_GLOBAL, se.Index, line)
	case ast.ScopeFree:
		c.emitU16(bytecode.OP_GET_UPVALUE, se.Index, line)
	default:
		if se.Binding != nil && se.Binding.Captured {
			c.emitU16(bytecode.OP_GET_CELL, se.Index, line)
		} else {
			c.emitU16(bytecode.OP_GET_LOCAL, se.Index, line)
		}
	}
}

// emitStore pops the top of the stack into an existing binding.
func (c *Compiler) emitStore(se *ast.SlotExpression) {
	line := se.Token.Line
	switch se.Scope {
	case ast.ScopeGlobal:
		c.emitU16(bytecode.OP_SET_GLOBAL, se.Index, line)
	case ast.ScopeFree:
		c.emitU16(bytecode.OP_SET_UPVALUE, se.Index, line)
	default:
		if se.Binding != nil && se.Binding.Captured {
			c.emitU16(bytecode.OP_SET_CELL, se.Index, line)
		} else {
			c.emitU16(bytecode.OP_SET_LOCAL, se.Index, line)
		}
	}
}

// emitLoadBinding pushes a binding owned by the function being compiled
// (or a global).
func (c *Compiler) emitLoadBinding(b *ast.Binding, line int) {
	switch {
	case b.Scope == ast.ScopeGlobal:
		c.emitU16(bytecode.OP_GET_GLOBAL, b.Index, line)
	case b.Captured:
		c.emitU16(bytecode.OP_GET_CELL, b.Index, line)
	default:
		c.emitU16(bytecode.OP_GET_LOCAL, b.Index, line)
	}
}

// emitDeclare pops the top of the stack into a binding that is being
// (re)declared. A captured local gets a fresh cell, so each execution of
// the declaration is a new variable.
func (c *Compiler) emitDeclare(b *ast.Binding, line int) {
	switch {
	case b.Scope == ast.ScopeGlobal:
		c.emitU16(bytecode.OP_SET_GLOBAL, b.Index, line)
	case b.Captured:
		c.emitU16(bytecode.OP_MAKE_CELL, b.Index, line)
	default:
		c.emitU16(bytecode.OP_SET_LOCAL, b.Index, line)
	}
}

// emitAssignBinding pops into a binding of this function that already
// holds a value.
func (c *Compiler) emitAssignBinding(b *ast.Binding, line int) {
	switch {
	case b.Scope == ast.ScopeGlobal:
		c.emitU16(bytecode.OP_SET_GLOBAL, b.Index, line)
	case b.Captured:
		c.emitU16(bytecode.OP_SET_CELL, b.Index, line)
	default:
		c.emitU16(bytecode.OP_SET_LOCAL, b.Index, line)
	}
}
