package vm

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/bytecode"
)

// compileMatchExpression evaluates the subject once into its hidden
// binding, then tests the arms in order:
//
//	subject; store $match
//	arm:  load $match; CHECK_TYPE tag; JUMP_IF_FALSE next
//	      (load $match; GET_FIELD f; store binding | compare literal)...
//	      body; JUMP end
//	next: ...
//	UNIT
//	end:
func (c *Compiler) compileMatchExpression(e *ast.MatchExpression) error {
	line := e.Token.Line
	if e.SubjectBinding == nil {
		return c.unsupported(e.Token, "match subject was not resolved")
	}
	if err := c.compileExpression(e.Subject); err != nil {
		return err
	}
	c.emitDeclare(e.SubjectBinding, line)
	loadSubject := func() { c.emitLoadBinding(e.SubjectBinding, line) }

	var endJumps []int
	for _, arm := range e.Arms {
		var next []int
		if err := c.compilePattern(arm.Pattern, loadSubject, &next); err != nil {
			return err
		}
		if err := c.compileExpression(arm.Body); err != nil {
			return err
		}
		endJumps = append(endJumps, c.emitJump(bytecode.OP_JUMP, arm.Token.Line))
		for _, offset := range next {
			c.patchJump(offset)
		}
	}

	// No arm matched.
	c.emit(bytecode.OP_UNIT, line)
	for _, offset := range endJumps {
		c.patchJump(offset)
	}
	return nil
}

// compilePattern emits the test of one pattern against the value load
// pushes. Every failing test jumps to a target appended to fail; names
// bound by the pattern are stored as they are reached.
func (c *Compiler) compilePattern(pat ast.Pattern, load func(), fail *[]int) error {
	line := pat.GetToken().Line
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return nil

	case *ast.BindingPattern:
		load()
		c.emitDeclare(p.Binding, line)
		return nil

	case *ast.LiteralPattern:
		load()
		if err := c.compileExpression(p.Value); err != nil {
			return err
		}
		c.emit(bytecode.OP_EQ, line)
		*fail = append(*fail, c.emitJump(bytecode.OP_JUMP_IF_FALSE, line))
		return nil

	case *ast.ConstructorPattern:
		if p.Tag == "" {
			return c.unsupported(p.Token, "pattern was not resolved")
		}
		load()
		c.emitNameOp(bytecode.OP_CHECK_TYPE, p.Tag, line)
		*fail = append(*fail, c.emitJump(bytecode.OP_JUMP_IF_FALSE, line))
		if len(p.Args) > len(p.FieldNames) {
			return c.unsupported(p.Token, "pattern gives %d fields, value has %d", len(p.Args), len(p.FieldNames))
		}
		for i, arg := range p.Args {
			field := p.FieldNames[i]
			loadField := func() {
				load()
				c.emitNameOp(bytecode.OP_GET_FIELD, field, line)
			}
			if err := c.compilePattern(arg, loadField, fail); err != nil {
				return err
			}
		}
		return nil
	}
	return c.unsupported(pat.GetToken(), "pattern %T has no lowering", pat)
}
