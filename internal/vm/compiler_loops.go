package vm

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/object"
)

// compileWhileStatement emits
//
//	start: cond; JUMP_IF_FALSE exit; body; LOOP start
//	exit:
func (c *Compiler) compileWhileStatement(s *ast.WhileStatement) error {
	line := s.Token.Line
	loopStart := c.currentChunk().Len()

	if err := c.compileExpression(s.Condition); err != nil {
		return err
	}
	exitJump := c.emitJump(bytecode.OP_JUMP_IF_FALSE, line)

	c.loopStack = append(c.loopStack, LoopContext{loopStart: loopStart})
	if err := c.compileBlock(s.Body, false); err != nil {
		return err
	}
	c.emitLoop(loopStart, line)

	c.patchJump(exitJump)
	c.endLoop()
	return nil
}

// compileForStatement lowers a for loop to the while protocol over the
// loop's hidden bindings. Ranges count Index up to End; arrays walk Index
// over the elements of Array. The loop variable is declared afresh on
// every iteration.
func (c *Compiler) compileForStatement(s *ast.ForStatement) error {
	line := s.Token.Line
	zero := &object.Integer{Value: 0}
	one := &object.Integer{Value: 1}

	rng, isRange := s.Iterable.(*ast.RangeExpression)
	if isRange {
		if err := c.compileExpression(rng.Start); err != nil {
			return err
		}
		c.emitDeclare(s.IndexBinding, line)
		if err := c.compileExpression(rng.End); err != nil {
			return err
		}
		c.emitDeclare(s.EndBinding, line)
	} else {
		if err := c.compileExpression(s.Iterable); err != nil {
			return err
		}
		c.emitDeclare(s.ArrayBinding, line)
		c.emitConstant(zero, line)
		c.emitDeclare(s.IndexBinding, line)
	}

	loopStart := c.currentChunk().Len()
	c.emitLoadBinding(s.IndexBinding, line)
	if isRange {
		c.emitLoadBinding(s.EndBinding, line)
	} else {
		c.emitLoadBinding(s.ArrayBinding, line)
		c.emit(bytecode.OP_LEN, line)
	}
	c.emit(bytecode.OP_LT, line)
	exitJump := c.emitJump(bytecode.OP_JUMP_IF_FALSE, line)

	if isRange {
		c.emitLoadBinding(s.IndexBinding, line)
	} else {
		c.emitLoadBinding(s.ArrayBinding, line)
		c.emitLoadBinding(s.IndexBinding, line)
		c.emit(bytecode.OP_GET_ELEM, line)
	}
	c.emitDeclare(s.VarBinding, line)

	c.loopStack = append(c.loopStack, LoopContext{loopStart: -1})
	if err := c.compileBlock(s.Body, false); err != nil {
		return err
	}

	// continue lands on the increment.
	loop := &c.loopStack[len(c.loopStack)-1]
	for _, offset := range loop.continueJumps {
		c.patchJump(offset)
	}
	c.emitLoadBinding(s.IndexBinding, line)
	c.emitConstant(one, line)
	c.emit(bytecode.OP_ADD, line)
	c.emitAssignBinding(s.IndexBinding, line)
	c.emitLoop(loopStart, line)

	c.patchJump(exitJump)
	c.endLoop()
	return nil
}

// endLoop patches the breaks of the innermost loop to the current offset
// and pops it.
func (c *Compiler) endLoop() {
	loop := c.loopStack[len(c.loopStack)-1]
	for _, offset := range loop.breakJumps {
		c.patchJump(offset)
	}
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

func (c *Compiler) compileBreakStatement(stmt *ast.BreakStatement) error {
	if len(c.loopStack) == 0 {
		return c.unsupported(stmt.Token, "break outside of a loop")
	}
	loop := &c.loopStack[len(c.loopStack)-1]
	loop.breakJumps = append(loop.breakJumps, c.emitJump(bytecode.OP_JUMP, stmt.Token.Line))
	return nil
}

func (c *Compiler) compileContinueStatement(stmt *ast.ContinueStatement) error {
	if len(c.loopStack) == 0 {
		return c.unsupported(stmt.Token, "continue outside of a loop")
	}
	loop := &c.loopStack[len(c.loopStack)-1]
	if loop.loopStart >= 0 {
		c.emitLoop(loop.loopStart, stmt.Token.Line)
		return nil
	}
	loop.continueJumps = append(loop.continueJumps, c.emitJump(bytecode.OP_JUMP, stmt.Token.Line))
	return nil
}
