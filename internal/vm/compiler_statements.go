package vm

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/bytecode"
)

// compileStatement emits stmt leaving the stack as it found it.
func (c *Compiler) compileStatement(stmt ast.Statement) error {
	c.shared.stmt = stmt.GetToken()
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		if err := c.compileExpression(s.Expression); err != nil {
			return err
		}
		// The value of a bare expression is discarded; for a unit call
		// this is the unit it returned.
		c.emit(bytecode.OP_POP, s.Token.Line)
		return nil

	case *ast.LetStatement:
		if err := c.compileExpression(s.Value); err != nil {
			return err
		}
		c.emitDeclare(s.Binding, s.Token.Line)
		return nil

	case *ast.BlockStatement:
		return c.compileBlock(s, false)

	case *ast.ReturnStatement:
		return c.compileReturnStatement(s)

	case *ast.WhileStatement:
		return c.compileWhileStatement(s)

	case *ast.ForStatement:
		return c.compileForStatement(s)

	case *ast.BreakStatement:
		return c.compileBreakStatement(s)

	case *ast.ContinueStatement:
		return c.compileContinueStatement(s)

	case *ast.FunctionStatement:
		return c.compileNestedFunction(s)

	case *ast.ImplStatement:
		for _, m := range s.Methods {
			if err := c.compileFunction(m); err != nil {
				return err
			}
		}
		return nil

	case *ast.TypeStatement, *ast.UnionStatement, *ast.UseStatement:
		// Declarations only; the resolver recorded them in the program.
		return nil
	}
	return c.unsupported(stmt.GetToken(), "statement %T has no lowering", stmt)
}

// compileBlock emits the statements of a block. With wantValue the block
// leaves one value: its trailing expression, or unit.
func (c *Compiler) compileBlock(block *ast.BlockStatement, wantValue bool) error {
	last := len(block.Statements) - 1
	for i, stmt := range block.Statements {
		if es, ok := stmt.(*ast.ExpressionStatement); ok && wantValue && i == last {
			return c.compileExpression(es.Expression)
		}
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	if wantValue {
		c.emit(bytecode.OP_UNIT, block.RBraceToken.Line)
	}
	return nil
}

func (c *Compiler) compileReturnStatement(s *ast.ReturnStatement) error {
	line := s.Token.Line
	if s.Value == nil {
		c.emit(bytecode.OP_UNIT, line)
	} else if err := c.compileExpression(s.Value); err != nil {
		return err
	}
	c.emit(bytecode.OP_RETURN, line)
	return nil
}
