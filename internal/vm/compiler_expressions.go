package vm

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/symbols"
)

// binaryOps is the closed set of operators with an opcode. Everything else
// is rejected.
var binaryOps = map[string]bytecode.Opcode{
	"+":  bytecode.OP_ADD,
	"-":  bytecode.OP_SUB,
	"*":  bytecode.OP_MUL,
	"/":  bytecode.OP_DIV,
	"%":  bytecode.OP_MOD,
	"==": bytecode.OP_EQ,
	"!=": bytecode.OP_NE,
	"<":  bytecode.OP_LT,
	"<=": bytecode.OP_LE,
	">":  bytecode.OP_GT,
	">=": bytecode.OP_GE,
	"|":  bytecode.OP_BOR,
}

// compileExpression emits expr so that it leaves exactly one value.
func (c *Compiler) compileExpression(expr ast.Expression) error {
	line := expr.GetToken().Line
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		c.emitConstant(&object.Integer{Value: e.Value}, line)
	case *ast.FloatLiteral:
		c.emitConstant(&object.Float{Value: e.Value}, line)
	case *ast.StringLiteral:
		c.emitConstant(&object.String{Value: e.Value}, line)
	case *ast.CharLiteral:
		c.emitConstant(&object.Char{Value: e.Value}, line)
	case *ast.BooleanLiteral:
		c.emitConstant(object.NativeBool(e.Value), line)

	case *ast.SlotExpression:
		c.emitLoad(e)

	case *ast.InterpolatedString:
		return c.compileInterpolatedString(e)

	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			if err := c.compileExpression(el); err != nil {
				return err
			}
		}
		c.emitU16(bytecode.OP_MAKE_ARRAY, len(e.Elements), line)

	case *ast.PrefixExpression:
		return c.compilePrefixExpression(e)

	case *ast.InfixExpression:
		return c.compileInfixExpression(e)

	case *ast.AssignExpression:
		return c.compileAssignExpression(e)

	case *ast.CallExpression:
		return c.compileCallExpression(e)

	case *ast.MemberExpression:
		if err := c.compileExpression(e.Left); err != nil {
			return err
		}
		c.emitNameOp(bytecode.OP_GET_FIELD, e.Member.Value, e.Member.Token.Line)

	case *ast.IndexExpression:
		if err := c.compileExpression(e.Left); err != nil {
			return err
		}
		if err := c.compileExpression(e.Index); err != nil {
			return err
		}
		c.emit(bytecode.OP_GET_INDEX, line)

	case *ast.NewExpression:
		return c.compileNewExpression(e)

	case *ast.TryExpression:
		// The value is unwrapped in place; it is never discarded before
		// the failure case has had the chance to return.
		if err := c.compileExpression(e.Value); err != nil {
			return err
		}
		c.emit(bytecode.OP_UNWRAP_OR_RETURN, line)

	case *ast.BlockStatement:
		return c.compileBlock(e, true)

	case *ast.IfExpression:
		return c.compileIfExpression(e)

	case *ast.MatchExpression:
		return c.compileMatchExpression(e)

	case *ast.RangeExpression:
		return c.unsupported(e.Token, "a range can only be iterated by a for loop")

	case *ast.Identifier:
		return c.unsupported(e.Token, "identifier %s was not resolved to a slot", e.Value)

	default:
		return c.unsupported(expr.GetToken(), "expression %T has no lowering", expr)
	}
	return nil
}

func (c *Compiler) compilePrefixExpression(e *ast.PrefixExpression) error {
	if err := c.compileExpression(e.Right); err != nil {
		return err
	}
	switch e.Operator {
	case "-":
		c.emit(bytecode.OP_NEG, e.Token.Line)
	case "!":
		c.emit(bytecode.OP_NOT, e.Token.Line)
	default:
		return c.unsupported(e.Token, "prefix operator %s has no lowering", e.Operator)
	}
	return nil
}

func (c *Compiler) compileInfixExpression(e *ast.InfixExpression) error {
	switch e.Operator {
	case "&&", "||":
		return c.compileLogicalOp(e)
	}
	op, ok := binaryOps[e.Operator]
	if !ok {
		return c.unsupported(e.Token, "operator %s has no lowering", e.Operator)
	}
	if err := c.compileExpression(e.Left); err != nil {
		return err
	}
	if err := c.compileExpression(e.Right); err != nil {
		return err
	}
	c.emit(op, e.Token.Line)
	return nil
}

// compileLogicalOp short-circuits: the left value is the result when it
// decides the outcome.
//
//	a && b:  a; DUP; JUMP_IF_FALSE end; POP; b; end:
//	a || b:  a; DUP; NOT; JUMP_IF_FALSE end; POP; b; end:
func (c *Compiler) compileLogicalOp(e *ast.InfixExpression) error {
	line := e.Token.Line
	if err := c.compileExpression(e.Left); err != nil {
		return err
	}
	c.emit(bytecode.OP_DUP, line)
	if e.Operator == "||" {
		c.emit(bytecode.OP_NOT, line)
	}
	end := c.emitJump(bytecode.OP_JUMP_IF_FALSE, line)
	c.emit(bytecode.OP_POP, line)
	if err := c.compileExpression(e.Right); err != nil {
		return err
	}
	c.patchJump(end)
	return nil
}

// compileAssignExpression leaves the assigned value on the stack.
func (c *Compiler) compileAssignExpression(e *ast.AssignExpression) error {
	line := e.Token.Line
	switch target := e.Target.(type) {
	case *ast.SlotExpression:
		if err := c.compileExpression(e.Value); err != nil {
			return err
		}
		c.emit(bytecode.OP_DUP, line)
		c.emitStore(target)
		return nil

	case *ast.MemberExpression:
		// [obj] DUP [obj obj] value [obj obj v] SET_FIELD [obj v]
		// POP_BELOW [v]
		if err := c.compileExpression(target.Left); err != nil {
			return err
		}
		c.emit(bytecode.OP_DUP, line)
		if err := c.compileExpression(e.Value); err != nil {
			return err
		}
		c.emitNameOp(bytecode.OP_SET_FIELD, target.Member.Value, line)
		c.emit(bytecode.OP_POP_BELOW, line)
		return nil
	}
	return c.unsupported(e.Token, "cannot assign to %T", e.Target)
}

// compileCallExpression pushes the arguments (a member call's receiver
// first), then the callee, then CALL with the argument count. A static
// callee is loaded as a constant; a dynamic one is evaluated.
func (c *Compiler) compileCallExpression(e *ast.CallExpression) error {
	argc := len(e.Arguments)
	if e.Receiver != nil {
		if err := c.compileExpression(e.Receiver); err != nil {
			return err
		}
		argc++
	}
	for _, arg := range e.Arguments {
		if err := c.compileExpression(arg); err != nil {
			return err
		}
	}

	switch e.Kind {
	case ast.CallStatic:
		target, ok := e.Target.(symbols.Callable)
		if !ok {
			return c.unsupported(e.Token, "call has no resolved target")
		}
		c.emitConstant(target.Object(), e.Token.Line)
	case ast.CallDynamic:
		if err := c.compileExpression(e.Function); err != nil {
			return err
		}
	default:
		return c.unsupported(e.Token, "call kind %d has no lowering", e.Kind)
	}
	return c.emitCall(argc, e.Token)
}

// compileInterpolatedString converts every expression segment to text and
// concatenates all segments with one call.
func (c *Compiler) compileInterpolatedString(e *ast.InterpolatedString) error {
	line := e.Token.Line
	if len(e.Parts) == 0 {
		c.emitConstant(&object.String{Value: ""}, line)
		return nil
	}
	for _, part := range e.Parts {
		if lit, ok := part.(*ast.StringLiteral); ok {
			c.emitConstant(&object.String{Value: lit.Value}, line)
			continue
		}
		if err := c.compileExpression(part); err != nil {
			return err
		}
		c.emit(bytecode.OP_TO_STRING, line)
	}
	concat, err := c.builtin(config.ConcatFuncName, e.Token)
	if err != nil {
		return err
	}
	c.emitConstant(concat, line)
	return c.emitCall(len(e.Parts), e.Token)
}

// compileNewExpression pushes the field values in declared order and
// builds the record.
func (c *Compiler) compileNewExpression(e *ast.NewExpression) error {
	if e.TypeName == "" || len(e.Ordered) != len(e.FieldNames) {
		return c.unsupported(e.Token, "instantiation was not resolved")
	}
	for i, v := range e.Ordered {
		if v == nil {
			return c.unsupported(e.Token, "missing field %s", e.FieldNames[i])
		}
		if err := c.compileExpression(v); err != nil {
			return err
		}
	}
	if len(e.Ordered) > 0xFF {
		return c.unsupported(e.Token, "record %s has more than 255 fields", e.TypeName)
	}
	line := e.Token.Line
	template := c.recordTemplate(e.TypeName, e.FieldNames)
	c.emitU16(bytecode.OP_NEW, c.currentChunk().AddConstant(template), line)
	c.currentChunk().Write(byte(len(e.Ordered)), line)
	return nil
}

// compileIfExpression emits
//
//	cond; JUMP_IF_FALSE else; then; JUMP end; else: alt; end:
//
// Without an alternative the value is unit on both paths:
//
//	cond; JUMP_IF_FALSE after; then (discarded); after: UNIT
func (c *Compiler) compileIfExpression(e *ast.IfExpression) error {
	line := e.Token.Line
	if err := c.compileExpression(e.Condition); err != nil {
		return err
	}
	elseJump := c.emitJump(bytecode.OP_JUMP_IF_FALSE, line)

	if e.Alternative == nil {
		if err := c.compileBlock(e.Consequence, false); err != nil {
			return err
		}
		c.patchJump(elseJump)
		c.emit(bytecode.OP_UNIT, line)
		return nil
	}

	if err := c.compileBlock(e.Consequence, true); err != nil {
		return err
	}
	endJump := c.emitJump(bytecode.OP_JUMP, line)
	c.patchJump(elseJump)
	if err := c.compileExpression(e.Alternative); err != nil {
		return err
	}
	c.patchJump(endJump)
	return nil
}
