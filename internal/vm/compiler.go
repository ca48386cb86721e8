// Package vm lowers an analyzed batch to bytecode and executes it.
//
// The Compiler emits one chunk per function, depth-first, straight from the
// slot-tagged tree: every read and write already names its storage, every
// call its target. The VM is a plain stack machine over those chunks; its
// globals outlive a single script so that batches compiled against the same
// program can be run one after another.
package vm

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/token"
	"github.com/simon-curtis/jitzu/internal/typesystem"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jitzu.vm")

// ScriptName names the function holding a batch's top-level code.
const ScriptName = "<script>"

// placeholder fills a jump operand until it is patched.
const placeholder = 0xFFFFFFFF

// maxOperand is the largest slot, constant or count a 16-bit operand holds.
const maxOperand = 0xFFFF

// LoopContext tracks loop information for break/continue
type LoopContext struct {
	loopStart     int   // Offset of the condition, or -1 when continue jumps forward
	continueJumps []int // Offsets of forward continue jumps to patch
	breakJumps    []int // Offsets of break jumps to patch
}

// Compiler compiles one function body. Nested functions get their own
// Compiler sharing the root's state.
type Compiler struct {
	program  *symbols.Program
	function *bytecode.Function
	file     string

	// returnsUnit is set when the function's value is discarded: the
	// trailing expression is popped and unit returned instead.
	returnsUnit bool

	loopStack []LoopContext

	enclosing *Compiler
	shared    *compilerState
}

// compilerState is shared by every Compiler of one batch.
type compilerState struct {
	records   map[string]*object.Constructor
	functions int

	// stmt is the statement being emitted; overflow the first operand
	// that did not fit in 16 bits.
	stmt     token.Token
	overflow error
}

// NewCompiler creates a compiler for a batch's top-level code.
func NewCompiler(program *symbols.Program) *Compiler {
	return &Compiler{
		program:  program,
		function: &bytecode.Function{Name: ScriptName, Chunk: bytecode.NewChunk()},
		shared:   &compilerState{records: make(map[string]*object.Constructor)},
	}
}

func newFunctionCompiler(enclosing *Compiler, fn *bytecode.Function, returnsUnit bool) *Compiler {
	return &Compiler{
		program:     enclosing.program,
		function:    fn,
		file:        enclosing.file,
		returnsUnit: returnsUnit,
		enclosing:   enclosing,
		shared:      enclosing.shared,
	}
}

// Compile emits the batch. The script first stores the compile-time
// values of the globals declared since the last committed batch, then
// runs the top-level statements; it returns the value of a trailing
// expression statement, or unit.
func (c *Compiler) Compile(program *ast.Program) (*bytecode.Function, error) {
	c.file = program.File
	c.function.Chunk.File = program.File
	c.shared.stmt = program.GetToken()

	if err := c.emitPendingInits(program.GetToken()); err != nil {
		return nil, err
	}

	stmts := program.Statements
	last := len(stmts) - 1
	for i, stmt := range stmts {
		if es, ok := stmt.(*ast.ExpressionStatement); ok && i == last {
			if err := c.compileExpression(es.Expression); err != nil {
				return nil, err
			}
			c.emit(bytecode.OP_RETURN, es.Token.Line)
			return c.finish()
		}
		if err := c.compileStatement(stmt); err != nil {
			return nil, err
		}
		if c.shared.overflow != nil {
			return nil, c.shared.overflow
		}
	}
	line := 0
	if last >= 0 {
		line = stmts[last].GetToken().Line
	}
	c.emit(bytecode.OP_UNIT, line)
	c.emit(bytecode.OP_RETURN, line)
	return c.finish()
}

func (c *Compiler) finish() (*bytecode.Function, error) {
	if c.shared.overflow != nil {
		return nil, c.shared.overflow
	}
	c.logDone()
	return c.function, nil
}

func (c *Compiler) logDone() {
	log.Debugf("compiled %s: %d bytes, %d constants, %d functions",
		c.function.Name, c.currentChunk().Len(), len(c.currentChunk().Constants), c.shared.functions)
}

func (c *Compiler) emitPendingInits(tok token.Token) error {
	for _, b := range c.program.PendingInits() {
		value, err := symbols.InitValue(b)
		if err != nil {
			return diagnostics.Errorf(diagnostics.ErrU001, b.Token, "%v", err)
		}
		c.emitConstant(value, tok.Line)
		c.emitU16(bytecode.OP_SET_GLOBAL, b.Index, tok.Line)
	}
	return nil
}

// compileFunction emits the body of a declared function into its
// bytecode.Function. Parameters that nested functions capture are moved
// into cells on entry.
func (c *Compiler) compileFunction(s *ast.FunctionStatement) error {
	u, ok := s.Callable.(*symbols.UserFunction)
	if !ok {
		return c.unsupported(s.Token, "function %s was not declared", s.Name.Value)
	}
	fn := u.Fn
	fn.Chunk = bytecode.NewChunk()
	fn.Chunk.File = c.file
	fn.LocalCount = s.LocalCount
	fn.FreeCount = len(s.FreeVars)
	if u.ReturnType != nil {
		fn.Signature = u.Signature()
	}
	c.shared.functions++

	fc := newFunctionCompiler(c, fn, u.ReturnType == nil || typesystem.IsUnit(u.ReturnType))
	line := s.Token.Line
	if s.SelfBinding != nil {
		fc.emitParamCell(s.SelfBinding, line)
	}
	for _, p := range s.Parameters {
		fc.emitParamCell(p.Binding, line)
	}
	if err := fc.compileBody(s.Body); err != nil {
		return err
	}
	log.Debugf("function %s: %d bytes, %d locals, %d free", fn.Name, fn.Chunk.Len(), fn.LocalCount, fn.FreeCount)
	return nil
}

func (c *Compiler) emitParamCell(b *ast.Binding, line int) {
	if b == nil || !b.Captured {
		return
	}
	c.emitU16(bytecode.OP_GET_LOCAL, b.Index, line)
	c.emitU16(bytecode.OP_MAKE_CELL, b.Index, line)
}

// compileBody emits a function body so that it always ends in RETURN.
// Falling off the end returns the trailing expression, or unit.
func (c *Compiler) compileBody(body *ast.BlockStatement) error {
	stmts := body.Statements
	last := len(stmts) - 1
	for i, stmt := range stmts {
		if i == last {
			switch s := stmt.(type) {
			case *ast.ReturnStatement:
				return c.compileReturnStatement(s)
			case *ast.ExpressionStatement:
				if !c.returnsUnit {
					if err := c.compileExpression(s.Expression); err != nil {
						return err
					}
					c.emit(bytecode.OP_RETURN, s.Token.Line)
					return nil
				}
			}
		}
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	line := body.RBraceToken.Line
	c.emit(bytecode.OP_UNIT, line)
	c.emit(bytecode.OP_RETURN, line)
	return nil
}

// compileNestedFunction builds a closure at the point of declaration and
// stores it in the function's local slot. A captured slot gets its cell
// first, so the body can refer to itself.
func (c *Compiler) compileNestedFunction(s *ast.FunctionStatement) error {
	if err := c.compileFunction(s); err != nil {
		return err
	}
	if s.Binding == nil || s.Binding.Scope == ast.ScopeGlobal {
		// Its value was stored with the batch's other globals.
		return nil
	}
	line := s.Token.Line
	b := s.Binding
	if b.Captured {
		c.emit(bytecode.OP_UNIT, line)
		c.emitU16(bytecode.OP_MAKE_CELL, b.Index, line)
	}

	fn := s.Callable.(*symbols.UserFunction).Fn
	if len(s.FreeVars) > 0xFF {
		return c.unsupported(s.Token, "function %s captures more than 255 variables", fn.Name)
	}
	chunk := c.currentChunk()
	c.emitU16(bytecode.OP_CLOSURE, chunk.AddConstant(fn), line)
	chunk.Write(byte(len(s.FreeVars)), line)
	for _, fv := range s.FreeVars {
		isLocal := byte(0)
		if fv.FromLocal {
			isLocal = 1
		}
		chunk.Write(isLocal, line)
		c.writeU16(bytecode.OP_CLOSURE, fv.Index, line)
	}

	if b.Captured {
		c.emitU16(bytecode.OP_SET_CELL, b.Index, line)
	} else {
		c.emitU16(bytecode.OP_SET_LOCAL, b.Index, line)
	}
	return nil
}

// currentChunk returns the chunk being compiled
func (c *Compiler) currentChunk() *bytecode.Chunk {
	return c.function.Chunk
}

func (c *Compiler) emit(op bytecode.Opcode, line int) {
	c.currentChunk().WriteOp(op, line)
}

func (c *Compiler) emitU16(op bytecode.Opcode, operand int, line int) {
	c.emit(op, line)
	c.writeU16(op, operand, line)
}

// writeU16 writes a 16-bit operand of op. An operand out of range fails
// the batch: Compile reports the first one.
func (c *Compiler) writeU16(op bytecode.Opcode, operand int, line int) {
	if operand > maxOperand && c.shared.overflow == nil {
		tok := c.shared.stmt
		tok.Line = line
		c.shared.overflow = c.unsupported(tok, "%s operand %d exceeds the limit of %d", op, operand, maxOperand)
	}
	c.currentChunk().WriteU16(operand, line)
}

func (c *Compiler) emitConstant(value object.Object, line int) {
	c.emitU16(bytecode.OP_CONST, c.currentChunk().AddConstant(value), line)
}

// emitNameOp emits an instruction whose operand is a string constant.
func (c *Compiler) emitNameOp(op bytecode.Opcode, name string, line int) {
	c.emitU16(op, c.currentChunk().AddConstant(&object.String{Value: name}), line)
}

// emitJump emits a jump with a placeholder target and returns the offset of
// the operand for patchJump.
func (c *Compiler) emitJump(op bytecode.Opcode, line int) int {
	c.emit(op, line)
	c.currentChunk().WriteU32(placeholder, line)
	return c.currentChunk().Len() - 4
}

// patchJump points a placeholder at the next instruction to be emitted.
func (c *Compiler) patchJump(offset int) {
	c.currentChunk().PatchU32(offset, c.currentChunk().Len())
}

// emitLoop emits a backward jump to an already known offset.
func (c *Compiler) emitLoop(loopStart int, line int) {
	c.emit(bytecode.OP_LOOP, line)
	c.currentChunk().WriteU32(loopStart, line)
}

// emitCall emits CALL with the callee already pushed after the arguments.
func (c *Compiler) emitCall(argc int, tok token.Token) error {
	if argc > 0xFF {
		return c.unsupported(tok, "call with %d arguments; at most 255 are supported", argc)
	}
	c.emit(bytecode.OP_CALL, tok.Line)
	c.currentChunk().Write(byte(argc), tok.Line)
	return nil
}

// recordTemplate returns the constructor NEW uses for a record type, one
// per type and batch.
func (c *Compiler) recordTemplate(typeName string, fields []string) *object.Constructor {
	if t, ok := c.shared.records[typeName]; ok {
		return t
	}
	t := &object.Constructor{TypeName: typeName, FieldNames: fields}
	c.shared.records[typeName] = t
	return t
}

func (c *Compiler) builtin(name string, tok token.Token) (object.Object, error) {
	b, ok := c.program.Builtin(name)
	if !ok {
		return nil, c.unsupported(tok, "builtin %s is not available", name)
	}
	return b.Object(), nil
}

func (c *Compiler) unsupported(tok token.Token, format string, args ...interface{}) error {
	return diagnostics.Errorf(diagnostics.ErrU001, tok, format, args...)
}
