package vm

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/simon-curtis/jitzu/internal/analyzer"
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/host"
	"github.com/simon-curtis/jitzu/internal/lexer"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/parser"
	"github.com/simon-curtis/jitzu/internal/pipeline"
	"github.com/simon-curtis/jitzu/internal/resolver"
	"github.com/simon-curtis/jitzu/internal/symbols"
)

func newProgram(out *bytes.Buffer) *symbols.Program {
	p := symbols.NewProgram(host.NewStandardRegistry())
	p.SetOutput(out)
	return p
}

func compileSource(p *symbols.Program, src string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(src, "test.jz", p)
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&CompilerProcessor{},
	).Run(ctx)
}

func compileOK(t *testing.T, src string) *pipeline.PipelineContext {
	t.Helper()
	ctx := compileSource(newProgram(&bytes.Buffer{}), src)
	if ctx.Failed() {
		t.Fatalf("compile error: %v", ctx.Errors[0])
	}
	return ctx
}

func expectCompileError(t *testing.T, src string, code diagnostics.ErrorCode, fragment string) {
	t.Helper()
	ctx := compileSource(newProgram(&bytes.Buffer{}), src)
	for _, err := range ctx.Errors {
		if err.Code == code && strings.Contains(err.Error(), fragment) {
			return
		}
	}
	t.Fatalf("expected %s error containing %q, got %v", code, fragment, ctx.Errors)
}

// userCode drops the instructions storing the program's compile-time
// globals, which precede every batch's own code.
func userCode(t *testing.T, ctx *pipeline.PipelineContext) []bytecode.Instruction {
	t.Helper()
	code := bytecode.Decode(ctx.Script.Chunk)
	skip := 2 * len(ctx.Program.PendingInits())
	if skip > len(code) {
		t.Fatalf("script has %d instructions, expected at least %d init stores", len(code), skip)
	}
	return code[skip:]
}

func opsOf(code []bytecode.Instruction) []bytecode.Opcode {
	out := make([]bytecode.Opcode, len(code))
	for i, ins := range code {
		out[i] = ins.Op
	}
	return out
}

func sameOps(a, b []bytecode.Opcode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// at returns the index of the instruction starting at offset.
func at(t *testing.T, code []bytecode.Instruction, offset int) int {
	t.Helper()
	for i, ins := range code {
		if ins.Offset == offset {
			return i
		}
	}
	t.Fatalf("no instruction starts at offset %d", offset)
	return -1
}

func find(code []bytecode.Instruction, op bytecode.Opcode) int {
	for i, ins := range code {
		if ins.Op == op {
			return i
		}
	}
	return -1
}

func functionNamed(t *testing.T, script *bytecode.Function, name string) *bytecode.Function {
	t.Helper()
	seen := make(map[*bytecode.Function]bool)
	var walk func(fn *bytecode.Function) *bytecode.Function
	walk = func(fn *bytecode.Function) *bytecode.Function {
		if fn.Name == name {
			return fn
		}
		seen[fn] = true
		for _, k := range fn.Chunk.Constants {
			if inner, ok := k.(*bytecode.Function); ok && !seen[inner] && inner.Chunk != nil {
				if found := walk(inner); found != nil {
					return found
				}
			}
		}
		return nil
	}
	fn := walk(script)
	if fn == nil {
		t.Fatalf("no function %s reachable from the script", name)
	}
	return fn
}

func TestPendingInitsPrecedeUserCode(t *testing.T) {
	ctx := compileOK(t, "fun f(): Int { 1 }\n")
	code := bytecode.Decode(ctx.Script.Chunk)
	inits := ctx.Program.PendingInits()
	for i, b := range inits {
		load, store := code[2*i], code[2*i+1]
		if load.Op != bytecode.OP_CONST || store.Op != bytecode.OP_SET_GLOBAL || store.Operands[0] != b.Index {
			t.Fatalf("init %d (%s): got %s %v, %s %v", i, b.Name, load.Op, load.Operands, store.Op, store.Operands)
		}
	}
	last := inits[len(inits)-1]
	fn, ok := ctx.Script.Chunk.Constants[code[2*len(inits)-2].Operands[0]].(*bytecode.Function)
	if last.Name != "f" || !ok || fn.Name != "f" {
		t.Fatalf("last init is %s holding %v, want the function f", last.Name, fn)
	}
}

func TestIfElseJumpTargets(t *testing.T) {
	ctx := compileOK(t, "let c = true\nlet r = if c { 1 } else { 2 }\n")
	code := userCode(t, ctx)

	jif := find(code, bytecode.OP_JUMP_IF_FALSE)
	jmp := find(code, bytecode.OP_JUMP)
	if jif < 0 || jmp < jif {
		t.Fatalf("missing conditional jumps: %v", opsOf(code))
	}
	// The false branch starts right after the then-branch's jump.
	if got := at(t, code, code[jif].Operands[0]); got != jmp+1 {
		t.Errorf("JUMP_IF_FALSE lands on instruction %d, want %d", got, jmp+1)
	}
	// Both branches meet at the store into r.
	end := at(t, code, code[jmp].Operands[0])
	r := ctx.AstRoot.Statements[1].(*ast.LetStatement).Binding
	if code[end].Op != bytecode.OP_SET_GLOBAL || code[end].Operands[0] != r.Index {
		t.Errorf("JUMP lands on %s %v, want SET_GLOBAL %d", code[end].Op, code[end].Operands, r.Index)
	}
}

func TestIfWithoutElseLeavesUnit(t *testing.T) {
	ctx := compileOK(t, "let c = true\nlet r = if c { 1 }\n")
	code := userCode(t, ctx)
	jif := find(code, bytecode.OP_JUMP_IF_FALSE)
	target := at(t, code, code[jif].Operands[0])
	if code[target].Op != bytecode.OP_UNIT {
		t.Fatalf("JUMP_IF_FALSE lands on %s, want UNIT", code[target].Op)
	}
	// The then-branch value is discarded before the merge point.
	if code[target-1].Op != bytecode.OP_POP {
		t.Errorf("instruction before the merge is %s, want POP", code[target-1].Op)
	}
}

func TestWhileJumpTargets(t *testing.T) {
	ctx := compileOK(t, "let i = 0\nwhile i < 3 { i = i + 1 }\n")
	code := userCode(t, ctx)

	loop := find(code, bytecode.OP_LOOP)
	jif := find(code, bytecode.OP_JUMP_IF_FALSE)
	if loop < 0 || jif < 0 {
		t.Fatalf("missing loop jumps: %v", opsOf(code))
	}
	start := at(t, code, code[loop].Operands[0])
	if code[start].Op != bytecode.OP_GET_GLOBAL || code[start+2].Op != bytecode.OP_LT || start+3 != jif {
		t.Errorf("LOOP does not return to the condition: %v", opsOf(code[start:]))
	}
	if got := at(t, code, code[jif].Operands[0]); got != loop+1 {
		t.Errorf("loop exit lands on instruction %d, want %d", got, loop+1)
	}
}

func TestBreakAndContinueTargets(t *testing.T) {
	ctx := compileOK(t, `let i = 0
while true {
    i = i + 1
    if i == 2 { continue }
    if i > 4 { break }
}
`)
	code := userCode(t, ctx)
	loop := find(code, bytecode.OP_LOOP)
	var loops, jumps []int
	for i, ins := range code {
		switch ins.Op {
		case bytecode.OP_LOOP:
			loops = append(loops, i)
		case bytecode.OP_JUMP:
			jumps = append(jumps, at(t, code, ins.Operands[0]))
		}
	}
	// continue in a while loop goes straight back to the condition.
	if len(loops) != 2 || code[loops[0]].Operands[0] != code[loops[1]].Operands[0] {
		t.Errorf("continue does not loop to the condition: %v", opsOf(code))
	}
	found := false
	for _, target := range jumps {
		if target == loop+1 || target == loops[len(loops)-1]+1 {
			found = true
		}
	}
	if !found {
		t.Errorf("no break jump leaves the loop: %v", opsOf(code))
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	expectCompileError(t, "break\n", diagnostics.ErrU001, "break outside of a loop")
	expectCompileError(t, "fun f() { continue }\n", diagnostics.ErrU001, "continue outside of a loop")
}

func TestUnsupportedOperators(t *testing.T) {
	for _, op := range []string{"&", "^", "<<", ">>", "**"} {
		t.Run(op, func(t *testing.T) {
			expectCompileError(t, "let x = 6 "+op+" 3\n", diagnostics.ErrU001, "operator "+op)
		})
	}
}

func TestOperandOverflow(t *testing.T) {
	c := NewCompiler(newProgram(&bytes.Buffer{}))
	c.emitU16(bytecode.OP_GET_GLOBAL, maxOperand, 1)
	if c.shared.overflow != nil {
		t.Fatalf("operand %d rejected: %v", maxOperand, c.shared.overflow)
	}
	c.emitU16(bytecode.OP_GET_GLOBAL, maxOperand+1, 2)
	var diag *diagnostics.DiagnosticError
	if !errors.As(c.shared.overflow, &diag) || diag.Code != diagnostics.ErrU001 {
		t.Fatalf("overflow = %v, want %s", c.shared.overflow, diagnostics.ErrU001)
	}
	if !strings.Contains(diag.Message, "GET_GLOBAL operand 65536") {
		t.Errorf("message = %q", diag.Message)
	}
}

func TestTooManyGlobals(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("let first = \"first\"\n")
	for i := range maxOperand + 1 {
		fmt.Fprintf(&sb, "let v%d = %d\n", i, i)
	}
	fmt.Fprintf(&sb, "print(v%d)\n", maxOperand)
	expectCompileError(t, sb.String(), diagnostics.ErrU001, "exceeds the limit of 65535")
}

func TestArrayLiteralTooLong(t *testing.T) {
	elems := strings.Repeat("0, ", maxOperand) + "0"
	expectCompileError(t, "let a = ["+elems+"]\n", diagnostics.ErrU001, "MAKE_ARRAY operand 65536")
}

func TestShadowedLetsUseDistinctSlots(t *testing.T) {
	ctx := compileOK(t, "let x = 1\n{\n    let x = 2\n    print(x)\n}\nprint(x)\n")
	outer := ctx.AstRoot.Statements[0].(*ast.LetStatement).Binding
	inner := ctx.AstRoot.Statements[1].(*ast.BlockStatement).Statements[0].(*ast.LetStatement).Binding
	if outer.Index == inner.Index {
		t.Fatalf("shadowing let reuses slot %d", outer.Index)
	}
	var reads []int
	for _, ins := range userCode(t, ctx) {
		if ins.Op == bytecode.OP_GET_GLOBAL {
			reads = append(reads, ins.Operands[0])
		}
	}
	if len(reads) != 2 || reads[0] != inner.Index || reads[1] != outer.Index {
		t.Errorf("reads %v, want [%d %d]", reads, inner.Index, outer.Index)
	}
}

func TestEveryFunctionEndsInReturn(t *testing.T) {
	ctx := compileOK(t, `fun unit(n: Int) { print(n) }
fun value(n: Int): Int { n * 2 }
fun early(b: Bool): Int {
    if b { return 1 }
    2
}
fun outer(): Int {
    fun inner(): Int { 3 }
    inner()
}
`)
	for _, name := range []string{ScriptName, "unit", "value", "early", "outer", "inner"} {
		fn := functionNamed(t, ctx.Script, name)
		code := bytecode.Decode(fn.Chunk)
		if last := code[len(code)-1]; last.Op != bytecode.OP_RETURN {
			t.Errorf("%s ends in %s", name, last.Op)
		}
	}
	code := bytecode.Decode(functionNamed(t, ctx.Script, "unit").Chunk)
	if got := opsOf(code[len(code)-3:]); !sameOps(got, []bytecode.Opcode{bytecode.OP_POP, bytecode.OP_UNIT, bytecode.OP_RETURN}) {
		t.Errorf("unit function tail = %v", got)
	}
}

func TestConstantsAreDeduplicated(t *testing.T) {
	ctx := compileOK(t, "let a = 7\nlet b = 7\nlet s = \"x\"\nlet u = \"x\"\n")
	ints, strs := 0, 0
	for _, k := range ctx.Script.Chunk.Constants {
		switch v := k.(type) {
		case *object.Integer:
			if v.Value == 7 {
				ints++
			}
		case *object.String:
			if v.Value == "x" {
				strs++
			}
		}
	}
	if ints != 1 || strs != 1 {
		t.Errorf("constant pool holds 7 x%d and \"x\" x%d, want one each", ints, strs)
	}
}

func TestFieldAssignmentSequence(t *testing.T) {
	ctx := compileOK(t, "type P { x: Int }\nlet p = P { x = 1 }\np.x = 3\nlet done = true\n")
	code := userCode(t, ctx)
	set := find(code, bytecode.OP_SET_FIELD)
	if set < 3 {
		t.Fatalf("no SET_FIELD: %v", opsOf(code))
	}
	want := []bytecode.Opcode{
		bytecode.OP_GET_GLOBAL, bytecode.OP_DUP, bytecode.OP_CONST,
		bytecode.OP_SET_FIELD, bytecode.OP_POP_BELOW, bytecode.OP_POP,
	}
	if got := opsOf(code[set-3 : set+3]); !sameOps(got, want) {
		t.Errorf("field assignment = %v, want %v", got, want)
	}
	name := ctx.Script.Chunk.Constants[code[set].Operands[0]].(*object.String)
	if name.Value != "x" {
		t.Errorf("SET_FIELD names %q", name.Value)
	}
}

func TestRecordInstantiationUsesDeclaredOrder(t *testing.T) {
	ctx := compileOK(t, "type Point { x: Int, y: Int }\nlet p = Point { y = 2, x = 1 }\n")
	code := userCode(t, ctx)
	n := find(code, bytecode.OP_NEW)
	if n < 2 || code[n].Operands[1] != 2 {
		t.Fatalf("NEW not found or wrong count: %v", opsOf(code))
	}
	first := ctx.Script.Chunk.Constants[code[n-2].Operands[0]].(*object.Integer)
	second := ctx.Script.Chunk.Constants[code[n-1].Operands[0]].(*object.Integer)
	if first.Value != 1 || second.Value != 2 {
		t.Errorf("fields pushed as %d, %d; want 1, 2", first.Value, second.Value)
	}
	tmpl := ctx.Script.Chunk.Constants[code[n].Operands[0]].(*object.Constructor)
	if tmpl.TypeName != "Point" || strings.Join(tmpl.FieldNames, ",") != "x,y" {
		t.Errorf("template = %s %v", tmpl.TypeName, tmpl.FieldNames)
	}
}

func TestInterpolationConcatenatesOnce(t *testing.T) {
	ctx := compileOK(t, "let n = 2\nlet s = \"a{n}b\"\n")
	code := userCode(t, ctx)
	call := find(code, bytecode.OP_CALL)
	if call < 0 || code[call].Operands[0] != 3 {
		t.Fatalf("want one CALL with 3 arguments: %v", opsOf(code))
	}
	callee, ok := ctx.Script.Chunk.Constants[code[call-1].Operands[0]].(*object.Builtin)
	if !ok || callee.Name != "concat" {
		t.Errorf("callee is %v, want concat", ctx.Script.Chunk.Constants[code[call-1].Operands[0]])
	}
	if find(code, bytecode.OP_TO_STRING) < 0 {
		t.Errorf("expression segment not converted to text: %v", opsOf(code))
	}
}

func TestCallPushesCalleeLast(t *testing.T) {
	ctx := compileOK(t, "fun add(a: Int, b: Int): Int { a + b }\nlet r = add(1, 2)\n")
	code := userCode(t, ctx)
	call := find(code, bytecode.OP_CALL)
	want := []bytecode.Opcode{bytecode.OP_CONST, bytecode.OP_CONST, bytecode.OP_CONST, bytecode.OP_CALL}
	if got := opsOf(code[call-3 : call+1]); !sameOps(got, want) {
		t.Fatalf("call sequence = %v", got)
	}
	if _, ok := ctx.Script.Chunk.Constants[code[call-1].Operands[0]].(*bytecode.Function); !ok {
		t.Errorf("callee is not the function constant")
	}
	if code[call].Operands[0] != 2 {
		t.Errorf("argc = %d", code[call].Operands[0])
	}
}

func TestMatchEvaluatesSubjectOnce(t *testing.T) {
	ctx := compileOK(t, `fun pick(): Int { 1 }
let r = match pick() { 0 => "zero", 1 => "one", _ => "many" }
`)
	calls := 0
	for _, ins := range userCode(t, ctx) {
		if ins.Op == bytecode.OP_CALL {
			calls++
		}
	}
	if calls != 1 {
		t.Errorf("subject called %d times", calls)
	}
}

func TestClosureCaptureDescriptors(t *testing.T) {
	ctx := compileOK(t, `fun outer(): Int {
    let n = 1
    fun mid(): Int {
        fun inner(): Int { n }
        inner()
    }
    mid()
}
`)
	outer := bytecode.Decode(functionNamed(t, ctx.Script, "outer").Chunk)
	if find(outer, bytecode.OP_MAKE_CELL) < 0 {
		t.Errorf("captured local has no cell: %v", opsOf(outer))
	}
	c := outer[find(outer, bytecode.OP_CLOSURE)]
	if len(c.Captures) != 1 || !c.Captures[0].IsLocal {
		t.Errorf("mid captures %+v, want one local cell", c.Captures)
	}

	mid := bytecode.Decode(functionNamed(t, ctx.Script, "mid").Chunk)
	c = mid[find(mid, bytecode.OP_CLOSURE)]
	if len(c.Captures) != 1 || c.Captures[0].IsLocal || c.Captures[0].Index != 0 {
		t.Errorf("inner captures %+v, want mid's free variable 0", c.Captures)
	}

	inner := bytecode.Decode(functionNamed(t, ctx.Script, "inner").Chunk)
	if find(inner, bytecode.OP_GET_UPVALUE) < 0 {
		t.Errorf("inner does not read through its capture: %v", opsOf(inner))
	}
}
