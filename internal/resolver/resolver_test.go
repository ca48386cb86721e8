package resolver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/host"
	"github.com/simon-curtis/jitzu/internal/lexer"
	"github.com/simon-curtis/jitzu/internal/parser"
	"github.com/simon-curtis/jitzu/internal/pipeline"
	"github.com/simon-curtis/jitzu/internal/prettyprinter"
	"github.com/simon-curtis/jitzu/internal/symbols"
)

type geoLoader struct{}

func (geoLoader) LoadModule(name string) (*symbols.HostModule, error) {
	if name != "Geo" {
		return nil, fmt.Errorf("unknown module %s", name)
	}
	return &symbols.HostModule{Name: "Geo", Types: []*symbols.TypeDef{symbols.NewTypeDef("Geo.Point", symbols.HostType)}}, nil
}

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	ctx := pipeline.NewPipelineContext(src, "test.jz", nil)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	if ctx.Failed() {
		t.Fatalf("parse error: %v", ctx.Errors[0])
	}
	return ctx.AstRoot
}

func resolveOK(t *testing.T, p *symbols.Program, src string) *ast.Program {
	t.Helper()
	prog := parse(t, src)
	if errs := New(p).Resolve(prog); len(errs) > 0 {
		t.Fatalf("unexpected error: %v", errs[0])
	}
	return prog
}

func expectError(t *testing.T, p *symbols.Program, src string, code diagnostics.ErrorCode, fragment string) {
	t.Helper()
	errs := New(p).Resolve(parse(t, src))
	for _, err := range errs {
		if err.Code == code && strings.Contains(err.Error(), fragment) {
			return
		}
	}
	t.Fatalf("expected %s error containing %q, got %v", code, fragment, errs)
}

func function(t *testing.T, prog *ast.Program, i int) *ast.FunctionStatement {
	t.Helper()
	fn, ok := prog.Statements[i].(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("statement %d is %T, want a function", i, prog.Statements[i])
	}
	return fn
}

func TestShadowTransparency(t *testing.T) {
	p := symbols.NewProgram(nil)
	base := p.GlobalCount()
	prog := resolveOK(t, p, "let x = 1\n{\n    let x = 2\n    print(x)\n}\nprint(x)\n")

	want := fmt.Sprintf("let x@g%d = 1\n{\n    let x@g%d = 2\n    print@g0(x@g%d)\n}\nprint@g0(x@g%d)\n",
		base, base+1, base+1, base)
	if got := prettyprinter.PrintResolved(prog); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestGlobalNumbering(t *testing.T) {
	p := symbols.NewProgram(nil)
	base := p.GlobalCount()
	prog := resolveOK(t, p, "let a = 1\nlet b = 2\nlet c = a + b\n")
	for i, name := range []string{"a", "b", "c"} {
		let := prog.Statements[i].(*ast.LetStatement)
		if let.Binding.Scope != ast.ScopeGlobal || let.Binding.Index != base+i {
			t.Errorf("%s: got %s %d, want global %d", name, let.Binding.Scope, let.Binding.Index, base+i)
		}
	}
}

func TestSlotMonotonicity(t *testing.T) {
	src := `fun f(a, b) {
    let c = a
    {
        let d = b
        let c = d
    }
    if true {
        let e = c
    }
    let d = c
    d
}`
	p := symbols.NewProgram(nil)
	prog := resolveOK(t, p, src)
	fn := function(t, prog, 0)
	if fn.LocalCount != 7 {
		t.Fatalf("LocalCount = %d, want 7", fn.LocalCount)
	}
	want := fmt.Sprintf(`fun f@g%d(a@l0, b@l1) {
    let c@l2 = a@l0
    {
        let d@l3 = b@l1
        let c@l4 = d@l3
    }
    if true {
        let e@l5 = c@l2
    }
    let d@l6 = c@l2
    d@l6
}
`, p.GlobalCount()-1)
	if got := prettyprinter.PrintResolved(prog); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestMethodSelfIsSlotZero(t *testing.T) {
	src := "type Point { x: Int, y: Int }\nimpl Point {\n    fun sum(self, k: Int): Int { self.x + self.y + k }\n}"
	p := symbols.NewProgram(nil)
	prog := resolveOK(t, p, src)
	impl := prog.Statements[1].(*ast.ImplStatement)
	m := impl.Methods[0]
	if m.SelfBinding == nil || m.SelfBinding.Index != 0 || m.Parameters[0].Binding.Index != 1 {
		t.Fatalf("self/param slots: %+v %+v", m.SelfBinding, m.Parameters[0].Binding)
	}
	def, _ := p.LookupType("Point")
	if len(def.Methods["sum"]) != 1 || def.Methods["sum"][0].Decl != m {
		t.Errorf("method not registered: %v", def.Methods)
	}
}

func TestForwardReferenceBetweenFunctions(t *testing.T) {
	p := symbols.NewProgram(nil)
	prog := resolveOK(t, p, "fun a() { b() }\nfun b() { 1 }")
	call := function(t, prog, 0).Body.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.CallExpression)
	se, ok := call.Function.(*ast.SlotExpression)
	if !ok || se.Scope != ast.ScopeGlobal || se.Binding != function(t, prog, 1).Binding {
		t.Fatalf("b() did not resolve to b's global: %#v", call.Function)
	}
}

func TestCaptureThroughCells(t *testing.T) {
	src := `fun outer() {
    let n = 0
    fun inc() {
        n = n + 1
    }
    inc()
    n
}`
	prog := resolveOK(t, symbols.NewProgram(nil), src)
	outer := function(t, prog, 0)
	let := outer.Body.Statements[0].(*ast.LetStatement)
	inc := outer.Body.Statements[1].(*ast.FunctionStatement)

	if !let.Binding.Captured {
		t.Error("n should be captured")
	}
	if inc.Binding.Scope != ast.ScopeLocal || inc.Binding.Index != 1 {
		t.Errorf("inc binding = %s %d, want local 1", inc.Binding.Scope, inc.Binding.Index)
	}
	if len(inc.FreeVars) != 1 || !inc.FreeVars[0].FromLocal || inc.FreeVars[0].Index != 0 {
		t.Fatalf("inc free vars = %+v", inc.FreeVars)
	}
	assign := inc.Body.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.AssignExpression)
	target := assign.Target.(*ast.SlotExpression)
	if target.Scope != ast.ScopeFree || target.Index != 0 || target.Binding != let.Binding {
		t.Errorf("write in inc = %+v", target)
	}
	if len(outer.FreeVars) != 0 {
		t.Errorf("outer should capture nothing, got %+v", outer.FreeVars)
	}
}

func TestCaptureThreadsIntermediateFunctions(t *testing.T) {
	src := `fun a() {
    let x = 1
    fun b() {
        fun c() { x }
        c()
    }
    b()
}`
	prog := resolveOK(t, symbols.NewProgram(nil), src)
	a := function(t, prog, 0)
	b := a.Body.Statements[1].(*ast.FunctionStatement)
	c := b.Body.Statements[0].(*ast.FunctionStatement)

	if len(b.FreeVars) != 1 || !b.FreeVars[0].FromLocal || b.FreeVars[0].Index != 0 {
		t.Errorf("b free vars = %+v", b.FreeVars)
	}
	if len(c.FreeVars) != 1 || c.FreeVars[0].FromLocal || c.FreeVars[0].Index != 0 {
		t.Errorf("c free vars = %+v", c.FreeVars)
	}
	if c.Depth != 3 {
		t.Errorf("c depth = %d, want 3", c.Depth)
	}
}

func TestGlobalsAreNotCaptured(t *testing.T) {
	prog := resolveOK(t, symbols.NewProgram(nil), "let g = 1\nfun f() { g }")
	f := function(t, prog, 1)
	if len(f.FreeVars) != 0 {
		t.Errorf("free vars = %+v", f.FreeVars)
	}
	read := f.Body.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.SlotExpression)
	if read.Scope != ast.ScopeGlobal || read.Binding.Captured {
		t.Errorf("read of g = %+v", read)
	}
}

func TestNestedFunctionSeesItself(t *testing.T) {
	prog := resolveOK(t, symbols.NewProgram(nil), "fun f() {\n    fun g() { g() }\n    g()\n}")
	g := function(t, prog, 0).Body.Statements[0].(*ast.FunctionStatement)
	if !g.Binding.Captured || len(g.FreeVars) != 1 || g.FreeVars[0].Binding != g.Binding {
		t.Errorf("g should capture its own binding: %+v", g.FreeVars)
	}
}

func TestTypeReadsShareOneBinding(t *testing.T) {
	p := symbols.NewProgram(nil)
	prog := resolveOK(t, p, "type Point { x: Int }\nlet a = Point\nlet b = Point")
	first := prog.Statements[1].(*ast.LetStatement).Value.(*ast.SlotExpression)
	second := prog.Statements[2].(*ast.LetStatement).Value.(*ast.SlotExpression)
	if first.Binding != second.Binding {
		t.Fatal("type reads should share a binding")
	}
	if !first.Binding.Hidden || first.Binding.TypeValue == nil || first.Binding.Scope != ast.ScopeGlobal {
		t.Errorf("type binding = %+v", first.Binding)
	}
}

func TestQualifiedTypeChain(t *testing.T) {
	p := symbols.NewProgram(host.NewStandardRegistry())
	prog := resolveOK(t, p, "use System\nlet m = System.Math.Abs(1)")
	call := prog.Statements[1].(*ast.LetStatement).Value.(*ast.CallExpression)
	member := call.Function.(*ast.MemberExpression)
	read, ok := member.Left.(*ast.SlotExpression)
	if !ok || read.Binding.TypeValue == nil || read.Name != "System.Math" {
		t.Fatalf("left of .Abs = %#v", member.Left)
	}
	if member.Member.Value != "Abs" {
		t.Errorf("member = %s", member.Member.Value)
	}
}

func TestMatchSubjectAndArmBindings(t *testing.T) {
	src := `fun f(o) {
    match o {
        Some(x) => x,
        _ => 0
    }
}`
	prog := resolveOK(t, symbols.NewProgram(nil), src)
	fn := function(t, prog, 0)
	m := fn.Body.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.MatchExpression)
	if m.SubjectBinding == nil || !m.SubjectBinding.Hidden || m.SubjectBinding.Index != 1 {
		t.Fatalf("subject binding = %+v", m.SubjectBinding)
	}
	x := m.Arms[0].Pattern.(*ast.ConstructorPattern).Args[0].(*ast.BindingPattern)
	if x.Binding.Index != 2 {
		t.Errorf("x slot = %d, want 2", x.Binding.Index)
	}
	if fn.LocalCount != 3 {
		t.Errorf("LocalCount = %d, want 3", fn.LocalCount)
	}
}

func TestPositionalPatternsBindLeftToRight(t *testing.T) {
	src := `union Pair { P(Int, Int) }
fun f(v) {
    match v {
        P(a, b) => a + b
    }
}`
	prog := resolveOK(t, symbols.NewProgram(nil), src)
	fn := function(t, prog, 1)
	m := fn.Body.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.MatchExpression)
	args := m.Arms[0].Pattern.(*ast.ConstructorPattern).Args
	a := args[0].(*ast.BindingPattern).Binding.Index
	b := args[1].(*ast.BindingPattern).Binding.Index
	if a != 2 || b != 3 {
		t.Errorf("a, b slots = %d, %d, want 2, 3", a, b)
	}
}

func TestForLoopHiddenBindings(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, s *ast.ForStatement)
		count int
	}{
		{"range", "fun f() {\n    for i in 0..3 {\n        let y = i\n    }\n}", func(t *testing.T, s *ast.ForStatement) {
			if s.IndexBinding.Index != 0 || s.EndBinding.Index != 1 || s.VarBinding.Index != 2 {
				t.Errorf("slots = %d %d %d", s.IndexBinding.Index, s.EndBinding.Index, s.VarBinding.Index)
			}
			if s.ArrayBinding != nil {
				t.Error("range loops have no array binding")
			}
		}, 4},
		{"array", "fun f(xs) {\n    for v in xs {\n        v\n    }\n}", func(t *testing.T, s *ast.ForStatement) {
			if s.ArrayBinding.Index != 1 || s.IndexBinding.Index != 2 || s.VarBinding.Index != 3 {
				t.Errorf("slots = %d %d %d", s.ArrayBinding.Index, s.IndexBinding.Index, s.VarBinding.Index)
			}
		}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := function(t, resolveOK(t, symbols.NewProgram(nil), tt.src), 0)
			tt.check(t, fn.Body.Statements[0].(*ast.ForStatement))
			if fn.LocalCount != tt.count {
				t.Errorf("LocalCount = %d, want %d", fn.LocalCount, tt.count)
			}
		})
	}
}

func TestUnionVariantsBecomeGlobals(t *testing.T) {
	p := symbols.NewProgram(nil)
	prog := resolveOK(t, p, "union Shape { Circle(Double), Empty }\nlet s = Empty")
	u := prog.Statements[0].(*ast.UnionStatement)
	for _, v := range u.Variants {
		if v.Binding == nil || v.Binding.Scope != ast.ScopeGlobal {
			t.Fatalf("variant %s binding = %+v", v.Name, v.Binding)
		}
	}
	read := prog.Statements[1].(*ast.LetStatement).Value.(*ast.SlotExpression)
	if read.Binding != u.Variants[1].Binding {
		t.Error("Empty should read the variant's global")
	}
	if _, ok := read.Binding.Callable.(*symbols.Constructor); !ok {
		t.Errorf("callable = %T", read.Binding.Callable)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		code     diagnostics.ErrorCode
		fragment string
	}{
		{"unresolved", "let a = b", diagnostics.ErrB001, "undefined identifier b"},
		{"unresolved in function", "fun f() { missing + 1 }", diagnostics.ErrB001, "missing"},
		{"assign to function", "fun f() { 1 }\nf = 2", diagnostics.ErrB003, "cannot assign to f"},
		{"unknown field type", "type A { x: Nope }", diagnostics.ErrB001, "unknown type Nope"},
		{"impl unknown type", "impl Nope {\n    fun f() { 1 }\n}", diagnostics.ErrB001, "unknown type Nope"},
		{"duplicate type", "type A { x: Int }\ntype A { y: Int }", diagnostics.ErrB003, "already defined"},
		{"unknown module", "use Nowhere", diagnostics.ErrB001, "Nowhere"},
		{"nested type", "fun f() {\n    type A { x: Int }\n}", diagnostics.ErrB003, "top level"},
		{"scope closed", "{\n    let inner = 1\n}\nlet y = inner", diagnostics.ErrB001, "inner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, symbols.NewProgram(nil), tt.src, tt.code, tt.fragment)
		})
	}
}

func TestAmbiguousTypeName(t *testing.T) {
	p := symbols.NewProgram(geoLoader{})
	expectError(t, p, "use Geo\ntype Point { x: Int }\nlet p = Point", diagnostics.ErrB002, "Geo.Point, Point")
}

func TestErrorsCarryLocation(t *testing.T) {
	errs := New(symbols.NewProgram(nil)).Resolve(parse(t, "let a = 1\nlet b = nope"))
	if len(errs) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	if errs[0].Line() != 2 || errs[0].Column() != 9 || errs[0].Category() != diagnostics.CategoryBinding {
		t.Errorf("error = %v (%s)", errs[0], errs[0].Category())
	}
}

func TestIncrementalBatchesKeepSlots(t *testing.T) {
	p := symbols.NewProgram(nil)
	first := resolveOK(t, p, "let x = 1")
	second := resolveOK(t, p, "let y = x")
	x := first.Statements[0].(*ast.LetStatement).Binding
	read := second.Statements[0].(*ast.LetStatement).Value.(*ast.SlotExpression)
	if read.Binding != x {
		t.Error("second batch should read the first batch's binding")
	}
	if y := second.Statements[0].(*ast.LetStatement).Binding; y.Index != x.Index+1 {
		t.Errorf("y slot = %d, want %d", y.Index, x.Index+1)
	}
}
