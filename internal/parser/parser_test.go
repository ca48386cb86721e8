package parser_test

import (
	"strings"
	"testing"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/lexer"
	"github.com/simon-curtis/jitzu/internal/parser"
	"github.com/simon-curtis/jitzu/internal/pipeline"
	"github.com/simon-curtis/jitzu/internal/prettyprinter"
)

func parseWithErrors(input string) (*ast.Program, []*diagnostics.DiagnosticError) {
	ctx := pipeline.NewPipelineContext(input, "test.jz", nil)
	lp := &lexer.LexerProcessor{}
	ctx = lp.Process(ctx)
	pp := &parser.ParserProcessor{}
	ctx = pp.Process(ctx)
	return ctx.AstRoot, ctx.Errors
}

func parseOK(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, errs := parseWithErrors(input)
	if len(errs) > 0 {
		var msgs []string
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("expected no errors, got:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
	return program
}

// expectError asserts an error with the given code was reported.
func expectError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	_, errs := parseWithErrors(input)
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	var msgs []string
	for _, e := range errs {
		if e.Code == code {
			return e
		}
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, strings.Join(msgs, "\n"), input)
	return nil
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"let x = 1 + 2 * 3", "let x = 1 + 2 * 3"},
		{"(1 + 2) * 3", "(1 + 2) * 3"},
		{"a - (b - c)", "a - (b - c)"},
		{"2 ** 3 ** 2", "2 ** (3 ** 2)"},
		{"-x * 2", "-x * 2"},
		{"!a && b || c", "!a && b || c"},
		{"a | f(b)", "a | f(b)"},
		{"x = y = 3", "x = y = 3"},
		{"p.x = 3", "p.x = 3"},
		{"a.b.c(1, 2)", "a.b.c(1, 2)"},
		{"arr[0]", "arr[0]"},
		{"try f()", "try f()"},
		{"let y: Int = 2", "let y: Int = 2"},
		{"let mut z = 2.5", "let z = 2.5"},
		{"let xs: Int[] = [1, 2, 3]", "let xs: Int[] = [1, 2, 3]"},
		{"let o: Option<Result<Int, String>> = None", "let o: Option<Result<Int, String>> = None"},
		{`let s = "hi {name}!"`, `let s = "hi {name}!"`},
		{`let s = "{a + 1}"`, `let s = "{a + 1}"`},
		{`let s = "\{literal\}"`, `let s = "\{literal\}"`},
		{"let c = 'a'", "let c = 'a'"},
		{"let p = Point { x = 1, y = 2 }", "let p = Point { x = 1, y = 2 }"},
		{"let q = Geo.Point { x = 1 }", "let q = Geo.Point { x = 1 }"},
		{"use System.Text", "use System.Text"},
		{"type Point { x: Int, y: Int }", "type Point { x: Int, y: Int }"},
		{
			"union Shape { Circle(radius: Double), Rect(Double, Double), Empty }",
			"union Shape { Circle(radius: Double), Rect(Double, Double), Empty }",
		},
		{
			"fun add(a: Int, b: Int): Int { a + b }",
			"fun add(a: Int, b: Int): Int {\n    a + b\n}",
		},
		{
			"fun id(a) -> Int { return a }",
			"fun id(a): Int {\n    return a\n}",
		},
		{
			"impl Point { fun sum(self): Int { self.x + self.y } }",
			"impl Point {\n    fun sum(self): Int {\n        self.x + self.y\n    }\n}",
		},
		{
			"if a { 1 } else if b { 2 } else { 3 }",
			"if a {\n    1\n} else if b {\n    2\n} else {\n    3\n}",
		},
		{
			"if a {\n  1\n}\nelse {\n  2\n}",
			"if a {\n    1\n} else {\n    2\n}",
		},
		{
			"if Ready { 1 }",
			"if Ready {\n    1\n}",
		},
		{
			"while i < 10 { i = i + 1 }",
			"while i < 10 {\n    i = i + 1\n}",
		},
		{
			"for i in 0..10 { print(i) }",
			"for i in 0..10 {\n    print(i)\n}",
		},
		{
			"while true { break; continue }",
			"while true {\n    break\n    continue\n}",
		},
		{
			"match s { Circle(r) => r, Rect(w, 2.0) => w, Shape.Empty => 0.0, -1 => 1.0, _ => 1.0 }",
			"match s {\n    Circle(r) => r\n    Rect(w, 2.0) => w\n    Shape.Empty => 0.0\n    -1 => 1.0\n    _ => 1.0\n}",
		},
		{"let x = 1; let y = 2", "let x = 1\nlet y = 2"},
		{"{ let x = 2 }", "{\n    let x = 2\n}"},
		{"f(\n  1,\n  2,\n)", "f(1, 2)"},
	}

	for _, tt := range tests {
		program := parseOK(t, tt.input)
		got := strings.TrimSuffix(prettyprinter.Print(program), "\n")
		if got != tt.expected {
			t.Errorf("input %q:\nexpected:\n%s\ngot:\n%s", tt.input, tt.expected, got)
		}
	}
}

func TestPipeParsesAsInfix(t *testing.T) {
	program := parseOK(t, "a | f(b)")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	infix, ok := stmt.Expression.(*ast.InfixExpression)
	if !ok || infix.Operator != "|" {
		t.Fatalf("expected | infix, got %T", stmt.Expression)
	}
	if _, ok := infix.Right.(*ast.CallExpression); !ok {
		t.Errorf("expected call on the right of |, got %T", infix.Right)
	}
}

func TestPositionalVariantFieldNames(t *testing.T) {
	program := parseOK(t, "union Shape { Rect(Double, h: Double) }")
	union := program.Statements[0].(*ast.UnionStatement)
	fields := union.Variants[0].Fields
	if fields[0].Name != "item1" || fields[1].Name != "h" {
		t.Errorf("unexpected field names %s, %s", fields[0].Name, fields[1].Name)
	}
}

func TestInterpolationPositions(t *testing.T) {
	program := parseOK(t, `let s = "ab{x}"`)
	let := program.Statements[0].(*ast.LetStatement)
	interp := let.Value.(*ast.InterpolatedString)
	ident := interp.Parts[1].(*ast.Identifier)
	if ident.Token.Line != 1 || ident.Token.Column != 13 {
		t.Errorf("expected x at 1:13, got %d:%d", ident.Token.Line, ident.Token.Column)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
	}{
		{"missing let name", "let = 5", diagnostics.ErrP001},
		{"missing separator", "1 2", diagnostics.ErrP001},
		{"invalid assignment target", "1 = 2", diagnostics.ErrP001},
		{"unclosed block", "{ let x = 1", diagnostics.ErrP001},
		{"no prefix", "let x = )", diagnostics.ErrP002},
		{"lower-case type", "type point { x: Int }", diagnostics.ErrP004},
		{"self outside impl", "fun f(self) {}", diagnostics.ErrP004},
		{"empty match", "match x { }", diagnostics.ErrP004},
		{"empty union", "union U {}", diagnostics.ErrP004},
		{"duplicate field init", "Point { x = 1, x = 2 }", diagnostics.ErrP004},
		{"duplicate field decl", "type P { x: Int, x: Int }", diagnostics.ErrP004},
		{"bad pattern", "match x { + => 1 }", diagnostics.ErrP004},
		{"statement in impl", "impl P { let x = 1 }", diagnostics.ErrP004},
		{"illegal character", "let x = @", diagnostics.ErrL001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.input, tt.code)
		})
	}
}

func TestErrorLocation(t *testing.T) {
	err := expectError(t, "let a = 1\n1 2", diagnostics.ErrP001)
	if err.Line() != 2 || err.Column() != 3 {
		t.Errorf("expected error at 2:3, got %d:%d", err.Line(), err.Column())
	}
	if err.File != "test.jz" {
		t.Errorf("expected file test.jz, got %q", err.File)
	}
	if err.Category() != diagnostics.CategoryParse {
		t.Errorf("expected ParseError category, got %s", err.Category())
	}
}

func TestRecoversAfterError(t *testing.T) {
	program, errs := parseWithErrors("let = 1\nlet y = 2")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if len(program.Statements) != 1 {
		t.Fatalf("expected the second statement to parse, got %d statements", len(program.Statements))
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Int", "Int"},
		{"T[]", "T[]"},
		{"System.Collections.List<T>", "System.Collections.List<T>"},
		{"Result<Option<Int>, String>", "Result<Option<Int>, String>"},
		{"Option<Int[]>[]", "Option<Int[]>[]"},
	}
	for _, tt := range tests {
		typ, err := parser.ParseType(tt.input)
		if err != nil {
			t.Errorf("%s: %v", tt.input, err)
			continue
		}
		if typ.String() != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, typ.String())
		}
	}
	if _, err := parser.ParseType("Int Int"); err == nil {
		t.Errorf("expected trailing tokens to fail")
	}
}
