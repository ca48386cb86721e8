package prettyprinter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/simon-curtis/jitzu/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	"=":  0,
	"|":  1,
	"||": 2,
	"&&": 3,
	"==": 4,
	"!=": 4,
	"<":  5,
	">":  5,
	"<=": 5,
	">=": 5,
	"&":  6,
	"^":  6,
	"<<": 7,
	">>": 7,
	"..": 8,
	"+":  9,
	"-":  9,
	"*":  10,
	"/":  10,
	"%":  10,
	"**": 11,
}

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 12
}

// CodePrinter renders a syntax tree back to source. With ShowSlots set,
// resolved reads and declarations are annotated with their slot, e.g.
// `x@g7` (global 7), `x@l0` (local 0), `x@f1` (captured cell 1); captured
// locals are marked with `*`.
type CodePrinter struct {
	buf       bytes.Buffer
	indent    int
	ShowSlots bool
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Print renders a whole program.
func Print(program *ast.Program) string {
	p := NewCodePrinter()
	p.PrintProgram(program)
	return p.String()
}

// PrintResolved renders a program with slot annotations.
func PrintResolved(program *ast.Program) string {
	p := &CodePrinter{ShowSlots: true}
	p.PrintProgram(program)
	return p.String()
}

func (p *CodePrinter) String() string { return p.buf.String() }

func (p *CodePrinter) write(s string) { p.buf.WriteString(s) }

func (p *CodePrinter) newline() {
	p.buf.WriteByte('\n')
	p.buf.WriteString(strings.Repeat("    ", p.indent))
}

func (p *CodePrinter) PrintProgram(program *ast.Program) {
	for i, stmt := range program.Statements {
		if i > 0 {
			p.write("\n")
		}
		p.printStatement(stmt)
	}
	if len(program.Statements) > 0 {
		p.write("\n")
	}
}

func (p *CodePrinter) binding(name string, b *ast.Binding) string {
	if !p.ShowSlots || b == nil {
		return name
	}
	return name + slotSuffix(b.Scope, b.Index, b.Captured)
}

func slotSuffix(scope ast.SlotScope, index int, captured bool) string {
	var s string
	switch scope {
	case ast.ScopeGlobal:
		s = "@g" + strconv.Itoa(index)
	case ast.ScopeLocal:
		s = "@l" + strconv.Itoa(index)
	case ast.ScopeFree:
		s = "@f" + strconv.Itoa(index)
	}
	if captured {
		s += "*"
	}
	return s
}

func (p *CodePrinter) printStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		p.write("let " + p.binding(s.Name.Value, s.Binding))
		if s.TypeAnnotation != nil {
			p.write(": " + s.TypeAnnotation.String())
		}
		p.write(" = ")
		p.printExpression(s.Value, 0)
	case *ast.ExpressionStatement:
		p.printExpression(s.Expression, 0)
	case *ast.BlockStatement:
		p.printBlock(s)
	case *ast.ReturnStatement:
		p.write("return")
		if s.Value != nil {
			p.write(" ")
			p.printExpression(s.Value, 0)
		}
	case *ast.WhileStatement:
		p.write("while ")
		p.printExpression(s.Condition, 0)
		p.write(" ")
		p.printBlock(s.Body)
	case *ast.ForStatement:
		p.write("for " + p.binding(s.Variable.Value, s.VarBinding) + " in ")
		p.printExpression(s.Iterable, 0)
		p.write(" ")
		p.printBlock(s.Body)
	case *ast.BreakStatement:
		p.write("break")
	case *ast.ContinueStatement:
		p.write("continue")
	case *ast.FunctionStatement:
		p.printFunction(s)
	case *ast.TypeStatement:
		p.write("type " + s.Name.Value + " { ")
		p.printFields(s.Fields, false)
		p.write(" }")
	case *ast.UnionStatement:
		p.write("union " + s.Name.Value + " { ")
		for i, v := range s.Variants {
			if i > 0 {
				p.write(", ")
			}
			p.write(v.Name)
			if len(v.Fields) > 0 {
				p.write("(")
				p.printFields(v.Fields, true)
				p.write(")")
			}
		}
		p.write(" }")
	case *ast.ImplStatement:
		p.write("impl " + s.TypeName.Value + " {")
		p.indent++
		for _, m := range s.Methods {
			p.newline()
			p.printFunction(m)
		}
		p.indent--
		p.newline()
		p.write("}")
	case *ast.UseStatement:
		p.write("use " + strings.Join(s.Path, "."))
	default:
		p.write(fmt.Sprintf("<%T>", stmt))
	}
}

func (p *CodePrinter) printFields(fields []*ast.FieldDecl, positional bool) {
	for i, f := range fields {
		if i > 0 {
			p.write(", ")
		}
		if !positional || !strings.HasPrefix(f.Name, "item") {
			p.write(f.Name + ": ")
		}
		p.write(f.Type.String())
	}
}

func (p *CodePrinter) printFunction(fn *ast.FunctionStatement) {
	p.write("fun " + p.binding(fn.Name.Value, fn.Binding) + "(")
	var params []string
	if fn.HasSelf {
		params = append(params, p.binding("self", fn.SelfBinding))
	}
	for _, param := range fn.Parameters {
		s := p.binding(param.Name.Value, param.Binding)
		if param.Type != nil {
			s += ": " + param.Type.String()
		}
		params = append(params, s)
	}
	p.write(strings.Join(params, ", ") + ")")
	if fn.ReturnType != nil {
		p.write(": " + fn.ReturnType.String())
	}
	p.write(" ")
	p.printBlock(fn.Body)
}

func (p *CodePrinter) printBlock(block *ast.BlockStatement) {
	if len(block.Statements) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.indent++
	for _, stmt := range block.Statements {
		p.newline()
		p.printStatement(stmt)
	}
	p.indent--
	p.newline()
	p.write("}")
}

func (p *CodePrinter) printExpression(expr ast.Expression, parentPrec int) {
	switch e := expr.(type) {
	case *ast.Identifier:
		p.write(e.Value)
	case *ast.SlotExpression:
		if p.ShowSlots {
			p.write(e.Name + slotSuffix(e.Scope, e.Index, e.Binding != nil && e.Binding.Captured))
		} else {
			p.write(e.Name)
		}
	case *ast.IntegerLiteral:
		p.write(strconv.FormatInt(e.Value, 10))
	case *ast.FloatLiteral:
		s := strconv.FormatFloat(e.Value, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		p.write(s)
	case *ast.StringLiteral:
		p.write(quote(e.Value))
	case *ast.CharLiteral:
		p.write(strconv.QuoteRune(e.Value))
	case *ast.BooleanLiteral:
		p.write(strconv.FormatBool(e.Value))
	case *ast.InterpolatedString:
		p.write(`"`)
		for _, part := range e.Parts {
			if s, ok := part.(*ast.StringLiteral); ok {
				q := quote(s.Value)
				p.write(q[1 : len(q)-1])
				continue
			}
			p.write("{")
			p.printExpression(part, 0)
			p.write("}")
		}
		p.write(`"`)
	case *ast.ArrayLiteral:
		p.write("[")
		p.printList(e.Elements)
		p.write("]")
	case *ast.PrefixExpression:
		p.write(e.Operator)
		p.printExpression(e.Right, getPrecedence("**")+1)
	case *ast.InfixExpression:
		prec := getPrecedence(e.Operator)
		if prec < parentPrec {
			p.write("(")
		}
		p.printExpression(e.Left, prec)
		p.write(" " + e.Operator + " ")
		p.printExpression(e.Right, prec+1)
		if prec < parentPrec {
			p.write(")")
		}
	case *ast.AssignExpression:
		if parentPrec > 0 {
			p.write("(")
		}
		p.printExpression(e.Target, 1)
		p.write(" = ")
		p.printExpression(e.Value, 0)
		if parentPrec > 0 {
			p.write(")")
		}
	case *ast.RangeExpression:
		p.printExpression(e.Start, getPrecedence("..")+1)
		p.write("..")
		p.printExpression(e.End, getPrecedence("..")+1)
	case *ast.CallExpression:
		if e.Receiver != nil {
			p.printExpression(e.Receiver, 13)
			p.write("." + e.Target.CallableName())
		} else {
			p.printExpression(e.Function, 13)
		}
		p.write("(")
		p.printList(e.Arguments)
		p.write(")")
	case *ast.MemberExpression:
		p.printExpression(e.Left, 13)
		p.write("." + e.Member.Value)
	case *ast.IndexExpression:
		p.printExpression(e.Left, 13)
		p.write("[")
		p.printExpression(e.Index, 0)
		p.write("]")
	case *ast.NewExpression:
		p.write(e.Name.Name() + " { ")
		for i, f := range e.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.write(f.Name + " = ")
			p.printExpression(f.Value, 1)
		}
		p.write(" }")
	case *ast.TryExpression:
		p.write("try ")
		p.printExpression(e.Value, 13)
	case *ast.BlockStatement:
		p.printBlock(e)
	case *ast.IfExpression:
		p.write("if ")
		p.printExpression(e.Condition, 0)
		p.write(" ")
		p.printBlock(e.Consequence)
		if e.Alternative != nil {
			p.write(" else ")
			p.printExpression(e.Alternative, 0)
		}
	case *ast.MatchExpression:
		p.write("match ")
		if p.ShowSlots && e.SubjectBinding != nil {
			p.write(p.binding(e.SubjectBinding.Name, e.SubjectBinding) + " = ")
		}
		p.printExpression(e.Subject, 0)
		p.write(" {")
		p.indent++
		for _, arm := range e.Arms {
			p.newline()
			p.printPattern(arm.Pattern)
			p.write(" => ")
			p.printExpression(arm.Body, 0)
		}
		p.indent--
		p.newline()
		p.write("}")
	default:
		p.write(fmt.Sprintf("<%T>", expr))
	}
}

func (p *CodePrinter) printList(list []ast.Expression) {
	for i, e := range list {
		if i > 0 {
			p.write(", ")
		}
		p.printExpression(e, 0)
	}
}

func (p *CodePrinter) printPattern(pat ast.Pattern) {
	switch pt := pat.(type) {
	case *ast.WildcardPattern:
		p.write("_")
	case *ast.LiteralPattern:
		p.printExpression(pt.Value, 0)
	case *ast.BindingPattern:
		p.write(p.binding(pt.Name.Value, pt.Binding))
	case *ast.ConstructorPattern:
		p.write(strings.Join(pt.Name, "."))
		if len(pt.Args) > 0 {
			p.write("(")
			for i, a := range pt.Args {
				if i > 0 {
					p.write(", ")
				}
				p.printPattern(a)
			}
			p.write(")")
		}
	}
}

func quote(s string) string {
	q := strconv.Quote(s)
	return strings.NewReplacer("{", `\{`, "}", `\}`).Replace(q)
}
