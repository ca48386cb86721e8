package jitzu_test

import (
	"fmt"
	"strings"
)

// byteSource turns fuzzer input into choices. Exhausted input always
// picks 0, so every input yields a finite program.
type byteSource struct {
	data []byte
	pos  int
}

func (s *byteSource) intn(n int) int {
	if n <= 0 || s.pos >= len(s.data) {
		return 0
	}
	v := int(s.data[s.pos])
	s.pos++
	return v % n
}

const (
	maxDepth      = 3
	maxStatements = 4
)

// programGen generates well-scoped, Int-typed programs: every name is
// declared before use and functions only call functions declared before
// them, so programs terminate.
type programGen struct {
	src    *byteSource
	depth  int
	scopes [][]string
	lets   map[string]bool
	funcs  []string
	id     int
}

func newProgramGen(data []byte) *programGen {
	return &programGen{
		src:    &byteSource{data: data},
		scopes: [][]string{nil},
		lets:   make(map[string]bool),
	}
}

func (g *programGen) program() string {
	var sb strings.Builder
	for range g.src.intn(maxStatements) + 1 {
		sb.WriteString(g.statement())
		sb.WriteString("\n")
	}
	return sb.String()
}

func (g *programGen) fresh(prefix string) string {
	g.id++
	return fmt.Sprintf("%s%d", prefix, g.id)
}

func (g *programGen) declare(name string) {
	top := len(g.scopes) - 1
	g.scopes[top] = append(g.scopes[top], name)
}

func (g *programGen) visible() []string {
	var names []string
	for _, s := range g.scopes {
		names = append(names, s...)
	}
	return names
}

func (g *programGen) assignable() []string {
	var names []string
	for _, n := range g.visible() {
		if g.lets[n] {
			names = append(names, n)
		}
	}
	return names
}

func (g *programGen) block(extra ...string) string {
	g.depth++
	g.scopes = append(g.scopes, extra)
	var lines []string
	for range g.src.intn(maxStatements) + 1 {
		lines = append(lines, g.statement())
	}
	g.scopes = g.scopes[:len(g.scopes)-1]
	g.depth--
	return "{\n" + strings.Join(lines, "\n") + "\n}"
}

func (g *programGen) statement() string {
	choices := 3
	if g.depth < maxDepth {
		choices = 5
		if g.depth == 0 {
			choices = 6
		}
	}
	switch g.src.intn(choices) {
	case 0:
		name := g.fresh("v")
		value := g.intExpr(0)
		g.declare(name)
		g.lets[name] = true
		return fmt.Sprintf("let %s = %s", name, value)
	case 1:
		return fmt.Sprintf("print(%s)", g.intExpr(0))
	case 2:
		targets := g.assignable()
		if len(targets) == 0 {
			return fmt.Sprintf("print(%s)", g.intExpr(0))
		}
		target := targets[g.src.intn(len(targets))]
		return fmt.Sprintf("%s = %s", target, g.intExpr(0))
	case 3:
		cond := g.condition()
		return fmt.Sprintf("if %s %s else %s", cond, g.block(), g.block())
	case 4:
		v := g.fresh("i")
		return fmt.Sprintf("for %s in 0..%d %s", v, g.src.intn(4), g.block(v))
	default:
		name := g.fresh("f")
		param := g.fresh("p")
		g.scopes = append(g.scopes, []string{param})
		body := g.intExpr(0)
		g.scopes = g.scopes[:len(g.scopes)-1]
		g.declare(name)
		g.funcs = append(g.funcs, name)
		return fmt.Sprintf("fun %s(%s: Int): Int { %s }", name, param, body)
	}
}

func (g *programGen) condition() string {
	ops := []string{"<", "==", ">=", "!="}
	return fmt.Sprintf("%s %s %s", g.intExpr(2), ops[g.src.intn(len(ops))], g.intExpr(2))
}

func (g *programGen) intExpr(depth int) string {
	if depth >= 3 || g.src.intn(3) == 0 {
		return g.leaf()
	}
	switch g.src.intn(4) {
	case 0, 1:
		ops := []string{"+", "-", "*"}
		return fmt.Sprintf("%s %s %s", g.intExpr(depth+1), ops[g.src.intn(len(ops))], g.intExpr(depth+1))
	case 2:
		if len(g.funcs) > 0 {
			return fmt.Sprintf("%s(%s)", g.funcs[g.src.intn(len(g.funcs))], g.intExpr(depth+1))
		}
		return fmt.Sprintf("(%s)", g.intExpr(depth+1))
	default:
		return fmt.Sprintf("(if %s { %s } else { %s })", g.condition(), g.intExpr(depth+1), g.intExpr(depth+1))
	}
}

func (g *programGen) leaf() string {
	var vars []string
	for _, n := range g.visible() {
		if !strings.HasPrefix(n, "f") {
			vars = append(vars, n)
		}
	}
	if len(vars) > 0 && g.src.intn(2) == 0 {
		return vars[g.src.intn(len(vars))]
	}
	return fmt.Sprint(g.src.intn(10))
}
