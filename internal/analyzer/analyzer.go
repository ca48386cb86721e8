// Package analyzer assigns a static type to every expression of a
// slot-resolved batch and resolves every call to one callable.
//
// Analysis runs in two traversals sharing the program's tables. The
// headers pass fixes parameter types and declared return types of every
// top-level function and impl method, so that bodies may call functions
// declared later in the batch. The bodies pass then walks statements
// depth-first, inferring missing return types on first use.
package analyzer

import (
	"fmt"
	"sort"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/typesystem"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jitzu.analyzer")

// Analyzer performs type and call resolution against a program.
type Analyzer struct {
	program *symbols.Program
}

func New(program *symbols.Program) *Analyzer {
	return &Analyzer{program: program}
}

type AnalysisMode int

const (
	ModeHeaders AnalysisMode = iota // Pass 1: signatures
	ModeBodies                      // Pass 2: bodies and expressions
)

type walker struct {
	program  *symbols.Program
	mode     AnalysisMode
	errorSet map[string]*diagnostics.DiagnosticError // Key: "line:col:code" for deduplication

	fn *funcContext // function whose body is being analyzed, nil at top level

	// analyzing holds functions whose bodies are on the stack, for
	// detecting recursion through an unannotated return type.
	analyzing map[*symbols.UserFunction]bool
	analyzed  map[*ast.FunctionStatement]bool
}

// funcContext collects what a function body returns.
type funcContext struct {
	user    *symbols.UserFunction
	returns []returnSite
}

type returnSite struct {
	node ast.Node
	typ  typesystem.Type
}

func (a *Analyzer) newWalker(mode AnalysisMode) *walker {
	return &walker{
		program:   a.program,
		mode:      mode,
		errorSet:  make(map[string]*diagnostics.DiagnosticError),
		analyzing: make(map[*symbols.UserFunction]bool),
		analyzed:  make(map[*ast.FunctionStatement]bool),
	}
}

// Analyze runs both passes. Bodies are not analyzed when the headers
// failed.
func (a *Analyzer) Analyze(program *ast.Program) []*diagnostics.DiagnosticError {
	if errs := a.AnalyzeHeaders(program); len(errs) > 0 {
		return errs
	}
	return a.AnalyzeBodies(program)
}

func (a *Analyzer) AnalyzeHeaders(program *ast.Program) []*diagnostics.DiagnosticError {
	w := a.newWalker(ModeHeaders)
	count := 0
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionStatement:
			w.declareHeader(s)
			count++
		case *ast.ImplStatement:
			for _, m := range s.Methods {
				w.declareHeader(m)
				count++
			}
		}
	}
	log.Debugf("headers: %d signatures", count)
	return w.getErrors()
}

func (a *Analyzer) AnalyzeBodies(program *ast.Program) []*diagnostics.DiagnosticError {
	w := a.newWalker(ModeBodies)
	for _, stmt := range program.Statements {
		w.analyzeStatement(stmt, true)
	}
	log.Debugf("bodies: %d statements, %d functions", len(program.Statements), len(w.analyzed))
	return w.getErrors()
}

// addError adds an error to the walker, deduplicating by position and code
func (w *walker) addError(err *diagnostics.DiagnosticError) {
	key := fmt.Sprintf("%d:%d:%s", err.Token.Line, err.Token.Column, err.Code)
	if _, exists := w.errorSet[key]; !exists {
		w.errorSet[key] = err
	}
}

func (w *walker) errorf(node ast.Node, code diagnostics.ErrorCode, format string, args ...interface{}) {
	w.addError(diagnostics.Errorf(code, node.GetToken(), format, args...))
}

// getErrors returns all unique errors as a slice, sorted by position
func (w *walker) getErrors() []*diagnostics.DiagnosticError {
	result := make([]*diagnostics.DiagnosticError, 0, len(w.errorSet))
	for _, err := range w.errorSet {
		result = append(result, err)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Token.Line != result[j].Token.Line {
			return result[i].Token.Line < result[j].Token.Line
		}
		return result[i].Token.Column < result[j].Token.Column
	})
	return result
}
