// Package jitzu embeds the compiler and executor.
//
// An Engine owns one program: every batch passed to Extend is compiled
// against the declarations of the batches before it and run on the same
// machine, so its globals and functions stay visible to later batches. A
// batch that fails to compile leaves the program as it was.
//
// An Engine is not safe for concurrent use.
package jitzu

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/simon-curtis/jitzu/internal/analyzer"
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/host"
	"github.com/simon-curtis/jitzu/internal/lexer"
	"github.com/simon-curtis/jitzu/internal/object"
	"github.com/simon-curtis/jitzu/internal/parser"
	"github.com/simon-curtis/jitzu/internal/pipeline"
	"github.com/simon-curtis/jitzu/internal/resolver"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/vm"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jitzu")

// DefaultFile names batches passed without a file name.
const DefaultFile = "<input>"

// CompileError carries every diagnostic of a batch that failed to compile.
type CompileError struct {
	Errors []*diagnostics.DiagnosticError
}

func (e *CompileError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, d := range e.Errors {
		msgs[i] = d.Error()
	}
	return strings.Join(msgs, "\n")
}

// Engine compiles and runs batches against one persistent program.
type Engine struct {
	registry *host.Registry
	program  *symbols.Program
	machine  *vm.VM
	cfg      *config.Config
}

// New creates an engine configured by cfg (config.Default() when nil):
// its manifests are added to the host registry and its preloaded modules
// are in scope before the first batch.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	registry := host.NewStandardRegistry()
	for _, path := range cfg.ManifestPaths() {
		if err := registry.AddManifestFile(path); err != nil {
			return nil, fmt.Errorf("loading host manifest: %w", err)
		}
	}
	e := &Engine{
		registry: registry,
		program:  symbols.NewProgram(registry),
		machine:  vm.New(),
		cfg:      cfg,
	}
	for _, name := range cfg.Preload {
		if err := e.program.UseModule(name); err != nil {
			return nil, fmt.Errorf("preloading %s: %w", name, err)
		}
	}
	e.SetOutput(os.Stdout)
	log.Debugf("engine ready: %d host modules, %d preloaded", len(registry.Modules()), len(cfg.Preload))
	return e, nil
}

// SetOutput redirects print and System.Console.
func (e *Engine) SetOutput(w io.Writer) {
	e.program.SetOutput(w)
	e.registry.SetOutput(w)
}

// SetContext sets the context checked by running loops.
func (e *Engine) SetContext(ctx context.Context) {
	e.machine.Context = ctx
}

// Program returns the engine's program.
func (e *Engine) Program() *symbols.Program { return e.program }

// Config returns the engine's configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// Compile runs all passes over one batch and keeps its declarations. The
// returned script stores the batch's new globals when it runs, so it must
// be run before the next batch is compiled.
func (e *Engine) Compile(source, file string) (*bytecode.Function, error) {
	if file == "" {
		file = DefaultFile
	}
	e.program.Begin()
	ctx := pipeline.NewPipelineContext(source, file, e.program)
	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&vm.CompilerProcessor{},
	).Run(ctx)
	if ctx.Failed() {
		e.program.Rollback()
		return nil, &CompileError{Errors: ctx.Errors}
	}
	e.program.Commit()
	if e.cfg.Disasm {
		fmt.Fprint(os.Stderr, bytecode.DisassembleAll(ctx.Script.Chunk, file))
	}
	return ctx.Script, nil
}

// Check resolves and type checks one batch without keeping it: the
// program is left as it was whether or not the batch is valid. The
// returned tree carries slot and type annotations.
func (e *Engine) Check(source, file string) (*ast.Program, error) {
	if file == "" {
		file = DefaultFile
	}
	e.program.Begin()
	defer e.program.Rollback()
	ctx := pipeline.NewPipelineContext(source, file, e.program)
	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
	).Run(ctx)
	if ctx.Failed() {
		return nil, &CompileError{Errors: ctx.Errors}
	}
	return ctx.AstRoot, nil
}

// Run executes a compiled script and returns the value of its trailing
// expression.
func (e *Engine) Run(script *bytecode.Function) (object.Object, error) {
	return e.machine.Run(script)
}

// Extend compiles one batch against the program and runs it.
func (e *Engine) Extend(source string) (object.Object, error) {
	return e.ExtendFile(source, DefaultFile)
}

// ExtendFile is Extend with a file name for diagnostics.
func (e *Engine) ExtendFile(source, file string) (object.Object, error) {
	script, err := e.Compile(source, file)
	if err != nil {
		return nil, err
	}
	return e.Run(script)
}

// Global returns the current value of a top-level binding.
func (e *Engine) Global(name string) (object.Object, bool) {
	b, ok := e.program.Global().Lookup(name)
	if !ok {
		return nil, false
	}
	return e.machine.Global(b.Index)
}
