package pipeline

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/bytecode"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/token"
)

// Processor is one stage of the compile pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries one batch of source through the stages. Program
// outlives the batch: incremental compiles reuse it.
type PipelineContext struct {
	Source   string
	FilePath string

	Tokens  []token.Token
	AstRoot *ast.Program
	Program *symbols.Program
	Script  *bytecode.Function

	Errors []*diagnostics.DiagnosticError
}

func NewPipelineContext(source, filePath string, program *symbols.Program) *PipelineContext {
	return &PipelineContext{Source: source, FilePath: filePath, Program: program}
}

// Failed reports whether any stage has recorded an error.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// AddError records a diagnostic, filling in the file when missing.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}
