package vm

import (
	"errors"

	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/pipeline"
)

// CompilerProcessor is the last compile stage: it emits the batch and sets
// ctx.Script.
type CompilerProcessor struct{}

func (cp *CompilerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.Program == nil {
		return ctx
	}
	script, err := NewCompiler(ctx.Program).Compile(ctx.AstRoot)
	if err != nil {
		var diag *diagnostics.DiagnosticError
		if !errors.As(err, &diag) {
			diag = diagnostics.NewError(diagnostics.ErrU001, ctx.AstRoot.GetToken(), err.Error())
		}
		ctx.AddError(diag)
		return ctx
	}
	ctx.Script = script
	return ctx
}
