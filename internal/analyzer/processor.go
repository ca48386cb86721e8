package analyzer

import (
	"github.com/simon-curtis/jitzu/internal/pipeline"
)

type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.Program == nil {
		return ctx
	}
	for _, err := range New(ctx.Program).Analyze(ctx.AstRoot) {
		ctx.AddError(err)
	}
	return ctx
}
