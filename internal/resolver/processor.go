package resolver

import (
	"github.com/simon-curtis/jitzu/internal/pipeline"
)

type ResolverProcessor struct{}

func (rp *ResolverProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.Program == nil {
		return ctx
	}
	for _, err := range New(ctx.Program).Resolve(ctx.AstRoot) {
		ctx.AddError(err)
	}
	return ctx
}
