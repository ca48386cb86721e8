package parser

import (
	"github.com/simon-curtis/jitzu/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	parser := New(ctx.Tokens)
	ctx.AstRoot = parser.ParseProgram()
	ctx.AstRoot.File = ctx.FilePath
	for _, err := range parser.Errors() {
		ctx.AddError(err)
	}
	return ctx
}
