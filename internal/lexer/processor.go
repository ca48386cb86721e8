package lexer

import (
	"github.com/simon-curtis/jitzu/internal/pipeline"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.Source)
	l.SetFile(ctx.FilePath)
	ctx.Tokens = l.Tokenize()
	for _, err := range l.Errors() {
		ctx.AddError(err)
	}
	return ctx
}
