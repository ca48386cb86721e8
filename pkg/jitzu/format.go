package jitzu

import (
	"github.com/simon-curtis/jitzu/internal/lexer"
	"github.com/simon-curtis/jitzu/internal/parser"
	"github.com/simon-curtis/jitzu/internal/pipeline"
	"github.com/simon-curtis/jitzu/internal/prettyprinter"
)

// Format parses source and prints it in canonical layout. Only syntax is
// checked. Comments are not kept.
func Format(source, file string) (string, error) {
	if file == "" {
		file = DefaultFile
	}
	ctx := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
	).Run(pipeline.NewPipelineContext(source, file, nil))
	if ctx.Failed() {
		return "", &CompileError{Errors: ctx.Errors}
	}
	return prettyprinter.Print(ctx.AstRoot), nil
}
