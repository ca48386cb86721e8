package pipeline

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Processors see the errors collected so far
// and skip their work once any stage has failed, so a batch either
// compiles completely or reports the first failing stage's diagnostics.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		if ctx.Failed() {
			break
		}
		ctx = processor.Process(ctx)
	}
	return ctx
}
