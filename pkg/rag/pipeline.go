package rag

import (
	"context"

	"reasonmed-be/internal/pkg/logger"
	"reasonmed-be/pkg/apperrors"
	"reasonmed-be/pkg/llm"
)

// StreamEventKind tags events produced by RunStreaming.
type StreamEventKind string

const (
	StreamEventRetrieved StreamEventKind = "retrieved"
	StreamEventChunk     StreamEventKind = "chunk"
	StreamEventComplete  StreamEventKind = "complete"
	StreamEventError     StreamEventKind = "error"
)

// RetrievedPayload accompanies the single retrieved event, carrying the full
// document set computed eagerly before generation starts.
type RetrievedPayload struct {
	NumDocuments int                 `json:"num_documents"`
	Documents    []RetrievedDocument `json:"documents"`
}

// StreamEvent is one tagged event of a streaming run. Exactly one field
// besides Kind is populated, matching the tag.
type StreamEvent struct {
	Kind      StreamEventKind
	Retrieved *RetrievedPayload
	Chunk     string
	Err       error
}

// RunOption carries per-call overrides. Configuration travels as call
// parameters, never as mutable state on a shared pipeline instance, so one
// pipeline may serve concurrent callers.
type RunOption func(*runOptions)

type runOptions struct {
	topK         int
	filter       map[string]string
	model        string
	systemPrompt string
}

func WithTopK(topK int) RunOption {
	return func(o *runOptions) {
		o.topK = topK
	}
}

func WithFilter(filter map[string]string) RunOption {
	return func(o *runOptions) {
		o.filter = filter
	}
}

func WithGenerationModel(model string) RunOption {
	return func(o *runOptions) {
		o.model = model
	}
}

func WithSystemPrompt(prompt string) RunOption {
	return func(o *runOptions) {
		o.systemPrompt = prompt
	}
}

// Pipeline chains retrieval and generation. Each call is a strictly
// sequential chain of blocking collaborator calls; retrieval completes fully
// before generation begins, even when streaming.
type Pipeline struct {
	retriever *Retriever
	generator *Generator
	topK      int
	logger    logger.ILogger
}

func NewPipeline(retriever *Retriever, generator *Generator, topK int, log logger.ILogger) (*Pipeline, error) {
	if topK < 1 {
		return nil, apperrors.NewValidationError("topK must be >= 1, got %d", topK)
	}
	return &Pipeline{
		retriever: retriever,
		generator: generator,
		topK:      topK,
		logger:    log,
	}, nil
}

func (p *Pipeline) resolveOptions(opts []RunOption) (*runOptions, error) {
	options := &runOptions{topK: p.topK}
	for _, opt := range opts {
		opt(options)
	}
	if options.topK < 1 {
		return nil, apperrors.NewValidationError("topK must be >= 1, got %d", options.topK)
	}
	return options, nil
}

func (p *Pipeline) generationOptions(options *runOptions) []llm.Option {
	var llmOpts []llm.Option
	if options.model != "" {
		llmOpts = append(llmOpts, llm.WithModel(options.model))
	}
	return llmOpts
}

// Run executes retrieve → format → generate and assembles the full result.
// Either a complete Result is returned or an error; never a partial one.
func (p *Pipeline) Run(ctx context.Context, query string, opts ...RunOption) (*Result, error) {
	options, err := p.resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	docs, err := p.retriever.Retrieve(ctx, query, options.topK, options.filter)
	if err != nil {
		return nil, err
	}

	contextText := p.retriever.FormatContext(docs)

	response, err := p.generator.Generate(ctx, query, contextText, options.systemPrompt, p.generationOptions(options)...)
	if err != nil {
		return nil, err
	}

	return &Result{
		Query:              query,
		RetrievedDocuments: docs,
		Context:            contextText,
		Response:           response,
	}, nil
}

// RunStreaming executes the pipeline and delivers tagged events: exactly one
// retrieved event, then zero or more chunk events, then one terminal
// complete event. On failure the sequence ends with an error event instead
// of complete. Abandoning the stream (cancelling ctx or dropping the
// channel) is not an error; the producer stops at the next send.
func (p *Pipeline) RunStreaming(ctx context.Context, query string, opts ...RunOption) <-chan StreamEvent {
	events := make(chan StreamEvent, 4)

	go func() {
		defer close(events)

		options, err := p.resolveOptions(opts)
		if err != nil {
			p.sendEvent(ctx, events, StreamEvent{Kind: StreamEventError, Err: err})
			return
		}

		docs, err := p.retriever.Retrieve(ctx, query, options.topK, options.filter)
		if err != nil {
			p.sendEvent(ctx, events, StreamEvent{Kind: StreamEventError, Err: err})
			return
		}
		contextText := p.retriever.FormatContext(docs)

		if !p.sendEvent(ctx, events, StreamEvent{
			Kind: StreamEventRetrieved,
			Retrieved: &RetrievedPayload{
				NumDocuments: len(docs),
				Documents:    docs,
			},
		}) {
			return
		}

		chunks, err := p.generator.GenerateStream(ctx, query, contextText, options.systemPrompt, p.generationOptions(options)...)
		if err != nil {
			p.sendEvent(ctx, events, StreamEvent{Kind: StreamEventError, Err: err})
			return
		}

		for chunk := range chunks {
			if chunk.Err != nil {
				p.sendEvent(ctx, events, StreamEvent{Kind: StreamEventError, Err: chunk.Err})
				return
			}
			if !p.sendEvent(ctx, events, StreamEvent{Kind: StreamEventChunk, Chunk: chunk.Content}) {
				return
			}
		}

		p.sendEvent(ctx, events, StreamEvent{Kind: StreamEventComplete})
	}()

	return events
}

func (p *Pipeline) sendEvent(ctx context.Context, events chan<- StreamEvent, event StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- event:
		return true
	}
}
