package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quadvoice/internal/logging"
	"quadvoice/internal/store"
)

// Engine drives the four pipeline stages over one shared state. A nil
// generator means every draft uses the local fallback template.
type Engine struct {
	generator Generator
	logger    *slog.Logger
}

// NewEngine constructs a pipeline engine.
func NewEngine(generator Generator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		generator: generator,
		logger:    logging.NewComponentLogger(logger, "workflow"),
	}
}

// StreamItem is one element of a streaming run: a stage event for each of the
// four stages, then a single final item carrying the result.
type StreamItem struct {
	Event  *store.WorkflowEvent
	Result *store.ProjectResult
}

type stageFunc func(ctx context.Context, state *State) error

type stageDef struct {
	node string
	run  stageFunc
}

func (e *Engine) stages() []stageDef {
	return []stageDef{
		{node: NodeIntent, run: e.intentStage},
		{node: NodeAngle, run: e.angleStage},
		{node: NodeDraft, run: e.draftStage},
		{node: NodeRefine, run: e.refineStage},
	}
}

// Run executes all four stages and returns the final result. The result's ID
// is empty; the owning layer assigns it. Run fails only on context
// cancellation since draft errors degrade to the local fallback.
func (e *Engine) Run(ctx context.Context, inputs Inputs) (*store.ProjectResult, error) {
	state := newState(inputs)
	for _, st := range e.stages() {
		if err := e.execStage(ctx, st, state); err != nil {
			return state.result(store.StatusFailed), err
		}
	}
	return state.result(store.StatusCompleted), nil
}

// Stream executes the four stages and delivers each stage's event as it
// completes, followed by one final item carrying the full result. The channel
// is unbuffered, so each stage's event is consumed before the next stage
// starts. The channel closes after the final item, or early when ctx is
// cancelled.
func (e *Engine) Stream(ctx context.Context, inputs Inputs) <-chan StreamItem {
	items := make(chan StreamItem)
	go func() {
		defer close(items)
		state := newState(inputs)
		for _, st := range e.stages() {
			if err := e.execStage(ctx, st, state); err != nil {
				e.emit(ctx, items, StreamItem{Result: state.result(store.StatusFailed)})
				return
			}
			event := state.Events[len(state.Events)-1]
			if !e.emit(ctx, items, StreamItem{Event: &event}) {
				return
			}
		}
		e.emit(ctx, items, StreamItem{Result: state.result(store.StatusCompleted)})
	}()
	return items
}

func (e *Engine) emit(ctx context.Context, items chan<- StreamItem, item StreamItem) bool {
	select {
	case items <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

// execStage runs one stage to completion. Cancellation is checked at the
// stage boundary only; a stage that has started always finishes its state
// mutation and event append.
func (e *Engine) execStage(ctx context.Context, st stageDef, state *State) error {
	if err := ctx.Err(); err != nil {
		state.appendEvent(st.node, err.Error(), store.StatusFailed)
		return err
	}
	started := time.Now()
	if err := st.run(ctx, state); err != nil {
		state.appendEvent(st.node, err.Error(), store.StatusFailed)
		return err
	}
	e.logger.Debug("stage complete",
		logging.String(logging.FieldStage, st.node),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}

func (e *Engine) intentStage(_ context.Context, state *State) error {
	state.IdentitySummary = SummarizeIdentities(state.IdentityChunks)
	state.appendEvent(NodeIntent, "Derived core message from identity: "+state.IdentitySummary, store.StatusProcessing)
	return nil
}

func (e *Engine) angleStage(_ context.Context, state *State) error {
	state.Angles = PlanAngles(state.Theme)
	names := make([]string, 0, len(state.Angles))
	for _, platform := range store.Platforms() {
		names = append(names, string(platform))
	}
	state.appendEvent(NodeAngle, fmt.Sprintf("Angles prepared for: %s", strings.Join(names, ", ")), store.StatusProcessing)
	return nil
}

func (e *Engine) draftStage(ctx context.Context, state *State) error {
	for _, platform := range store.Platforms() {
		state.Outputs[platform] = e.draftArticle(ctx, state, platform)
	}
	state.appendEvent(NodeDraft, "Drafted parallel platform outputs", store.StatusProcessing)
	return nil
}

func (e *Engine) refineStage(_ context.Context, state *State) error {
	state.appendEvent(NodeRefine, "Normalized markdown for each platform", store.StatusCompleted)
	return nil
}
