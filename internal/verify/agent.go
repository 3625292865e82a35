package verify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/checkpoint/internal/api"
	"github.com/ShayCichocki/checkpoint/internal/evidence"
)

// ModelClient is the function-calling surface the agent needs from a model
// provider. api.Client satisfies it; tests substitute fakes.
type ModelClient interface {
	GenerateWithTools(ctx context.Context, system string, messages []anthropic.MessageParam, tools []anthropic.ToolUnionParam, temperature float64, maxTokens int64) (*api.Turn, error)
}

// ToolExecutor runs one named tool call. evidence.Dispatcher satisfies it.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage, token string) evidence.Result
}

// Agent drives the model/tool conversation for one verification run.
type Agent struct {
	model         ModelClient
	tools         ToolExecutor
	signals       *SignalManager
	onEvent       func(Event)
	maxIterations int
	temperature   float64
	maxTokens     int64
}

// AgentConfig contains configuration for creating an Agent.
type AgentConfig struct {
	Model ModelClient
	Tools ToolExecutor
	// Signals is optional; when set, a stop signal ends the run between
	// iterations.
	Signals *SignalManager
	// MaxIterations caps model turns (0 = default 5).
	MaxIterations int
	// Temperature for model calls. Verification must be reproducible for
	// the same diff, so the default is 0.
	Temperature float64
	// MaxTokens bounds each model response (0 = default 4000).
	MaxTokens int64
}

// NewAgent creates a verification agent.
func NewAgent(cfg AgentConfig) *Agent {
	maxIter := cfg.MaxIterations
	if maxIter == 0 {
		maxIter = 5
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4000
	}

	return &Agent{
		model:         cfg.Model,
		tools:         cfg.Tools,
		signals:       cfg.Signals,
		maxIterations: maxIter,
		temperature:   cfg.Temperature,
		maxTokens:     maxTokens,
	}
}

// SetEventHandler sets a callback for streaming events during execution.
func (a *Agent) SetEventHandler(fn func(Event)) {
	a.onEvent = fn
}

func (a *Agent) emit(event Event) {
	if a.onEvent != nil {
		a.onEvent(event)
	}
}

// Outcome bundles the normalized result with run accounting.
type Outcome struct {
	Result     *VerificationResult
	Iterations int
	ToolCalls  int
	TokensIn   int64
	TokensOut  int64
	// Capped is true when the run hit the iteration limit without a
	// finish signal; the result is normalized from the last model turn.
	Capped bool
	// Stopped is true when a stop signal ended the run early.
	Stopped bool
}

// VerifyTask runs the verification loop for the request. It never returns
// an error: every failure mode degrades to an Outcome whose Result has
// passed=false and explanatory feedback.
func (a *Agent) VerifyTask(ctx context.Context, req Request) *Outcome {
	outcome := &Outcome{}

	log.Printf("[verify] starting run: base=%s head=%s repo=%s",
		short(req.BaseCommit), short(req.HeadCommit), req.RepoURL)

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserMessage(req))),
	}
	tools := evidence.Definitions()

	var lastContent string

	for outcome.Iterations < a.maxIterations {
		outcome.Iterations++
		a.emit(Event{Type: EventIteration, Iteration: outcome.Iterations})
		log.Printf("[verify] iteration %d/%d", outcome.Iterations, a.maxIterations)

		if a.signals != nil && a.signals.ShouldStop() {
			outcome.Stopped = true
			outcome.Result = ErrorResult("verification stopped by signal")
			a.emit(Event{Type: EventError, Content: "stopped by signal"})
			return outcome
		}

		turn, err := a.model.GenerateWithTools(ctx, systemPrompt, messages, tools, a.temperature, a.maxTokens)
		if err != nil {
			// Model-provider failures are fatal to the run; no retry.
			log.Printf("[verify] model call failed: %v", err)
			outcome.Result = ErrorResult(err.Error())
			a.emit(Event{Type: EventError, Content: err.Error()})
			return outcome
		}

		outcome.TokensIn += turn.InputTokens
		outcome.TokensOut += turn.OutputTokens

		if turn.Content != "" {
			lastContent = turn.Content
			a.emit(Event{Type: EventText, Content: turn.Content})
		}

		var assistantBlocks []anthropic.ContentBlockParamUnion
		if turn.Content != "" {
			assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(turn.Content))
		}
		for _, call := range turn.ToolCalls {
			assistantBlocks = append(assistantBlocks,
				anthropic.NewToolUseBlock(call.ID, call.Arguments, call.Name))
		}
		if len(assistantBlocks) > 0 {
			messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))
		}

		// No tool calls means the model has delivered its verdict.
		if len(turn.ToolCalls) == 0 || turn.StopReason == string(anthropic.StopReasonEndTurn) {
			log.Printf("[verify] agent finished after %d iteration(s)", outcome.Iterations)
			outcome.Result = Normalize(lastContent)
			a.emit(Event{Type: EventDone})
			return outcome
		}

		// Process every tool call from this turn before going back to the
		// model, preserving its batching.
		var toolResultBlocks []anthropic.ContentBlockParamUnion
		for _, call := range turn.ToolCalls {
			outcome.ToolCalls++
			a.emit(Event{Type: EventToolUse, Tool: call.Name, Input: call.Arguments})

			result := a.tools.Execute(ctx, call.Name, call.Arguments, req.GitHubToken)
			a.emit(Event{Type: EventToolResult, Tool: call.Name, Content: truncateForDisplay(result.Content)})

			toolResultBlocks = append(toolResultBlocks,
				anthropic.NewToolResultBlock(call.ID, result.Content, result.IsError))
		}
		messages = append(messages, anthropic.NewUserMessage(toolResultBlocks...))
	}

	// Cap reached: normalize whatever the last turn contained rather than
	// throwing the run away.
	log.Printf("[verify] max iterations (%d) reached", a.maxIterations)
	outcome.Capped = true
	outcome.Result = Normalize(lastContent)
	a.emit(Event{Type: EventDone})
	return outcome
}

func short(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
