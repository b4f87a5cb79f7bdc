package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
	toolx "github.com/travel-buddy/lounge-agent/agent/tool"
	openrouterx "github.com/travel-buddy/lounge-agent/pkg/openrouter"
)

// Concierge is the dialogue model behind every turn. It plans tool calls
// when the stage permits them and has no results yet; otherwise it produces
// the user-facing reply as structured JSON.
type Concierge struct {
	structuredRunner compose.Runnable[map[string]any, conciergeLLMOutput]
	toolRunners      map[statex.Stage]compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Assistant = (*Concierge)(nil)

type conciergeLLMOutput struct {
	Message      string                 `json:"message"`
	StateUpdates *conciergeStateUpdates `json:"state_updates,omitempty"`
}

// conciergeStateUpdates is the wire shape of the model's extracted facts.
// The arrival time arrives as a string so one malformed timestamp degrades
// to a dropped field instead of a failed turn.
type conciergeStateUpdates struct {
	ArrivalTime string `json:"arrival_time,omitempty"`
	GuestCount  *int   `json:"guest_count,omitempty"`
}

func (u *conciergeStateUpdates) toContract() *contractx.StateUpdates {
	if u == nil {
		return nil
	}
	out := &contractx.StateUpdates{GuestCount: u.GuestCount}
	if raw := strings.TrimSpace(u.ArrivalTime); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			log.Warn().Str("arrival_time", raw).Msg("dropping unparseable arrival time from model")
		} else {
			utc := t.UTC()
			out.ArrivalTime = &utc
		}
	}
	if out.ArrivalTime == nil && out.GuestCount == nil {
		return nil
	}
	return out
}

func NewConcierge(ctx context.Context, builder openrouterx.LLMBuilder, systemPrompt string) (*Concierge, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: concierge system prompt", contractx.ErrPromptMissing)
	}

	chatModel, err := builder.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create concierge model: %v", contractx.ErrModelInvoke, err)
	}

	structuredRunner, err := compileStructuredLLMGraph[conciergeLLMOutput](ctx, chatModel, systemPrompt, "concierge.structured_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile structured concierge graph: %v", contractx.ErrModelInvoke, err)
	}

	toolRunners := make(map[statex.Stage]compose.Runnable[map[string]any, *schema.Message])
	for _, stage := range statex.Stages() {
		tools := toolx.BuildForStage(stage)
		if len(tools) == 0 {
			continue
		}
		toolModel, err := chatModel.WithTools(tools)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools for stage=%s: %v", contractx.ErrModelInvoke, stage, err)
		}
		runner, err := compileToolPlanningGraph(ctx, toolModel, systemPrompt, fmt.Sprintf("concierge.tool_graph.%s", stage))
		if err != nil {
			return nil, fmt.Errorf("%w: compile tool graph for stage=%s: %v", contractx.ErrModelInvoke, stage, err)
		}
		toolRunners[stage] = runner
	}

	return &Concierge{
		structuredRunner: structuredRunner,
		toolRunners:      toolRunners,
	}, nil
}

func (c *Concierge) Respond(ctx context.Context, req contractx.AssistantRequest) (contractx.AssistantResponse, error) {
	payload := map[string]any{
		"stage":           req.Stage,
		"stage_goal":      req.StageGoal,
		"user_message":    req.UserMessage,
		"session_summary": req.SessionSummary,
		"has_attachment":  req.HasAttachment,
		"allowed_tools":   req.AllowedTools,
		"tool_results":    req.ToolResults,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.AssistantResponse{}, fmt.Errorf("%w: marshal concierge payload: %v", contractx.ErrValidation, err)
	}

	runner, hasTools := c.toolRunners[statex.Stage(req.Stage)]
	if hasTools && len(req.ToolResults) == 0 {
		return c.planTools(ctx, runner, string(input))
	}
	return c.respondStructured(ctx, string(input))
}

func (c *Concierge) planTools(
	ctx context.Context,
	runner compose.Runnable[map[string]any, *schema.Message],
	input string,
) (contractx.AssistantResponse, error) {
	msg, err := runner.Invoke(ctx, map[string]any{"input": input})
	if err != nil {
		return contractx.AssistantResponse{}, fmt.Errorf("%w: tool planning invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.AssistantResponse{}, fmt.Errorf("%w: empty tool planning response", contractx.ErrSchemaViolation)
	}

	toolRequests, err := toToolRequests(msg.ToolCalls)
	if err != nil {
		return contractx.AssistantResponse{}, err
	}
	if len(toolRequests) == 0 {
		// The model chose to answer instead of calling a tool. The answer
		// may still be the structured reply shape carrying extracted facts.
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			return contractx.AssistantResponse{}, fmt.Errorf("%w: concierge produced neither tools nor a message", contractx.ErrSchemaViolation)
		}
		var out conciergeLLMOutput
		if err := json.Unmarshal([]byte(content), &out); err == nil && strings.TrimSpace(out.Message) != "" {
			return contractx.AssistantResponse{
				Message:      strings.TrimSpace(out.Message),
				StateUpdates: out.StateUpdates.toContract(),
			}, nil
		}
		return contractx.AssistantResponse{Message: content}, nil
	}
	return contractx.AssistantResponse{ToolRequests: toolRequests}, nil
}

func (c *Concierge) respondStructured(ctx context.Context, input string) (contractx.AssistantResponse, error) {
	out, err := c.structuredRunner.Invoke(ctx, map[string]any{"input": input})
	if err != nil {
		return contractx.AssistantResponse{}, fmt.Errorf("%w: concierge invoke: %v", contractx.ErrModelInvoke, err)
	}

	message := strings.TrimSpace(out.Message)
	if message == "" {
		return contractx.AssistantResponse{}, fmt.Errorf("%w: concierge message is empty", contractx.ErrSchemaViolation)
	}
	return contractx.AssistantResponse{
		Message:      message,
		StateUpdates: out.StateUpdates.toContract(),
	}, nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			Tool: tool,
			Args: args,
		})
	}
	return reqs, nil
}
