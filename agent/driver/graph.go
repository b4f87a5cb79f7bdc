package driver

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	turnnode "github.com/travel-buddy/lounge-agent/agent/nodes"
)

func (d *Driver) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[turnnode.GraphInput, turnnode.GraphOutput], error) {
	graph := compose.NewGraph[turnnode.GraphInput, turnnode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_turn",
		compose.InvokableLambda(func(ctx context.Context, in turnnode.GraphInput) (*turnnode.GraphState, error) {
			return turnnode.ValidateTurn(in, d.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_turn: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_session",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.LoadOrCreateSession(ctx, in, d.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_session: %w", err)
	}

	if err := graph.AddLambdaNode("invoke_assistant",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.InvokeAssistant(ctx, in, d.assistant)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node invoke_assistant: %w", err)
	}

	if err := graph.AddLambdaNode("execute_tools",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ExecuteTools(ctx, in, d.orch, d.gateway)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_tools: %w", err)
	}

	if err := graph.AddLambdaNode("apply_results",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ApplyResults(in, d.orch)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node apply_results: %w", err)
	}

	if err := graph.AddLambdaNode("respond_with_results",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.RespondWithResults(ctx, in, d.assistant)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node respond_with_results: %w", err)
	}

	if err := graph.AddLambdaNode("apply_state_updates",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ApplyStateUpdates(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node apply_state_updates: %w", err)
	}

	if err := graph.AddLambdaNode("evaluate_transition",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.EvaluateTransition(in, d.orch)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node evaluate_transition: %w", err)
	}

	if err := graph.AddLambdaNode("execute_booking",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ExecuteBooking(ctx, in, d.orch, d.gateway)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_booking: %w", err)
	}

	if err := graph.AddLambdaNode("compose_reply",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.ComposeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node compose_reply: %w", err)
	}

	if err := graph.AddLambdaNode("save_session",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (*turnnode.GraphState, error) {
			return turnnode.SaveSession(ctx, in, d.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_session: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *turnnode.GraphState) (turnnode.GraphOutput, error) {
			return turnnode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_turn"},
		{"validate_turn", "load_or_create_session"},
		{"load_or_create_session", "invoke_assistant"},
		{"invoke_assistant", "execute_tools"},
		{"execute_tools", "apply_results"},
		{"apply_results", "respond_with_results"},
		{"respond_with_results", "apply_state_updates"},
		{"apply_state_updates", "evaluate_transition"},
		{"evaluate_transition", "execute_booking"},
		{"execute_booking", "compose_reply"},
		{"compose_reply", "save_session"},
		{"save_session", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("driver.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
