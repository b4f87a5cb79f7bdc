package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	stagex "github.com/travel-buddy/lounge-agent/agent/stage"
)

func InvokeAssistant(ctx context.Context, in *GraphState, assistant contractx.Assistant) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	resp, err := assistant.Respond(ctx, contractx.AssistantRequest{
		UserMessage:    in.Text,
		Stage:          string(in.Session.Stage),
		StageGoal:      in.Session.Stage.Goal(),
		SessionSummary: in.Session.Summary(),
		HasAttachment:  in.ImageBase64 != "",
		AllowedTools:   stagex.AdmissibleTools(in.Session.Stage),
	})
	if err != nil {
		return nil, err
	}

	in.Message = resp.Message
	in.ToolRequests = resp.ToolRequests
	in.StateUpdates = resp.StateUpdates
	return in, nil
}
