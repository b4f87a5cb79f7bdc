package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	stagex "github.com/travel-buddy/lounge-agent/agent/stage"
)

// RespondWithResults asks the assistant to phrase the user-facing reply from
// the turn's tool results. Skipped when no tools ran or the batch already
// failed; those paths get deterministic replies later.
func RespondWithResults(ctx context.Context, in *GraphState, assistant contractx.Assistant) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	if len(in.ToolResults) == 0 || in.BookingErr != nil {
		return in, nil
	}

	resp, err := assistant.Respond(ctx, contractx.AssistantRequest{
		UserMessage:    in.Text,
		Stage:          string(in.Session.Stage),
		StageGoal:      in.Session.Stage.Goal(),
		SessionSummary: in.Session.Summary(),
		HasAttachment:  in.ImageBase64 != "",
		AllowedTools:   stagex.AdmissibleTools(in.Session.Stage),
		ToolResults:    in.ToolResults,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.ToolRequests) > 0 {
		return nil, fmt.Errorf("%w: assistant requested tools while summarising results", contractx.ErrSchemaViolation)
	}

	in.Message = resp.Message
	if resp.StateUpdates != nil {
		in.StateUpdates = resp.StateUpdates
	}
	return in, nil
}
