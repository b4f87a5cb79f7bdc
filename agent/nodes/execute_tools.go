package turnnode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	stagex "github.com/travel-buddy/lounge-agent/agent/stage"
)

// ExecuteTools runs the assistant's proposed calls. One inadmissible tool
// rejects the whole batch before anything executes; already-satisfied
// mutating calls replay their prior result instead of re-running.
func ExecuteTools(
	ctx context.Context,
	in *GraphState,
	orch *stagex.Orchestrator,
	gateway contractx.ToolGateway,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	if len(in.ToolRequests) == 0 {
		return in, nil
	}

	stage := in.Session.Stage
	for _, req := range in.ToolRequests {
		if !stagex.Admissible(stage, req.Tool) {
			log.Warn().
				Str("user_id", in.UserID).
				Str("stage", string(stage)).
				Str("tool", req.Tool).
				Msg("rejected tool proposal outside stage whitelist")
			in.RejectedTool = req.Tool
			in.ToolRequests = nil
			return in, nil
		}
	}

	for _, req := range in.ToolRequests {
		if res, ok := orch.Replay(in.Session, req); ok {
			in.ToolResults = append(in.ToolResults, res)
			continue
		}

		req, err := prepareRequest(in, orch, req)
		if err != nil {
			in.BookingErr = err
			return in, nil
		}

		results, err := gateway.Execute(ctx, []contractx.ToolRequest{req})
		if err != nil {
			// Mutating-tool failure: stop the batch, route to a human.
			in.BookingErr = err
			in.ToolResults = append(in.ToolResults, results...)
			return in, nil
		}
		in.ToolResults = append(in.ToolResults, results...)
	}
	return in, nil
}

// prepareRequest fills in the arguments the model cannot know, and for
// book_lounge replaces the model's arguments entirely with the validated
// session facts.
func prepareRequest(in *GraphState, orch *stagex.Orchestrator, req contractx.ToolRequest) (contractx.ToolRequest, error) {
	switch req.Tool {
	case contractx.ToolCheckFlightDocument:
		if raw, _ := req.Args["image_base64"].(string); raw == "" && in.ImageBase64 != "" {
			req.Args = cloneArgs(req.Args)
			req.Args["image_base64"] = in.ImageBase64
		}
	case contractx.ToolCheckMembershipPoints:
		if raw, _ := req.Args["user_id"].(string); raw == "" {
			req.Args = cloneArgs(req.Args)
			req.Args["user_id"] = in.UserID
		}
	case contractx.ToolBookLounge:
		booking, err := orch.BookingRequest(in.Session)
		if err != nil {
			return contractx.ToolRequest{}, err
		}
		req.Args = bookingArgs(booking)
	}
	return req, nil
}

func bookingArgs(booking contractx.BookingRequest) map[string]any {
	return map[string]any{
		"user_id":       booking.UserID,
		"lounge_id":     booking.LoungeID,
		"flight_number": booking.FlightNumber,
		"arrival_time":  booking.ArrivalTime.Format(time.RFC3339),
	}
}

func cloneArgs(args map[string]any) map[string]any {
	cloned := make(map[string]any, len(args)+1)
	for k, v := range args {
		cloned[k] = v
	}
	return cloned
}
