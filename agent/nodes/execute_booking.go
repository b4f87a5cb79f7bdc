package turnnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	stagex "github.com/travel-buddy/lounge-agent/agent/stage"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
)

// ExecuteBooking fires the booking as soon as the session enters the
// execution stage, without waiting for another user message. The stage
// guard has already run this turn, so the advance to post-booking happens
// on the next one.
func ExecuteBooking(
	ctx context.Context,
	in *GraphState,
	orch *stagex.Orchestrator,
	gateway contractx.ToolGateway,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	if !in.Transitioned || in.Session.Stage != statex.StageBookingExecution {
		return in, nil
	}
	if in.Session.Booking != nil || in.BookingErr != nil {
		return in, nil
	}

	booking, err := orch.BookingRequest(in.Session)
	if err != nil {
		in.BookingErr = err
		return in, nil
	}

	results, err := gateway.Execute(ctx, []contractx.ToolRequest{{
		Tool: contractx.ToolBookLounge,
		Args: bookingArgs(booking),
	}})
	if err != nil {
		in.BookingErr = err
		return in, nil
	}

	for _, res := range results {
		if res.Error != "" {
			in.BookingErr = fmt.Errorf("%w: %s", contractx.ErrExternal, res.Error)
			return in, nil
		}
		if err := orch.ApplyResult(in.Session, res); err != nil {
			in.BookingErr = err
			return in, nil
		}
		in.ToolResults = append(in.ToolResults, res)
	}

	in.BookedNow = true
	log.Info().
		Str("user_id", in.UserID).
		Str("lounge_id", in.Session.Selection.LoungeID).
		Msg("booking executed on confirmation")
	return in, nil
}
