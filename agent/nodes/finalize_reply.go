package turnnode

import (
	"fmt"
	"strings"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Message)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: turn produced an empty reply", contractx.ErrValidation)
	}

	out := GraphOutput{
		Reply: reply,
		Stage: string(in.Session.Stage),
	}
	if in.Session.Booking != nil {
		out.BookingID = in.Session.Booking.BookingID
	}
	return out, nil
}
