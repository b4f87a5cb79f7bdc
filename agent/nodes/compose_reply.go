package turnnode

import (
	"errors"
	"fmt"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
)

const humanContactFallback = "I couldn't complete the booking just now. " +
	"Our lounge team has been notified and will contact you to finish it, " +
	"so nothing has been charged to your account."

const insufficientPointsFallback = "Your membership balance doesn't cover " +
	"this lounge, so I haven't booked it. Our lounge team will reach out " +
	"with alternatives that fit your points."

// ComposeReply settles the final reply text. Deterministic outcomes win
// over model prose: a booking made this turn is always confirmed from the
// recorded facts, and a failed mutating call is never papered over.
func ComposeReply(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	switch {
	case in.BookingErr != nil:
		if errors.Is(in.BookingErr, contractx.ErrInsufficientPoints) {
			in.Message = insufficientPointsFallback
		} else {
			in.Message = humanContactFallback
		}

	case in.BookedNow && in.Session.Booking != nil:
		booking := in.Session.Booking
		reply := fmt.Sprintf("Your lounge is booked. Reference %s", booking.BookingID)
		if sel := in.Session.Selection; sel != nil {
			reply = fmt.Sprintf("%s for %s", reply, sel.LoungeName)
			if !sel.ArrivalTime.IsZero() {
				reply = fmt.Sprintf("%s, arriving %s", reply, sel.ArrivalTime.Format("Mon 2 Jan 15:04"))
			}
		}
		in.Message = fmt.Sprintf("%s. %d point(s) were deducted from your balance.", reply, booking.PointsDeducted)

	case in.RejectedTool != "" && in.Message == "":
		in.Message = "I can't do that at this step. " + fallbackPrompt(in.Session.Stage)

	case in.Message == "":
		in.Message = fallbackPrompt(in.Session.Stage)
	}

	return in, nil
}

func fallbackPrompt(stage statex.Stage) string {
	switch stage {
	case statex.StageInitial:
		return "Welcome! I can help you book an airport VIP lounge. What's your upcoming flight?"
	case statex.StageInfoCollection:
		return "Could you share your boarding pass and the time you plan to arrive at the lounge?"
	case statex.StageRecommendation:
		return "Tell me which lounge you'd like, or what amenities matter to you."
	case statex.StageConfirmation:
		return "Shall I go ahead and book this lounge for you?"
	case statex.StageBookingExecution:
		return "I'm completing your booking now."
	case statex.StagePostBooking:
		return "Is there anything else you'd like to know about your booking?"
	default:
		return "How can I help with your lounge booking?"
	}
}
