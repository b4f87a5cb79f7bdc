package turnnode

import (
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
)

// ApplyStateUpdates merges the facts the model extracted from the user's
// words into the session. This is the only path through which a typed
// arrival time or guest count reaches the session; document-derived facts
// arrive through tool results instead. A rejected field is logged and
// dropped rather than failing the turn.
func ApplyStateUpdates(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	if in.StateUpdates == nil {
		return in, nil
	}

	if t := in.StateUpdates.ArrivalTime; t != nil {
		if err := in.Session.Apply(statex.FieldArrivalTime, *t); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", in.UserID).
				Msg("dropping extracted arrival time")
		}
	}
	if n := in.StateUpdates.GuestCount; n != nil {
		if err := in.Session.Apply(statex.FieldGuestCount, *n); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", in.UserID).
				Msg("dropping extracted guest count")
		}
	}
	return in, nil
}
