package turnnode

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
)

func LoadOrCreateSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess, err := store.Load(ctx, in.UserID)
	if errors.Is(err, statex.ErrSessionNotFound) {
		sess = statex.NewSession(uuid.NewString(), in.UserID, in.Now)
	} else if err != nil {
		return nil, err
	}

	if !sess.Stage.Valid() {
		return nil, fmt.Errorf("%w: session carries unknown stage %q", contractx.ErrValidation, sess.Stage)
	}

	in.Session = sess
	in.PriorStage = sess.Stage
	return in, nil
}
