package turnnode

import (
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	stagex "github.com/travel-buddy/lounge-agent/agent/stage"
)

// ApplyResults folds successful tool results into the session, in the
// order they executed. A result that fails validation is downgraded to a
// soft failure so the assistant can recover; the session keeps only fields
// from results that validated.
func ApplyResults(in *GraphState, orch *stagex.Orchestrator) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	for i := range in.ToolResults {
		res := in.ToolResults[i]
		if res.Error != "" {
			continue
		}
		if err := orch.ApplyResult(in.Session, res); err != nil {
			log.Warn().
				Str("user_id", in.UserID).
				Str("tool", res.Tool).
				Err(err).
				Msg("tool result rejected during application")
			in.ToolResults[i] = contractx.ToolResult{Tool: res.Tool, Error: err.Error()}
		}
	}
	return in, nil
}
