package turnnode

import (
	"fmt"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	stagex "github.com/travel-buddy/lounge-agent/agent/stage"
)

// EvaluateTransition runs the exit guard exactly once per turn, after every
// tool result has been applied.
func EvaluateTransition(in *GraphState, orch *stagex.Orchestrator) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	_, moved := orch.Evaluate(in.Session, in.Text, in.ImageBase64 != "", in.Now)
	in.Transitioned = moved
	return in, nil
}
