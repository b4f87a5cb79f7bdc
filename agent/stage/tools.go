package stage

import (
	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
)

// stageTools is the per-stage tool whitelist. The LLM can ask for anything;
// only names listed here for the session's current stage ever execute.
var stageTools = map[statex.Stage][]string{
	statex.StageInitial:          nil,
	statex.StageInfoCollection:   {contractx.ToolCheckFlightDocument},
	statex.StageRecommendation:   {contractx.ToolGetAvailableLounges, contractx.ToolStoreLoungeInfo},
	statex.StageConfirmation:     {contractx.ToolStoreLoungeInfo},
	statex.StageBookingExecution: {contractx.ToolBookLounge},
	statex.StagePostBooking:      {contractx.ToolCheckMembershipPoints},
}

// AdmissibleTools returns the tool names the given stage permits, in a fixed
// order. The slice is a copy; callers may keep it.
func AdmissibleTools(stage statex.Stage) []string {
	tools := stageTools[stage]
	out := make([]string, len(tools))
	copy(out, tools)
	return out
}

// Admissible reports whether the stage permits the named tool.
func Admissible(stage statex.Stage, tool string) bool {
	for _, name := range stageTools[stage] {
		if name == tool {
			return true
		}
	}
	return false
}
