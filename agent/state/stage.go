package state

// Stage is one state in the booking conversation lifecycle. Transitions are
// forward-only and single-step; POST_BOOKING loops back to INITIAL through
// Session.Reset, never through Next.
type Stage string

const (
	StageInitial          Stage = "initial_engagement"
	StageInfoCollection   Stage = "info_collection"
	StageRecommendation   Stage = "lounge_recommendation"
	StageConfirmation     Stage = "booking_confirmation"
	StageBookingExecution Stage = "booking_execution"
	StagePostBooking      Stage = "post_booking"
)

var stageOrder = []Stage{
	StageInitial,
	StageInfoCollection,
	StageRecommendation,
	StageConfirmation,
	StageBookingExecution,
	StagePostBooking,
}

// Number reports the 1-based position in the lifecycle, 0 for an unknown
// stage.
func (s Stage) Number() int {
	for i, stage := range stageOrder {
		if stage == s {
			return i + 1
		}
	}
	return 0
}

// Next returns the immediate forward successor. PostBooking has none.
func (s Stage) Next() (Stage, bool) {
	n := s.Number()
	if n == 0 || n >= len(stageOrder) {
		return s, false
	}
	return stageOrder[n], true
}

func (s Stage) Valid() bool {
	return s.Number() > 0
}

// Stages returns the lifecycle in order.
func Stages() []Stage {
	return append([]Stage(nil), stageOrder...)
}

// Goal describes what has to happen before the stage can be left. Fed to the
// assistant as steering context.
func (s Stage) Goal() string {
	switch s {
	case StageInitial:
		return "Greet the traveller and ask about their upcoming flight."
	case StageInfoCollection:
		return "Collect the boarding pass and the planned lounge arrival time."
	case StageRecommendation:
		return "Recommend lounges and store the traveller's selection."
	case StageConfirmation:
		return "Summarise the selection and obtain an explicit confirmation."
	case StageBookingExecution:
		return "Complete the booking and report the confirmation number."
	case StagePostBooking:
		return "Share the remaining point balance and close the conversation."
	default:
		return ""
	}
}
