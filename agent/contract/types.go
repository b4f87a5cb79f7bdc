package contract

import "time"

// Tool names are the wire contract shared with the LLM layer. The model
// proposes calls by name; the stage orchestrator decides whether a name is
// admissible before anything executes.
const (
	ToolCheckFlightDocument   = "check_flight_document"
	ToolGetAvailableLounges   = "get_available_lounges"
	ToolCheckMembershipPoints = "check_membership_points"
	ToolStoreLoungeInfo       = "store_lounge_info"
	ToolBookLounge            = "book_lounge"
)

// ReadOnlyTools marks the idempotency class of each tool. Read-only tools may
// be retried on external failure; state-mutating tools never are.
var ReadOnlyTools = map[string]bool{
	ToolCheckFlightDocument:   true,
	ToolGetAvailableLounges:   true,
	ToolCheckMembershipPoints: true,
	ToolStoreLoungeInfo:       false,
	ToolBookLounge:            false,
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// FlightDocument is the validated payload of check_flight_document. A result
// without a flight number is a soft failure and never reaches the session.
type FlightDocument struct {
	FlightNumber  string     `json:"flight_number"`
	Carrier       string     `json:"carrier,omitempty"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	PassengerName string     `json:"passenger_name,omitempty"`
	Seat          string     `json:"seat,omitempty"`
}

// LoungeSummary is the wire shape of one get_available_lounges row.
type LoungeSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	OpeningHours string   `json:"openingHours"`
	Location     string   `json:"location"`
	Amenities    []string `json:"amenities"`
	Conditions   []string `json:"conditions,omitempty"`
	PointSpent   int      `json:"pointSpent"`
	Status       string   `json:"status,omitempty"`
}

// MemberProfile is the check_membership_points payload. Only Points takes
// part in result validation; the rest is display data.
type MemberProfile struct {
	Points            int    `json:"points"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
}

// SelectionRequest carries the store_lounge_info parameters.
type SelectionRequest struct {
	LoungeID    string    `json:"lounge_id"`
	LoungeName  string    `json:"lounge_name"`
	ArrivalTime time.Time `json:"arrival_time"`
}

// BookingRequest is validated orchestrator-side before the external booking
// call; a request failing these preconditions must produce zero side effects.
type BookingRequest struct {
	UserID       string    `json:"user_id" validate:"required"`
	LoungeID     string    `json:"lounge_id" validate:"required"`
	FlightNumber string    `json:"flight_number" validate:"required"`
	ArrivalTime  time.Time `json:"arrival_time" validate:"required"`
}

type BookingConfirmation struct {
	BookingID      string    `json:"booking_id"`
	PointsDeducted int       `json:"points_deducted"`
	BookedAt       time.Time `json:"booked_at"`
}

// AssistantRequest is what one turn hands to the LLM: the utterance, where
// the conversation stands, and the only tools it may propose.
type AssistantRequest struct {
	UserMessage    string         `json:"user_message"`
	Stage          string         `json:"stage"`
	StageGoal      string         `json:"stage_goal"`
	SessionSummary map[string]any `json:"session_summary"`
	HasAttachment  bool           `json:"has_attachment"`
	AllowedTools   []string       `json:"allowed_tools"`
	ToolResults    []ToolResult   `json:"tool_results,omitempty"`
}

// StateUpdates carries facts the model extracted straight from the user's
// words, for slots no tool can fill (the traveller typing "I'll arrive at
// 15:00" instead of sending a document).
type StateUpdates struct {
	ArrivalTime *time.Time `json:"arrival_time,omitempty"`
	GuestCount  *int       `json:"guest_count,omitempty"`
}

type AssistantResponse struct {
	Message      string        `json:"message"`
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
	StateUpdates *StateUpdates `json:"state_updates,omitempty"`
}
