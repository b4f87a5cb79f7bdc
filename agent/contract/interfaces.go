package contract

import "context"

// Assistant is the external LLM completion service. Its tool proposals are
// untrusted; callers must check them against the current stage's whitelist.
type Assistant interface {
	Respond(ctx context.Context, req AssistantRequest) (AssistantResponse, error)
}

// ToolGateway executes validated tool requests and returns results in the
// order the requests were given.
type ToolGateway interface {
	Execute(ctx context.Context, reqs []ToolRequest) ([]ToolResult, error)
}

// FlightDocExtractor is the OCR collaborator: raw text lines out of a
// boarding-pass image. Accuracy is its problem, not ours.
type FlightDocExtractor interface {
	Extract(ctx context.Context, imageBase64 string) ([]string, error)
}

// MembershipService reads member profiles and point balances.
type MembershipService interface {
	Profile(ctx context.Context, userID string) (MemberProfile, error)
}

// BookingService persists bookings and deducts points.
type BookingService interface {
	Book(ctx context.Context, req BookingRequest) (BookingConfirmation, error)
}
