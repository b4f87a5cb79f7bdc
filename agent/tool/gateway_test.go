package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	catalogx "github.com/travel-buddy/lounge-agent/agent/catalog"
	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
)

type fakeExtractor struct {
	calls int
	fn    func(ctx context.Context, imageBase64 string) ([]string, error)
}

func (f *fakeExtractor) Extract(ctx context.Context, imageBase64 string) ([]string, error) {
	f.calls++
	return f.fn(ctx, imageBase64)
}

type fakeMembership struct {
	calls int
	fn    func(ctx context.Context, userID string) (contractx.MemberProfile, error)
}

func (f *fakeMembership) Profile(ctx context.Context, userID string) (contractx.MemberProfile, error) {
	f.calls++
	return f.fn(ctx, userID)
}

type fakeBooking struct {
	calls int
	fn    func(ctx context.Context, req contractx.BookingRequest) (contractx.BookingConfirmation, error)
}

func (f *fakeBooking) Book(ctx context.Context, req contractx.BookingRequest) (contractx.BookingConfirmation, error) {
	f.calls++
	return f.fn(ctx, req)
}

func ticketLines() []string {
	return []string{"Passenger Name: LI/WEI", "Flight CZ3456 25MAR", "Seat 23A"}
}

func newTestGateway(t *testing.T, extractor *fakeExtractor, membership *fakeMembership, booking *fakeBooking) *Gateway {
	t.Helper()
	cat, err := catalogx.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if extractor == nil {
		extractor = &fakeExtractor{fn: func(context.Context, string) ([]string, error) { return ticketLines(), nil }}
	}
	if membership == nil {
		membership = &fakeMembership{fn: func(context.Context, string) (contractx.MemberProfile, error) {
			return contractx.MemberProfile{Points: 5, FirstName: "Wei"}, nil
		}}
	}
	if booking == nil {
		booking = &fakeBooking{fn: func(_ context.Context, req contractx.BookingRequest) (contractx.BookingConfirmation, error) {
			return contractx.BookingConfirmation{BookingID: "BK_deadbeef0123", PointsDeducted: 1, BookedAt: time.Now()}, nil
		}}
	}
	gw, err := NewGateway(cat, extractor, membership, booking,
		WithClock(func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }))
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	return gw
}

func TestGatewayCheckFlightDocument(t *testing.T) {
	t.Parallel()
	gw := newTestGateway(t, nil, nil, nil)

	results, err := gw.Execute(context.Background(), []contractx.ToolRequest{{
		Tool: contractx.ToolCheckFlightDocument,
		Args: map[string]any{"image_base64": "aGVsbG8="},
	}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	doc, ok := results[0].Result.(contractx.FlightDocument)
	if !ok {
		t.Fatalf("result = %#v", results[0])
	}
	if doc.FlightNumber != "CZ3456" || doc.Carrier != "CZ" || doc.Seat != "23A" {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.DepartureTime == nil || doc.DepartureTime.Day() != 25 {
		t.Fatalf("departure = %v, want March 25", doc.DepartureTime)
	}
}

func TestGatewayFlightDocumentSoftFailures(t *testing.T) {
	t.Parallel()

	// Missing attachment.
	gw := newTestGateway(t, nil, nil, nil)
	results, err := gw.Execute(context.Background(), []contractx.ToolRequest{{Tool: contractx.ToolCheckFlightDocument}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if results[0].Error == "" {
		t.Fatal("missing image must be a soft failure")
	}

	// Extraction finds no flight number.
	extractor := &fakeExtractor{fn: func(context.Context, string) ([]string, error) {
		return []string{"coffee receipt", "total 4.50"}, nil
	}}
	gw = newTestGateway(t, extractor, nil, nil)
	results, err = gw.Execute(context.Background(), []contractx.ToolRequest{{
		Tool: contractx.ToolCheckFlightDocument,
		Args: map[string]any{"image_base64": "aGVsbG8="},
	}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if results[0].Error == "" || results[0].Result != nil {
		t.Fatalf("unreadable document must be a soft failure, got %#v", results[0])
	}
}

func TestGatewayRetriesReadOnlyOnExternalFailure(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{}
	extractor.fn = func(context.Context, string) ([]string, error) {
		if extractor.calls == 1 {
			return nil, fmt.Errorf("%w: ocr timeout", contractx.ErrExternal)
		}
		return ticketLines(), nil
	}
	gw := newTestGateway(t, extractor, nil, nil)

	results, err := gw.Execute(context.Background(), []contractx.ToolRequest{{
		Tool: contractx.ToolCheckFlightDocument,
		Args: map[string]any{"image_base64": "aGVsbG8="},
	}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if extractor.calls != 2 {
		t.Fatalf("extractor calls = %d, want 2", extractor.calls)
	}
	if results[0].Error != "" {
		t.Fatalf("second attempt should have succeeded: %s", results[0].Error)
	}
}

func TestGatewayGetAvailableLounges(t *testing.T) {
	t.Parallel()
	gw := newTestGateway(t, nil, nil, nil)

	results, err := gw.Execute(context.Background(), []contractx.ToolRequest{{
		Tool: contractx.ToolGetAvailableLounges,
		Args: map[string]any{"airport_code": "szx", "terminal": "T3", "amenities": []any{"wifi access"}},
	}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	summaries, ok := results[0].Result.([]contractx.LoungeSummary)
	if !ok {
		t.Fatalf("result = %#v", results[0])
	}
	for _, s := range summaries {
		if s.Status == catalogx.StatusUnavailable {
			t.Errorf("unavailable lounge %s leaked into results", s.ID)
		}
	}
	found := false
	for _, s := range summaries {
		if s.ID == "szx_t3_joyee" {
			found = true
		}
		if s.ID == "szx_t3_quiet_zone" {
			t.Error("quiet zone has no wifi and must be filtered out")
		}
	}
	if !found {
		t.Fatalf("szx_t3_joyee missing from %d results", len(summaries))
	}
}

func TestGatewayStoreLoungeInfo(t *testing.T) {
	t.Parallel()
	gw := newTestGateway(t, nil, nil, nil)
	arrival := time.Date(2025, 3, 25, 14, 0, 0, 0, time.UTC)

	results, err := gw.Execute(context.Background(), []contractx.ToolRequest{{
		Tool: contractx.ToolStoreLoungeInfo,
		Args: map[string]any{
			"lounge_id":    "SZX_T3_JOYEE",
			"lounge_name":  "whatever the model said",
			"arrival_time": arrival.Format(time.RFC3339),
		},
	}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	sel, ok := results[0].Result.(contractx.SelectionRequest)
	if !ok {
		t.Fatalf("result = %#v", results[0])
	}
	if sel.LoungeID != "szx_t3_joyee" {
		t.Errorf("lounge id not canonicalized: %q", sel.LoungeID)
	}
	if sel.LoungeName == "whatever the model said" {
		t.Error("lounge name must come from the catalog, not the model")
	}

	// Unknown lounge is a soft failure.
	results, err = gw.Execute(context.Background(), []contractx.ToolRequest{{
		Tool: contractx.ToolStoreLoungeInfo,
		Args: map[string]any{
			"lounge_id":    "szx_t9_ghost",
			"lounge_name":  "Ghost Lounge",
			"arrival_time": arrival.Format(time.RFC3339),
		},
	}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if results[0].Error == "" {
		t.Fatal("unknown lounge must be a soft failure")
	}

	// Unavailable lounge cannot be selected.
	results, err = gw.Execute(context.Background(), []contractx.ToolRequest{{
		Tool: contractx.ToolStoreLoungeInfo,
		Args: map[string]any{
			"lounge_id":    "szx_t3_first_class",
			"lounge_name":  "First Class Lounge",
			"arrival_time": arrival.Format(time.RFC3339),
		},
	}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if results[0].Error == "" {
		t.Fatal("unavailable lounge must be a soft failure")
	}
}

func TestGatewayBookLoungeFailuresAreHard(t *testing.T) {
	t.Parallel()

	booking := &fakeBooking{fn: func(context.Context, contractx.BookingRequest) (contractx.BookingConfirmation, error) {
		return contractx.BookingConfirmation{}, fmt.Errorf("%w: balance too low", contractx.ErrInsufficientPoints)
	}}
	gw := newTestGateway(t, nil, nil, booking)

	arrival := time.Date(2025, 3, 25, 14, 0, 0, 0, time.UTC)
	_, err := gw.Execute(context.Background(), []contractx.ToolRequest{{
		Tool: contractx.ToolBookLounge,
		Args: map[string]any{
			"user_id":       "traveller-7",
			"lounge_id":     "szx_t3_joyee",
			"flight_number": "CZ3456",
			"arrival_time":  arrival.Format(time.RFC3339),
		},
	}})
	if !errors.Is(err, contractx.ErrInsufficientPoints) {
		t.Fatalf("got %v, want ErrInsufficientPoints", err)
	}
	if booking.calls != 1 {
		t.Fatalf("booking calls = %d, mutating tools must never retry", booking.calls)
	}

	// Malformed args never reach the booking service.
	_, err = gw.Execute(context.Background(), []contractx.ToolRequest{{
		Tool: contractx.ToolBookLounge,
		Args: map[string]any{"user_id": "traveller-7"},
	}})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
	if booking.calls != 1 {
		t.Fatal("invalid booking request must not reach the service")
	}
}

func TestGatewayMembershipPoints(t *testing.T) {
	t.Parallel()

	membership := &fakeMembership{fn: func(_ context.Context, userID string) (contractx.MemberProfile, error) {
		if userID != "traveller-7" {
			return contractx.MemberProfile{}, fmt.Errorf("%w: member %s", contractx.ErrNotFound, userID)
		}
		return contractx.MemberProfile{Points: 3, FirstName: "Wei", LastName: "Li"}, nil
	}}
	gw := newTestGateway(t, nil, membership, nil)

	results, err := gw.Execute(context.Background(), []contractx.ToolRequest{{
		Tool: contractx.ToolCheckMembershipPoints,
		Args: map[string]any{"user_id": "traveller-7"},
	}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	profile := results[0].Result.(contractx.MemberProfile)
	if profile.Points != 3 {
		t.Fatalf("points = %d, want 3", profile.Points)
	}

	// Unknown member is a soft failure, not a turn abort.
	results, err = gw.Execute(context.Background(), []contractx.ToolRequest{{
		Tool: contractx.ToolCheckMembershipPoints,
		Args: map[string]any{"user_id": "stranger"},
	}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if results[0].Error == "" {
		t.Fatal("unknown member must be a soft failure")
	}
}

func TestBuildForStageMatchesWhitelist(t *testing.T) {
	t.Parallel()

	infos := BuildForStage(statex.StageRecommendation)
	names := make(map[string]bool, len(infos))
	for _, info := range infos {
		names[info.Name] = true
	}
	if !names[contractx.ToolGetAvailableLounges] || !names[contractx.ToolStoreLoungeInfo] {
		t.Fatalf("recommendation tools = %v", names)
	}
	if BuildForStage(statex.StageInitial) != nil {
		t.Fatal("initial stage must bind no tools")
	}
}
