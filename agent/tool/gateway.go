package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	catalogx "github.com/travel-buddy/lounge-agent/agent/catalog"
	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
)

// Gateway executes admissible tool calls against their backing services.
// It owns parameter decoding and result validation; it does not enforce
// stage admissibility, which is the turn pipeline's job before calls get
// here. A ToolResult with Error set is a soft failure the assistant can
// recover from; a returned error aborts the turn's tool batch.
type Gateway struct {
	catalog    *catalogx.Catalog
	extractor  contractx.FlightDocExtractor
	membership contractx.MembershipService
	booking    contractx.BookingService
	attempts   int
	now        func() time.Time
}

type GatewayOption func(*Gateway)

// WithRetryAttempts caps retries of read-only tool calls on transient
// upstream failures.
func WithRetryAttempts(n int) GatewayOption {
	return func(g *Gateway) { g.attempts = n }
}

func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

func NewGateway(
	cat *catalogx.Catalog,
	extractor contractx.FlightDocExtractor,
	membership contractx.MembershipService,
	booking contractx.BookingService,
	opts ...GatewayOption,
) (*Gateway, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: lounge catalog is required", contractx.ErrValidation)
	}
	if extractor == nil || membership == nil || booking == nil {
		return nil, fmt.Errorf("%w: all backing services are required", contractx.ErrValidation)
	}
	g := &Gateway{
		catalog:    cat,
		extractor:  extractor,
		membership: membership,
		booking:    booking,
		attempts:   defaultRetryAttempts,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Execute runs the requests in order. Read-only failures come back as soft
// ToolResult errors; a mutating-tool failure stops the batch and returns
// the results executed so far alongside the error.
func (g *Gateway) Execute(ctx context.Context, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		res, err := g.execute(ctx, req)
		if err != nil {
			log.Error().Err(err).Str("tool", req.Tool).Msg("tool execution aborted")
			return results, err
		}
		if res.Error != "" {
			log.Warn().Str("tool", req.Tool).Str("reason", res.Error).Msg("tool reported soft failure")
		}
		results = append(results, res)
	}
	return results, nil
}

func (g *Gateway) execute(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	switch req.Tool {
	case contractx.ToolCheckFlightDocument:
		return g.checkFlightDocument(ctx, req)
	case contractx.ToolGetAvailableLounges:
		return g.getAvailableLounges(req)
	case contractx.ToolCheckMembershipPoints:
		return g.checkMembershipPoints(ctx, req)
	case contractx.ToolStoreLoungeInfo:
		return g.storeLoungeInfo(req)
	case contractx.ToolBookLounge:
		return g.bookLounge(ctx, req)
	default:
		return contractx.ToolResult{}, fmt.Errorf("%w: unknown tool %q", contractx.ErrValidation, req.Tool)
	}
}

func (g *Gateway) checkFlightDocument(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	raw, ok := req.Args["image_base64"].(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return softFailure(req.Tool, "image_base64 is required"), nil
	}

	lines, err := withRetry(ctx, g.attempts, func(ctx context.Context) ([]string, error) {
		return g.extractor.Extract(ctx, raw)
	})
	if err != nil {
		return softFailure(req.Tool, fmt.Sprintf("document extraction failed: %v", err)), nil
	}

	fields := ScanTicketText(lines)
	if fields.FlightNumber == "" {
		return softFailure(req.Tool, "no flight number found in document"), nil
	}

	doc := contractx.FlightDocument{
		FlightNumber:  fields.FlightNumber,
		Carrier:       fields.FlightNumber[:2],
		PassengerName: fields.PassengerName,
		Seat:          fields.Seat,
	}
	if dep, ok := ParseTicketDate(fields.Date, g.now()); ok {
		doc.DepartureTime = &dep
	}
	return contractx.ToolResult{Tool: req.Tool, Result: doc}, nil
}

func (g *Gateway) getAvailableLounges(req contractx.ToolRequest) (contractx.ToolResult, error) {
	query, err := contractx.DecodeLoungeQuery(req.Args)
	if err != nil {
		return softFailure(req.Tool, err.Error()), nil
	}

	lounges := g.catalog.Find(catalogx.Query{
		AirportCode: query.AirportCode,
		Terminal:    query.Terminal,
		Amenities:   query.Amenities,
	})
	summaries := make([]contractx.LoungeSummary, 0, len(lounges))
	for _, lounge := range lounges {
		summaries = append(summaries, toSummary(lounge))
	}
	return contractx.ToolResult{Tool: req.Tool, Result: summaries}, nil
}

func (g *Gateway) checkMembershipPoints(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	userID, ok := req.Args["user_id"].(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return softFailure(req.Tool, "user_id is required"), nil
	}

	profile, err := withRetry(ctx, g.attempts, func(ctx context.Context) (contractx.MemberProfile, error) {
		return g.membership.Profile(ctx, strings.TrimSpace(userID))
	})
	if err != nil {
		return softFailure(req.Tool, fmt.Sprintf("membership lookup failed: %v", err)), nil
	}
	if profile.Points < 0 {
		return contractx.ToolResult{}, fmt.Errorf("%w: membership service returned negative balance %d", contractx.ErrExternal, profile.Points)
	}
	return contractx.ToolResult{Tool: req.Tool, Result: profile}, nil
}

func (g *Gateway) storeLoungeInfo(req contractx.ToolRequest) (contractx.ToolResult, error) {
	sel, err := contractx.DecodeSelection(req.Args)
	if err != nil {
		return softFailure(req.Tool, err.Error()), nil
	}

	lounge, found := g.catalog.Get(sel.LoungeID)
	if !found {
		return softFailure(req.Tool, fmt.Sprintf("lounge %s not found", sel.LoungeID)), nil
	}
	if lounge.Status == catalogx.StatusUnavailable {
		return softFailure(req.Tool, fmt.Sprintf("lounge %s is temporarily unavailable", lounge.ID)), nil
	}

	// Canonicalize id and name from the catalog record.
	sel.LoungeID = lounge.ID
	sel.LoungeName = lounge.Name
	return contractx.ToolResult{Tool: req.Tool, Result: sel}, nil
}

func (g *Gateway) bookLounge(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	booking, err := contractx.DecodeBookingRequest(req.Args)
	if err != nil {
		return contractx.ToolResult{}, err
	}
	if _, found := g.catalog.Get(booking.LoungeID); !found {
		return contractx.ToolResult{}, fmt.Errorf("%w: lounge id=%s", contractx.ErrNotFound, booking.LoungeID)
	}

	// Never retried: booking mutates external state.
	conf, err := g.booking.Book(ctx, booking)
	if err != nil {
		return contractx.ToolResult{}, err
	}
	return contractx.ToolResult{Tool: req.Tool, Result: conf}, nil
}

func toSummary(lounge catalogx.Lounge) contractx.LoungeSummary {
	location := lounge.Location.Terminal
	if lounge.Location.Area != "" {
		location += ", " + lounge.Location.Area
	}
	if lounge.Location.Details != "" {
		location += " (" + lounge.Location.Details + ")"
	}
	return contractx.LoungeSummary{
		ID:           lounge.ID,
		Name:         lounge.Name,
		OpeningHours: lounge.OpeningHours,
		Location:     location,
		Amenities:    lounge.Amenities,
		Conditions:   lounge.Conditions,
		PointSpent:   lounge.PointSpent,
		Status:       lounge.Status,
	}
}

func softFailure(tool, reason string) contractx.ToolResult {
	return contractx.ToolResult{Tool: tool, Error: reason}
}
