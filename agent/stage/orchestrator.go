package stage

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	catalogx "github.com/travel-buddy/lounge-agent/agent/catalog"
	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
)

// flightNumberPattern is the syntactic contract for flight numbers, shared
// with the boarding-pass text scanner.
var flightNumberPattern = regexp.MustCompile(`^[A-Z]{2}\d{3,4}$`)

// IsFlightNumber reports whether s is a syntactically valid flight number.
func IsFlightNumber(s string) bool {
	return flightNumberPattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// Orchestrator is the booking-lifecycle state machine. It owns every session
// mutation: tool results are folded in through ApplyResult, transitions
// happen only inside Evaluate, and mutating tools pass through Replay and
// the precondition checks before they may execute.
type Orchestrator struct {
	catalog  *catalogx.Catalog
	validate *validator.Validate
}

func New(cat *catalogx.Catalog) (*Orchestrator, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: lounge catalog is required", contractx.ErrValidation)
	}
	return &Orchestrator{
		catalog:  cat,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (o *Orchestrator) Catalog() *catalogx.Catalog {
	return o.catalog
}

// Evaluate runs the exit guard of the session's current stage against the
// fully-applied session state plus the turn's message, and advances at most
// one step. Callers must finish applying tool results before calling it.
// hasAttachment marks a turn whose only content is a document image; such a
// turn still counts as an inbound message for the initial guard.
func (o *Orchestrator) Evaluate(sess *statex.Session, message string, hasAttachment bool, now time.Time) (statex.Stage, bool) {
	prior := sess.Stage

	switch sess.Stage {
	case statex.StageInitial:
		if strings.TrimSpace(message) == "" && !hasAttachment {
			return prior, false
		}
	case statex.StageInfoCollection:
		if sess.Flight == nil || sess.ArrivalTime == nil {
			return prior, false
		}
	case statex.StageRecommendation:
		if sess.Selection == nil {
			return prior, false
		}
	case statex.StageConfirmation:
		if !IsConfirmation(message) {
			return prior, false
		}
		sess.Confirmed = true
	case statex.StageBookingExecution:
		if sess.Booking == nil {
			return prior, false
		}
	case statex.StagePostBooking:
		if !IsFarewell(message) {
			return prior, false
		}
		sess.Reset(now)
		log.Info().Str("user_id", sess.UserID).Msg("farewell received, session looped back to initial stage")
		return statex.StageInitial, true
	default:
		return prior, false
	}

	next, ok := sess.Stage.Next()
	if !ok {
		return prior, false
	}
	sess.Stage = next
	sess.Touch(now)
	log.Info().
		Str("user_id", sess.UserID).
		Str("from", string(prior)).
		Str("to", string(next)).
		Msg("stage transition")
	return next, true
}

// ApplyResult validates a successful tool result and folds its derived
// fields into the session, all-or-nothing. Results carrying a tool-level
// error are never applied.
func (o *Orchestrator) ApplyResult(sess *statex.Session, res contractx.ToolResult) error {
	if res.Error != "" {
		return fmt.Errorf("%w: tool=%s reported %s", contractx.ErrValidation, res.Tool, res.Error)
	}

	switch res.Tool {
	case contractx.ToolCheckFlightDocument:
		doc, ok := res.Result.(contractx.FlightDocument)
		if !ok {
			return fmt.Errorf("%w: tool=%s unexpected payload %T", contractx.ErrValidation, res.Tool, res.Result)
		}
		if strings.TrimSpace(doc.FlightNumber) == "" {
			// Soft failure: the extractor found no flight number, ask again.
			return fmt.Errorf("%w: flight document extraction found no flight number", contractx.ErrValidation)
		}
		return sess.Apply(statex.FieldFlightInfo, doc)

	case contractx.ToolCheckMembershipPoints:
		profile, ok := res.Result.(contractx.MemberProfile)
		if !ok {
			return fmt.Errorf("%w: tool=%s unexpected payload %T", contractx.ErrValidation, res.Tool, res.Result)
		}
		if profile.Points < 0 {
			return fmt.Errorf("%w: negative points balance %d", contractx.ErrValidation, profile.Points)
		}
		return sess.Apply(statex.FieldPoints, profile.Points)

	case contractx.ToolStoreLoungeInfo:
		sel, ok := res.Result.(contractx.SelectionRequest)
		if !ok {
			return fmt.Errorf("%w: tool=%s unexpected payload %T", contractx.ErrValidation, res.Tool, res.Result)
		}
		if _, found := o.catalog.Get(sel.LoungeID); !found {
			return fmt.Errorf("%w: lounge id=%s", contractx.ErrNotFound, sel.LoungeID)
		}
		return sess.Apply(statex.FieldLoungeInfo, statex.Selection{
			LoungeID:    sel.LoungeID,
			LoungeName:  sel.LoungeName,
			ArrivalTime: sel.ArrivalTime,
		})

	case contractx.ToolBookLounge:
		conf, ok := res.Result.(contractx.BookingConfirmation)
		if !ok {
			return fmt.Errorf("%w: tool=%s unexpected payload %T", contractx.ErrValidation, res.Tool, res.Result)
		}
		return sess.Apply(statex.FieldOrderInfo, conf)

	case contractx.ToolGetAvailableLounges:
		// Read-only; the result goes back to the assistant, not the session.
		return nil

	default:
		return fmt.Errorf("%w: tool=%s", contractx.ErrStageViolation, res.Tool)
	}
}

// Replay short-circuits an already-satisfied mutating tool request: a
// retried identical store or book after success is a no-op returning the
// prior result.
func (o *Orchestrator) Replay(sess *statex.Session, req contractx.ToolRequest) (contractx.ToolResult, bool) {
	switch req.Tool {
	case contractx.ToolStoreLoungeInfo:
		if sess.Selection == nil {
			return contractx.ToolResult{}, false
		}
		sel, err := contractx.DecodeSelection(req.Args)
		if err != nil {
			return contractx.ToolResult{}, false
		}
		stored := *sess.Selection
		if !strings.EqualFold(stored.LoungeID, sel.LoungeID) || !stored.ArrivalTime.Equal(sel.ArrivalTime) {
			return contractx.ToolResult{}, false
		}
		return contractx.ToolResult{
			Tool: req.Tool,
			Result: contractx.SelectionRequest{
				LoungeID:    stored.LoungeID,
				LoungeName:  stored.LoungeName,
				ArrivalTime: stored.ArrivalTime,
			},
		}, true

	case contractx.ToolBookLounge:
		if sess.Booking == nil {
			return contractx.ToolResult{}, false
		}
		return contractx.ToolResult{Tool: req.Tool, Result: *sess.Booking}, true

	default:
		return contractx.ToolResult{}, false
	}
}

// BookingRequest assembles and checks the booking preconditions from session
// state. Any missing precondition is a caller-side validation failure; the
// external booking service must not be reached.
func (o *Orchestrator) BookingRequest(sess *statex.Session) (contractx.BookingRequest, error) {
	req := contractx.BookingRequest{UserID: strings.TrimSpace(sess.UserID)}
	if sess.Selection != nil {
		req.LoungeID = sess.Selection.LoungeID
	}
	if sess.Flight != nil {
		req.FlightNumber = strings.ToUpper(strings.TrimSpace(sess.Flight.FlightNumber))
	}
	if sess.ArrivalTime != nil {
		req.ArrivalTime = *sess.ArrivalTime
	}

	if err := o.validate.Struct(req); err != nil {
		return contractx.BookingRequest{}, fmt.Errorf("%w: booking preconditions: %v", contractx.ErrValidation, err)
	}
	if !IsFlightNumber(req.FlightNumber) {
		return contractx.BookingRequest{}, fmt.Errorf("%w: malformed flight number %q", contractx.ErrValidation, req.FlightNumber)
	}
	if _, found := o.catalog.Get(req.LoungeID); !found {
		return contractx.BookingRequest{}, fmt.Errorf("%w: lounge id=%s", contractx.ErrNotFound, req.LoungeID)
	}
	if !req.ArrivalTime.After(sess.CreatedAt) {
		return contractx.BookingRequest{}, fmt.Errorf("%w: arrival time %s is not in the future", contractx.ErrValidation, req.ArrivalTime.Format(time.RFC3339))
	}
	return req, nil
}
