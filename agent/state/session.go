package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
)

var (
	ErrUnknownField = errors.New("unknown session field")
	ErrEmptyValue   = errors.New("refusing to apply empty value")
	ErrWrongType    = errors.New("value has wrong type for field")
)

// Field names the session facts a tool result may write. The names double as
// the keys the assistant sees in the session summary.
type Field string

const (
	FieldGuestCount  Field = "guest_count"
	FieldArrivalTime Field = "arrival_time"
	FieldFlightInfo  Field = "flight_info"
	FieldLoungeInfo  Field = "lounge_info"
	FieldPoints      Field = "points"
	FieldOrderInfo   Field = "order_info"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Selection is the stored lounge choice awaiting confirmation.
type Selection struct {
	LoungeID    string    `json:"lounge_id"`
	LoungeName  string    `json:"lounge_name"`
	ArrivalTime time.Time `json:"arrival_time"`
}

// Session is the per-user conversation record. All mutation funnels through
// Apply (fact merging) and the stage orchestrator (transitions); nothing else
// writes to it.
type Session struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Stage     Stage  `json:"stage"`

	GuestCount  *int                          `json:"guest_count,omitempty"`
	ArrivalTime *time.Time                    `json:"arrival_time,omitempty"`
	Flight      *contractx.FlightDocument     `json:"flight_info,omitempty"`
	Selection   *Selection                    `json:"lounge_info,omitempty"`
	Points      *int                          `json:"points,omitempty"`
	Confirmed   bool                          `json:"confirmed"`
	Booking     *contractx.BookingConfirmation `json:"order_info,omitempty"`

	Messages []Message `json:"messages,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// changed records which fields Apply touched since the last ClearChanged.
	// The orchestrator reads it when deciding readiness for transition.
	changed map[Field]bool
}

func NewSession(sessionID, userID string, now time.Time) *Session {
	return &Session{
		SessionID: strings.TrimSpace(sessionID),
		UserID:    strings.TrimSpace(userID),
		Stage:     StageInitial,
		Version:   1,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Apply type-checks and merges one fact into the session. Empty or nil
// values are rejected rather than overwriting collected data. The field is
// recorded as changed only when the merge took effect.
func (s *Session) Apply(field Field, value any) error {
	if err := s.check(field, value); err != nil {
		return err
	}
	s.commit(field, value)
	return nil
}

// Patch pairs a field with its incoming value for batched application.
type Patch struct {
	Field Field
	Value any
}

// ApplyAll validates every patch before committing any of them, so a failed
// batch leaves the session untouched (all-or-nothing for one tool result).
func (s *Session) ApplyAll(patches []Patch) error {
	for _, p := range patches {
		if err := s.check(p.Field, p.Value); err != nil {
			return err
		}
	}
	for _, p := range patches {
		s.commit(p.Field, p.Value)
	}
	return nil
}

func (s *Session) check(field Field, value any) error {
	if value == nil {
		return fmt.Errorf("%w: field=%s", ErrEmptyValue, field)
	}
	switch field {
	case FieldGuestCount:
		n, ok := value.(int)
		if !ok {
			return fmt.Errorf("%w: field=%s want int", ErrWrongType, field)
		}
		if n < 0 {
			return fmt.Errorf("guest count must be non-negative: %d", n)
		}
	case FieldArrivalTime:
		t, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("%w: field=%s want time.Time", ErrWrongType, field)
		}
		if t.IsZero() {
			return fmt.Errorf("%w: field=%s", ErrEmptyValue, field)
		}
	case FieldFlightInfo:
		doc, ok := value.(contractx.FlightDocument)
		if !ok {
			return fmt.Errorf("%w: field=%s want contract.FlightDocument", ErrWrongType, field)
		}
		if strings.TrimSpace(doc.FlightNumber) == "" {
			return fmt.Errorf("%w: flight document without flight number", ErrEmptyValue)
		}
	case FieldLoungeInfo:
		sel, ok := value.(Selection)
		if !ok {
			return fmt.Errorf("%w: field=%s want state.Selection", ErrWrongType, field)
		}
		if strings.TrimSpace(sel.LoungeID) == "" {
			return fmt.Errorf("%w: selection without lounge id", ErrEmptyValue)
		}
	case FieldPoints:
		n, ok := value.(int)
		if !ok {
			return fmt.Errorf("%w: field=%s want int", ErrWrongType, field)
		}
		if n < 0 {
			return fmt.Errorf("points balance must be non-negative: %d", n)
		}
	case FieldOrderInfo:
		conf, ok := value.(contractx.BookingConfirmation)
		if !ok {
			return fmt.Errorf("%w: field=%s want contract.BookingConfirmation", ErrWrongType, field)
		}
		if strings.TrimSpace(conf.BookingID) == "" {
			return fmt.Errorf("%w: booking confirmation without id", ErrEmptyValue)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func (s *Session) commit(field Field, value any) {
	switch field {
	case FieldGuestCount:
		n := value.(int)
		s.GuestCount = &n
	case FieldArrivalTime:
		t := value.(time.Time).UTC()
		s.ArrivalTime = &t
	case FieldFlightInfo:
		doc := value.(contractx.FlightDocument)
		s.Flight = &doc
	case FieldLoungeInfo:
		sel := value.(Selection)
		s.Selection = &sel
		// Promote the requested arrival time unless already collected.
		if s.ArrivalTime == nil && !sel.ArrivalTime.IsZero() {
			t := sel.ArrivalTime.UTC()
			s.ArrivalTime = &t
		}
	case FieldPoints:
		n := value.(int)
		s.Points = &n
	case FieldOrderInfo:
		conf := value.(contractx.BookingConfirmation)
		s.Booking = &conf
	}
	if s.changed == nil {
		s.changed = make(map[Field]bool, 4)
	}
	s.changed[field] = true
}

// Changed reports the fields touched since the last ClearChanged.
func (s *Session) Changed() []Field {
	fields := make([]Field, 0, len(s.changed))
	for _, f := range []Field{FieldGuestCount, FieldArrivalTime, FieldFlightInfo, FieldLoungeInfo, FieldPoints, FieldOrderInfo} {
		if s.changed[f] {
			fields = append(fields, f)
		}
	}
	return fields
}

func (s *Session) ClearChanged() {
	s.changed = nil
}

// AppendMessage adds one transcript entry; blank content is dropped.
func (s *Session) AppendMessage(role, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// Reset is the farewell loop: back to INITIAL with collected facts cleared.
// Identity and transcript survive; CreatedAt moves so that a fresh booking
// round gets a fresh arrival-time baseline.
func (s *Session) Reset(now time.Time) {
	s.Stage = StageInitial
	s.GuestCount = nil
	s.ArrivalTime = nil
	s.Flight = nil
	s.Selection = nil
	s.Points = nil
	s.Confirmed = false
	s.Booking = nil
	s.changed = nil
	s.CreatedAt = now.UTC()
	s.Touch(now)
}

// Validate checks structural invariants before a save.
func (s *Session) Validate() error {
	if strings.TrimSpace(s.SessionID) == "" {
		return errors.New("session id is empty")
	}
	if strings.TrimSpace(s.UserID) == "" {
		return errors.New("user id is empty")
	}
	if !s.Stage.Valid() {
		return fmt.Errorf("unknown stage %q", s.Stage)
	}
	if s.Stage.Number() >= StageConfirmation.Number() && s.Selection == nil {
		return fmt.Errorf("stage %s requires a stored selection", s.Stage)
	}
	if s.Stage == StagePostBooking && s.Booking == nil {
		return errors.New("post-booking stage requires a booking result")
	}
	return nil
}

// Summary is the compact view handed to the assistant each turn.
func (s *Session) Summary() map[string]any {
	summary := map[string]any{
		"stage":        string(s.Stage),
		"stage_number": s.Stage.Number(),
	}
	if s.GuestCount != nil {
		summary[string(FieldGuestCount)] = *s.GuestCount
	}
	if s.ArrivalTime != nil {
		summary[string(FieldArrivalTime)] = s.ArrivalTime.Format(time.RFC3339)
	}
	if s.Flight != nil {
		summary[string(FieldFlightInfo)] = s.Flight
	}
	if s.Selection != nil {
		summary[string(FieldLoungeInfo)] = s.Selection
	}
	if s.Points != nil {
		summary[string(FieldPoints)] = *s.Points
	}
	if s.Confirmed {
		summary["confirmed"] = true
	}
	if s.Booking != nil {
		summary[string(FieldOrderInfo)] = s.Booking
	}
	return summary
}
