package turnnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
)

var (
	ErrInvalidUser    = errors.New("user id is empty")
	ErrInvalidMessage = errors.New("message and attachment are both empty")
)

type GraphInput struct {
	UserID      string
	Text        string
	ImageBase64 string
}

type GraphOutput struct {
	Reply     string
	Stage     string
	BookingID string
}

// GraphState is threaded through every node of one turn.
type GraphState struct {
	UserID      string
	Text        string
	ImageBase64 string
	Now         time.Time

	Session *statex.Session

	Message      string
	ToolRequests []contractx.ToolRequest
	ToolResults  []contractx.ToolResult
	// StateUpdates holds facts the model extracted from the user's words;
	// they merge into the session before the exit guard runs.
	StateUpdates *contractx.StateUpdates

	// RejectedTool is set when the assistant proposed a tool outside the
	// stage whitelist; the whole batch is discarded.
	RejectedTool string
	// BookingErr records a failed mutating call so the reply can route the
	// traveller to a human instead of pretending success.
	BookingErr error

	PriorStage   statex.Stage
	Transitioned bool
	BookedNow    bool
}

func ValidateTurn(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}

	text := strings.TrimSpace(in.Text)
	image := strings.TrimSpace(in.ImageBase64)
	if text == "" && image == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		UserID:      userID,
		Text:        text,
		ImageBase64: image,
		Now:         nowFn().UTC(),
	}, nil
}
