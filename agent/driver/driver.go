package driver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	turnnode "github.com/travel-buddy/lounge-agent/agent/nodes"
	stagex "github.com/travel-buddy/lounge-agent/agent/stage"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
)

var (
	ErrInvalidUser    = turnnode.ErrInvalidUser
	ErrInvalidMessage = turnnode.ErrInvalidMessage
)

const modelTroubleReply = "I'm having trouble responding right now. Please try again in a moment."

// Driver runs the conversation loop: one HandleMessage call is one turn.
// Turns for the same user are serialized so concurrent messages cannot
// interleave their session writes.
type Driver struct {
	store     statex.Store
	assistant contractx.Assistant
	gateway   contractx.ToolGateway
	orch      *stagex.Orchestrator

	graphRunner compose.Runnable[turnnode.GraphInput, turnnode.GraphOutput]

	now func() time.Time

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func New(
	store statex.Store,
	assistant contractx.Assistant,
	gateway contractx.ToolGateway,
	orch *stagex.Orchestrator,
) (*Driver, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if assistant == nil {
		return nil, errors.New("assistant is required")
	}
	if gateway == nil {
		return nil, errors.New("tool gateway is required")
	}
	if orch == nil {
		return nil, errors.New("stage orchestrator is required")
	}

	d := &Driver{
		store:     store,
		assistant: assistant,
		gateway:   gateway,
		orch:      orch,
		now:       time.Now,
		users:     make(map[string]*sync.Mutex),
	}

	graphRunner, err := d.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	d.graphRunner = graphRunner

	return d, nil
}

// HandleMessage processes one user turn and returns the reply together with
// the stage the session ended the turn in.
func (d *Driver) HandleMessage(ctx context.Context, userID, text, imageBase64 string) (turnnode.GraphOutput, error) {
	unlock := d.lockUser(strings.TrimSpace(userID))
	defer unlock()

	out, err := d.graphRunner.Invoke(ctx, turnnode.GraphInput{
		UserID:      userID,
		Text:        text,
		ImageBase64: imageBase64,
	})
	if err == nil {
		return out, nil
	}
	if errors.Is(err, contractx.ErrModelInvoke) || errors.Is(err, contractx.ErrSchemaViolation) {
		// The session was not saved, so the turn can simply be retried.
		log.Error().Err(err).Str("user_id", userID).Msg("model failure, degrading to apology")
		return turnnode.GraphOutput{Reply: modelTroubleReply}, nil
	}
	return turnnode.GraphOutput{}, err
}

func (d *Driver) lockUser(userID string) func() {
	d.mu.Lock()
	lock, ok := d.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		d.users[userID] = lock
	}
	d.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
