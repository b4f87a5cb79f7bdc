package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
)

// SaveSession appends the turn to the transcript and persists the session.
// This is the turn's only write; nothing earlier touches the store, so a
// failed turn leaves the previous session intact.
func SaveSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	userText := in.Text
	if userText == "" && in.ImageBase64 != "" {
		userText = "[sent an attachment]"
	}
	in.Session.AppendMessage(statex.RoleUser, userText)
	in.Session.AppendMessage(statex.RoleAssistant, in.Message)
	in.Session.Touch(in.Now)

	if err := in.Session.Validate(); err != nil {
		return nil, err
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, err
	}
	in.Session.ClearChanged()
	return in, nil
}
