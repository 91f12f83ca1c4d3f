// Package orchestrator routes each turn of a conversation to the handler
// that owns the session's active flow.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/session"
)

const closed = "Este atendimento foi encerrado. Obrigado por entrar em contato com o Banco Ágil!"

type Orchestrator struct {
	handlers map[session.AgentType]contract.Handler
}

func New(handlers map[session.AgentType]contract.Handler) (*Orchestrator, error) {
	if len(handlers) == 0 {
		return nil, errors.New("at least one handler is required")
	}
	for _, t := range []session.AgentType{session.AgentTriage, session.AgentCredit, session.AgentInterview, session.AgentExchange} {
		if handlers[t] == nil {
			return nil, fmt.Errorf("missing handler for %q", t)
		}
	}
	return &Orchestrator{handlers: handlers}, nil
}

// Dispatch routes one utterance, applies any handoff the handler requests
// and appends both sides of the turn to the session history. A handoff with
// an empty reply re-dispatches the same utterance once so the receiving
// handler can answer it.
func (o *Orchestrator) Dispatch(ctx context.Context, sess *session.Session, utterance string) (string, error) {
	if sess.Active == session.AgentTerminated {
		return closed, nil
	}
	sess.ResetTrace()
	sess.AppendTurn(session.SpeakerUser, utterance)

	reply, err := o.dispatch(ctx, sess, utterance)
	if err != nil {
		return "", err
	}
	if reply.Handoff != "" && reply.Handoff != session.AgentTerminated && reply.Text == "" {
		reply, err = o.dispatch(ctx, sess, utterance)
		if err != nil {
			return "", err
		}
	}

	text := reply.Text
	if text == "" {
		text = "Como posso ajudá-lo?"
	}
	sess.AppendTurn(session.SpeakerAgent, text)
	return text, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, sess *session.Session, utterance string) (contract.Reply, error) {
	h, ok := o.handlers[sess.Active]
	if !ok {
		return contract.Reply{}, fmt.Errorf("no handler for active flow %q", sess.Active)
	}

	reply, err := h.Handle(ctx, sess, utterance)
	if err != nil {
		return contract.Reply{}, fmt.Errorf("handler %q: %w", sess.Active, err)
	}
	if reply.Handoff != "" && reply.Handoff != sess.Active {
		log.Debug().Str("session", sess.ID).Str("from", string(sess.Active)).
			Str("to", string(reply.Handoff)).Msg("handoff")
		sess.Active = reply.Handoff
	}
	return reply, nil
}
