package contract

import (
	"context"

	"github.com/bancoagil/atende/agent/domain"
	"github.com/bancoagil/atende/agent/session"
)

// Handler owns one business capability and one portion of the conversation
// state machine. Every call returns exactly one reply; there is no silent-drop
// branch by construction.
type Handler interface {
	Handle(ctx context.Context, sess *session.Session, utterance string) (Reply, error)
}

// Interpreter turns a free-form utterance into a structured Command. The
// returned error is reserved for gateway-level failures (all backends
// exhausted, transient inference error); malformed model output never errors.
type Interpreter interface {
	Interpret(ctx context.Context, sess *session.Session, utterance string, shape Shape) (Command, error)
}

// TraceSink receives one record per gateway attempt. *session.Session
// implements it.
type TraceSink interface {
	Record(call session.GatewayCall)
}

// Gateway is the failover inference entry point.
type Gateway interface {
	Infer(ctx context.Context, prompt string, sink TraceSink) (string, error)
}

// InferenceBackend is one ranked natural-language inference service.
type InferenceBackend interface {
	Name() string
	Infer(ctx context.Context, prompt string) (string, error)
}

// CustomerDirectory is the customer lookup/update collaborator.
type CustomerDirectory interface {
	Lookup(ctx context.Context, cpf string) (domain.CustomerRecord, error)
	Save(ctx context.Context, rec domain.CustomerRecord) error
}

// RequestLog is append-only; entries are never updated or deleted.
type RequestLog interface {
	Append(ctx context.Context, req domain.IncreaseRequest) error
}

// TierSource provides the score bracket table.
type TierSource interface {
	Tiers(ctx context.Context) (domain.TierTable, error)
}

// QuoteProvider is the external currency-quote collaborator.
type QuoteProvider interface {
	GetRate(ctx context.Context, code string) (domain.Quote, error)
}
