// Package gateway routes inference calls across an ordered list of backends,
// skipping the ones retired by the shared exhaustion registry.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/session"
)

// Gateway fails over backends in rank order. The retry loop is bounded by the
// list length.
type Gateway struct {
	backends []contract.InferenceBackend // best to worst
	registry *Registry
}

func New(registry *Registry, backends ...contract.InferenceBackend) (*Gateway, error) {
	if registry == nil {
		return nil, errors.New("backend registry is required")
	}
	if len(backends) == 0 {
		return nil, errors.New("at least one inference backend is required")
	}
	return &Gateway{backends: backends, registry: registry}, nil
}

// Infer invokes the first eligible backend. Quota exhaustion retires the
// backend for the process lifetime and falls through to the next one within
// the same call; a timeout falls through without retiring it; any other
// failure propagates immediately. Every attempt is recorded to sink.
func (g *Gateway) Infer(ctx context.Context, prompt string, sink contract.TraceSink) (string, error) {
	var lastTimeout error

	for _, b := range g.backends {
		if g.registry.Exhausted(b.Name()) {
			continue
		}

		text, err := b.Infer(ctx, prompt)
		record(sink, b.Name(), prompt, text, err)
		if err == nil {
			return text, nil
		}

		switch {
		case errors.Is(err, contract.ErrQuotaExhausted):
			g.registry.MarkExhausted(b.Name())
			log.Warn().Str("backend", b.Name()).Int("exhausted", g.registry.Count()).
				Msg("backend quota exhausted, failing over")
		case errors.Is(err, context.DeadlineExceeded):
			// A timeout is transient for this call only; the backend stays
			// eligible for future calls.
			lastTimeout = err
			log.Warn().Str("backend", b.Name()).Msg("backend timed out, trying next")
		default:
			return "", fmt.Errorf("%w: backend %s: %v", contract.ErrTransient, b.Name(), err)
		}
	}

	if lastTimeout != nil {
		return "", fmt.Errorf("%w: %v", contract.ErrTransient, lastTimeout)
	}
	return "", contract.ErrAllBackendsExhausted
}

func record(sink contract.TraceSink, backend, prompt, response string, err error) {
	if sink == nil {
		return
	}
	call := session.GatewayCall{Backend: backend, Prompt: prompt, Response: response}
	if err != nil {
		call.Err = err.Error()
	}
	sink.Record(call)
}
