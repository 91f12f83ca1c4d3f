package gateway

import (
	"context"
	"fmt"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/pkg/openrouter"
)

// ModelBackend adapts one model id on the shared OpenRouter client into a
// ranked inference backend, classifying failures into the gateway taxonomy.
type ModelBackend struct {
	model  string
	client *openrouter.Client
}

var _ contract.InferenceBackend = (*ModelBackend)(nil)

func NewModelBackend(client *openrouter.Client, model string) *ModelBackend {
	return &ModelBackend{model: model, client: client}
}

func (b *ModelBackend) Name() string {
	return b.model
}

func (b *ModelBackend) Infer(ctx context.Context, prompt string) (string, error) {
	text, err := b.client.Complete(ctx, b.model, prompt)
	if err == nil {
		return text, nil
	}
	switch {
	case openrouter.IsQuota(err):
		return "", fmt.Errorf("%w: %v", contract.ErrQuotaExhausted, err)
	case openrouter.IsTimeout(err):
		return "", context.DeadlineExceeded
	default:
		return "", err
	}
}

// Backends builds the ranked backend list from the configured model order.
func Backends(client *openrouter.Client, models []string) []contract.InferenceBackend {
	out := make([]contract.InferenceBackend, 0, len(models))
	for _, m := range models {
		out = append(out, NewModelBackend(client, m))
	}
	return out
}
