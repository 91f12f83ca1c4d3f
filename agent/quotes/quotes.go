// Package quotes adapts the AwesomeAPI client to the quote provider
// collaborator used by the exchange flow.
package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/domain"
	"github.com/bancoagil/atende/pkg/awesomeapi"
)

type Provider struct {
	client *awesomeapi.Client
}

var _ contract.QuoteProvider = (*Provider)(nil)

func New(client *awesomeapi.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("awesomeapi client is required")
	}
	return &Provider{client: client}, nil
}

func (p *Provider) GetRate(ctx context.Context, code string) (domain.Quote, error) {
	q, err := p.client.Last(ctx, code)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: %v", contract.ErrProvider, err)
	}
	return domain.Quote{Code: q.Code, Bid: q.Bid, Ask: q.Ask, AsOf: q.AsOf}, nil
}
