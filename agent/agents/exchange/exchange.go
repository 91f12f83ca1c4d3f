// Package exchange quotes foreign currencies in BRL through an external
// rate provider.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/greeting"
	"github.com/bancoagil/atende/agent/session"
)

const unavailable = "No momento não consegui consultar a cotação. Tente novamente em instantes, por favor."

type Handler struct {
	interp contract.Interpreter
	quotes contract.QuoteProvider
	now    func() time.Time
}

var _ contract.Handler = (*Handler)(nil)

func New(interp contract.Interpreter, quotes contract.QuoteProvider) (*Handler, error) {
	if interp == nil || quotes == nil {
		return nil, errors.New("interpreter and quote provider are required")
	}
	return &Handler{interp: interp, quotes: quotes, now: time.Now}, nil
}

func (h *Handler) Handle(ctx context.Context, sess *session.Session, utterance string) (contract.Reply, error) {
	if greeting.IsClosing(utterance) {
		return contract.Reply{Text: "Foi um prazer ajudá-lo! Até logo!", Handoff: session.AgentTerminated}, nil
	}
	if kind := greeting.Detect(utterance); kind != greeting.None && greeting.Strip(utterance) == "" {
		return contract.Reply{Text: greeting.Reply(kind, h.now()) +
			" Qual moeda você gostaria de cotar? (ex: dólar, euro)"}, nil
	}

	cmd, err := h.interp.Interpret(ctx, sess, utterance, contract.Shape{Kind: contract.ShapeCurrency})
	if err != nil {
		log.Warn().Err(err).Msg("exchange flow degraded")
		return contract.Reply{Text: "Desculpe, não consegui processar sua mensagem agora. Qual moeda você gostaria de cotar?"}, nil
	}

	switch c := cmd.(type) {
	case contract.QuoteRequest:
		return h.quote(ctx, c.Currency)
	case contract.RouteIntent:
		return contract.Reply{Handoff: c.Target}, nil
	case contract.FreeText:
		if c.Raw != "" {
			return contract.Reply{Text: c.Raw}, nil
		}
	}
	return contract.Reply{Text: "Posso consultar a cotação de moedas como dólar, euro, libra, iene, franco suíço, dólar canadense, dólar australiano, yuan, peso argentino e peso mexicano. Qual você deseja?"}, nil
}

func (h *Handler) quote(ctx context.Context, currency string) (contract.Reply, error) {
	q, err := h.quotes.GetRate(ctx, currency)
	if err != nil {
		// Provider failures never end the conversation, only this answer.
		log.Warn().Err(err).Str("currency", currency).Msg("quote lookup failed")
		return contract.Reply{Text: unavailable}, nil
	}
	return contract.Reply{Text: fmt.Sprintf(
		"Cotação atual do %s: compra R$ %.4f, venda R$ %.4f. Posso consultar outra moeda?",
		q.Code, q.Bid, q.Ask)}, nil
}
