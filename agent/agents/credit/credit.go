// Package credit answers limit queries and decides limit-increase requests
// against the score bracket table.
package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/domain"
	"github.com/bancoagil/atende/agent/greeting"
	"github.com/bancoagil/atende/agent/session"
)

const (
	apology  = "Desculpe, estou com dificuldade para processar sua mensagem agora. Pode repetir, por favor?"
	farewell = "Foi um prazer ajudá-lo! Até logo!"
)

// Handler is shared by every concurrent session; all per-conversation state
// lives in the session, so it holds only its (safe) collaborators.
type Handler struct {
	interp    contract.Interpreter
	directory contract.CustomerDirectory
	requests  contract.RequestLog
	tiers     contract.TierSource
	now       func() time.Time
}

var _ contract.Handler = (*Handler)(nil)

func New(
	interp contract.Interpreter,
	directory contract.CustomerDirectory,
	requests contract.RequestLog,
	tiers contract.TierSource,
) (*Handler, error) {
	if interp == nil || directory == nil || requests == nil || tiers == nil {
		return nil, errors.New("interpreter, directory, request log and tier source are required")
	}
	return &Handler{
		interp:    interp,
		directory: directory,
		requests:  requests,
		tiers:     tiers,
		now:       time.Now,
	}, nil
}

func (h *Handler) Handle(ctx context.Context, sess *session.Session, utterance string) (contract.Reply, error) {
	if !sess.Authenticated() {
		sess.InterviewOfferPending = false
		return contract.Reply{
			Text:    "Desculpe, não foi possível identificar seus dados. Vamos refazer sua autenticação.",
			Handoff: session.AgentTriage,
		}, nil
	}
	if greeting.IsClosing(utterance) {
		sess.InterviewOfferPending = false
		return contract.Reply{Text: farewell, Handoff: session.AgentTerminated}, nil
	}
	if kind := greeting.Detect(utterance); kind != greeting.None && greeting.Strip(utterance) == "" {
		return contract.Reply{Text: greeting.Reply(kind, h.now()) +
			" Como posso ajudá-lo com questões de crédito?"}, nil
	}

	// A pending interview offer gates the turn: classify strictly as yes/no
	// before any general interpretation, so credit talk with
	// affirmative-sounding words is not mistaken for an acceptance.
	if sess.InterviewOfferPending {
		sess.InterviewOfferPending = false
		cmd, err := h.interp.Interpret(ctx, sess, utterance, contract.Shape{Kind: contract.ShapeYesNo})
		if err != nil {
			return degraded(err), nil
		}
		switch cmd.(type) {
		case contract.Affirm:
			return contract.Reply{Handoff: session.AgentInterview}, nil
		case contract.Deny:
			return contract.Reply{Text: "Tudo bem! Posso ajudá-lo com mais alguma coisa sobre seu crédito?"}, nil
		}
		// Neither: fall through to the general credit flow below.
	}

	cmd, err := h.interp.Interpret(ctx, sess, utterance, contract.Shape{Kind: contract.ShapeCreditIntent})
	if err != nil {
		return degraded(err), nil
	}

	switch c := cmd.(type) {
	case contract.QueryLimit:
		return contract.Reply{Text: fmt.Sprintf(
			"Seu limite de crédito atual é de R$ %.2f e seu score é %d. Posso ajudá-lo com alguma solicitação de aumento?",
			sess.Customer.CreditLimit, sess.Customer.Score)}, nil
	case contract.RequestIncrease:
		return h.decideIncrease(ctx, sess, c.Amount)
	case contract.RouteIntent:
		return contract.Reply{Handoff: c.Target}, nil
	case contract.FreeText:
		if c.Raw != "" {
			return contract.Reply{Text: c.Raw}, nil
		}
	}
	return contract.Reply{Text: "Posso consultar seu limite atual ou processar uma solicitação de aumento. O que você precisa?"}, nil
}

func (h *Handler) decideIncrease(ctx context.Context, sess *session.Session, amount float64) (contract.Reply, error) {
	cust := sess.Customer
	if amount <= 0 {
		return contract.Reply{Text: "Não consegui identificar o valor do aumento. Informe o valor desejado (ex: 10000 ou 10 mil)."}, nil
	}

	table, err := h.tiers.Tiers(ctx)
	if err != nil {
		return degraded(err), nil
	}
	tier, err := table.For(cust.Score)
	if err != nil {
		return degraded(err), nil
	}

	approved := amount <= tier.MaxLimit
	status := domain.RequestRejected
	if approved {
		status = domain.RequestApproved
	}

	req := domain.IncreaseRequest{
		ID:             ulid.Make().String(),
		CustomerCPF:    cust.CPF,
		RequestedAt:    h.now(),
		CurrentLimit:   cust.CreditLimit,
		RequestedLimit: amount,
		Status:         status,
	}

	if !approved {
		h.append(ctx, sess, req)
		sess.InterviewOfferPending = true
		return contract.Reply{Text: fmt.Sprintf(
			"Infelizmente, sua solicitação de aumento de limite para R$ %.2f não pôde ser aprovada com base na análise do seu perfil de crédito. "+
				"Posso oferecer uma entrevista de crédito para tentarmos melhorar sua avaliação. Gostaria de fazer a entrevista?",
			amount)}, nil
	}

	// The approval is only real once the limit update persists; the audit
	// entry is written after so the log never claims an approval that was
	// rolled back.
	previous := cust.CreditLimit
	cust.CreditLimit = amount
	if err := h.directory.Save(ctx, *cust); err != nil {
		cust.CreditLimit = previous
		return degraded(err), nil
	}
	h.append(ctx, sess, req)
	return contract.Reply{Text: fmt.Sprintf(
		"Excelente notícia! Sua solicitação de aumento de limite de R$ %.2f para R$ %.2f foi APROVADA. O novo limite já está disponível para uso.",
		previous, amount)}, nil
}

func (h *Handler) append(ctx context.Context, sess *session.Session, req domain.IncreaseRequest) {
	if err := h.requests.Append(ctx, req); err != nil {
		// The decision stands; losing the audit entry must not fail the turn.
		log.Error().Err(err).Str("cpf", req.CustomerCPF).Msg("append increase request failed")
		return
	}
	log.Info().Str("session", sess.ID).Float64("amount", req.RequestedLimit).
		Str("status", string(req.Status)).Msg("increase request decided")
}

func degraded(err error) contract.Reply {
	log.Warn().Err(err).Msg("credit flow degraded")
	return contract.Reply{Text: apology}
}
