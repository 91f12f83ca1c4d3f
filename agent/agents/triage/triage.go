// Package triage is the entry handler: it authenticates the customer against
// the directory and routes the stated need to the specialized agents.
package triage

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

const maxAuthAttempts = 3

const (
	askCPF   = "Para começarmos, preciso fazer sua autenticação. Por favor, informe seu CPF (apenas os números)."
	askBirth = "Obrigado! Agora preciso da sua data de nascimento no formato DD/MM/AAAA."

	closingAttempts = "Lamento, mas não foi possível autenticar após várias tentativas. " +
		"Por favor, entre em contato com nosso suporte para verificar seus dados. Tenha um ótimo dia!"
	farewell = "Entendido! Foi um prazer atendê-lo. Até logo!"

	apology = "Desculpe, estou com dificuldade para processar sua mensagem agora. Pode repetir, por favor?"
)

type Handler struct {
	interp    contract.Interpreter
	directory contract.CustomerDirectory
	now       func() time.Time
}

var _ contract.Handler = (*Handler)(nil)

func New(interp contract.Interpreter, directory contract.CustomerDirectory) (*Handler, error) {
	if interp == nil {
		return nil, errors.New("interpreter is required")
	}
	if directory == nil {
		return nil, errors.New("customer directory is required")
	}
	return &Handler{interp: interp, directory: directory, now: time.Now}, nil
}

func (h *Handler) Handle(ctx context.Context, sess *session.Session, utterance string) (contract.Reply, error) {
	if greeting.IsClosing(utterance) {
		return contract.Reply{Text: farewell, Handoff: session.AgentTerminated}, nil
	}

	switch sess.AuthStage {
	case session.StageGreeting:
		return h.greet(sess, utterance), nil
	case session.StageCollectingCPF:
		return h.collectCPF(ctx, sess, utterance)
	case session.StageCollectingBirthDate:
		return h.collectBirthDate(ctx, sess, utterance)
	default:
		return h.route(ctx, sess, utterance)
	}
}

func (h *Handler) greet(sess *session.Session, utterance string) contract.Reply {
	sess.AuthStage = session.StageCollectingCPF
	opening := "Olá!"
	if kind := greeting.Detect(utterance); kind != greeting.None {
		opening = greeting.Reply(kind, h.now())
	}
	return contract.Reply{Text: fmt.Sprintf(
		"%s Bem-vindo ao Banco Ágil. Sou seu assistente virtual. %s", opening, askCPF)}
}

func (h *Handler) collectCPF(ctx context.Context, sess *session.Session, utterance string) (contract.Reply, error) {
	cmd, err := h.interp.Interpret(ctx, sess, utterance, contract.Shape{Kind: contract.ShapeCPF})
	if err != nil {
		return degraded(err), nil
	}

	switch c := cmd.(type) {
	case contract.Authenticate:
		sess.PendingCPF = c.CPF
		sess.AuthStage = session.StageCollectingBirthDate
		return contract.Reply{Text: askBirth}, nil
	case contract.FreeText:
		if c.Raw != "" {
			return contract.Reply{Text: c.Raw}, nil
		}
	}
	return contract.Reply{Text: "Por favor, informe um CPF válido com 11 dígitos."}, nil
}

func (h *Handler) collectBirthDate(ctx context.Context, sess *session.Session, utterance string) (contract.Reply, error) {
	cmd, err := h.interp.Interpret(ctx, sess, utterance, contract.Shape{Kind: contract.ShapeBirthDate})
	if err != nil {
		return degraded(err), nil
	}

	auth, ok := cmd.(contract.Authenticate)
	if !ok || auth.BirthDate == "" {
		if ft, isFree := cmd.(contract.FreeText); isFree && ft.Raw != "" {
			return contract.Reply{Text: ft.Raw}, nil
		}
		return contract.Reply{Text: "Não consegui identificar a data. Informe no formato DD/MM/AAAA, por favor."}, nil
	}

	rec, err := h.directory.Lookup(ctx, sess.PendingCPF)
	if err == nil && rec.BirthDate == auth.BirthDate {
		sess.Customer = &rec
		sess.AuthStage = session.StageAuthenticated
		sess.AuthAttempts = 0
		log.Info().Str("session", sess.ID).Msg("customer authenticated")
		return contract.Reply{Text: fmt.Sprintf(
			"Ótimo! Autenticação realizada com sucesso, %s. Como posso ajudá-lo hoje?", rec.Name)}, nil
	}
	if err != nil && !errors.Is(err, contract.ErrNotFound) {
		return degraded(err), nil
	}

	sess.AuthAttempts++
	sess.PendingCPF = ""
	sess.AuthStage = session.StageCollectingCPF
	if sess.AuthAttempts >= maxAuthAttempts {
		log.Info().Str("session", sess.ID).Msg("authentication attempts exhausted")
		return contract.Reply{Text: closingAttempts, Handoff: session.AgentTerminated}, nil
	}
	remaining := maxAuthAttempts - sess.AuthAttempts
	return contract.Reply{Text: fmt.Sprintf(
		"Dados não conferem. Você tem %d tentativa(s) restante(s). Por favor, informe novamente seu CPF.",
		remaining)}, nil
}

func (h *Handler) route(ctx context.Context, sess *session.Session, utterance string) (contract.Reply, error) {
	if kind := greeting.Detect(utterance); kind != greeting.None && greeting.Strip(utterance) == "" {
		return contract.Reply{Text: fmt.Sprintf(
			"%s Como posso ajudá-lo hoje, %s?", greeting.Reply(kind, h.now()), sess.Customer.Name)}, nil
	}

	cmd, err := h.interp.Interpret(ctx, sess, utterance,
		contract.Shape{Kind: contract.ShapeIntent, IncludeHistory: true})
	if err != nil {
		return degraded(err), nil
	}

	switch c := cmd.(type) {
	case contract.RouteIntent:
		log.Debug().Str("session", sess.ID).Str("target", string(c.Target)).Msg("routing stated need")
		return contract.Reply{Handoff: c.Target}, nil
	case contract.FreeText:
		if c.Raw != "" {
			return contract.Reply{Text: c.Raw}, nil
		}
	}
	// Ambiguous but substantive: credit is the documented default target.
	return contract.Reply{Handoff: session.AgentCredit}, nil
}

func degraded(err error) contract.Reply {
	log.Warn().Err(err).Msg("interpretation unavailable, degrading")
	return contract.Reply{Text: apology}
}
