// Package interview runs the credit interview: a fixed field sequence whose
// answers feed the score formula and refresh the customer's score.
package interview

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/domain"
	"github.com/bancoagil/atende/agent/greeting"
	"github.com/bancoagil/atende/agent/score"
	"github.com/bancoagil/atende/agent/session"
)

const apology = "Desculpe, não consegui processar sua resposta agora. Pode repetir, por favor?"

var questions = map[session.InterviewField]string{
	session.FieldIncome:     "Qual é a sua renda mensal aproximada?",
	session.FieldEmployment: "Qual é o seu tipo de emprego? (formal, autônomo ou desempregado)",
	session.FieldExpenses:   "Qual é o valor aproximado das suas despesas fixas mensais?",
	session.FieldDependents: "Quantos dependentes você possui?",
	session.FieldHasDebt:    "Você possui dívidas ativas no momento? (sim ou não)",
}

type Handler struct {
	interp    contract.Interpreter
	directory contract.CustomerDirectory
	tiers     contract.TierSource
}

var _ contract.Handler = (*Handler)(nil)

func New(interp contract.Interpreter, directory contract.CustomerDirectory, tiers contract.TierSource) (*Handler, error) {
	if interp == nil || directory == nil || tiers == nil {
		return nil, errors.New("interpreter, directory and tier source are required")
	}
	return &Handler{interp: interp, directory: directory, tiers: tiers}, nil
}

func (h *Handler) Handle(ctx context.Context, sess *session.Session, utterance string) (contract.Reply, error) {
	if !sess.Authenticated() {
		sess.Interview.Reset()
		return contract.Reply{
			Text:    "Desculpe, não foi possível identificar seus dados. Vamos refazer sua autenticação.",
			Handoff: session.AgentTriage,
		}, nil
	}
	if greeting.IsClosing(utterance) {
		sess.Interview.Reset()
		return contract.Reply{Text: "Foi um prazer ajudá-lo! Até logo!", Handoff: session.AgentTerminated}, nil
	}

	// First turn after the handoff: the utterance that routed here is not an
	// answer, so just open the interview and ask the first question.
	if !sess.Interview.Started {
		sess.Interview.Started = true
		field, _ := sess.Interview.NextField()
		return contract.Reply{Text: "Vamos começar sua entrevista de crédito. " + questions[field]}, nil
	}

	field, ok := sess.Interview.NextField()
	if !ok {
		// Complete form still in session: a previous conclusion failed to
		// persist, so this turn retries it.
		return h.conclude(ctx, sess)
	}

	cmd, err := h.interp.Interpret(ctx, sess, utterance, contract.Shape{Kind: contract.ShapeInterviewField, Field: field})
	if err != nil {
		log.Warn().Err(err).Msg("interview flow degraded")
		return contract.Reply{Text: apology}, nil
	}

	answer, ok := cmd.(contract.InterviewAnswer)
	if !ok {
		return contract.Reply{Text: "Não consegui entender sua resposta. " + questions[field]}, nil
	}
	if err := record(&sess.Interview, answer); err != nil {
		return contract.Reply{Text: "Não consegui entender sua resposta. " + questions[field]}, nil
	}

	if next, more := sess.Interview.NextField(); more {
		return contract.Reply{Text: questions[next]}, nil
	}
	return h.conclude(ctx, sess)
}

func record(form *session.InterviewForm, answer contract.InterviewAnswer) error {
	switch answer.Field {
	case session.FieldIncome:
		v, ok := answer.Value.(float64)
		if !ok || v < 0 {
			return contract.ErrValidation
		}
		form.Income = &v
	case session.FieldEmployment:
		v, ok := answer.Value.(domain.EmploymentType)
		if !ok {
			return contract.ErrValidation
		}
		form.Employment = &v
	case session.FieldExpenses:
		v, ok := answer.Value.(float64)
		if !ok || v < 0 {
			return contract.ErrValidation
		}
		form.Expenses = &v
	case session.FieldDependents:
		v, ok := answer.Value.(int)
		if !ok || v < 0 {
			return contract.ErrValidation
		}
		form.Dependents = &v
	case session.FieldHasDebt:
		v, ok := answer.Value.(bool)
		if !ok {
			return contract.ErrValidation
		}
		form.HasDebt = &v
	default:
		return contract.ErrValidation
	}
	return nil
}

func (h *Handler) conclude(ctx context.Context, sess *session.Session) (contract.Reply, error) {
	form := sess.Interview
	input := score.Input{
		Income:     *form.Income,
		Employment: *form.Employment,
		Expenses:   *form.Expenses,
		Dependents: *form.Dependents,
		HasDebt:    *form.HasDebt,
	}
	newScore, err := score.Calculate(input)
	if err != nil {
		sess.Interview.Reset()
		log.Warn().Err(err).Msg("score calculation rejected interview answers")
		return contract.Reply{Text: apology}, nil
	}

	previous := sess.Customer.Score
	sess.Customer.Score = newScore
	if err := h.directory.Save(ctx, *sess.Customer); err != nil {
		// The answers are all collected; keep the form so the next turn
		// retries persistence instead of restarting the interview.
		sess.Customer.Score = previous
		log.Warn().Err(err).Msg("persisting refreshed score failed")
		return contract.Reply{Text: "Suas respostas foram registradas, mas não consegui atualizar seu score agora. Envie qualquer mensagem para eu tentar novamente, por favor."}, nil
	}
	sess.Interview.Reset()
	log.Info().Str("session", sess.ID).Int("previous", previous).Int("score", newScore).Msg("interview concluded")

	text := fmt.Sprintf("Entrevista concluída! Seu score foi atualizado de %d para %d.", previous, newScore)
	if table, err := h.tiers.Tiers(ctx); err == nil {
		if tier, err := table.For(newScore); err == nil {
			text += fmt.Sprintf(" Com esse score, seu limite máximo de crédito é de R$ %.2f.", tier.MaxLimit)
		}
	}
	text += " Posso processar uma nova solicitação de aumento, se desejar."
	return contract.Reply{Text: text, Handoff: session.AgentCredit}, nil
}
