// Package interpret turns free-form utterances into structured commands
// through a three-tier pipeline: grammar parse of the model reply, then
// deterministic extraction from the utterance, then raw passthrough. Each
// tier is total, so the output is always a valid command.
package interpret

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/session"
)

type Interpreter struct {
	gw contract.Gateway
}

var _ contract.Interpreter = (*Interpreter)(nil)

func New(gw contract.Gateway) *Interpreter {
	return &Interpreter{gw: gw}
}

// Interpret asks the gateway for a classification and decodes it against the
// token grammar. When the gateway fails entirely the deterministic tier still
// runs on the utterance, so a plain "12345678900" authenticates even with
// every backend down; only when that tier also fails is the gateway error
// surfaced.
func (i *Interpreter) Interpret(ctx context.Context, sess *session.Session, utterance string, shape contract.Shape) (contract.Command, error) {
	prompt := buildPrompt(sess, utterance, shape)

	text, err := i.gw.Infer(ctx, prompt, sess)
	if err != nil {
		if cmd, ok := heuristic(shape, utterance); ok {
			log.Debug().Str("shape", shape.Kind.String()).Msg("gateway down, heuristic tier answered")
			return cmd, nil
		}
		return nil, err
	}

	if cmd, ok := decode(shape, text, utterance); ok {
		return cmd, nil
	}
	if cmd, ok := heuristic(shape, utterance); ok {
		return cmd, nil
	}
	return contract.FreeText{Raw: strings.TrimSpace(text)}, nil
}

// decode is the grammar tier: map a parsed token onto the shape's commands.
func decode(shape contract.Shape, modelText, utterance string) (contract.Command, bool) {
	tok, ok := ParseToken(modelText)
	if !ok {
		return nil, false
	}

	switch shape.Kind {
	case contract.ShapeCPF:
		if tok.Keyword == "CPF" {
			if cpf, ok := ExtractCPF(tok.Value); ok {
				return contract.Authenticate{CPF: cpf}, true
			}
		}
	case contract.ShapeBirthDate:
		if tok.Keyword == "DATA" {
			if date, ok := ExtractBirthDate(tok.Value); ok {
				return contract.Authenticate{BirthDate: date}, true
			}
		}
	case contract.ShapeIntent:
		if target, ok := routeFor(tok.Keyword); ok {
			return contract.RouteIntent{Target: target}, true
		}
	case contract.ShapeCreditIntent:
		switch tok.Keyword {
		case "CONSULTAR_LIMITE":
			return contract.QueryLimit{}, true
		case "SOLICITAR_AUMENTO":
			if v, ok := ParseAmount(tok.Value); ok {
				return contract.RequestIncrease{Amount: v}, true
			}
			if v, ok := ParseAmount(utterance); ok {
				return contract.RequestIncrease{Amount: v}, true
			}
		case "CAMBIO":
			return contract.RouteIntent{Target: session.AgentExchange}, true
		case "ENTREVISTA":
			return contract.RouteIntent{Target: session.AgentInterview}, true
		}
	case contract.ShapeYesNo:
		switch tok.Keyword {
		case "SIM":
			return contract.Affirm{}, true
		case "NAO":
			return contract.Deny{}, true
		}
		// NAO_SEI and anything else fall through as "neither"
	case contract.ShapeInterviewField:
		if cmd, ok := decodeField(shape.Field, tok, utterance); ok {
			return cmd, true
		}
	case contract.ShapeCurrency:
		switch tok.Keyword {
		case "MOEDA":
			if code, ok := ExtractCurrency(tok.Value); ok {
				return contract.QuoteRequest{Currency: code}, true
			}
		case "CREDITO":
			return contract.RouteIntent{Target: session.AgentCredit}, true
		case "ENTREVISTA":
			return contract.RouteIntent{Target: session.AgentInterview}, true
		default:
			if code, ok := ExtractCurrency(tok.Keyword); ok {
				return contract.QuoteRequest{Currency: code}, true
			}
		}
	}
	return nil, false
}

func decodeField(field session.InterviewField, tok Token, utterance string) (contract.Command, bool) {
	switch field {
	case session.FieldIncome, session.FieldExpenses:
		if tok.Keyword == "VALOR" {
			if v, ok := ParseAmount(tok.Value); ok {
				return contract.InterviewAnswer{Field: field, Value: v}, true
			}
		}
	case session.FieldEmployment:
		if tok.Keyword == "EMPREGO" {
			if t, ok := ExtractEmployment(tok.Value); ok {
				return contract.InterviewAnswer{Field: field, Value: t}, true
			}
		}
	case session.FieldDependents:
		if tok.Keyword == "DEPENDENTES" {
			if ans, ok := extractInterviewAnswer(field, tok.Value); ok {
				return ans, true
			}
		}
	case session.FieldHasDebt:
		if tok.Keyword == "DIVIDAS" {
			switch strings.ToUpper(tok.Value) {
			case "SIM":
				return contract.InterviewAnswer{Field: field, Value: true}, true
			case "NAO", "NÃO":
				return contract.InterviewAnswer{Field: field, Value: false}, true
			}
		}
	}
	return nil, false
}

// heuristic is the deterministic tier: extract directly from the utterance.
func heuristic(shape contract.Shape, utterance string) (contract.Command, bool) {
	switch shape.Kind {
	case contract.ShapeCPF:
		if cpf, ok := ExtractCPF(utterance); ok {
			return contract.Authenticate{CPF: cpf}, true
		}
	case contract.ShapeBirthDate:
		if date, ok := ExtractBirthDate(utterance); ok {
			return contract.Authenticate{BirthDate: date}, true
		}
	case contract.ShapeIntent:
		if target, ok := ExtractRoute(utterance); ok {
			return contract.RouteIntent{Target: target}, true
		}
	case contract.ShapeCreditIntent:
		lower := strings.ToLower(utterance)
		if amount, ok := ParseAmount(utterance); ok && containsAny(lower, []string{"aument", "subir", "elevar"}) {
			return contract.RequestIncrease{Amount: amount}, true
		}
		if containsAny(lower, []string{"limite", "quanto tenho"}) {
			return contract.QueryLimit{}, true
		}
		if containsAny(lower, exchangeWords) {
			return contract.RouteIntent{Target: session.AgentExchange}, true
		}
		if containsAny(lower, interviewWords) {
			return contract.RouteIntent{Target: session.AgentInterview}, true
		}
	case contract.ShapeYesNo:
		if affirm, ok := ExtractYesNo(utterance); ok {
			if affirm {
				return contract.Affirm{}, true
			}
			return contract.Deny{}, true
		}
	case contract.ShapeInterviewField:
		if ans, ok := extractInterviewAnswer(shape.Field, utterance); ok {
			return ans, true
		}
	case contract.ShapeCurrency:
		if code, ok := ExtractCurrency(utterance); ok {
			return contract.QuoteRequest{Currency: code}, true
		}
	}
	return nil, false
}

func routeFor(keyword string) (session.AgentType, bool) {
	switch keyword {
	case "CREDITO":
		return session.AgentCredit, true
	case "CAMBIO":
		return session.AgentExchange, true
	case "ENTREVISTA":
		return session.AgentInterview, true
	}
	return "", false
}
