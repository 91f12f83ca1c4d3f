package session

import (
	"fmt"
	"strings"

	"github.com/bancoagil/atende/agent/domain"
)

// AgentType identifies which handler owns the conversation.
type AgentType string

const (
	AgentTriage     AgentType = "triagem"
	AgentCredit     AgentType = "credito"
	AgentInterview  AgentType = "entrevista"
	AgentExchange   AgentType = "cambio"
	AgentTerminated AgentType = "encerrado"
)

type Speaker string

const (
	SpeakerUser  Speaker = "cliente"
	SpeakerAgent Speaker = "agente"
)

// Turn is one utterance in the conversation history.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// AuthStage tracks how far the authentication flow has progressed.
type AuthStage int

const (
	StageGreeting AuthStage = iota
	StageCollectingCPF
	StageCollectingBirthDate
	StageAuthenticated
)

// GatewayCall is one inference attempt, kept for the per-turn debug trace.
type GatewayCall struct {
	Backend  string `json:"backend"`
	Prompt   string `json:"prompt"`
	Response string `json:"response,omitempty"`
	Err      string `json:"err,omitempty"`
}

// InterviewField names one step of the fixed interview sequence.
type InterviewField string

const (
	FieldIncome     InterviewField = "renda_mensal"
	FieldEmployment InterviewField = "tipo_emprego"
	FieldExpenses   InterviewField = "despesas_fixas"
	FieldDependents InterviewField = "dependentes"
	FieldHasDebt    InterviewField = "dividas"
)

// InterviewForm accumulates answers across turns. Nil means not collected.
type InterviewForm struct {
	Started    bool                   `json:"started"`
	Income     *float64               `json:"income,omitempty"`
	Employment *domain.EmploymentType `json:"employment,omitempty"`
	Expenses   *float64               `json:"expenses,omitempty"`
	Dependents *int                   `json:"dependents,omitempty"`
	HasDebt    *bool                  `json:"has_debt,omitempty"`
}

// NextField returns the first field still missing, in the fixed order
// income, employment, expenses, dependents, debt.
func (f *InterviewForm) NextField() (InterviewField, bool) {
	switch {
	case f.Income == nil:
		return FieldIncome, true
	case f.Employment == nil:
		return FieldEmployment, true
	case f.Expenses == nil:
		return FieldExpenses, true
	case f.Dependents == nil:
		return FieldDependents, true
	case f.HasDebt == nil:
		return FieldHasDebt, true
	}
	return "", false
}

func (f *InterviewForm) Reset() {
	*f = InterviewForm{}
}

// Session is the per-conversation state. It is owned by exactly one
// conversation and never shared, so it needs no locking.
type Session struct {
	ID       string
	Active   AgentType
	Customer *domain.CustomerRecord

	History []Turn

	AuthStage    AuthStage
	AuthAttempts int
	PendingCPF   string

	InterviewOfferPending bool
	Interview             InterviewForm

	DebugTrace []GatewayCall
}

func New(id string) *Session {
	return &Session{
		ID:     id,
		Active: AgentTriage,
	}
}

func (s *Session) Authenticated() bool {
	return s.Customer != nil
}

func (s *Session) AppendTurn(speaker Speaker, text string) {
	s.History = append(s.History, Turn{Speaker: speaker, Text: text})
}

// ResetTrace drops the previous turn's gateway activity so the trace
// exposes only the current call chain.
func (s *Session) ResetTrace() {
	s.DebugTrace = nil
}

// Record implements the gateway trace sink.
func (s *Session) Record(call GatewayCall) {
	s.DebugTrace = append(s.DebugTrace, call)
}

// RecentHistory renders the last max turns for prompt context.
func (s *Session) RecentHistory(max int) string {
	turns := s.History
	if max > 0 && len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Speaker, t.Text)
	}
	return b.String()
}
