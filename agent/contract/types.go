package contract

import (
	"github.com/bancoagil/atende/agent/session"
)

// Command is the structured result of interpreting one utterance. Exactly one
// variant is produced per interpretation call; FreeText is the total fallback,
// so interpretation never fails on malformed model output.
type Command interface {
	isCommand()
}

// Authenticate carries the identification fields extracted so far. Either
// field may be empty; the authentication handler accumulates them across turns.
type Authenticate struct {
	CPF       string
	BirthDate string // AAAA-MM-DD
}

// RouteIntent asks the orchestrator to hand the conversation to another agent.
type RouteIntent struct {
	Target session.AgentType
}

// QueryLimit asks for the customer's current limit and score.
type QueryLimit struct{}

// RequestIncrease asks to raise the credit limit to Amount.
type RequestIncrease struct {
	Amount float64
}

// InterviewAnswer is one collected interview field. Value is float64 for the
// numeric fields, domain.EmploymentType for employment, int for dependents and
// bool for debt.
type InterviewAnswer struct {
	Field session.InterviewField
	Value any
}

// QuoteRequest asks for the BRL quote of one currency.
type QuoteRequest struct {
	Currency string
}

// Affirm and Deny are the strict yes/no classifications used while an
// interview offer is pending.
type Affirm struct{}
type Deny struct{}

// FreeText carries the raw model output when no structured command applies.
type FreeText struct {
	Raw string
}

func (Authenticate) isCommand()    {}
func (RouteIntent) isCommand()     {}
func (QueryLimit) isCommand()      {}
func (RequestIncrease) isCommand() {}
func (InterviewAnswer) isCommand() {}
func (QuoteRequest) isCommand()    {}
func (Affirm) isCommand()          {}
func (Deny) isCommand()            {}
func (FreeText) isCommand()        {}

// Reply is what a handler returns for one turn. Text is always surfaced to
// the caller; Handoff, when set, tells the orchestrator to switch the active
// agent before the next turn.
type Reply struct {
	Text    string
	Handoff session.AgentType // empty = stay
}

// ShapeKind selects which structured command the interpreter should try to
// extract from the utterance.
type ShapeKind int

const (
	ShapeCPF ShapeKind = iota
	ShapeBirthDate
	ShapeIntent
	ShapeCreditIntent
	ShapeYesNo
	ShapeInterviewField
	ShapeCurrency
)

// Shape describes the expected interpretation for one call. History inclusion
// is explicit: narrow field extractions run without history, open-ended intent
// classification runs with it.
type Shape struct {
	Kind           ShapeKind
	Field          session.InterviewField // set for ShapeInterviewField
	IncludeHistory bool
}

func (k ShapeKind) String() string {
	switch k {
	case ShapeCPF:
		return "cpf"
	case ShapeBirthDate:
		return "data_nascimento"
	case ShapeIntent:
		return "intencao"
	case ShapeCreditIntent:
		return "intencao_credito"
	case ShapeYesNo:
		return "sim_nao"
	case ShapeInterviewField:
		return "campo_entrevista"
	case ShapeCurrency:
		return "moeda"
	}
	return "desconhecido"
}
