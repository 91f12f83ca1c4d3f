package domain

import "time"

// CustomerRecord is one row of the customer directory. Score is mutated only
// by the credit interview; CreditLimit only by an approved increase.
type CustomerRecord struct {
	CPF         string  `json:"cpf"`
	Name        string  `json:"name"`
	BirthDate   string  `json:"birth_date"` // AAAA-MM-DD
	CreditLimit float64 `json:"credit_limit"`
	Score       int     `json:"score"` // 0..1000
}

type RequestStatus string

const (
	RequestApproved RequestStatus = "aprovado"
	RequestRejected RequestStatus = "rejeitado"
)

// IncreaseRequest is an append-only audit record of one limit-increase
// decision. Once written it is never updated.
type IncreaseRequest struct {
	ID             string        `json:"id"`
	CustomerCPF    string        `json:"customer_cpf"`
	RequestedAt    time.Time     `json:"requested_at"`
	CurrentLimit   float64       `json:"current_limit"`
	RequestedLimit float64       `json:"requested_limit"`
	Status         RequestStatus `json:"status"`
}

// EmploymentType is the employment classification collected during the
// credit interview.
type EmploymentType string

const (
	EmploymentFormal       EmploymentType = "formal"
	EmploymentSelfEmployed EmploymentType = "autonomo"
	EmploymentUnemployed   EmploymentType = "desempregado"
)

// Quote is one currency quote against BRL.
type Quote struct {
	Code string    `json:"code"`
	Bid  float64   `json:"bid"`
	Ask  float64   `json:"ask"`
	AsOf time.Time `json:"as_of"`
}
